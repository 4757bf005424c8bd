package pathfind

import (
	"container/heap"

	"github.com/kikugo/steamdefense/grid"
)

// FlowField is a precomputed, per-tile "next step toward goal" table,
// built once via a reverse Dijkstra expansion from goal and reused by
// every enemy sharing that goal.
type FlowField struct {
	Goal      grid.Pos
	cost      map[grid.Pos]float64
	direction map[grid.Pos]grid.Pos // neighbor to step toward, keyed by current pos
}

// Cost returns the distance-to-goal at p and whether p is reachable.
func (f *FlowField) Cost(p grid.Pos) (float64, bool) {
	c, ok := f.cost[p]
	return c, ok
}

// Next returns the neighbor tile to step toward from p, or p itself
// (with ok=false) if p cannot reach the goal.
func (f *FlowField) Next(p grid.Pos) (grid.Pos, bool) {
	if p == f.Goal {
		return p, true
	}
	n, ok := f.direction[p]
	return n, ok
}

// BuildFlowField runs a full reverse-Dijkstra expansion from goal over
// every walkable tile, honoring the same Constraints used for
// point-to-point search.
func BuildFlowField(g *grid.Grid, goal grid.Pos, c Constraints) *FlowField {
	field := &FlowField{
		Goal:      goal,
		cost:      map[grid.Pos]float64{goal: 0},
		direction: map[grid.Pos]grid.Pos{},
	}

	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &openItem{pos: goal, gCost: 0, fCost: 0})
	closed := map[grid.Pos]bool{}

	for open.Len() > 0 {
		item := heap.Pop(open).(*openItem)
		if closed[item.pos] {
			continue
		}
		closed[item.pos] = true

		for _, n := range expand(g, c, item.pos) {
			// n must itself be enterable; the step cost is that of an
			// enemy at n moving onto item.pos.
			if enterable, _ := validMove(g, c, item.pos, n); !enterable {
				continue
			}
			ok, stepCost := validMove(g, c, n, item.pos)
			if !ok {
				continue
			}
			tentative := field.cost[item.pos] + stepCost
			if best, seen := field.cost[n]; seen && tentative >= best {
				continue
			}
			field.cost[n] = tentative
			field.direction[n] = item.pos
			heap.Push(open, &openItem{pos: n, gCost: tentative, fCost: tentative})
		}
	}
	return field
}
