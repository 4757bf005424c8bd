// Package pathfind implements the A*/Dijkstra/BFS pathfinding engine
// over a grid.Grid, with an LRU result cache and a flow-field builder.
// Searches are deterministic: node expansion order and tie-breaks are
// fixed, so the same grid and constraints always yield the same path.
package pathfind

import (
	"container/heap"
	"math"
	"time"

	"github.com/kikugo/steamdefense/grid"
)

// Heuristic selects the distance estimate used by A* (Dijkstra is A*
// with Zero).
type Heuristic int

const (
	Manhattan Heuristic = iota
	Euclidean
	Chebyshev
	Zero
)

// Algorithm selects the search strategy.
type Algorithm int

const (
	AStar Algorithm = iota
	Dijkstra
	BFS
)

func (a Algorithm) String() string {
	switch a {
	case AStar:
		return "astar"
	case Dijkstra:
		return "dijkstra"
	case BFS:
		return "bfs"
	default:
		return "unknown"
	}
}

// DefaultDiagonalMultiplier is sqrt(2), the default diagonal step cost
// multiplier.
const DefaultDiagonalMultiplier = math.Sqrt2

// DefaultMaxSearchNodes bounds a search when the caller has no
// stronger opinion: large enough to exhaust any playable grid many
// times over.
const DefaultMaxSearchNodes = 10000

// Constraints parameterizes a search.
type Constraints struct {
	AllowDiagonal          bool
	DiagonalCostMultiplier float64 // 0 means DefaultDiagonalMultiplier
	MaxSlope float64 // 0 means unlimited
	CanCrossWater          bool
	MinClearance           int
	MaxSearchNodes int // 0 fails immediately; < 0 means unlimited
	MaxComputationTime time.Duration // 0 means unlimited
	CustomWalkableFilter   func(grid.Pos) bool
	CustomCostModifier     func(from, to grid.Pos) float64
}

func (c Constraints) diagonalMultiplier() float64 {
	if c.DiagonalCostMultiplier == 0 {
		return DefaultDiagonalMultiplier
	}
	return c.DiagonalCostMultiplier
}

// Result is what a search returns.
type Result struct {
	Path          []grid.Pos
	Cost          float64
	NodesExplored int
	Time          time.Duration
	Algorithm     Algorithm
	Success       bool
	CacheHit      bool
}

// timeoutCheckInterval amortizes wall-clock reads: checked every N
// pops instead of every pop.
const timeoutCheckInterval = 64

// heuristicCost estimates the remaining distance from a to b.
func heuristicCost(h Heuristic, a, b grid.Pos) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	switch h {
	case Manhattan:
		return dx + dy
	case Euclidean:
		return math.Sqrt(dx*dx + dy*dy)
	case Chebyshev:
		return math.Max(dx, dy)
	case Zero:
		return 0
	default:
		return 0
	}
}

// openItem is one entry in the A*/Dijkstra/BFS open set.
type openItem struct {
	pos    grid.Pos
	fCost  float64
	hCost  float64
	gCost  float64
	index  int
}

type openHeap []*openItem

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].fCost != h[j].fCost {
		return h[i].fCost < h[j].fCost
	}
	return h[i].hCost < h[j].hCost // tiebreak on h_cost
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openHeap) Push(x interface{}) {
	item := x.(*openItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// validMove checks in-bounds, walkability (or water when allowed), the
// custom filter, and the max-slope rule.
func validMove(g *grid.Grid, c Constraints, from, to grid.Pos) (ok bool, cost float64) {
	props := g.GetProperties(to.X, to.Y)
	walkable := props.Walkable
	if !walkable && props.Kind == grid.Water && c.CanCrossWater {
		walkable = true
	}
	if !walkable {
		return false, 0
	}
	if c.CustomWalkableFilter != nil && !c.CustomWalkableFilter(to) {
		return false, 0
	}
	if c.MaxSlope > 0 {
		fromProps := g.GetProperties(from.X, from.Y)
		if math.Abs(props.Elevation-fromProps.Elevation) > c.MaxSlope {
			return false, 0
		}
	}
	moveCost := props.MovementCost
	if moveCost <= 0 {
		moveCost = 1
	}
	if c.CustomCostModifier != nil {
		moveCost *= c.CustomCostModifier(from, to)
	}
	if from.X != to.X && from.Y != to.Y {
		moveCost *= c.diagonalMultiplier()
	}
	return true, moveCost
}

// expand returns the neighbor positions of p according to the
// diagonal setting.
func expand(g *grid.Grid, c Constraints, p grid.Pos) []grid.Pos {
	return g.Neighbors(p.X, p.Y, c.AllowDiagonal)
}

// DefaultConstraints returns the baseline search constraints: a
// generous node budget and everything else off. The zero-value
// Constraints carries a zero search budget and fails immediately.
func DefaultConstraints() Constraints {
	return Constraints{MaxSearchNodes: DefaultMaxSearchNodes}
}

// Find runs the requested search algorithm from start to goal.
// Dijkstra is implemented as A* with a Zero heuristic; BFS ignores
// movement cost and treats every valid step as cost 1. A zero
// MaxSearchNodes budget fails before the cache or the search runs.
func (f *Finder) Find(start, goal grid.Pos, algo Algorithm, heuristic Heuristic, c Constraints) Result {
	if c.MaxSearchNodes == 0 {
		return Result{Algorithm: algo, Success: false}
	}
	key := cacheKey{start: start, goal: goal, algo: algo, heuristic: heuristic, diagonal: c.AllowDiagonal}
	if f.cache != nil {
		if cached, ok := f.cache.get(key); ok {
			f.cacheHits++
			r := cached
			r.CacheHit = true
			return r
		}
	}

	t0 := time.Now()
	var result Result
	switch algo {
	case BFS:
		result = f.bfs(start, goal, c)
	case Dijkstra:
		result = f.aStar(start, goal, Zero, c)
	default:
		result = f.aStar(start, goal, heuristic, c)
	}
	result.Algorithm = algo
	result.Time = time.Since(t0)

	if f.cache != nil {
		f.cache.put(key, result)
	}
	return result
}

func (f *Finder) aStar(start, goal grid.Pos, heuristic Heuristic, c Constraints) Result {
	g := f.Grid
	open := &openHeap{}
	heap.Init(open)
	startItem := &openItem{pos: start, gCost: 0, hCost: heuristicCost(heuristic, start, goal)}
	startItem.fCost = startItem.hCost
	heap.Push(open, startItem)

	gScore := map[grid.Pos]float64{start: 0}
	parent := map[grid.Pos]grid.Pos{}
	closed := map[grid.Pos]bool{}

	explored := 0
	deadline := time.Time{}
	if c.MaxComputationTime > 0 {
		deadline = time.Now().Add(c.MaxComputationTime)
	}

	for open.Len() > 0 {
		item := heap.Pop(open).(*openItem)
		if closed[item.pos] {
			continue
		}
		closed[item.pos] = true
		explored++

		if item.pos == goal {
			return Result{
				Path:          reconstruct(parent, start, goal),
				Cost:          gScore[goal],
				NodesExplored: explored,
				Success:       true,
			}
		}

		if c.MaxSearchNodes > 0 && explored >= c.MaxSearchNodes {
			break
		}
		if !deadline.IsZero() && explored%timeoutCheckInterval == 0 && time.Now().After(deadline) {
			break
		}

		for _, n := range expand(g, c, item.pos) {
			ok, stepCost := validMove(g, c, item.pos, n)
			if !ok {
				continue
			}
			tentative := gScore[item.pos] + stepCost
			if best, seen := gScore[n]; seen && tentative >= best {
				continue
			}
			gScore[n] = tentative
			parent[n] = item.pos
			h := heuristicCost(heuristic, n, goal)
			heap.Push(open, &openItem{pos: n, gCost: tentative, hCost: h, fCost: tentative + h})
		}
	}

	return Result{Success: false, NodesExplored: explored}
}

func (f *Finder) bfs(start, goal grid.Pos, c Constraints) Result {
	g := f.Grid
	queue := []grid.Pos{start}
	visited := map[grid.Pos]bool{start: true}
	parent := map[grid.Pos]grid.Pos{}
	explored := 0

	deadline := time.Time{}
	if c.MaxComputationTime > 0 {
		deadline = time.Now().Add(c.MaxComputationTime)
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		explored++

		if p == goal {
			path := reconstruct(parent, start, goal)
			return Result{
				Path:          path,
				Cost:          float64(len(path) - 1),
				NodesExplored: explored,
				Success:       true,
			}
		}
		if c.MaxSearchNodes > 0 && explored >= c.MaxSearchNodes {
			break
		}
		if !deadline.IsZero() && explored%timeoutCheckInterval == 0 && time.Now().After(deadline) {
			break
		}

		for _, n := range expand(g, c, p) {
			if visited[n] {
				continue
			}
			ok, _ := validMove(g, c, p, n)
			if !ok {
				continue
			}
			visited[n] = true
			parent[n] = p
			queue = append(queue, n)
		}
	}
	return Result{Success: false, NodesExplored: explored}
}

func reconstruct(parent map[grid.Pos]grid.Pos, start, goal grid.Pos) []grid.Pos {
	if start == goal {
		return []grid.Pos{start}
	}
	var rev []grid.Pos
	cur := goal
	for {
		rev = append(rev, cur)
		if cur == start {
			break
		}
		p, ok := parent[cur]
		if !ok {
			return nil
		}
		cur = p
	}
	out := make([]grid.Pos, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}
