package pathfind

import (
	"testing"

	"github.com/kikugo/steamdefense/grid"
)

func straightGrid() *grid.Grid {
	return grid.New(10, 1, 32)
}

func TestAStarAndDijkstraAgreeOnCost(t *testing.T) {
	g := straightGrid()
	f := NewFinder(g, 0)
	start, goal := grid.Pos{X: 0, Y: 0}, grid.Pos{X: 9, Y: 0}

	aStarResult := f.Find(start, goal, AStar, Manhattan, DefaultConstraints())
	dijkstraResult := f.Find(start, goal, Dijkstra, Zero, DefaultConstraints())

	if !aStarResult.Success || !dijkstraResult.Success {
		t.Fatalf("expected both to succeed: astar=%v dijkstra=%v", aStarResult.Success, dijkstraResult.Success)
	}
	if aStarResult.Cost != dijkstraResult.Cost {
		t.Fatalf("A* cost %v != Dijkstra cost %v", aStarResult.Cost, dijkstraResult.Cost)
	}
}

func TestSmoothingNeverLengthensPath(t *testing.T) {
	g := grid.New(10, 10, 32)
	f := NewFinder(g, 0)
	start, goal := grid.Pos{X: 0, Y: 0}, grid.Pos{X: 9, Y: 9}

	c := DefaultConstraints()
	c.AllowDiagonal = true
	result := f.Find(start, goal, AStar, Euclidean, c)
	if !result.Success {
		t.Fatal("expected path on open grid")
	}
	smoothed := Smooth(g, result.Path)
	if len(smoothed) > len(result.Path) {
		t.Fatalf("smoothing lengthened the path: %d -> %d", len(result.Path), len(smoothed))
	}
	if smoothed[0] != start || smoothed[len(smoothed)-1] != goal {
		t.Fatal("smoothing must preserve endpoints")
	}
	for i := 0; i+1 < len(smoothed); i++ {
		if !LineOfSight(g, smoothed[i], smoothed[i+1]) {
			t.Fatalf("smoothed segment %v -> %v lacks line of sight", smoothed[i], smoothed[i+1])
		}
	}
}

func TestZeroSearchBudgetFailsImmediately(t *testing.T) {
	g := straightGrid()
	f := NewFinder(g, 16)
	start, goal := grid.Pos{X: 0, Y: 0}, grid.Pos{X: 9, Y: 0}

	// The zero-value Constraints carries max_search_nodes=0 and must
	// fail before touching the cache or the open set.
	result := f.Find(start, goal, AStar, Manhattan, Constraints{})
	if result.Success {
		t.Fatal("expected immediate failure with a zero search budget")
	}
	if result.NodesExplored != 0 {
		t.Fatalf("expected 0 nodes explored, got %d", result.NodesExplored)
	}

	// Even with the same route already cached by a budgeted search, a
	// zero-budget query still fails.
	if !f.Find(start, goal, AStar, Manhattan, DefaultConstraints()).Success {
		t.Fatal("expected the budgeted search to succeed")
	}
	if f.Find(start, goal, AStar, Manhattan, Constraints{}).Success {
		t.Fatal("expected a zero-budget query to fail even when cached")
	}
}

func TestUnreachableGoalReturnsFailureNotPanic(t *testing.T) {
	g := grid.New(3, 3, 32)
	for y := 0; y < 3; y++ {
		g.SetTile(1, y, grid.Wall)
	}
	f := NewFinder(g, 0)
	result := f.Find(grid.Pos{X: 0, Y: 0}, grid.Pos{X: 2, Y: 0}, AStar, Manhattan, DefaultConstraints())
	if result.Success {
		t.Fatal("expected failure: wall fully separates start from goal")
	}
}

func TestCacheServesRepeatedQuery(t *testing.T) {
	g := straightGrid()
	f := NewFinder(g, 16)
	start, goal := grid.Pos{X: 0, Y: 0}, grid.Pos{X: 9, Y: 0}

	first := f.Find(start, goal, AStar, Manhattan, DefaultConstraints())
	if first.CacheHit {
		t.Fatal("first call should not be a cache hit")
	}
	second := f.Find(start, goal, AStar, Manhattan, DefaultConstraints())
	if !second.CacheHit {
		t.Fatal("second identical call should hit the cache")
	}
	if second.Cost != first.Cost {
		t.Fatal("cached result must match the original cost")
	}
}

func TestInvalidateCacheDropsEntry(t *testing.T) {
	g := straightGrid()
	f := NewFinder(g, 16)
	start, goal := grid.Pos{X: 0, Y: 0}, grid.Pos{X: 9, Y: 0}
	f.Find(start, goal, AStar, Manhattan, DefaultConstraints())
	f.InvalidateCache(start, goal)
	result := f.Find(start, goal, AStar, Manhattan, DefaultConstraints())
	if result.CacheHit {
		t.Fatal("expected cache miss after invalidation")
	}
}

func TestFlowFieldStepsTowardGoal(t *testing.T) {
	g := straightGrid()
	goal := grid.Pos{X: 9, Y: 0}
	field := BuildFlowField(g, goal, DefaultConstraints())
	cur := grid.Pos{X: 0, Y: 0}
	steps := 0
	for cur != goal {
		next, ok := field.Next(cur)
		if !ok {
			t.Fatalf("flow field lost the path at %v", cur)
		}
		cur = next
		steps++
		if steps > 20 {
			t.Fatal("flow field did not converge on the goal")
		}
	}
}

func TestBFSFindsPathOnOpenGrid(t *testing.T) {
	g := grid.New(5, 5, 32)
	f := NewFinder(g, 0)
	c := DefaultConstraints()
	c.AllowDiagonal = true
	result := f.Find(grid.Pos{X: 0, Y: 0}, grid.Pos{X: 4, Y: 4}, BFS, Zero, c)
	if !result.Success {
		t.Fatal("expected BFS to find a path on an open grid")
	}
}
