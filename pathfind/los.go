package pathfind

import "github.com/kikugo/steamdefense/grid"

// LineOfSight walks a Bresenham line between a and b and reports
// whether every tile it crosses is walkable.
func LineOfSight(g *grid.Grid, a, b grid.Pos) bool {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		if !g.GetProperties(x, y).Walkable {
			return false
		}
		if x == x1 && y == y1 {
			return true
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Smooth removes redundant interior waypoints from a path: it walks
// from the current anchor as far forward as line-of-sight allows and
// skips straight to that tile, repeating until the goal is reached.
// The output never revisits a waypoint and is never longer than the
// input.
func Smooth(g *grid.Grid, path []grid.Pos) []grid.Pos {
	if len(path) <= 2 {
		return path
	}
	out := []grid.Pos{path[0]}
	anchor := 0
	for anchor < len(path)-1 {
		next := anchor + 1
		for candidate := len(path) - 1; candidate > anchor+1; candidate-- {
			if LineOfSight(g, path[anchor], path[candidate]) {
				next = candidate
				break
			}
		}
		out = append(out, path[next])
		anchor = next
	}
	return out
}
