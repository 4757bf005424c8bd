// Package mapgen procedurally builds a playable grid.Grid: spawn and
// base on opposite edges, a main path between them, optional branches,
// buildable placement zones, and theme decorations — all driven from
// one seeded PRNG stream so the same seed always reproduces the same
// map, via a constrained random walk with branches, placement zones,
// and decorations.
package mapgen

import (
	"math/rand"

	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/internal/simerr"
)

// Theme selects the decoration table used during the post-pass.
type Theme string

const (
	IndustrialFactory Theme = "industrial_factory"
	ClockworkSpire    Theme = "clockwork_spire"
	AirshipDocks      Theme = "airship_docks"
)

var decorationTables = map[Theme][]string{
	IndustrialFactory: {"gear", "pipe", "crane", "mine_cart"},
	ClockworkSpire:    {"gear", "lamp", "chimney"},
	AirshipDocks:      {"crane", "tesla_coil", "pipe"},
}

// Params configures one generation run.
type Params struct {
	Width, Height     int
	TileSize          float64
	Seed              int64
	Theme             Theme
	PathComplexity float64 // 0..1, probability of a random step vs. goal-directed
	PathWidth int // widened with a Manhattan-disk of radius PathWidth/2
	BranchCount       int
	BranchLength      int
	MinPlacementAreas int
	PlacementAreaSize int
	DecorationDensity float64 // 0..1, fraction of eligible Empty cells decorated
	MaxAttempts int // placement-zone seeding attempts shared by all zones; 0 means default
}

// Result is the generated map plus the bookkeeping SimulationLoop and
// EnemySystem need.
type Result struct {
	Grid            *grid.Grid
	Spawn           grid.Pos
	Base            grid.Pos
	Path            []grid.Pos
	PlacementZones  [][]grid.Pos
	Decorations     map[grid.Pos]string
}

const defaultMaxAttempts = 200

// Generate runs the full phase pipeline from a single seeded PRNG
// stream, retrying with path_complexity=0.1 if the first attempt
// fails reachability. Determinism requires that every random draw
// route through rng, in the fixed phase order: endpoints -> main
// path -> branches -> placement zones -> decorations -> theme pass.
func Generate(p Params) (*Result, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, &simerr.MapGenError{Seed: p.Seed, Reason: "width/height must be positive"}
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}

	rng := rand.New(rand.NewSource(p.Seed))
	result, err := attempt(rng, p, p.PathComplexity)
	if err != nil {
		// Post-validation fallback: re-run with a much
		// more goal-directed walk before giving up.
		result, err = attempt(rng, p, 0.1)
		if err != nil {
			return nil, &simerr.MapGenError{Seed: p.Seed, Reason: err.Error()}
		}
	}
	return result, nil
}

func attempt(rng *rand.Rand, p Params, complexity float64) (*Result, error) {
	g := grid.New(p.Width, p.Height, p.TileSize)

	spawn, base := placeEndpoints(rng, p.Width, p.Height)
	g.SetTile(spawn.X, spawn.Y, grid.Spawn)
	g.SetTile(base.X, base.Y, grid.Base)

	path := walkPath(rng, g, spawn, base, complexity)
	if path == nil {
		return nil, errNoPath
	}
	widenPath(g, path, p.PathWidth)

	if p.BranchCount > 0 {
		addBranches(rng, g, path, p.BranchCount, p.BranchLength)
	}

	if !reachable(g, spawn, base) {
		return nil, errNoPath
	}
	if g.GetTile(base.X, base.Y) != grid.Base {
		g.SetTile(base.X, base.Y, grid.Base)
	}

	zones := buildPlacementZones(rng, g, p.MinPlacementAreas, p.PlacementAreaSize, p.MaxAttempts)
	decorations := placeDecorations(rng, g, p.Theme, p.DecorationDensity)

	return &Result{
		Grid:           g,
		Spawn:          spawn,
		Base:           base,
		Path:           path,
		PlacementZones: zones,
		Decorations:    decorations,
	}, nil
}

var errNoPath = &simerr.PathError{Reason: "spawn-to-base BFS failed after fallback"}

// placeEndpoints chooses a horizontal or vertical edge orientation at
// random, then spawn/base on opposite edges at a random offset along
// that axis.
func placeEndpoints(rng *rand.Rand, w, h int) (spawn, base grid.Pos) {
	horizontal := rng.Intn(2) == 0
	if horizontal {
		y := rng.Intn(h)
		if rng.Intn(2) == 0 {
			return grid.Pos{X: 0, Y: y}, grid.Pos{X: w - 1, Y: y}
		}
		return grid.Pos{X: w - 1, Y: y}, grid.Pos{X: 0, Y: y}
	}
	x := rng.Intn(w)
	if rng.Intn(2) == 0 {
		return grid.Pos{X: x, Y: 0}, grid.Pos{X: x, Y: h - 1}
	}
	return grid.Pos{X: x, Y: h - 1}, grid.Pos{X: x, Y: 0}
}

// walkPath performs a constrained random walk from spawn to base: at
// each step, with probability complexity it takes a random valid
// direction, otherwise the direction that most reduces Manhattan
// distance to base. It marks every visited cell Path (Spawn and Base
// keep their kind) and returns the ordered waypoint list, or nil if it stalls.
func walkPath(rng *rand.Rand, g *grid.Grid, spawn, base grid.Pos, complexity float64) []grid.Pos {
	maxSteps := g.W*g.H*2 + 16
	cur := spawn
	path := []grid.Pos{cur}
	visited := map[grid.Pos]bool{cur: true}
	if g.GetTile(cur.X, cur.Y) != grid.Spawn && g.GetTile(cur.X, cur.Y) != grid.Base {
		g.SetTile(cur.X, cur.Y, grid.Path)
	}

	for steps := 0; cur != base && steps < maxSteps; steps++ {
		candidates := inBoundsDirections(g, cur)
		if len(candidates) == 0 {
			return nil
		}
		var next grid.Pos
		if rng.Float64() < complexity {
			next = candidates[rng.Intn(len(candidates))]
		} else {
			next = bestTowardGoal(candidates, cur, base)
		}
		if visited[next] && next != base {
			// Try to break out of a self-intersecting loop by picking
			// any unvisited candidate before giving up this step.
			found := false
			for _, c := range candidates {
				if !visited[c] {
					next = c
					found = true
					break
				}
			}
			if !found {
				next = candidates[rng.Intn(len(candidates))]
			}
		}
		cur = next
		if !visited[cur] {
			path = append(path, cur)
			visited[cur] = true
		}
		if g.GetTile(cur.X, cur.Y) != grid.Spawn && g.GetTile(cur.X, cur.Y) != grid.Base {
			g.SetTile(cur.X, cur.Y, grid.Path)
		}
	}
	if cur != base {
		return nil
	}
	return path
}

func inBoundsDirections(g *grid.Grid, p grid.Pos) []grid.Pos {
	return g.Neighbors(p.X, p.Y, false)
}

func bestTowardGoal(candidates []grid.Pos, cur, goal grid.Pos) grid.Pos {
	best := candidates[0]
	bestDist := manhattan(best, goal)
	for _, c := range candidates[1:] {
		if d := manhattan(c, goal); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func manhattan(a, b grid.Pos) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// widenPath paints every tile within a Manhattan-disk of radius
// width/2 around each path waypoint as Path, unless it's already
// Spawn or Base.
func widenPath(g *grid.Grid, path []grid.Pos, width int) {
	if width <= 1 {
		return
	}
	r := width / 2
	for _, p := range path {
		for y := p.Y - r; y <= p.Y+r; y++ {
			for x := p.X - r; x <= p.X+r; x++ {
				if manhattan(grid.Pos{X: x, Y: y}, p) > r {
					continue
				}
				if g.GetTile(x, y) == grid.Spawn || g.GetTile(x, y) == grid.Base {
					continue
				}
				g.SetTile(x, y, grid.Path)
			}
		}
	}
}

// addBranches picks interior points on the main path (not within 2
// tiles of either endpoint) and random-walks branchLength steps that
// avoid the existing path, marking them Path too.
func addBranches(rng *rand.Rand, g *grid.Grid, path []grid.Pos, branches, branchLength int) {
	if len(path) < 5 || branchLength <= 0 {
		return
	}
	interior := path[2 : len(path)-2]
	for i := 0; i < branches; i++ {
		origin := interior[rng.Intn(len(interior))]
		cur := origin
		for step := 0; step < branchLength; step++ {
			candidates := g.Neighbors(cur.X, cur.Y, false)
			var unvisited []grid.Pos
			for _, c := range candidates {
				if k := g.GetTile(c.X, c.Y); k != grid.Path && k != grid.Spawn && k != grid.Base {
					unvisited = append(unvisited, c)
				}
			}
			if len(unvisited) == 0 {
				break
			}
			next := unvisited[rng.Intn(len(unvisited))]
			g.SetTile(next.X, next.Y, grid.Path)
			cur = next
		}
	}
}

// reachable reports whether base is reachable from spawn via
// 4-connected walkable tiles; this is the post-validation BFS check
// run after generation.
func reachable(g *grid.Grid, spawn, base grid.Pos) bool {
	queue := []grid.Pos{spawn}
	visited := map[grid.Pos]bool{spawn: true}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == base {
			return true
		}
		for _, n := range g.Neighbors(p.X, p.Y, false) {
			if visited[n] || !g.GetProperties(n.X, n.Y).Walkable {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return false
}
