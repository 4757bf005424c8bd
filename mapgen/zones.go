package mapgen

import (
	"math/rand"

	"github.com/kikugo/steamdefense/grid"
)

const minZoneSize = 4

// buildPlacementZones repeatedly picks a seed cell at Manhattan
// distance >= 2 from any Path tile and grows an organic disk of about
// targetSize cells (with small jitter) around it, marking every cell
// Buildable. It keeps trying until minZones succeed or maxAttempts is
// exhausted, then force-creates corner zones if still short of quota.
func buildPlacementZones(rng *rand.Rand, g *grid.Grid, minZones, targetSize, maxAttempts int) [][]grid.Pos {
	if minZones <= 0 {
		minZones = 1
	}
	if targetSize <= 0 {
		targetSize = minZoneSize
	}

	var zones [][]grid.Pos
	for attempt := 0; attempt < maxAttempts && len(zones) < minZones; attempt++ {
		seed := grid.Pos{X: rng.Intn(g.W), Y: rng.Intn(g.H)}
		if distanceToNearestPath(g, seed) < 2 {
			continue
		}
		if g.GetTile(seed.X, seed.Y) != grid.Empty {
			continue
		}
		zone := growOrganicDisk(rng, g, seed, targetSize)
		if len(zone) < minZoneSize {
			continue
		}
		for _, p := range zone {
			g.SetTile(p.X, p.Y, grid.Buildable)
		}
		zones = append(zones, zone)
	}

	if len(zones) < minZones {
		zones = append(zones, forceCornerZones(g, minZones-len(zones))...)
	}
	return zones
}

// distanceToNearestPath does a bounded outward scan rather than a full
// grid sweep, since placement-zone seeding only needs to know whether
// the nearest Path tile is at least 2 away.
func distanceToNearestPath(g *grid.Grid, p grid.Pos) int {
	for r := 0; r <= 2; r++ {
		for _, c := range g.TilesInRadius(p.X, p.Y, r) {
			if g.GetTile(c.X, c.Y) == grid.Path {
				return r
			}
		}
	}
	return 3
}

// growOrganicDisk grows a connected region from seed by repeatedly
// adding a random frontier neighbor until it reaches targetSize cells
// or runs out of eligible frontier (small jitter comes from the
// randomized frontier pick, not a fixed ring shape).
func growOrganicDisk(rng *rand.Rand, g *grid.Grid, seed grid.Pos, targetSize int) []grid.Pos {
	region := []grid.Pos{seed}
	inRegion := map[grid.Pos]bool{seed: true}

	for len(region) < targetSize {
		var frontier []grid.Pos
		for _, p := range region {
			for _, n := range g.Neighbors(p.X, p.Y, false) {
				if inRegion[n] {
					continue
				}
				if distanceToNearestPath(g, n) < 2 {
					continue
				}
				if g.GetTile(n.X, n.Y) != grid.Empty {
					continue
				}
				frontier = append(frontier, n)
			}
		}
		if len(frontier) == 0 {
			break
		}
		next := frontier[rng.Intn(len(frontier))]
		region = append(region, next)
		inRegion[next] = true
	}
	return region
}

// forceCornerZones is the emergency fallback: claim a small block in
// each grid corner, in order, until enough zones exist.
func forceCornerZones(g *grid.Grid, need int) [][]grid.Pos {
	corners := []grid.Pos{
		{X: 0, Y: 0}, {X: g.W - 2, Y: 0}, {X: 0, Y: g.H - 2}, {X: g.W - 2, Y: g.H - 2},
	}
	var zones [][]grid.Pos
	for _, c := range corners {
		if len(zones) >= need {
			break
		}
		var zone []grid.Pos
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				p := grid.Pos{X: c.X + dx, Y: c.Y + dy}
				if g.GetTile(p.X, p.Y) == grid.Path || g.GetTile(p.X, p.Y) == grid.Spawn || g.GetTile(p.X, p.Y) == grid.Base {
					continue
				}
				g.SetTile(p.X, p.Y, grid.Buildable)
				zone = append(zone, p)
			}
		}
		if len(zone) > 0 {
			zones = append(zones, zone)
		}
	}
	return zones
}

// placeDecorations scatters theme-keyed decoration names on Empty
// cells at Manhattan distance >= 1 from any Path tile, scaled by
// density.
func placeDecorations(rng *rand.Rand, g *grid.Grid, theme Theme, density float64) map[grid.Pos]string {
	table := decorationTables[theme]
	if len(table) == 0 || density <= 0 {
		return map[grid.Pos]string{}
	}
	out := map[grid.Pos]string{}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			p := grid.Pos{X: x, Y: y}
			if g.GetTile(x, y) != grid.Empty {
				continue
			}
			if distanceToNearestPath(g, p) < 1 {
				continue
			}
			if rng.Float64() > density {
				continue
			}
			name := table[rng.Intn(len(table))]
			g.SetTile(x, y, grid.Decoration)
			out[p] = name
		}
	}
	return out
}
