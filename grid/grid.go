// Package grid implements the tile grid and map model: storage,
// spatial queries, and the world<->grid coordinate transforms every
// other subsystem builds on.
package grid

import "fmt"

// Kind is one tile's terrain kind.
type Kind uint8

const (
	Empty Kind = iota
	Path
	Wall
	Spawn
	Base
	Decoration
	Buildable
	Water
	Bridge
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case Path:
		return "Path"
	case Wall:
		return "Wall"
	case Spawn:
		return "Spawn"
	case Base:
		return "Base"
	case Decoration:
		return "Decoration"
	case Buildable:
		return "Buildable"
	case Water:
		return "Water"
	case Bridge:
		return "Bridge"
	default:
		return "Unknown"
	}
}

// Pos is a grid (tile) coordinate.
type Pos struct {
	X, Y int
}

// WorldPos is a world-space coordinate, in world units.
type WorldPos struct {
	X, Y float64
}

// Properties holds one tile's full state. Kind drives the defaults
// for Walkable/Buildable/MovementCost unless the caller overrides them
// via SetProperties.
type Properties struct {
	Kind         Kind
	Walkable     bool
	Buildable    bool
	MovementCost float64 // math.Inf(1) for blocked
	Elevation    float64
	Variant      uint8
}

// defaultProperties derives the default walkability/buildability/cost
// rule from a tile kind.
func defaultProperties(k Kind) Properties {
	p := Properties{Kind: k, MovementCost: 1.0}
	switch k {
	case Empty, Path, Spawn, Base, Decoration, Buildable, Bridge:
		p.Walkable = true
	case Wall:
		p.Walkable = false
		p.MovementCost = infCost
	case Water:
		p.Walkable = false // only crossable with Constraints.CanCrossWater
		p.MovementCost = 1.5
	}
	switch k {
	case Buildable, Empty:
		p.Buildable = true
	}
	return p
}

const infCost = 1e18 // stands in for +Inf while staying JSON-round-trippable

// wallTile is what out-of-bounds reads return.
var wallTile = Properties{Kind: Wall, Walkable: false, Buildable: false, MovementCost: infCost}

// Grid is a W x H array of tiles plus lazily rebuilt walkable/buildable
// bitmasks.
type Grid struct {
	W, H     int
	TileSize float64
	tiles    []Properties

	masksValid  bool
	walkMask    []bool
	buildMask   []bool
}

// New builds an empty grid of the given size, every tile Empty.
func New(w, h int, tileSize float64) *Grid {
	g := &Grid{W: w, H: h, TileSize: tileSize, tiles: make([]Properties, w*h)}
	for i := range g.tiles {
		g.tiles[i] = defaultProperties(Empty)
	}
	return g
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

func (g *Grid) index(x, y int) int { return y*g.W + x }

// GetTile returns the tile kind at (x,y); out-of-bounds reads behave
// like a Wall.
func (g *Grid) GetTile(x, y int) Kind {
	if !g.inBounds(x, y) {
		return Wall
	}
	return g.tiles[g.index(x, y)].Kind
}

// SetTile sets the tile kind at (x,y) and resets its properties to the
// kind's defaults. Out-of-bounds writes are silently ignored;
// invalidates the cached masks lazily.
func (g *Grid) SetTile(x, y int, k Kind) {
	if !g.inBounds(x, y) {
		return
	}
	g.tiles[g.index(x, y)] = defaultProperties(k)
	g.masksValid = false
}

// GetProperties returns the full property block at (x,y); out of
// bounds returns a Wall-equivalent block.
func (g *Grid) GetProperties(x, y int) Properties {
	if !g.inBounds(x, y) {
		return wallTile
	}
	return g.tiles[g.index(x, y)]
}

// SetProperties overrides the property block at (x,y), e.g. for
// elevation or a custom movement cost. Out-of-bounds writes are
// ignored.
func (g *Grid) SetProperties(x, y int, p Properties) {
	if !g.inBounds(x, y) {
		return
	}
	g.tiles[g.index(x, y)] = p
	g.masksValid = false
}

// WorldToGrid converts a world coordinate to its containing tile.
func (g *Grid) WorldToGrid(w WorldPos) Pos {
	return Pos{X: int(w.X / g.TileSize), Y: int(w.Y / g.TileSize)}
}

// GridToWorldCenter returns the world-space center of a tile (I5).
func (g *Grid) GridToWorldCenter(p Pos) WorldPos {
	return WorldPos{
		X: float64(p.X)*g.TileSize + g.TileSize/2,
		Y: float64(p.Y)*g.TileSize + g.TileSize/2,
	}
}

// GridToWorldCorner returns the world-space top-left corner of a tile.
func (g *Grid) GridToWorldCorner(p Pos) WorldPos {
	return WorldPos{X: float64(p.X) * g.TileSize, Y: float64(p.Y) * g.TileSize}
}

var fourDirs = []Pos{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
var diagDirs = []Pos{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// Neighbors returns the in-bounds neighbor cells of (x,y); diagonal
// neighbors are included only when diagonal is true.
func (g *Grid) Neighbors(x, y int, diagonal bool) []Pos {
	dirs := fourDirs
	if diagonal {
		dirs = append(append([]Pos{}, fourDirs...), diagDirs...)
	}
	out := make([]Pos, 0, len(dirs))
	for _, d := range dirs {
		nx, ny := x+d.X, y+d.Y
		if g.inBounds(nx, ny) {
			out = append(out, Pos{X: nx, Y: ny})
		}
	}
	return out
}

// WalkableNeighbors is Neighbors filtered to walkable tiles.
func (g *Grid) WalkableNeighbors(x, y int, diagonal bool) []Pos {
	all := g.Neighbors(x, y, diagonal)
	out := all[:0:0]
	for _, p := range all {
		if g.GetProperties(p.X, p.Y).Walkable {
			out = append(out, p)
		}
	}
	return out
}

// TilesInRadius returns every in-bounds tile within Euclidean radius r
// of (cx,cy), inclusive.
func (g *Grid) TilesInRadius(cx, cy, r int) []Pos {
	var out []Pos
	r2 := r * r
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if !g.inBounds(x, y) {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				out = append(out, Pos{X: x, Y: y})
			}
		}
	}
	return out
}

// TilesOfKind scans the grid for every tile matching k. O(W*H); callers
// needing this on a hot path should cache the result themselves.
func (g *Grid) TilesOfKind(k Kind) []Pos {
	var out []Pos
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.tiles[g.index(x, y)].Kind == k {
				out = append(out, Pos{X: x, Y: y})
			}
		}
	}
	return out
}

// FloodFill replaces every target_kind tile reachable (4-connected)
// from start with replacement_kind, iteratively (no recursion), and
// returns the count replaced. No-op if start is invalid, the start
// tile isn't target_kind, or target==replacement.
func (g *Grid) FloodFill(start Pos, target, replacement Kind) int {
	if target == replacement || !g.inBounds(start.X, start.Y) {
		return 0
	}
	if g.GetTile(start.X, start.Y) != target {
		return 0
	}
	stack := []Pos{start}
	visited := map[Pos]bool{start: true}
	count := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if g.GetTile(p.X, p.Y) != target {
			continue
		}
		g.SetTile(p.X, p.Y, replacement)
		count++
		for _, n := range g.Neighbors(p.X, p.Y, false) {
			if !visited[n] && g.GetTile(n.X, n.Y) == target {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return count
}

func (g *Grid) rebuildMasks() {
	if g.masksValid {
		return
	}
	g.walkMask = make([]bool, g.W*g.H)
	g.buildMask = make([]bool, g.W*g.H)
	for i, t := range g.tiles {
		g.walkMask[i] = t.Walkable
		g.buildMask[i] = t.Buildable
	}
	g.masksValid = true
}

// WalkableMask returns a W*H row-major bool matrix, rebuilt lazily and
// amortized across queries.
func (g *Grid) WalkableMask() []bool {
	g.rebuildMasks()
	out := make([]bool, len(g.walkMask))
	copy(out, g.walkMask)
	return out
}

// BuildableMask mirrors WalkableMask for the buildable flag.
func (g *Grid) BuildableMask() []bool {
	g.rebuildMasks()
	out := make([]bool, len(g.buildMask))
	copy(out, g.buildMask)
	return out
}

// Dict is the JSON-round-trippable shape of a Grid (R1).
type Dict struct {
	W        int          `json:"w"`
	H        int          `json:"h"`
	TileSize float64      `json:"tile_size"`
	Tiles    []Properties `json:"tiles"`
}

// ToDict snapshots the grid for serialization.
func (g *Grid) ToDict() Dict {
	tiles := make([]Properties, len(g.tiles))
	copy(tiles, g.tiles)
	return Dict{W: g.W, H: g.H, TileSize: g.TileSize, Tiles: tiles}
}

// FromDict rebuilds a Grid from a Dict previously produced by ToDict.
func FromDict(d Dict) (*Grid, error) {
	if d.W <= 0 || d.H <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", d.W, d.H)
	}
	if len(d.Tiles) != d.W*d.H {
		return nil, fmt.Errorf("grid: tile count %d does not match %dx%d", len(d.Tiles), d.W, d.H)
	}
	g := &Grid{W: d.W, H: d.H, TileSize: d.TileSize, tiles: make([]Properties, len(d.Tiles))}
	copy(g.tiles, d.Tiles)
	return g, nil
}
