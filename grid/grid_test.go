package grid

import "testing"

func TestDefaultPropertiesByKind(t *testing.T) {
	g := New(4, 4, 32)
	g.SetTile(1, 1, Wall)
	if g.GetProperties(1, 1).Walkable {
		t.Fatal("wall should not be walkable")
	}
	g.SetTile(2, 2, Buildable)
	if !g.GetProperties(2, 2).Buildable {
		t.Fatal("buildable tile should be buildable")
	}
}

func TestOutOfBoundsReadsAreWall(t *testing.T) {
	g := New(4, 4, 32)
	if g.GetTile(-1, 0) != Wall {
		t.Fatal("expected Wall for out-of-bounds tile")
	}
	p := g.GetProperties(100, 100)
	if p.Walkable || p.Buildable {
		t.Fatal("out-of-bounds properties must be non-walkable, non-buildable")
	}
}

func TestOutOfBoundsWritesIgnored(t *testing.T) {
	g := New(2, 2, 32)
	g.SetTile(-1, -1, Path) // must not panic or grow the grid
	if g.W != 2 || g.H != 2 {
		t.Fatal("grid dimensions changed on out-of-bounds write")
	}
}

func TestCoordinateTransformIsTileCenter(t *testing.T) {
	g := New(4, 4, 32)
	w := g.GridToWorldCenter(Pos{X: 2, Y: 3})
	if w.X != 2*32+16 || w.Y != 3*32+16 {
		t.Fatalf("unexpected world center: %+v", w)
	}
	back := g.WorldToGrid(w)
	if back.X != 2 || back.Y != 3 {
		t.Fatalf("round trip failed: %+v", back)
	}
}

func TestFloodFillNoOpWhenTargetEqualsReplacement(t *testing.T) {
	g := New(3, 3, 32)
	n := g.FloodFill(Pos{0, 0}, Empty, Empty)
	if n != 0 {
		t.Fatalf("expected no-op flood fill, got %d replacements", n)
	}
}

func TestFloodFillReplacesConnectedRegion(t *testing.T) {
	g := New(3, 3, 32)
	// whole grid is Empty by default; flood fill should hit all 9 tiles.
	n := g.FloodFill(Pos{1, 1}, Empty, Decoration)
	if n != 9 {
		t.Fatalf("expected 9 replacements, got %d", n)
	}
	for _, p := range g.TilesOfKind(Decoration) {
		_ = p
	}
	if len(g.TilesOfKind(Empty)) != 0 {
		t.Fatal("expected no Empty tiles left")
	}
}

func TestWalkableMaskRebuildsAfterSetTile(t *testing.T) {
	g := New(3, 3, 32)
	mask := g.WalkableMask()
	if !mask[0] {
		t.Fatal("empty tile should be walkable by default")
	}
	g.SetTile(0, 0, Wall)
	mask = g.WalkableMask()
	if mask[0] {
		t.Fatal("mask should reflect Wall after SetTile invalidation")
	}
}

func TestRoundTripToDictFromDict(t *testing.T) {
	g := New(3, 2, 32)
	g.SetTile(1, 0, Spawn)
	g.SetTile(2, 1, Base)
	d := g.ToDict()
	g2, err := FromDict(d)
	if err != nil {
		t.Fatal(err)
	}
	if g2.GetTile(1, 0) != Spawn || g2.GetTile(2, 1) != Base {
		t.Fatal("round trip lost tile kinds")
	}
}

func TestTilesInRadius(t *testing.T) {
	g := New(5, 5, 32)
	tiles := g.TilesInRadius(2, 2, 1)
	// Euclidean radius 1 around center: center + 4 cardinal neighbors.
	if len(tiles) != 5 {
		t.Fatalf("expected 5 tiles, got %d", len(tiles))
	}
}
