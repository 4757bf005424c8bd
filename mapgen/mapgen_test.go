package mapgen

import (
	"reflect"
	"testing"

	"github.com/kikugo/steamdefense/grid"
)

func testParams(seed int64) Params {
	return Params{
		Width:             24,
		Height:            16,
		TileSize:          32,
		Seed:              seed,
		Theme:             IndustrialFactory,
		PathComplexity:    0.3,
		PathWidth:         1,
		BranchCount:       2,
		BranchLength:      4,
		MinPlacementAreas: 4,
		PlacementAreaSize: 6,
		DecorationDensity: 0.1,
	}
}

func TestGenerateIsDeterministicForSameSeed(t *testing.T) {
	a, err := Generate(testParams(12345))
	if err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	b, err := Generate(testParams(12345))
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}
	if !reflect.DeepEqual(a.Grid.ToDict(), b.Grid.ToDict()) {
		t.Fatal("same seed produced different grids")
	}
	if a.Spawn != b.Spawn || a.Base != b.Base {
		t.Fatal("same seed produced different endpoints")
	}
}

func TestGenerateProducesExactlyOneSpawnAndBase(t *testing.T) {
	r, err := Generate(testParams(7))
	if err != nil {
		t.Fatal(err)
	}
	spawns := r.Grid.TilesOfKind(grid.Spawn)
	bases := r.Grid.TilesOfKind(grid.Base)
	if len(spawns) != 1 {
		t.Fatalf("expected exactly 1 Spawn tile, got %d", len(spawns))
	}
	if len(bases) != 1 {
		t.Fatalf("expected exactly 1 Base tile, got %d", len(bases))
	}
}

func TestGenerateSpawnAndBaseAreReachable(t *testing.T) {
	r, err := Generate(testParams(99))
	if err != nil {
		t.Fatal(err)
	}
	if !reachable(r.Grid, r.Spawn, r.Base) {
		t.Fatal("spawn must reach base")
	}
}

func TestGenerateMeetsMinimumPlacementAreas(t *testing.T) {
	p := testParams(42)
	r, err := Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.PlacementZones) < p.MinPlacementAreas {
		t.Fatalf("expected at least %d placement zones, including corner fallback, got %d", p.MinPlacementAreas, len(r.PlacementZones))
	}
	for _, z := range r.PlacementZones {
		if len(z) < minZoneSize {
			t.Fatalf("zone %v smaller than minimum size %d", z, minZoneSize)
		}
	}
}

func TestGenerateRejectsNonPositiveDimensions(t *testing.T) {
	p := testParams(1)
	p.Width = 0
	if _, err := Generate(p); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestDifferentSeedsTypicallyDiffer(t *testing.T) {
	a, err := Generate(testParams(1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(testParams(2))
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Grid.ToDict(), b.Grid.ToDict()) {
		t.Fatal("different seeds produced identical grids")
	}
}
