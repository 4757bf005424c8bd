package sim

import (
	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/input"
)

// EntitySnapshot is one enemy or tower's read-only render view.
type EntitySnapshot struct {
	ID          entitystore.ID
	Kind        string
	Position    grid.WorldPos
	Facing      float64
	HasFacing   bool
	HPRatio     float64
	StatusFlags []string
}

// ProjectileSnapshot is one in-flight shot's read-only render view.
type ProjectileSnapshot struct {
	ID       entitystore.ID
	Kind     string
	Position grid.WorldPos
	Heading  float64
	History  []grid.WorldPos
}

// EffectSnapshot is one transient visual effect's read-only render
// view.
type EffectSnapshot struct {
	Kind     string
	Position grid.WorldPos
	Params   map[string]float64
	Elapsed  float64
	Total    float64
}

// Snapshot is the full read-only view of one tick's end state: game
// time, state, score, money, lives, wave index, speed, entities,
// projectiles, effects, and an optional camera hint. Consumers copy
// whatever fields they need; nothing here is safe to mutate.
type Snapshot struct {
	GameTime    float64
	State       input.GameState
	Score       int
	Money       int
	Lives       int
	WaveIndex   int
	Speed       float64
	Entities    []EntitySnapshot
	Projectiles []ProjectileSnapshot
	Effects     []EffectSnapshot
	CameraHint  *grid.WorldPos
}
