package sim

import (
	"github.com/kikugo/steamdefense/enemy"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/tower"
)

// Snapshot assembles the read-only per-tick view, copying out of every
// subsystem's live state so a renderer never touches simulation
// internals directly: the core does not render, it exposes a frame
// snapshot.
func (s *SimulationLoop) Snapshot() Snapshot {
	towers := s.towers.Towers()
	enemies := s.enemies.Enemies()
	entities := make([]EntitySnapshot, 0, len(towers)+len(enemies))
	for _, t := range towers {
		entities = append(entities, EntitySnapshot{
			ID: t.ID, Kind: string(t.Kind), Position: t.Pos, HPRatio: 1,
			StatusFlags: towerStatusFlags(t),
		})
	}
	for _, e := range enemies {
		ratio := 0.0
		if e.Stats.MaxHP > 0 {
			ratio = e.CurrentHP / e.Stats.MaxHP
		}
		entities = append(entities, EntitySnapshot{
			ID: e.ID, Kind: string(e.Kind), Position: e.Pos, HPRatio: ratio,
			StatusFlags: enemyStatusFlags(e),
		})
	}

	projs := s.projectiles.Projectiles()
	projSnaps := make([]ProjectileSnapshot, 0, len(projs))
	for _, p := range projs {
		history := make([]grid.WorldPos, len(p.PositionHistory))
		copy(history, p.PositionHistory)
		projSnaps = append(projSnaps, ProjectileSnapshot{
			ID: p.ID, Kind: string(p.TowerKind), Position: p.Pos, Heading: p.Heading(), History: history,
		})
	}

	return Snapshot{
		GameTime:    s.gameTime,
		State:       s.State.Current,
		Score:       s.Economy.Score,
		Money:       s.Economy.Money,
		Lives:       s.Economy.Lives,
		WaveIndex:   s.WaveIndex(),
		Speed:       s.speedMultiplier,
		Entities:    entities,
		Projectiles: projSnaps,
		Effects:     s.tracker.snapshot(),
	}
}

func towerStatusFlags(t *tower.Tower) []string {
	var flags []string
	switch t.State {
	case tower.Constructing:
		flags = append(flags, "constructing")
	case tower.Firing:
		flags = append(flags, "firing")
	}
	return flags
}

func enemyStatusFlags(e *enemy.Enemy) []string {
	var flags []string
	if e.StunRemaining > 0 {
		flags = append(flags, "stunned")
	}
	if len(e.SpeedModifiers) > 0 {
		flags = append(flags, "slowed")
	}
	for _, dot := range e.DoTs {
		if dot.Type == enemy.Fire {
			flags = append(flags, "burning")
			break
		}
	}
	return flags
}
