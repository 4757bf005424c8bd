// Package enemy implements the enemy stat blocks, runtime state
// machine, movement, status effects, and damage formula for the
// seven playable enemy kinds, each with its own special behaviors.
package enemy

import (
	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/grid"
)

// Kind enumerates the playable enemy types.
type Kind string

const (
	SteamSoldier   Kind = "SteamSoldier"
	SkyZeppelin    Kind = "SkyZeppelin"
	SteamTank      Kind = "SteamTank"
	LightningDrone Kind = "LightningDrone"
	SteelSpider    Kind = "SteelSpider"
	IronGolem      Kind = "IronGolem"
	CyberSurvivor  Kind = "CyberSurvivor"
)

// DamageType tags a source of damage for resistance lookups.
type DamageType string

const (
	Physical DamageType = "physical"
	Fire     DamageType = "fire"
	Electric DamageType = "electric"
	Ice      DamageType = "ice"
)

// Resistances maps each damage type to a reduction fraction in [0,1].
type Resistances map[DamageType]float64

// Stats is the immutable per-kind stat block.
type Stats struct {
	MaxHP            float64
	BaseSpeed float64 // world units / second
	Armor            float64
	Reward           int
	Resistances      Resistances
	IsFlying         bool
	CanRegenerate    bool
	ExplosionDamage  float64
	ExplosionRadius  float64
}

// DefaultStatsTable is the baseline stat table every config layer
// overrides on top of: SteamSoldier rewards 10 at 60 world units/s of
// base speed, with the rest of the table following the same relative
// power curve.
func DefaultStatsTable() map[Kind]Stats {
	return map[Kind]Stats{
		SteamSoldier: {
			MaxHP: 100, BaseSpeed: 60, Armor: 0, Reward: 10,
			Resistances: Resistances{Physical: 0, Fire: 0, Electric: 0, Ice: 0},
		},
		SkyZeppelin: {
			MaxHP: 140, BaseSpeed: 45, Armor: 0, Reward: 18, IsFlying: true,
			Resistances: Resistances{Physical: 0, Fire: 0.1, Electric: 0, Ice: 0},
		},
		SteamTank: {
			MaxHP: 420, BaseSpeed: 28, Armor: 8, Reward: 35,
			Resistances:     Resistances{Physical: 0.2, Fire: 0, Electric: 0, Ice: 0},
			ExplosionDamage: 60, ExplosionRadius: 48,
		},
		LightningDrone: {
			MaxHP: 90, BaseSpeed: 70, Armor: 0, Reward: 14, IsFlying: true,
			Resistances: Resistances{Physical: 0, Fire: 0, Electric: 0.5, Ice: 0},
		},
		SteelSpider: {
			MaxHP: 160, BaseSpeed: 55, Armor: 4, Reward: 20,
			Resistances: Resistances{Physical: 0.1, Fire: 0, Electric: 0, Ice: 0},
		},
		IronGolem: {
			MaxHP: 500, BaseSpeed: 22, Armor: 10, Reward: 40, CanRegenerate: true,
			Resistances: Resistances{Physical: 0.25, Fire: 0, Electric: 0, Ice: 0.1},
		},
		CyberSurvivor: {
			MaxHP: 220, BaseSpeed: 50, Armor: 2, Reward: 28,
			Resistances: Resistances{Physical: 0.1, Fire: 0.1, Electric: 0.1, Ice: 0.1},
		},
	}
}

// State is the enemy lifecycle state.
type State string

const (
	Spawning State = "Spawning"
	Moving   State = "Moving"
	Attacking State = "Attacking"
	Dying    State = "Dying"
	Dead     State = "Dead"
)

// SpeedModifier is a timed multiplicative speed change (a slow, a
// freeze, or a buff), identified by source so stacking rules can tell
// independent sources apart.
type SpeedModifier struct {
	Multiplier float64
	Remaining  float64
	Source     string
}

// DoT is a damage-over-time tick source.
type DoT struct {
	DPS        float64
	Remaining  float64
	TickPhase float64 // seconds into the current 1.0s tick window
	Type       DamageType
}

// Enemy is one spawned unit.
type Enemy struct {
	ID    entitystore.ID
	Kind  Kind
	Stats Stats

	CurrentHP float64
	Pos       grid.WorldPos
	Path      []grid.Pos
	PathIndex int
	ReachedEnd bool

	SpeedModifiers []SpeedModifier
	StunRemaining  float64
	DoTs           []DoT

	DamageFlashTimer float64
	SpawnAnimTimer   float64
	State            State

	regenTimer  float64
	rerollTimer float64
}

// EntityID satisfies entitystore.Entity.
func (e *Enemy) EntityID() entitystore.ID { return e.ID }

// Position satisfies entitystore.Entity.
func (e *Enemy) Position() grid.WorldPos { return e.Pos }

// Alive satisfies entitystore.Entity.
func (e *Enemy) Alive() bool { return e.State != Dead }

// NewEnemy constructs a spawning enemy at the first path tile. HP and
// reward scale linearly with levelMultiplier; speed scales by
// min(1.5, 1+0.3*(mult-1)) so high waves get tougher without becoming
// untargetable blurs.
func NewEnemy(id entitystore.ID, kind Kind, base Stats, levelMultiplier float64, path []grid.Pos, g *grid.Grid) *Enemy {
	scaled := base
	scaled.MaxHP = base.MaxHP * levelMultiplier
	scaled.Reward = int(float64(base.Reward) * levelMultiplier)
	speedMult := 1 + 0.3*(levelMultiplier-1)
	if speedMult > 1.5 {
		speedMult = 1.5
	}
	scaled.BaseSpeed = base.BaseSpeed * speedMult

	e := &Enemy{
		ID:        id,
		Kind:      kind,
		Stats:     scaled,
		CurrentHP: scaled.MaxHP,
		Path:      path,
		PathIndex: 0,
		State:     Spawning,
	}
	if len(path) > 0 {
		e.Pos = g.GridToWorldCenter(path[0])
	}
	if scaled.MaxHP <= 0 {
		e.CurrentHP = 0
		e.State = Dying
	}
	return e
}

// DistanceTraveled is the path-index-weighted progress used by
// targeting modes First/Last/FlyingPriority; higher
// means further along toward the base.
func (e *Enemy) DistanceTraveled() float64 {
	return float64(e.PathIndex)
}

// EffectiveSpeed folds every active speed modifier into base_speed,
// multiplicatively: multiple slows stack and the combined product is
// floored at 0.1.
func (e *Enemy) EffectiveSpeed() float64 {
	product := 1.0
	for _, m := range e.SpeedModifiers {
		product *= m.Multiplier
	}
	if product < 0.1 {
		product = 0.1
	}
	return e.Stats.BaseSpeed * product
}

// ApplyDamage resolves resistance, floor-at-1, then armor:
// effective = damage * (1 - resistance), floored at 1 pre-armor, then
// final = max(1, effective - armor). Armor applies once per hit
// regardless of how many damage types are folded in.
func (e *Enemy) ApplyDamage(amount float64, dtype DamageType) float64 {
	if amount <= 0 {
		return 0
	}
	resistance := e.Stats.Resistances[dtype]
	effective := amount * (1 - resistance)
	if effective < 1 {
		effective = 1
	}
	final := effective - e.Stats.Armor
	if final < 1 {
		final = 1
	}
	e.CurrentHP -= final
	if e.CurrentHP < 0 {
		e.CurrentHP = 0
	}
	e.DamageFlashTimer = 0.15
	return final
}

// ApplySlow stacks a new slow modifier; multiple slows compound
// multiplicatively through EffectiveSpeed, which floors the combined
// product at 0.1.
func (e *Enemy) ApplySlow(multiplier, duration float64, source string) {
	e.SpeedModifiers = append(e.SpeedModifiers, SpeedModifier{Multiplier: multiplier, Remaining: duration, Source: source})
}

// ApplyStun sets stun_remaining to the max of current and d.
func (e *Enemy) ApplyStun(d float64) {
	if d > e.StunRemaining {
		e.StunRemaining = d
	}
}

// ApplyBurn appends a fire DoT.
func (e *Enemy) ApplyBurn(dps, duration float64) {
	e.DoTs = append(e.DoTs, DoT{DPS: dps, Remaining: duration, Type: Fire})
}

// ApplyFreeze is a specialized slow with m=0.1.
func (e *Enemy) ApplyFreeze(duration float64) {
	e.ApplySlow(0.1, duration, "freeze")
}
