// Package tower implements tower stat blocks, the upgrade tree,
// targeting modes, cooldown/fire logic, and per-kind fire dispatch.
package tower

import (
	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/grid"
)

// Kind enumerates the placeable tower types.
type Kind string

const (
	SteamCannon     Kind = "SteamCannon"
	AntiAir         Kind = "AntiAir"
	BronzeMortar    Kind = "BronzeMortar"
	SniperMecha     Kind = "SniperMecha"
	LightningTower  Kind = "LightningTower"
	FlameThrower    Kind = "FlameThrower"
	CryoSteam       Kind = "CryoSteam"
	MineLayer       Kind = "MineLayer"
	ShieldGenerator Kind = "ShieldGenerator"
)

// TargetingMode selects which enemy a tower acquires.
type TargetingMode string

const (
	First         TargetingMode = "First"
	Last          TargetingMode = "Last"
	Closest       TargetingMode = "Closest"
	Strongest     TargetingMode = "Strongest"
	Weakest       TargetingMode = "Weakest"
	FlyingPriority TargetingMode = "FlyingPriority"
)

// Stats is the immutable per-kind, per-level-1 base stat block.
type Stats struct {
	Cost            float64
	Damage          float64
	Range           float64
	AttackSpeed float64 // shots per second; cooldown = 1/AttackSpeed
	ProjectileSpeed float64
	AreaDamage      bool
	AreaRadius      float64
	Pierce          int
	Chain           int
	CanTargetGround bool
	CanTargetAir    bool
	SlowMult        float64
	SlowDuration    float64
	StunDuration    float64
	BurnDPS         float64
	BurnDuration    float64
}

// DefaultStatsTable supplies a base stat block per kind: SteamCannon
// costs 50 with damage 120, range 96, attack_speed 0.8; LightningTower
// chains at base damage 80.
func DefaultStatsTable() map[Kind]Stats {
	return map[Kind]Stats{
		SteamCannon: {
			Cost: 50, Damage: 120, Range: 96, AttackSpeed: 0.8, ProjectileSpeed: 220,
			CanTargetGround: true,
		},
		AntiAir: {
			Cost: 65, Damage: 70, Range: 110, AttackSpeed: 1.2, ProjectileSpeed: 260,
			CanTargetAir: true,
		},
		BronzeMortar: {
			Cost: 90, Damage: 90, Range: 130, AttackSpeed: 0.5, ProjectileSpeed: 160,
			AreaDamage: true, AreaRadius: 32, CanTargetGround: true,
		},
		SniperMecha: {
			Cost: 110, Damage: 220, Range: 200, AttackSpeed: 0.4, ProjectileSpeed: 400,
			Pierce: 1, CanTargetGround: true, CanTargetAir: true,
		},
		LightningTower: {
			Cost: 80, Damage: 80, Range: 90, AttackSpeed: 1.0, Chain: 2,
			StunDuration: 2.0, CanTargetGround: true, CanTargetAir: true,
		},
		FlameThrower: {
			Cost: 70, Damage: 18, Range: 56, AttackSpeed: 4.0, AreaDamage: true, AreaRadius: 56,
			BurnDPS: 12, BurnDuration: 3.0, CanTargetGround: true,
		},
		CryoSteam: {
			Cost: 75, Damage: 15, Range: 70, AttackSpeed: 1.0, AreaDamage: true, AreaRadius: 48,
			SlowMult: 0.5, SlowDuration: 2.5, CanTargetGround: true, CanTargetAir: true,
		},
		MineLayer: {
			Cost: 60, Damage: 100, Range: 0, AttackSpeed: 0, AreaDamage: true, AreaRadius: 40,
			CanTargetGround: true,
		},
		ShieldGenerator: {
			Cost: 55, Range: 0, AttackSpeed: 0,
		},
	}
}

// upgradeCostMultipliers are applied to base_cost.
var upgradeCostMultipliers = []float64{0.5, 0.75, 1.0, 1.5}

const maxLevel = 5
const sellRefundRatio = 0.7
const constructionDuration = 2.0
const scanInterval = 0.1

// State is the tower lifecycle state.
type State string

const (
	Constructing State = "Constructing"
	Idle         State = "Idle"
	Firing       State = "Firing"
)

// Tower is one placed tower.
type Tower struct {
	ID   entitystore.ID
	Kind Kind
	Pos  grid.WorldPos
	Sold bool

	Base  Stats
	Level int

	CooldownRemaining     float64
	Target                entitystore.ID
	HasTarget             bool
	TargetingMode         TargetingMode
	ConstructionRemaining float64
	MuzzleFlashTimer      float64
	State                 State

	scanTimer     float64
	totalInvested float64
}

// EntityID satisfies entitystore.Entity.
func (t *Tower) EntityID() entitystore.ID { return t.ID }

// Position satisfies entitystore.Entity.
func (t *Tower) Position() grid.WorldPos { return t.Pos }

// Alive reports true for the lifetime of a placed, unsold tower.
func (t *Tower) Alive() bool { return !t.Sold }

// NewTower places a tower at pos with the given base stats.
func NewTower(id entitystore.ID, kind Kind, pos grid.WorldPos, base Stats, mode TargetingMode) *Tower {
	return &Tower{
		ID: id, Kind: kind, Pos: pos, Base: base, Level: 1,
		TargetingMode:         mode,
		ConstructionRemaining: constructionDuration,
		State:                 Constructing,
		totalInvested:         base.Cost,
	}
}

// CurrentStats derives level-scaled stats from Base and Level using
// the upgrade formula: each level above 1 adds 25% damage, 10%
// range/area, and 15% attack speed over the base value. The scaling
// is additive over levels, not compounding: level 3 is 1+2*0.25 = 1.5x
// damage, not 1.25 squared. Level 3+ raises pierce to at least 1.
func (t *Tower) CurrentStats() Stats {
	s := t.Base
	steps := float64(t.Level - 1)
	if steps > 0 {
		s.Damage = t.Base.Damage * (1 + steps*0.25)
		s.Range = t.Base.Range * (1 + steps*0.10)
		s.AreaRadius = t.Base.AreaRadius * (1 + steps*0.10)
		s.AttackSpeed = t.Base.AttackSpeed * (1 + steps*0.15)
	}
	if t.Level >= 3 {
		if s.Pierce < 1 {
			s.Pierce = 1
		}
	}
	if t.Level >= 5 {
		if s.Chain < 2 {
			s.Chain = 2
		}
		s.AreaRadius *= 1.5
	}
	return s
}

// UpgradeCost returns the cost of upgrading from the current level to
// the next, or (0, false) if already at max level.
func (t *Tower) UpgradeCost() (float64, bool) {
	if t.Level >= maxLevel {
		return 0, false
	}
	idx := t.Level - 1
	if idx >= len(upgradeCostMultipliers) {
		idx = len(upgradeCostMultipliers) - 1
	}
	return upgradeCostMultipliers[idx] * t.Base.Cost, true
}

// Upgrade advances Level by one and records the spend for the sell
// refund calculation. Callers must check UpgradeCost/affordability
// first.
func (t *Tower) Upgrade() {
	cost, ok := t.UpgradeCost()
	if !ok {
		return
	}
	t.Level++
	t.totalInvested += cost
}

// SellRefund returns 0.7 * total invested.
func (t *Tower) SellRefund() float64 {
	return sellRefundRatio * t.totalInvested
}

// Tick advances construction and cooldown timers; a Firing tower
// returns to Idle once its muzzle flash has elapsed.
func (t *Tower) Tick(dt float64) {
	if t.ConstructionRemaining > 0 {
		t.ConstructionRemaining -= dt
		if t.ConstructionRemaining <= 0 {
			t.ConstructionRemaining = 0
			t.State = Idle
		}
		return
	}
	if t.CooldownRemaining > 0 {
		t.CooldownRemaining -= dt
		if t.CooldownRemaining < 0 {
			t.CooldownRemaining = 0
		}
	}
	if t.MuzzleFlashTimer > 0 {
		t.MuzzleFlashTimer -= dt
		if t.MuzzleFlashTimer <= 0 && t.State == Firing {
			t.State = Idle
		}
	}
	t.scanTimer -= dt
}

// ReadyToScan reports whether scan_interval has elapsed, resetting the
// timer if so.
func (t *Tower) ReadyToScan() bool {
	if t.ConstructionRemaining > 0 {
		return false
	}
	if t.scanTimer > 0 {
		return false
	}
	t.scanTimer = scanInterval
	return true
}

// ReadyToFire reports whether cooldown has elapsed and a target is
// set.
func (t *Tower) ReadyToFire() bool {
	return t.ConstructionRemaining <= 0 && t.CooldownRemaining <= 0 && t.HasTarget
}

// Fire resets the cooldown to 1/attack_speed and marks the transient
// Firing state.
func (t *Tower) Fire() {
	speed := t.CurrentStats().AttackSpeed
	if speed <= 0 {
		t.CooldownRemaining = 0
		return
	}
	t.CooldownRemaining = 1 / speed
	t.MuzzleFlashTimer = 0.1
	t.State = Firing
}
