package effect

import (
	"testing"

	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/enemy"
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/projectile"
	"github.com/kikugo/steamdefense/tower"
)

func spawnEnemy(store *entitystore.Store, id entitystore.ID, pos grid.WorldPos, g *grid.Grid) *enemy.Enemy {
	stats := enemy.DefaultStatsTable()[enemy.SteamSoldier]
	e := enemy.NewEnemy(id, enemy.SteamSoldier, stats, 1.0, []grid.Pos{{X: 0, Y: 0}}, g)
	e.Pos = pos
	e.State = enemy.Moving
	store.QueueAdd(e, "enemy", string(enemy.SteamSoldier))
	store.ApplyPending()
	return e
}

func TestOnImpactDamagesDirectTarget(t *testing.T) {
	g := grid.New(4, 4, 32)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	New(store, bus)

	e := spawnEnemy(store, 1, grid.WorldPos{X: 0, Y: 0}, g)
	startHP := e.CurrentHP

	bus.Emit(eventbus.EmitOptions{Kind: "ProjectileImpact", Immediate: true, Payload: projectile.Impact{
		TargetID: e.ID, HasTarget: true, Position: e.Pos, Damage: 30, TowerKind: tower.SteamCannon,
	}})

	if e.CurrentHP >= startHP {
		t.Fatalf("expected direct-target impact to reduce HP, got %v (was %v)", e.CurrentHP, startHP)
	}
}

func TestOnImpactAreaDamageHitsEveryoneInRadius(t *testing.T) {
	g := grid.New(4, 4, 32)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	New(store, bus)

	near := spawnEnemy(store, 1, grid.WorldPos{X: 10, Y: 0}, g)
	far := spawnEnemy(store, 2, grid.WorldPos{X: 1000, Y: 0}, g)
	nearHP, farHP := near.CurrentHP, far.CurrentHP

	bus.Emit(eventbus.EmitOptions{Kind: "ProjectileImpact", Immediate: true, Payload: projectile.Impact{
		Position: grid.WorldPos{X: 0, Y: 0}, Damage: 40, AreaDamage: true, AreaRadius: 48, TowerKind: tower.CryoSteam,
	}})

	if near.CurrentHP >= nearHP {
		t.Fatal("expected enemy within the blast radius to take damage")
	}
	if far.CurrentHP != farHP {
		t.Fatal("expected enemy outside the blast radius to be untouched")
	}
}

func TestOnImpactFallsBackToClosestLiveEnemyWithoutDirectTarget(t *testing.T) {
	g := grid.New(4, 4, 32)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	New(store, bus)

	e := spawnEnemy(store, 1, grid.WorldPos{X: 5, Y: 0}, g)
	startHP := e.CurrentHP

	// No TargetID/HasTarget set — resolver must fall back to the
	// closest live enemy within singleTargetRadius of the impact point.
	bus.Emit(eventbus.EmitOptions{Kind: "ProjectileImpact", Immediate: true, Payload: projectile.Impact{
		Position: grid.WorldPos{X: 0, Y: 0}, Damage: 25, TowerKind: tower.SteamCannon,
	}})

	if e.CurrentHP >= startHP {
		t.Fatal("expected the fallback closest-enemy search to apply damage")
	}
}

func TestOnImpactAppliesSlowAndStun(t *testing.T) {
	g := grid.New(4, 4, 32)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	New(store, bus)

	e := spawnEnemy(store, 1, grid.WorldPos{X: 0, Y: 0}, g)

	bus.Emit(eventbus.EmitOptions{Kind: "ProjectileImpact", Immediate: true, Payload: projectile.Impact{
		TargetID: e.ID, HasTarget: true, Position: e.Pos, Damage: 10, TowerKind: tower.CryoSteam,
		SlowMult: 0.5, SlowDuration: 3, StunDuration: 1,
	}})

	if len(e.SpeedModifiers) == 0 {
		t.Fatal("expected a slow modifier to be applied")
	}
	if e.StunRemaining <= 0 {
		t.Fatal("expected stun to be applied")
	}
}

func TestOnExplosionAppliesPhysicalAreaDamage(t *testing.T) {
	g := grid.New(4, 4, 32)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	New(store, bus)

	e := spawnEnemy(store, 1, grid.WorldPos{X: 20, Y: 0}, g)
	startHP := e.CurrentHP

	bus.Emit(eventbus.EmitOptions{Kind: "EnemyExplosion", Immediate: true, Payload: map[string]interface{}{
		"position": grid.WorldPos{X: 0, Y: 0}, "damage": 60.0, "radius": 48.0,
	}})

	if e.CurrentHP >= startHP {
		t.Fatal("expected explosion to apply area damage to a nearby enemy")
	}
}

func TestOnIntentDamagesEachHit(t *testing.T) {
	g := grid.New(4, 4, 32)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	New(store, bus)

	e1 := spawnEnemy(store, 1, grid.WorldPos{X: 0, Y: 0}, g)
	e2 := spawnEnemy(store, 2, grid.WorldPos{X: 10, Y: 0}, g)
	hp1, hp2 := e1.CurrentHP, e2.CurrentHP

	bus.Emit(eventbus.EmitOptions{Kind: "AttackIntent", Immediate: true, Payload: tower.AttackIntent{
		Hits: []tower.IntentHit{
			{TargetID: e1.ID, Damage: 80, DamageType: "electric"},
			{TargetID: e2.ID, Damage: 64, DamageType: "electric"},
		},
	}})

	if e1.CurrentHP >= hp1 || e2.CurrentHP >= hp2 {
		t.Fatal("expected every hit in the intent to apply damage")
	}
}
