package enemy

import (
	"math/rand"
	"testing"

	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
)

func straightPath(g *grid.Grid) []grid.Pos {
	var path []grid.Pos
	for x := 0; x < g.W; x++ {
		path = append(path, grid.Pos{X: x, Y: 0})
	}
	return path
}

func TestApplyDamageFloorsAtOneThenSubtractsArmor(t *testing.T) {
	e := &Enemy{Stats: Stats{MaxHP: 100, Armor: 5, Resistances: Resistances{Physical: 0.5}}, CurrentHP: 100}
	dealt := e.ApplyDamage(10, Physical)
	// effective = 10*(1-0.5) = 5, then final = max(1, 5-5) = 1
	if dealt != 1 {
		t.Fatalf("expected 1 damage dealt, got %v", dealt)
	}
}

func TestApplyDamageNeverNegativeHP(t *testing.T) {
	e := &Enemy{Stats: Stats{MaxHP: 10}, CurrentHP: 10}
	e.ApplyDamage(1000, Physical)
	if e.CurrentHP != 0 {
		t.Fatalf("expected HP clamped to 0, got %v", e.CurrentHP)
	}
}

func TestSlowStackingFloorsAtPointOne(t *testing.T) {
	e := &Enemy{Stats: Stats{BaseSpeed: 100}}
	e.ApplySlow(0.5, 5, "a")
	e.ApplySlow(0.5, 5, "b")
	e.ApplySlow(0.5, 5, "c")
	// product = 0.125 > 0.1, so not yet floored
	if got := e.EffectiveSpeed(); got < 9 || got > 13 {
		t.Fatalf("expected ~12.5, got %v", got)
	}
	e.ApplySlow(0.5, 5, "d")
	if got := e.EffectiveSpeed(); got != 10 {
		t.Fatalf("expected floor at 0.1*base=10, got %v", got)
	}
}

func TestStunSetsMaxNotSum(t *testing.T) {
	e := &Enemy{}
	e.ApplyStun(2)
	e.ApplyStun(1)
	if e.StunRemaining != 2 {
		t.Fatalf("expected stun to stay at max(2,1)=2, got %v", e.StunRemaining)
	}
	e.ApplyStun(5)
	if e.StunRemaining != 5 {
		t.Fatalf("expected stun to raise to 5, got %v", e.StunRemaining)
	}
}

func TestZeroMaxHPEnemyDiesOnSpawnWithoutMoving(t *testing.T) {
	g := grid.New(5, 1, 32)
	path := straightPath(g)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	stats := map[Kind]Stats{SteamSoldier: {MaxHP: 0, BaseSpeed: 60, Reward: 10}}
	sys := New(g, path, stats, store, bus, rand.New(rand.NewSource(1)))

	sys.StartWave(Wave{Enemies: []WaveEntry{{Kind: SteamSoldier, Count: 1}}, LevelMultiplier: 1}, 1.0)
	sys.Update(0.01)
	store.ApplyPending()

	if len(sys.Enemies()) != 0 {
		t.Fatal("zero-HP enemy should be dead immediately, not tracked as live")
	}
}

func TestEnemyReachingEndEmitsReachBase(t *testing.T) {
	g := grid.New(2, 1, 32)
	path := []grid.Pos{{X: 0, Y: 0}, {X: 1, Y: 0}}
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	stats := map[Kind]Stats{SteamSoldier: {MaxHP: 100, BaseSpeed: 1000, Reward: 10}}
	sys := New(g, path, stats, store, bus, rand.New(rand.NewSource(1)))
	sys.StartWave(Wave{Enemies: []WaveEntry{{Kind: SteamSoldier, Count: 1}}, LevelMultiplier: 1}, 0.01)

	fired := false
	bus.Subscribe(eventbus.SubscribeOptions{Kind: "EnemyReachBase", Handler: func(eventbus.Event) error {
		fired = true
		return nil
	}})

	for i := 0; i < 10; i++ {
		sys.Update(0.1)
		store.ApplyPending()
	}
	if !fired {
		t.Fatal("expected EnemyReachBase to fire once the enemy crosses the final waypoint")
	}
}

func TestResolveDeathsFinalizesPostMovementKills(t *testing.T) {
	g := grid.New(5, 1, 32)
	path := straightPath(g)
	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	stats := map[Kind]Stats{SteamSoldier: {MaxHP: 100, BaseSpeed: 60, Reward: 10}}
	sys := New(g, path, stats, store, bus, rand.New(rand.NewSource(1)))
	sys.StartWave(Wave{Enemies: []WaveEntry{{Kind: SteamSoldier, Count: 1}}, LevelMultiplier: 1}, 1.0)
	sys.Update(0.01)

	died := false
	bus.Subscribe(eventbus.SubscribeOptions{Kind: "EnemyDeath", Handler: func(eventbus.Event) error {
		died = true
		return nil
	}})

	// Damage that landed after the movement pass, the way a projectile
	// impact resolved through the event drain does.
	sys.Enemies()[0].CurrentHP = 0
	sys.ResolveDeaths()

	if !died {
		t.Fatal("expected ResolveDeaths to emit EnemyDeath without waiting for the next Update")
	}
	if len(sys.Enemies()) != 0 {
		t.Fatal("expected the dead enemy to be removed in the same sweep")
	}
}

func TestIronGolemRegeneratesOverTime(t *testing.T) {
	e := &Enemy{Kind: IronGolem, Stats: Stats{MaxHP: 100}, CurrentHP: 50, State: Moving}
	sys := &System{}
	sys.updateSpecial(e, ironGolemRegenInterval)
	if e.CurrentHP != 55 {
		t.Fatalf("expected +5 HP after one regen interval, got %v", e.CurrentHP)
	}
}

func TestCyberSurvivorRerollKeepsExactlyOneHighResistance(t *testing.T) {
	e := &Enemy{Kind: CyberSurvivor, Stats: Stats{Resistances: Resistances{}}, State: Moving}
	sys := &System{rng: rand.New(rand.NewSource(2))}
	sys.rerollCyberResistances(e)
	highCount := 0
	for _, v := range e.Stats.Resistances {
		if v == 0.8 {
			highCount++
		} else if v != 0.1 {
			t.Fatalf("unexpected resistance value %v", v)
		}
	}
	if highCount != 1 {
		t.Fatalf("expected exactly one resistance at 0.8, got %d", highCount)
	}
}
