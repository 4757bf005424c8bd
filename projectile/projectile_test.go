package projectile

import (
	"testing"

	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/tower"
)

func baseRequest() tower.SpawnProjectileRequest {
	return tower.SpawnProjectileRequest{
		TowerKind: tower.SteamCannon,
		SourcePos: grid.WorldPos{X: 0, Y: 0},
		TargetPos: grid.WorldPos{X: 100, Y: 0},
		TargetID:  7,
		Damage:    20,
		Speed:     200,
	}
}

func TestInstantProjectileHasHitOnSpawn(t *testing.T) {
	p := NewProjectile(1, baseRequest(), Instant, false)
	if !p.HasHit {
		t.Fatal("expected Instant projectile to be hit on spawn")
	}
	if p.Pos != p.TargetPos {
		t.Fatalf("expected Instant projectile to snap to target, got %+v", p.Pos)
	}
}

func TestLinearProjectileAdvancesThenHits(t *testing.T) {
	p := NewProjectile(1, baseRequest(), Linear, false)
	if p.HasHit {
		t.Fatal("linear projectile should not be hit at spawn")
	}
	// Advance enough ticks at speed 200 to cover ~100 units.
	for i := 0; i < 200 && !p.HasHit; i++ {
		p.advance(1.0/60.0, grid.WorldPos{}, false)
	}
	if !p.HasHit {
		t.Fatal("expected linear projectile to eventually hit its target")
	}
	if p.Pos != p.TargetPos {
		t.Fatalf("expected linear projectile to snap to target on hit, got %+v", p.Pos)
	}
}

func TestProjectileExpiresAfterMaxTravelTime(t *testing.T) {
	req := baseRequest()
	req.Speed = 0.0001 // effectively never reaches the target
	p := NewProjectile(1, req, Linear, false)
	for i := 0; i < 1200; i++ {
		p.advance(1.0/60.0, grid.WorldPos{}, false)
	}
	if p.TravelTime <= MaxTravelTime {
		t.Fatalf("expected travel time to exceed MaxTravelTime, got %v", p.TravelTime)
	}
	if p.Alive() {
		t.Fatal("expected expired projectile to report not alive")
	}
}

func TestHomingProjectileTurnsTowardLiveTarget(t *testing.T) {
	req := baseRequest()
	req.TargetPos = grid.WorldPos{X: 100, Y: 0}
	p := NewProjectile(1, req, Homing, false)
	initialHeading := p.heading

	// Live target has since moved far off to the side; homing should
	// rotate toward it rather than the frozen spawn-time target.
	live := grid.WorldPos{X: 0, Y: 100}
	p.advance(1.0/60.0, live, true)
	if p.heading == initialHeading {
		t.Fatal("expected homing projectile to rotate its heading toward the live target")
	}
}

func TestSystemUpdateEmitsImpactAndRemovesHitProjectile(t *testing.T) {
	bus := eventbus.New(0, 0)
	var impact *Impact
	bus.Subscribe(eventbus.SubscribeOptions{Kind: "ProjectileImpact", Handler: func(ev eventbus.Event) error {
		i := ev.Payload.(Impact)
		impact = &i
		return nil
	}})
	kindMotion := map[tower.Kind]MotionKind{tower.SniperMecha: Instant}
	s := New(bus, kindMotion, nil)

	bus.Emit(eventbus.EmitOptions{Kind: "SpawnProjectile", Immediate: true, Payload: tower.SpawnProjectileRequest{
		TowerKind: tower.SniperMecha, SourcePos: grid.WorldPos{}, TargetPos: grid.WorldPos{X: 10, Y: 0}, Damage: 50,
	}})
	if len(s.Projectiles()) != 1 {
		t.Fatalf("expected one spawned projectile, got %d", len(s.Projectiles()))
	}

	s.Update(1.0/60.0, nil)
	if impact == nil {
		t.Fatal("expected ProjectileImpact to be emitted for an Instant projectile")
	}
	if impact.Damage != 50 {
		t.Fatalf("expected impact damage 50, got %v", impact.Damage)
	}
	if len(s.Projectiles()) != 0 {
		t.Fatal("expected hit projectile to be removed from the live set")
	}
}

func TestSystemDropsUnknownSpawnPayloadWithoutPanic(t *testing.T) {
	bus := eventbus.New(0, 0)
	s := New(bus, nil, nil)
	bus.Emit(eventbus.EmitOptions{Kind: "SpawnProjectile", Immediate: true, Payload: "not-a-request"})
	if len(s.Projectiles()) != 0 {
		t.Fatal("expected no projectile spawned from a malformed payload")
	}
}
