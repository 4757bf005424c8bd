// Package effect implements the resolver that turns tower attack
// intents and projectile impacts/explosions into actual enemy damage
// and status application. It is the sole querier of the entity store
// on the damage path, which keeps tower and enemy free of references
// to each other.
package effect

import (
	"math"
	"sort"

	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/enemy"
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/projectile"
	"github.com/kikugo/steamdefense/tower"
)

// singleTargetRadius bounds the "closest live enemy" search for a
// non-area impact.
const singleTargetRadius = 16.0

// pierceStep is the forward-stepping distance used to approximate
// additional pierce hits along a projectile's remaining path.
const pierceStep = 2.0

// Resolver subscribes to every impact/explosion/instant-effect event
// kind and is the only subsystem that mutates enemy HP/status through
// the shared entitystore.Store.
type Resolver struct {
	store *entitystore.Store
	bus   *eventbus.Bus
}

// New builds a Resolver bound to store for enemy lookup and bus for
// the event kinds it subscribes to.
func New(store *entitystore.Store, bus *eventbus.Bus) *Resolver {
	r := &Resolver{store: store, bus: bus}
	r.subscribe()
	return r
}

func (r *Resolver) subscribe() {
	if r.bus == nil {
		return
	}
	r.bus.Subscribe(eventbus.SubscribeOptions{Kind: "ProjectileImpact", Handler: r.onImpact})
	r.bus.Subscribe(eventbus.SubscribeOptions{Kind: "EnemyExplosion", Handler: r.onExplosion})
	r.bus.Subscribe(eventbus.SubscribeOptions{Kind: "AttackIntent", Handler: r.onIntent})
}

// liveEnemies returns live enemies in ascending id order so area
// damage and its death events resolve in the same order every run.
func (r *Resolver) liveEnemies() []*enemy.Enemy {
	var out []*enemy.Enemy
	for _, e := range r.store.ByTag("enemy") {
		if en, ok := e.(*enemy.Enemy); ok && en.Alive() {
			out = append(out, en)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Resolver) onIntent(ev eventbus.Event) error {
	intent, ok := ev.Payload.(tower.AttackIntent)
	if !ok {
		return nil
	}
	for _, hit := range intent.Hits {
		e, found := r.findEnemy(hit.TargetID)
		if !found {
			continue
		}
		r.applyHit(e, hit.Damage, damageTypeFromString(hit.DamageType), hit.SlowMult, hit.SlowDuration, hit.StunDuration, hit.BurnDPS, hit.BurnDuration)
	}
	return nil
}

func (r *Resolver) findEnemy(id entitystore.ID) (*enemy.Enemy, bool) {
	e, ok := r.store.Get(id)
	if !ok {
		return nil, false
	}
	en, ok := e.(*enemy.Enemy)
	if !ok || !en.Alive() {
		return nil, false
	}
	return en, true
}

func (r *Resolver) onImpact(ev eventbus.Event) error {
	imp, ok := ev.Payload.(projectile.Impact)
	if !ok {
		return nil
	}
	if imp.AreaDamage {
		r.applyArea(imp.Position, imp.AreaRadius, imp.Damage, damageTypeForTower(imp.TowerKind),
			imp.SlowMult, imp.SlowDuration, imp.StunDuration, imp.BurnDPS, imp.BurnDuration)
		return nil
	}

	hitSomething := false
	if imp.HasTarget {
		if e, found := r.findEnemy(imp.TargetID); found {
			r.applyHit(e, imp.Damage, damageTypeForTower(imp.TowerKind), imp.SlowMult, imp.SlowDuration, imp.StunDuration, imp.BurnDPS, imp.BurnDuration)
			hitSomething = true
		}
	}
	if !hitSomething {
		if e, found := r.closestWithin(imp.Position, singleTargetRadius); found {
			imp.TargetID = e.EntityID()
			r.applyHit(e, imp.Damage, damageTypeForTower(imp.TowerKind), imp.SlowMult, imp.SlowDuration, imp.StunDuration, imp.BurnDPS, imp.BurnDuration)
		}
	}

	if imp.Pierce > 0 {
		r.applyPierce(imp)
	}
	return nil
}

// applyPierce steps forward along the impact's travel direction in
// pierceStep increments, damaging up to Pierce additional live enemies
// it passes within singleTargetRadius of.
func (r *Resolver) applyPierce(imp projectile.Impact) {
	hit := map[entitystore.ID]bool{imp.TargetID: true}
	pos := imp.Position
	remaining := imp.Pierce
	const maxSteps = 50
	for step := 0; step < maxSteps && remaining > 0; step++ {
		pos = grid.WorldPos{X: pos.X + imp.Direction.X*pierceStep, Y: pos.Y + imp.Direction.Y*pierceStep}
		e, found := r.closestWithinExcluding(pos, singleTargetRadius, hit)
		if !found {
			continue
		}
		r.applyHit(e, imp.Damage, damageTypeForTower(imp.TowerKind), imp.SlowMult, imp.SlowDuration, imp.StunDuration, imp.BurnDPS, imp.BurnDuration)
		hit[e.EntityID()] = true
		remaining--
	}
}

func (r *Resolver) onExplosion(ev eventbus.Event) error {
	payload, ok := ev.Payload.(map[string]interface{})
	if !ok {
		return nil
	}
	pos, _ := payload["position"].(grid.WorldPos)
	damage, _ := payload["damage"].(float64)
	radius, _ := payload["radius"].(float64)
	r.applyArea(pos, radius, damage, enemy.Physical, 0, 0, 0, 0, 0)
	return nil
}

// applyArea damages every live enemy within radius of center.
func (r *Resolver) applyArea(center grid.WorldPos, radius, damage float64, dtype enemy.DamageType, slowMult, slowDuration, stunDuration, burnDPS, burnDuration float64) {
	for _, e := range r.liveEnemies() {
		if dist(e.Pos, center) > radius {
			continue
		}
		r.applyHit(e, damage, dtype, slowMult, slowDuration, stunDuration, burnDPS, burnDuration)
	}
}

func (r *Resolver) applyHit(e *enemy.Enemy, damage float64, dtype enemy.DamageType, slowMult, slowDuration, stunDuration, burnDPS, burnDuration float64) {
	e.ApplyDamage(damage, dtype)
	if slowMult > 0 && slowMult < 1 && slowDuration > 0 {
		e.ApplySlow(slowMult, slowDuration, "effect")
	}
	if stunDuration > 0 {
		e.ApplyStun(stunDuration)
	}
	if burnDPS > 0 && burnDuration > 0 {
		e.ApplyBurn(burnDPS, burnDuration)
	}
}

func (r *Resolver) closestWithin(center grid.WorldPos, radius float64) (*enemy.Enemy, bool) {
	return r.closestWithinExcluding(center, radius, nil)
}

// closestWithinExcluding finds the nearest live, non-excluded enemy
// within radius of center. Ties (equal distance) break by ascending
// entity id, matching tower.selectTarget: liveEnemies() yields enemies
// in ascending id order and the first one found at a distance wins.
func (r *Resolver) closestWithinExcluding(center grid.WorldPos, radius float64, exclude map[entitystore.ID]bool) (*enemy.Enemy, bool) {
	var best *enemy.Enemy
	bestDist := radius
	found := false
	for _, e := range r.liveEnemies() {
		if exclude != nil && exclude[e.EntityID()] {
			continue
		}
		d := dist(e.Pos, center)
		if d > bestDist {
			continue
		}
		if !found || d < bestDist || (d == bestDist && e.EntityID() < best.EntityID()) {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

func dist(a, b grid.WorldPos) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// ApplyFreeze is exposed so callers modeling the Freeze status (a
// specialized slow with m=0.1) can apply it through the same resolver
// path as other status effects.
func (r *Resolver) ApplyFreeze(id entitystore.ID, duration float64) {
	e, ok := r.findEnemy(id)
	if !ok {
		return
	}
	e.ApplyFreeze(duration)
}

func damageTypeForTower(k tower.Kind) enemy.DamageType {
	switch k {
	case tower.FlameThrower:
		return enemy.Fire
	case tower.LightningTower:
		return enemy.Electric
	case tower.CryoSteam:
		return enemy.Ice
	default:
		return enemy.Physical
	}
}

func damageTypeFromString(s string) enemy.DamageType {
	switch s {
	case "fire":
		return enemy.Fire
	case "electric":
		return enemy.Electric
	case "ice":
		return enemy.Ice
	default:
		return enemy.Physical
	}
}
