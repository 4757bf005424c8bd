package tower

import (
	"math"
	"sort"

	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
)

// TargetInfo is the read-only view of one live enemy that the
// targeting scan needs. sim builds this slice fresh each tick from
// enemy.System.Enemies() before calling System.Update, so tower never
// imports the enemy package directly and the subsystem dependency
// graph stays acyclic.
type TargetInfo struct {
	ID               entitystore.ID
	Pos              grid.WorldPos
	IsFlying         bool
	CurrentHP        float64
	DistanceTraveled float64
}

// AttackIntent is an instant (non-projectile) attack a tower produces:
// one or more already-resolved target hits that effect.Resolver turns
// into actual damage/status application. Towers only emit intent;
// they never touch enemy state themselves.
type AttackIntent struct {
	TowerID    entitystore.ID
	TowerKind  Kind
	Kind string // "chain", "cone", "area", "mine"
	SourcePos  grid.WorldPos
	Hits       []IntentHit
}

// IntentHit is one resolved (target, damage, status) pair within an
// AttackIntent.
type IntentHit struct {
	TargetID     entitystore.ID
	Damage       float64
	DamageType   string
	SlowMult     float64
	SlowDuration float64
	StunDuration float64
	BurnDPS      float64
	BurnDuration float64
}

// SpawnProjectileRequest is emitted for the four projectile-firing
// tower kinds; ProjectileSystem subscribes to it and creates the
// actual projectile entity.
type SpawnProjectileRequest struct {
	TowerID    entitystore.ID
	TowerKind  Kind
	SourcePos  grid.WorldPos
	TargetID   entitystore.ID
	TargetPos  grid.WorldPos
	Damage     float64
	Speed      float64
	Pierce     int
	AreaDamage bool
	AreaRadius float64
	SlowMult   float64
	SlowDuration float64
	StunDuration float64
	BurnDPS      float64
	BurnDuration float64
}

const chainRange = 64.0
const mineRange = 48.0
const mineCooldown = 3.0
const coneHalfAngleRad = 30 * math.Pi / 180 // 60 degree cone, half-angle each side

// System owns every placed tower: construction, targeting scans, and
// per-kind fire dispatch, split into a targeting-mode table and an
// instant-vs-projectile dispatch.
type System struct {
	stats map[Kind]Stats
	bus   *eventbus.Bus

	towers map[entitystore.ID]*Tower
}

// New builds a tower System bound to bus for AttackIntent/
// SpawnProjectileRequest emission.
func New(stats map[Kind]Stats, bus *eventbus.Bus) *System {
	return &System{stats: stats, bus: bus, towers: make(map[entitystore.ID]*Tower)}
}

// Towers returns every currently-placed tower in ascending id order,
// which is placement order; the fixed order keeps fire resolution and
// snapshots deterministic.
func (s *System) Towers() []*Tower {
	out := make([]*Tower, 0, len(s.towers))
	for _, t := range s.towers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Place constructs and registers a new tower of kind at pos, deducting
// nothing itself — callers (sim.Economy) own the money check/spend.
func (s *System) Place(id entitystore.ID, kind Kind, pos grid.WorldPos, mode TargetingMode) *Tower {
	t := NewTower(id, kind, pos, s.stats[kind], mode)
	s.towers[id] = t
	return t
}

// Sell marks a tower sold; the next Update removes it from the
// System. Returns the refund so the caller can credit it immediately.
func (s *System) Sell(id entitystore.ID) (float64, bool) {
	t, ok := s.towers[id]
	if !ok {
		return 0, false
	}
	refund := t.SellRefund()
	t.Sold = true
	return refund, true
}

// Get returns the tower for id, if still placed.
func (s *System) Get(id entitystore.ID) (*Tower, bool) {
	t, ok := s.towers[id]
	return t, ok
}

// Update advances every tower's timers, re-scans for targets on the
// scan interval (or immediately upon losing one), and fires when
// ready, given the current set of live enemy targets.
func (s *System) Update(dt float64, targets []TargetInfo) {
	for _, t := range s.Towers() {
		if t.Sold {
			delete(s.towers, t.ID)
			continue
		}
		t.Tick(dt)
		if t.ConstructionRemaining > 0 {
			continue
		}
		if t.Kind == MineLayer {
			s.updateMine(t, dt, targets)
			continue
		}

		lostTarget := t.HasTarget && !targetStillValid(t, targets)
		if lostTarget {
			t.HasTarget = false
			t.Target = 0
		}
		// A lost target triggers immediate reacquisition regardless of
		// the scan interval; otherwise scan on schedule.
		// ReadyToScan is always called (not short-circuited) so it
		// still resets the periodic timer when reacquisition fires early.
		scheduled := t.ReadyToScan()
		if lostTarget || scheduled {
			s.acquireTarget(t, targets)
		}

		if t.ReadyToFire() {
			s.fire(t, targets)
		}
	}
}

func targetStillValid(t *Tower, targets []TargetInfo) bool {
	stats := t.CurrentStats()
	for _, cand := range targets {
		if cand.ID != t.Target {
			continue
		}
		if !canTarget(t, cand) {
			return false
		}
		return withinRange(t.Pos, cand.Pos, stats.Range)
	}
	return false
}

func canTarget(t *Tower, cand TargetInfo) bool {
	stats := t.Base
	if cand.IsFlying {
		return stats.CanTargetAir
	}
	return stats.CanTargetGround
}

func withinRange(a, b grid.WorldPos, r float64) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy <= r*r
}

// acquireTarget scans targets within range, filters by
// ground/air eligibility, and selects per t.TargetingMode, ties broken
// by ascending entity id for determinism.
func (s *System) acquireTarget(t *Tower, targets []TargetInfo) {
	stats := t.CurrentStats()
	var candidates []TargetInfo
	for _, cand := range targets {
		if !canTarget(t, cand) {
			continue
		}
		if !withinRange(t.Pos, cand.Pos, stats.Range) {
			continue
		}
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 {
		t.HasTarget = false
		t.Target = 0
		return
	}
	picked := selectTarget(t, candidates)
	t.HasTarget = true
	t.Target = picked.ID
}

func selectTarget(t *Tower, candidates []TargetInfo) TargetInfo {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	switch t.TargetingMode {
	case First:
		return bestBy(candidates, func(c TargetInfo) float64 { return c.DistanceTraveled }, true)
	case Last:
		return bestBy(candidates, func(c TargetInfo) float64 { return c.DistanceTraveled }, false)
	case Closest:
		tp := t.Pos
		return bestBy(candidates, func(c TargetInfo) float64 {
			dx, dy := c.Pos.X-tp.X, c.Pos.Y-tp.Y
			return dx*dx + dy*dy
		}, false)
	case Strongest:
		return bestBy(candidates, func(c TargetInfo) float64 { return c.CurrentHP }, true)
	case Weakest:
		return bestBy(candidates, func(c TargetInfo) float64 { return c.CurrentHP }, false)
	case FlyingPriority:
		var flying []TargetInfo
		for _, c := range candidates {
			if c.IsFlying {
				flying = append(flying, c)
			}
		}
		if len(flying) > 0 {
			return bestBy(flying, func(c TargetInfo) float64 { return c.DistanceTraveled }, true)
		}
		return bestBy(candidates, func(c TargetInfo) float64 { return c.DistanceTraveled }, true)
	default:
		return candidates[0]
	}
}

// bestBy returns the candidate maximizing (or minimizing) key, with
// ties already broken by the ascending-id pre-sort in selectTarget.
func bestBy(candidates []TargetInfo, key func(TargetInfo) float64, max bool) TargetInfo {
	best := candidates[0]
	bestKey := key(best)
	for _, c := range candidates[1:] {
		k := key(c)
		if (max && k > bestKey) || (!max && k < bestKey) {
			best, bestKey = c, k
		}
	}
	return best
}

func findTarget(targets []TargetInfo, id entitystore.ID) (TargetInfo, bool) {
	for _, c := range targets {
		if c.ID == id {
			return c, true
		}
	}
	return TargetInfo{}, false
}

// fire dispatches per-kind.
func (s *System) fire(t *Tower, targets []TargetInfo) {
	target, ok := findTarget(targets, t.Target)
	if !ok {
		t.HasTarget = false
		return
	}
	stats := t.CurrentStats()
	t.Fire()

	switch t.Kind {
	case SteamCannon, AntiAir, BronzeMortar, SniperMecha:
		s.emitProjectile(t, stats, target)
	case LightningTower:
		s.fireChain(t, stats, target, targets)
	case FlameThrower:
		s.fireCone(t, stats, target, targets)
	case CryoSteam:
		s.fireArea(t, stats, target, targets)
	case ShieldGenerator:
		// no-op placeholder: no projectile, no damage.
	}
}

func (s *System) emitProjectile(t *Tower, stats Stats, target TargetInfo) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(eventbus.EmitOptions{
		Kind:      "SpawnProjectile",
		Immediate: true,
		Payload: SpawnProjectileRequest{
			TowerID: t.ID, TowerKind: t.Kind, SourcePos: t.Pos,
			TargetID: target.ID, TargetPos: target.Pos,
			Damage: stats.Damage, Speed: stats.ProjectileSpeed, Pierce: stats.Pierce,
			AreaDamage: stats.AreaDamage, AreaRadius: stats.AreaRadius,
			SlowMult: stats.SlowMult, SlowDuration: stats.SlowDuration,
			StunDuration: stats.StunDuration, BurnDPS: stats.BurnDPS, BurnDuration: stats.BurnDuration,
		},
	})
}

// fireChain implements LightningTower: damage the primary target, then
// hop to the nearest not-yet-hit live enemy within chainRange of the
// last hit, up to chain+1 total targets, each at damage*0.8^n, each
// stunned.
func (s *System) fireChain(t *Tower, stats Stats, target TargetInfo, targets []TargetInfo) {
	hit := map[entitystore.ID]bool{}
	var hits []IntentHit
	cur := target
	totalTargets := stats.Chain + 1
	for n := 0; n < totalTargets; n++ {
		hit[cur.ID] = true
		dmg := stats.Damage * math.Pow(0.8, float64(n))
		hits = append(hits, IntentHit{TargetID: cur.ID, Damage: dmg, DamageType: "electric", StunDuration: stats.StunDuration})
		next, ok := nearestUnhit(cur.Pos, targets, hit, chainRange)
		if !ok {
			break
		}
		cur = next
	}
	s.emitIntent(t, "chain", t.Pos, hits)
}

func nearestUnhit(from grid.WorldPos, targets []TargetInfo, hit map[entitystore.ID]bool, radius float64) (TargetInfo, bool) {
	var best TargetInfo
	bestDist := radius * radius
	found := false
	for _, c := range targets {
		if hit[c.ID] {
			continue
		}
		dx, dy := c.Pos.X-from.X, c.Pos.Y-from.Y
		d2 := dx*dx + dy*dy
		if d2 <= bestDist {
			if !found || d2 < bestDist || (d2 == bestDist && c.ID < best.ID) {
				best, bestDist, found = c, d2, true
			}
		}
	}
	return best, found
}

// fireCone implements FlameThrower: every enemy within area_radius
// inside a 60-degree cone from the tower toward the target takes
// damage and a Burn.
func (s *System) fireCone(t *Tower, stats Stats, target TargetInfo, targets []TargetInfo) {
	dx, dy := target.Pos.X-t.Pos.X, target.Pos.Y-t.Pos.Y
	aimAngle := math.Atan2(dy, dx)
	var hits []IntentHit
	for _, c := range targets {
		cdx, cdy := c.Pos.X-t.Pos.X, c.Pos.Y-t.Pos.Y
		dist := math.Sqrt(cdx*cdx + cdy*cdy)
		if dist > stats.AreaRadius {
			continue
		}
		angle := math.Atan2(cdy, cdx)
		if angleDiff(angle, aimAngle) > coneHalfAngleRad {
			continue
		}
		hits = append(hits, IntentHit{
			TargetID: c.ID, Damage: stats.Damage, DamageType: "fire",
			BurnDPS: stats.BurnDPS, BurnDuration: stats.BurnDuration,
		})
	}
	s.emitIntent(t, "cone", t.Pos, hits)
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b+math.Pi, 2*math.Pi) - math.Pi
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return math.Abs(d)
}

// fireArea implements CryoSteam: every enemy within area_radius of the
// target's position takes damage and a Slow.
func (s *System) fireArea(t *Tower, stats Stats, target TargetInfo, targets []TargetInfo) {
	var hits []IntentHit
	for _, c := range targets {
		dx, dy := c.Pos.X-target.Pos.X, c.Pos.Y-target.Pos.Y
		if dx*dx+dy*dy > stats.AreaRadius*stats.AreaRadius {
			continue
		}
		hits = append(hits, IntentHit{
			TargetID: c.ID, Damage: stats.Damage, DamageType: "ice",
			SlowMult: stats.SlowMult, SlowDuration: stats.SlowDuration,
		})
	}
	s.emitIntent(t, "area", target.Pos, hits)
}

// updateMine implements MineLayer: a passive proximity trigger rather
// than the scan/acquire/fire cycle every other kind uses. It detonates
// when any non-flying enemy enters within 48 units and its cooldown is
// ready.
func (s *System) updateMine(t *Tower, dt float64, targets []TargetInfo) {
	if t.CooldownRemaining > 0 {
		return
	}
	stats := t.CurrentStats()
	var hits []IntentHit
	triggered := false
	for _, c := range targets {
		if c.IsFlying {
			continue
		}
		if !withinRange(t.Pos, c.Pos, mineRange) {
			continue
		}
		triggered = true
		break
	}
	if !triggered {
		return
	}
	for _, c := range targets {
		if c.IsFlying {
			continue
		}
		dx, dy := c.Pos.X-t.Pos.X, c.Pos.Y-t.Pos.Y
		if dx*dx+dy*dy > stats.AreaRadius*stats.AreaRadius {
			continue
		}
		hits = append(hits, IntentHit{TargetID: c.ID, Damage: stats.Damage, DamageType: "physical"})
	}
	s.emitIntent(t, "mine", t.Pos, hits)
	t.CooldownRemaining = mineCooldown
}

func (s *System) emitIntent(t *Tower, kind string, pos grid.WorldPos, hits []IntentHit) {
	if s.bus == nil || len(hits) == 0 {
		return
	}
	s.bus.Emit(eventbus.EmitOptions{
		Kind:      "AttackIntent",
		Immediate: true,
		Payload: AttackIntent{
			TowerID: t.ID, TowerKind: t.Kind, Kind: kind, SourcePos: pos, Hits: hits,
		},
	})
	effectKind := map[string]string{"chain": "LightningEffect", "cone": "FlameEffect", "area": "FrostEffect", "mine": "MineEffect"}[kind]
	if effectKind != "" {
		s.bus.Emit(eventbus.EmitOptions{Kind: effectKind, Immediate: true, Payload: AttackIntent{
			TowerID: t.ID, TowerKind: t.Kind, Kind: kind, SourcePos: pos, Hits: hits,
		}})
	}
}
