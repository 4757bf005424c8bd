package enemy

import (
	"math"
	"math/rand"
	"sort"

	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
)

// WaveEntry is one (kind, count) pair in a wave definition.
type WaveEntry struct {
	Kind  Kind
	Count int
}

// Wave is one wave configuration.
type Wave struct {
	Enemies         []WaveEntry
	LevelMultiplier float64
}

// snapTolerance is the distance, in world units, within which an
// enemy snaps to its next path waypoint and advances path_index.
const snapTolerance = 2.0

// dotTickInterval is how often DoTs apply their damage: once per 1.0s
// of enemy time.
const dotTickInterval = 1.0

const ironGolemRegenInterval = 2.0
const ironGolemRegenAmount = 5.0
const cyberRerollInterval = 5.0

// System owns every live enemy, wave spawning, and the per-tick
// movement/status/damage update, including the full status-effect and
// special-kind behavior set.
type System struct {
	grid       *grid.Grid
	path       []grid.Pos
	stats      map[Kind]Stats
	store      *entitystore.Store
	bus        *eventbus.Bus
	rng        *rand.Rand

	enemies map[entitystore.ID]*Enemy

	pendingWave    *Wave
	spawnQueue     []Kind
	spawnInterval  float64
	spawnTimer     float64
}

// New builds an EnemySystem bound to g/path for movement and stats
// for per-kind stat lookup.
func New(g *grid.Grid, path []grid.Pos, stats map[Kind]Stats, store *entitystore.Store, bus *eventbus.Bus, rng *rand.Rand) *System {
	return &System{
		grid: g, path: path, stats: stats, store: store, bus: bus, rng: rng,
		enemies: make(map[entitystore.ID]*Enemy),
	}
}

// StartWave queues a wave's enemies for sequential spawning, one
// every spawnInterval seconds.
func (s *System) StartWave(w Wave, spawnInterval float64) {
	s.pendingWave = &w
	s.spawnQueue = nil
	for _, entry := range w.Enemies {
		for i := 0; i < entry.Count; i++ {
			s.spawnQueue = append(s.spawnQueue, entry.Kind)
		}
	}
	s.spawnInterval = spawnInterval
	s.spawnTimer = 0
}

// WaveActive reports whether there is more to spawn or live enemies
// remain from the current wave.
func (s *System) WaveActive() bool {
	return len(s.spawnQueue) > 0 || len(s.enemies) > 0
}

// Enemies returns every currently-live enemy in ascending id order,
// which is spawn order. The fixed order keeps every downstream
// consumer (targeting, damage, snapshots) deterministic.
func (s *System) Enemies() []*Enemy {
	out := make([]*Enemy, 0, len(s.enemies))
	for _, e := range s.enemies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Update advances spawn timers, then every live enemy's health,
// movement, and status, in spawn order. An enemy whose HP hit zero
// never takes another movement step.
func (s *System) Update(dt float64) {
	s.updateSpawning(dt)
	for _, e := range s.Enemies() {
		if e.State == Dead {
			continue
		}
		s.updateHealth(e, dt)
		if e.CurrentHP > 0 {
			s.updateMovement(e, dt)
			s.updateSpecial(e, dt)
		}
		s.finalizeState(e)
	}
}

// finalizeState walks a drained or arrived enemy through Dying->Dead,
// emitting its death events, and unregisters it. Reports whether the
// enemy was removed this call.
func (s *System) finalizeState(e *Enemy) bool {
	if e.CurrentHP <= 0 && e.State != Dying && e.State != Dead {
		s.killEnemy(e)
	}
	if e.State == Dying {
		e.State = Dead
	}
	if e.State == Dead {
		s.store.QueueRemove(e.ID)
		delete(s.enemies, e.ID)
		return true
	}
	return false
}

// ResolveDeaths finalizes every enemy whose HP reached zero after the
// movement pass (the kills this tick's tower fire, projectile impacts,
// and effect resolution produced), so a kill lands in the same tick as
// the damage that caused it. A SteamTank death explodes inline and can
// drain its neighbors, so the sweep repeats until a pass removes
// nobody.
func (s *System) ResolveDeaths() {
	for {
		removed := 0
		for _, e := range s.Enemies() {
			if s.finalizeState(e) {
				removed++
			}
		}
		if removed == 0 {
			return
		}
	}
}

func (s *System) updateSpawning(dt float64) {
	if len(s.spawnQueue) == 0 {
		return
	}
	s.spawnTimer -= dt
	if s.spawnTimer > 0 {
		return
	}
	s.spawnTimer = s.spawnInterval
	kind := s.spawnQueue[0]
	s.spawnQueue = s.spawnQueue[1:]
	s.spawn(kind)
}

func (s *System) spawn(kind Kind) {
	id := s.store.NextID()
	levelMult := 1.0
	if s.pendingWave != nil {
		levelMult = s.pendingWave.LevelMultiplier
	}
	e := NewEnemy(id, kind, s.stats[kind], levelMult, s.path, s.grid)
	s.enemies[id] = e
	s.store.QueueAdd(e, "enemy", string(kind))
	if e.CurrentHP <= 0 {
		// A zero-HP enemy dies on spawn without ever entering Moving.
		s.killEnemy(e)
		return
	}
	e.State = Moving
}

func (s *System) updateHealth(e *Enemy, dt float64) {
	var kept []DoT
	for i := range e.DoTs {
		dot := e.DoTs[i]
		dot.TickPhase += dt
		for dot.TickPhase >= dotTickInterval && dot.Remaining > 0 {
			e.ApplyDamage(dot.DPS*dotTickInterval, dot.Type)
			dot.TickPhase -= dotTickInterval
			dot.Remaining -= dotTickInterval
		}
		if dot.Remaining > 0 {
			kept = append(kept, dot)
		}
	}
	e.DoTs = kept

	var keptMods []SpeedModifier
	for _, m := range e.SpeedModifiers {
		m.Remaining -= dt
		if m.Remaining > 0 {
			keptMods = append(keptMods, m)
		}
	}
	e.SpeedModifiers = keptMods

	if e.DamageFlashTimer > 0 {
		e.DamageFlashTimer -= dt
	}
}

func (s *System) updateMovement(e *Enemy, dt float64) {
	if e.State != Moving && e.State != Spawning {
		return
	}
	if e.StunRemaining > 0 {
		e.StunRemaining -= dt
		return
	}
	if e.PathIndex+1 >= len(e.Path) {
		s.reachEnd(e)
		return
	}
	target := s.grid.GridToWorldCenter(e.Path[e.PathIndex+1])
	dx, dy := target.X-e.Pos.X, target.Y-e.Pos.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < snapTolerance {
		e.Pos = target
		e.PathIndex++
		if e.PathIndex+1 >= len(e.Path) {
			s.reachEnd(e)
		}
		return
	}
	speed := e.EffectiveSpeed()
	step := speed * dt
	if step >= dist {
		e.Pos = target
		e.PathIndex++
	} else {
		e.Pos.X += dx / dist * step
		e.Pos.Y += dy / dist * step
	}
	e.State = Moving
}

func (s *System) reachEnd(e *Enemy) {
	if e.ReachedEnd {
		return
	}
	e.ReachedEnd = true
	e.State = Attacking
	if s.bus != nil {
		s.bus.Emit(eventbus.EmitOptions{Kind: "EnemyReachBase", Payload: map[string]interface{}{"damage": 1, "enemy_id": e.ID}, Immediate: true})
	}
	e.State = Dying
}

func (s *System) killEnemy(e *Enemy) {
	e.State = Dying
	if s.bus != nil {
		s.bus.Emit(eventbus.EmitOptions{Kind: "EnemyDeath", Payload: map[string]interface{}{"reward": e.Stats.Reward, "enemy_id": e.ID}, Immediate: true})
		if e.Kind == SteamTank && e.Stats.ExplosionDamage > 0 {
			s.bus.Emit(eventbus.EmitOptions{Kind: "EnemyExplosion", Payload: map[string]interface{}{
				"position": e.Pos, "damage": e.Stats.ExplosionDamage, "radius": e.Stats.ExplosionRadius, "fire": true,
			}, Immediate: true})
		}
	}
}

// updateSpecial runs the per-kind special behaviors: IronGolem
// regeneration, CyberSurvivor resistance reroll.
func (s *System) updateSpecial(e *Enemy, dt float64) {
	if e.State == Dead || e.State == Dying {
		return
	}
	switch e.Kind {
	case IronGolem:
		e.regenTimer += dt
		for e.regenTimer >= ironGolemRegenInterval {
			e.regenTimer -= ironGolemRegenInterval
			if e.CurrentHP > 0 && e.CurrentHP < e.Stats.MaxHP {
				e.CurrentHP += ironGolemRegenAmount
				if e.CurrentHP > e.Stats.MaxHP {
					e.CurrentHP = e.Stats.MaxHP
				}
			}
		}
	case CyberSurvivor:
		e.rerollTimer += dt
		for e.rerollTimer >= cyberRerollInterval {
			e.rerollTimer -= cyberRerollInterval
			s.rerollCyberResistances(e)
		}
	}
}

func (s *System) rerollCyberResistances(e *Enemy) {
	types := []DamageType{Physical, Fire, Electric, Ice}
	chosen := types[s.rng.Intn(len(types))]
	e.Stats.Resistances = Resistances{Physical: 0.1, Fire: 0.1, Electric: 0.1, Ice: 0.1}
	e.Stats.Resistances[chosen] = 0.8
}
