// Package projectile implements the four projectile motion kinds
// (Linear, Ballistic, Homing, Instant) plus the inert Static (mine)
// placeholder, and per-tick impact resolution.
package projectile

import (
	"math"
	"sort"

	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/tower"
)

// MotionKind selects how a projectile advances each tick.
type MotionKind string

const (
	Linear   MotionKind = "Linear"
	Ballistic MotionKind = "Ballistic"
	Homing   MotionKind = "Homing"
	Instant  MotionKind = "Instant"
	Static   MotionKind = "Static"
)

// MaxTravelTime caps a projectile's lifetime.
const MaxTravelTime = 10.0

const linearHitRadius = 5.0
const ballisticHitRadius = 20.0
const homingHitRadius = 8.0
const maxTurnRate = math.Pi // rad/s, Homing cap

// gravity is the vertical acceleration used for Ballistic's altitude
// integration; mortar-kind shots use a heavier fall.
const gravity = 500.0
const mortarGravity = 800.0

// historyCap bounds the position-history ring kept for render trails.
const historyCap = 8

// Impact is emitted on hit, carrying position, kind, damage, area
// radius, and the source stats EffectResolver needs to apply it.
type Impact struct {
	ProjectileID entitystore.ID
	Position     grid.WorldPos
	TowerKind    tower.Kind
	Damage       float64
	AreaDamage   bool
	AreaRadius   float64
	Pierce       int
	TargetID     entitystore.ID
	HasTarget    bool
	SlowMult     float64
	SlowDuration float64
	StunDuration float64
	BurnDPS      float64
	BurnDuration float64
	// Direction is the unit travel vector at impact, used by
	// EffectResolver's pierce stepping.
	Direction grid.WorldPos
}

// Projectile is one in-flight shot.
type Projectile struct {
	ID         entitystore.ID
	TowerKind  tower.Kind
	MotionKind MotionKind

	Pos          grid.WorldPos
	Velocity     grid.WorldPos
	SourcePos    grid.WorldPos
	TargetPos    grid.WorldPos
	TargetID     entitystore.ID
	HasTargetRef bool

	Damage       float64
	Speed        float64
	Pierce       int
	AreaDamage   bool
	AreaRadius   float64
	SlowMult     float64
	SlowDuration float64
	StunDuration float64
	BurnDPS      float64
	BurnDuration float64

	TravelTime    float64
	HasHit        bool
	PositionHistory []grid.WorldPos

	// Ballistic-only bookkeeping.
	tof       float64
	vertVel   float64
	altitude  float64
	grav      float64
	// Homing-only bookkeeping.
	heading float64
}

// EntityID satisfies entitystore.Entity.
func (p *Projectile) EntityID() entitystore.ID { return p.ID }

// Position satisfies entitystore.Entity.
func (p *Projectile) Position() grid.WorldPos { return p.Pos }

// Alive satisfies entitystore.Entity.
func (p *Projectile) Alive() bool { return !p.HasHit && p.TravelTime < MaxTravelTime }

// NewProjectile constructs a projectile from a tower.SpawnProjectileRequest
// and the chosen motion kind, computing the spawn-time velocity/heading
// for Linear/Ballistic/Homing.
func NewProjectile(id entitystore.ID, req tower.SpawnProjectileRequest, motion MotionKind, isMortar bool) *Projectile {
	p := &Projectile{
		ID: id, TowerKind: req.TowerKind, MotionKind: motion,
		Pos: req.SourcePos, SourcePos: req.SourcePos, TargetPos: req.TargetPos,
		TargetID: req.TargetID, HasTargetRef: motion == Homing,
		Damage: req.Damage, Speed: req.Speed, Pierce: req.Pierce,
		AreaDamage: req.AreaDamage, AreaRadius: req.AreaRadius,
		SlowMult: req.SlowMult, SlowDuration: req.SlowDuration,
		StunDuration: req.StunDuration, BurnDPS: req.BurnDPS, BurnDuration: req.BurnDuration,
	}
	dx, dy := req.TargetPos.X-req.SourcePos.X, req.TargetPos.Y-req.SourcePos.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		dist = 1
	}

	switch motion {
	case Linear:
		speed := req.Speed
		if speed <= 0 {
			speed = 1
		}
		p.Velocity = grid.WorldPos{X: dx / dist * speed, Y: dy / dist * speed}
	case Ballistic:
		speed := req.Speed
		if speed <= 0 {
			speed = 1
		}
		p.tof = dist / speed
		if p.tof <= 0 {
			p.tof = 0.01
		}
		p.grav = gravity
		if isMortar {
			p.grav = mortarGravity
		}
		p.vertVel = p.grav * p.tof / 2 // launch speed to return to 0 altitude at tof
		p.Velocity = grid.WorldPos{X: dx / p.tof, Y: dy / p.tof}
	case Homing:
		p.heading = math.Atan2(dy, dx)
	case Instant:
		p.Pos = req.TargetPos
		p.HasHit = true
	case Static:
		// never moves; detonation is tower.System's job (mine).
	}
	p.pushHistory()
	return p
}

func (p *Projectile) pushHistory() {
	p.PositionHistory = append(p.PositionHistory, p.Pos)
	if len(p.PositionHistory) > historyCap {
		p.PositionHistory = p.PositionHistory[len(p.PositionHistory)-historyCap:]
	}
}

// currentTargetPos resolves the live target position for Homing
// projectiles (fed in by System.Update each tick), or the frozen spawn-
// time target position for every other motion kind.
func (p *Projectile) currentTargetPos(liveTargetPos grid.WorldPos, liveOK bool) grid.WorldPos {
	if p.MotionKind == Homing && liveOK {
		return liveTargetPos
	}
	return p.TargetPos
}

// advance steps one motion kind forward by dt. liveTargetPos/liveOK
// supply the Homing target's current position each tick.
func (p *Projectile) advance(dt float64, liveTargetPos grid.WorldPos, liveOK bool) {
	if p.HasHit || p.MotionKind == Static {
		return
	}
	p.TravelTime += dt
	switch p.MotionKind {
	case Linear:
		p.Pos.X += p.Velocity.X * dt
		p.Pos.Y += p.Velocity.Y * dt
		if dist(p.Pos, p.TargetPos) < linearHitRadius {
			p.Pos = p.TargetPos
			p.HasHit = true
		}
	case Ballistic:
		p.Pos.X += p.Velocity.X * dt
		p.Pos.Y += p.Velocity.Y * dt
		p.vertVel -= p.grav * dt
		p.altitude += p.vertVel * dt
		if p.altitude <= 0 && p.TravelTime >= p.tof*0.5 {
			horiz := dist(grid.WorldPos{X: p.Pos.X, Y: p.Pos.Y}, p.TargetPos)
			if horiz <= ballisticHitRadius {
				p.Pos = p.TargetPos
				p.HasHit = true
			}
		}
	case Homing:
		target := p.currentTargetPos(liveTargetPos, liveOK)
		dx, dy := target.X-p.Pos.X, target.Y-p.Pos.Y
		desired := math.Atan2(dy, dx)
		p.heading = turnToward(p.heading, desired, maxTurnRate*dt)
		speed := p.Speed
		if speed <= 0 {
			speed = 1
		}
		p.Pos.X += math.Cos(p.heading) * speed * dt
		p.Pos.Y += math.Sin(p.heading) * speed * dt
		if dist(p.Pos, target) < homingHitRadius {
			p.Pos = target
			p.HasHit = true
		}
	case Instant:
		p.HasHit = true
	}
	p.pushHistory()
}

func dist(a, b grid.WorldPos) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// turnToward rotates angle `from` toward `to` by at most maxDelta
// radians this step, taking the shorter direction around the circle.
func turnToward(from, to, maxDelta float64) float64 {
	diff := math.Mod(to-from+math.Pi, 2*math.Pi) - math.Pi
	if diff < -math.Pi {
		diff += 2 * math.Pi
	}
	if diff > maxDelta {
		diff = maxDelta
	} else if diff < -maxDelta {
		diff = -maxDelta
	}
	return from + diff
}

// Heading returns the current facing angle in radians, for snapshot
// rendering.
func (p *Projectile) Heading() float64 {
	switch p.MotionKind {
	case Homing:
		return p.heading
	default:
		if p.Velocity.X == 0 && p.Velocity.Y == 0 {
			return 0
		}
		return math.Atan2(p.Velocity.Y, p.Velocity.X)
	}
}

// System owns every in-flight projectile: it runs the motion-kind
// dispatch loop each tick and emits impacts on the shared bus instead
// of mutating enemy HP directly.
type System struct {
	bus *eventbus.Bus

	projectiles map[entitystore.ID]*Projectile
	nextID      entitystore.ID

	sub eventbus.Subscription
}

// LiveTargetLookup resolves a target's current position for Homing
// projectiles; sim wires this to entitystore.Store.Get plus a position
// cast.
type LiveTargetLookup func(entitystore.ID) (grid.WorldPos, bool)

// New builds a projectile System subscribed to "SpawnProjectile".
// kindMotion maps each tower.Kind that fires a real projectile to its
// MotionKind; mortarKinds marks which of those use the heavier
// Ballistic gravity.
func New(bus *eventbus.Bus, kindMotion map[tower.Kind]MotionKind, mortarKinds map[tower.Kind]bool) *System {
	s := &System{bus: bus, projectiles: make(map[entitystore.ID]*Projectile)}
	if bus != nil {
		s.sub = bus.Subscribe(eventbus.SubscribeOptions{
			Kind:     "SpawnProjectile",
			Priority: eventbus.Normal,
			Handler: func(ev eventbus.Event) error {
				req, ok := ev.Payload.(tower.SpawnProjectileRequest)
				if !ok {
					return nil
				}
				motion, ok := kindMotion[req.TowerKind]
				if !ok {
					motion = Linear
				}
				s.nextID++
				p := NewProjectile(s.nextID, req, motion, mortarKinds[req.TowerKind])
				s.projectiles[p.ID] = p
				return nil
			},
		})
	}
	return s
}

// Projectiles returns every live projectile in ascending id order,
// which is spawn order; impacts resolve in that same order.
func (s *System) Projectiles() []*Projectile {
	out := make([]*Projectile, 0, len(s.projectiles))
	for _, p := range s.projectiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Update advances every projectile one tick, emits ProjectileImpact
// for everything that hits or was already Instant, and discards
// expired/hit projectiles.
func (s *System) Update(dt float64, lookup LiveTargetLookup) {
	for _, p := range s.Projectiles() {
		if !p.HasHit {
			var liveTarget grid.WorldPos
			liveOK := false
			if p.HasTargetRef && lookup != nil {
				liveTarget, liveOK = lookup(p.TargetID)
			}
			p.advance(dt, liveTarget, liveOK)
		}
		// A hit projectile is removed below in this same pass, so the
		// emit fires exactly once — including Instant shots that spawn
		// already hit.
		if p.HasHit {
			s.emitImpact(p)
		}
		if p.HasHit || p.TravelTime > MaxTravelTime {
			delete(s.projectiles, p.ID)
		}
	}
}

func (s *System) emitImpact(p *Projectile) {
	if s.bus == nil {
		return
	}
	heading := p.Heading()
	s.bus.Emit(eventbus.EmitOptions{
		Kind:      "ProjectileImpact",
		Immediate: true,
		Payload: Impact{
			ProjectileID: p.ID, Position: p.Pos, TowerKind: p.TowerKind,
			Damage: p.Damage, AreaDamage: p.AreaDamage, AreaRadius: p.AreaRadius,
			Pierce: p.Pierce, TargetID: p.TargetID, HasTarget: p.HasTargetRef,
			SlowMult: p.SlowMult, SlowDuration: p.SlowDuration, StunDuration: p.StunDuration,
			BurnDPS: p.BurnDPS, BurnDuration: p.BurnDuration,
			Direction: grid.WorldPos{X: math.Cos(heading), Y: math.Sin(heading)},
		},
	})
}
