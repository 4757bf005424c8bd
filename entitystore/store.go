// Package entitystore is the typed entity registry every simulation
// subsystem shares: a stable id per entity, tag/type indices, deferred
// add/remove applied at frame boundaries, and a radius query.
package entitystore

import (
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
)

// ID is a stable, monotonic, never-reused entity handle.
type ID uint64

// Entity is anything the store can index: every concrete type
// (enemy.Enemy, tower.Tower, projectile.Projectile) carries an ID and
// reports its position and liveness; its kind tag and type name are
// supplied to QueueAdd.
type Entity interface {
	EntityID() ID
	Position() grid.WorldPos
	Alive() bool
}

type pendingOp struct {
	add    Entity
	kind   string
	typ    string
	remove ID
	isAdd  bool
}

// Store indexes live entities by id, tag, and type, with deferred
// mutation so in-progress iteration never sees a half-applied change:
// mutations are queued, and direct mutation during iteration is
// disallowed.
type Store struct {
	nextID  ID
	byID    map[ID]Entity
	byTag   map[string]map[ID]bool
	byType  map[string]map[ID]bool
	pending []pendingOp
	bus     *eventbus.Bus
}

// New returns an empty Store. bus may be nil if entity-local dispatch
// is not needed.
func New(bus *eventbus.Bus) *Store {
	return &Store{
		byID:   make(map[ID]Entity),
		byTag:  make(map[string]map[ID]bool),
		byType: make(map[string]map[ID]bool),
		bus:    bus,
	}
}

// NextID allocates (but does not register) a new id, for callers that
// need the id before the entity struct is fully constructed.
func (s *Store) NextID() ID {
	s.nextID++
	return s.nextID
}

// QueueAdd defers registration of e, tagged with kind (e.g. "enemy",
// "tower") and typ (e.g. "SteamSoldier"), until the next ApplyPending.
func (s *Store) QueueAdd(e Entity, kind, typ string) {
	s.pending = append(s.pending, pendingOp{add: e, kind: kind, typ: typ, isAdd: true})
}

// QueueRemove defers removal of id until the next ApplyPending.
func (s *Store) QueueRemove(id ID) {
	s.pending = append(s.pending, pendingOp{remove: id})
}

// ApplyPending performs every queued add/remove. Call this once at
// the frame boundary, never mid-iteration.
func (s *Store) ApplyPending() {
	if len(s.pending) == 0 {
		return
	}
	ops := s.pending
	s.pending = nil
	for _, op := range ops {
		if op.isAdd {
			s.insert(op.add, op.kind, op.typ)
		} else {
			s.remove(op.remove)
		}
	}
}

func (s *Store) insert(e Entity, kind, typ string) {
	id := e.EntityID()
	s.byID[id] = e
	s.indexInto(s.byTag, kind, id)
	s.indexInto(s.byType, typ, id)
}

func (s *Store) indexInto(index map[string]map[ID]bool, key string, id ID) {
	if key == "" {
		return
	}
	set, ok := index[key]
	if !ok {
		set = make(map[ID]bool)
		index[key] = set
	}
	set[id] = true
}

func (s *Store) remove(id ID) {
	delete(s.byID, id)
	for _, set := range s.byTag {
		delete(set, id)
	}
	for _, set := range s.byType {
		delete(set, id)
	}
}

// Get returns the entity for id, or (nil, false) if it was destroyed
// or never existed. A missing id is an ordinary lookup miss, not an
// error condition.
func (s *Store) Get(id ID) (Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// ByTag returns every currently-registered entity carrying tag.
func (s *Store) ByTag(tag string) []Entity {
	return s.collect(s.byTag[tag])
}

// ByType returns every currently-registered entity of type typ.
func (s *Store) ByType(typ string) []Entity {
	return s.collect(s.byType[typ])
}

func (s *Store) collect(set map[ID]bool) []Entity {
	out := make([]Entity, 0, len(set))
	for id := range set {
		if e, ok := s.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// All returns every registered entity. Order is unspecified.
func (s *Store) All() []Entity {
	out := make([]Entity, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	return out
}

// Len reports the number of currently-registered entities.
func (s *Store) Len() int { return len(s.byID) }

// EntitiesInRadius returns every entity of the given tag (pass "" for
// any) within world-unit radius r of center. Linear scan: acceptable
// at the hundreds-of-enemies/dozens-of-towers scale this game runs at.
func (s *Store) EntitiesInRadius(center grid.WorldPos, r float64, tag string) []Entity {
	var candidates []Entity
	if tag == "" {
		candidates = s.All()
	} else {
		candidates = s.ByTag(tag)
	}
	r2 := r * r
	out := candidates[:0:0]
	for _, e := range candidates {
		p := e.Position()
		dx, dy := p.X-center.X, p.Y-center.Y
		if dx*dx+dy*dy <= r2 {
			out = append(out, e)
		}
	}
	return out
}
