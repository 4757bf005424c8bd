package entitystore

import (
	"strconv"

	"github.com/kikugo/steamdefense/eventbus"
)

// LocalBus wraps an eventbus.Bus to give one entity its own handler
// list that also forwards every emission to the shared bus: emitting
// an event on the entity dispatches it both to entity-local handlers
// and to the global bus.
type LocalBus struct {
	owner   ID
	global  *eventbus.Bus
	local   []eventbus.Handler
}

// NewLocalBus returns a LocalBus for owner, forwarding to global.
func NewLocalBus(owner ID, global *eventbus.Bus) *LocalBus {
	return &LocalBus{owner: owner, global: global}
}

// OnLocal registers a handler invoked only for events emitted through
// this LocalBus, in registration order, before the global bus sees
// the event.
func (l *LocalBus) OnLocal(h eventbus.Handler) {
	l.local = append(l.local, h)
}

// Emit runs every local handler, then forwards to the global bus
// using the same options with SourceID defaulted to the owner.
func (l *LocalBus) Emit(opt eventbus.EmitOptions) {
	ev := eventbus.Event{Kind: opt.Kind, Payload: opt.Payload, SourceID: ownerTag(l.owner)}
	for _, h := range l.local {
		_ = h(ev) // entity-local handlers are best-effort; failures don't block global dispatch
	}
	if opt.Source == "" {
		opt.Source = ownerTag(l.owner)
	}
	if l.global != nil {
		l.global.Emit(opt)
	}
}

func ownerTag(id ID) string {
	return "entity:" + strconv.FormatUint(uint64(id), 10)
}
