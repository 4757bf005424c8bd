package sim

import (
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/tower"
)

// effectDuration is how long a transient visual effect (chain arc,
// flame cone, frost burst, mine flash) stays in the snapshot after the
// tower fires it, purely for rendering.
const effectDuration = 0.25

var trackedEffectKinds = []string{"LightningEffect", "FlameEffect", "FrostEffect", "MineEffect"}

type activeEffect struct {
	kind    string
	pos     grid.WorldPos
	targets int
	elapsed float64
	total   float64
}

// effectTracker turns the tower package's instant-effect events into
// timed entries a Snapshot can expose to a renderer; nothing else in
// the simulation reads it.
type effectTracker struct {
	items []*activeEffect
}

func newEffectTracker(bus *eventbus.Bus) *effectTracker {
	t := &effectTracker{}
	if bus == nil {
		return t
	}
	for _, kind := range trackedEffectKinds {
		kind := kind
		bus.Subscribe(eventbus.SubscribeOptions{Kind: kind, Handler: func(ev eventbus.Event) error {
			intent, ok := ev.Payload.(tower.AttackIntent)
			if !ok {
				return nil
			}
			t.items = append(t.items, &activeEffect{kind: kind, pos: intent.SourcePos, targets: len(intent.Hits), total: effectDuration})
			return nil
		}})
	}
	return t
}

func (t *effectTracker) update(dt float64) {
	kept := t.items[:0]
	for _, e := range t.items {
		e.elapsed += dt
		if e.elapsed < e.total {
			kept = append(kept, e)
		}
	}
	t.items = kept
}

func (t *effectTracker) snapshot() []EffectSnapshot {
	out := make([]EffectSnapshot, 0, len(t.items))
	for _, e := range t.items {
		out = append(out, EffectSnapshot{
			Kind: e.kind, Position: e.pos,
			Params:  map[string]float64{"targets": float64(e.targets)},
			Elapsed: e.elapsed, Total: e.total,
		})
	}
	return out
}
