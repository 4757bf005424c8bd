package sim

// ScheduledEvent is one entry in a Scheduler's queue: a named
// callback with a target game-time and an optional repeat interval
// and count (-1 = infinite).
type ScheduledEvent struct {
	Name           string
	Callback       func()
	TargetTime     float64
	RepeatInterval float64 // 0 means one-shot
	RepeatCount int // -1 = infinite
	active         bool
}

// Scheduler fires callbacks once game time reaches their target.
// It is pause-aware: time does not advance for scheduled events while
// paused.
type Scheduler struct {
	events []*ScheduledEvent
	paused bool
}

// NewScheduler returns an empty, unpaused Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// SetPaused toggles whether Update fires anything this tick.
func (s *Scheduler) SetPaused(p bool) { s.paused = p }

// Schedule registers a one-shot callback delay seconds of game-time
// from now.
func (s *Scheduler) Schedule(name string, gameTime, delay float64, cb func()) *ScheduledEvent {
	ev := &ScheduledEvent{Name: name, Callback: cb, TargetTime: gameTime + delay, RepeatCount: 1, active: true}
	s.events = append(s.events, ev)
	return ev
}

// ScheduleRepeating registers a callback firing every interval seconds
// of game-time, repeatCount times (-1 for infinite), first firing
// after delay.
func (s *Scheduler) ScheduleRepeating(name string, gameTime, delay, interval float64, repeatCount int, cb func()) *ScheduledEvent {
	ev := &ScheduledEvent{
		Name: name, Callback: cb, TargetTime: gameTime + delay,
		RepeatInterval: interval, RepeatCount: repeatCount, active: true,
	}
	s.events = append(s.events, ev)
	return ev
}

// Cancel deactivates ev so it will not fire again.
func (s *Scheduler) Cancel(ev *ScheduledEvent) {
	ev.active = false
}

// Update fires every event whose target_time has elapsed, rescheduling
// repeaters and dropping exhausted/one-shot entries.
// No-ops while paused.
func (s *Scheduler) Update(gameTime float64) {
	if s.paused {
		return
	}
	kept := s.events[:0]
	for _, ev := range s.events {
		if !ev.active {
			continue
		}
		if gameTime >= ev.TargetTime {
			ev.Callback()
			if ev.RepeatInterval > 0 && ev.RepeatCount != 0 {
				ev.TargetTime = gameTime + ev.RepeatInterval
				if ev.RepeatCount > 0 {
					ev.RepeatCount--
					if ev.RepeatCount == 0 {
						ev.active = false
					}
				}
			} else {
				ev.active = false
			}
		}
		if ev.active {
			kept = append(kept, ev)
		}
	}
	s.events = kept
}
