package eventbus

import (
	"errors"
	"testing"
)

func TestPriorityOrderingDescending(t *testing.T) {
	b := New(0, 0)
	var order []string
	b.Subscribe(SubscribeOptions{Kind: "hit", Priority: Low, Handler: func(Event) error {
		order = append(order, "low")
		return nil
	}})
	b.Subscribe(SubscribeOptions{Kind: "hit", Priority: Critical, Handler: func(Event) error {
		order = append(order, "critical")
		return nil
	}})
	b.Subscribe(SubscribeOptions{Kind: "hit", Priority: Normal, Handler: func(Event) error {
		order = append(order, "normal")
		return nil
	}})
	b.Emit(EmitOptions{Kind: "hit", Immediate: true})
	want := []string{"critical", "normal", "low"}
	if len(order) != len(want) {
		t.Fatalf("got %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("priority order = %v, want %v", order, want)
		}
	}
}

func TestSamePriorityPreservesInsertionOrder(t *testing.T) {
	b := New(0, 0)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		b.Subscribe(SubscribeOptions{Kind: "tick", Priority: Normal, Handler: func(Event) error {
			order = append(order, i)
			return nil
		}})
	}
	b.Emit(EmitOptions{Kind: "tick", Immediate: true})
	for i, v := range order {
		if v != i {
			t.Fatalf("insertion order broken: %v", order)
		}
	}
}

func TestOnceHandlerFiresOnlyOnce(t *testing.T) {
	b := New(0, 0)
	calls := 0
	b.Subscribe(SubscribeOptions{Kind: "x", Once: true, Handler: func(Event) error {
		calls++
		return nil
	}})
	b.Emit(EmitOptions{Kind: "x", Immediate: true})
	b.Emit(EmitOptions{Kind: "x", Immediate: true})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDeadSubscriberIsSweptAndSkipped(t *testing.T) {
	b := New(0, 0)
	live := false
	calls := 0
	b.Subscribe(SubscribeOptions{
		Kind: "y",
		IsLive: func() bool { return live },
		Handler: func(Event) error { calls++; return nil },
	})
	b.Emit(EmitOptions{Kind: "y", Immediate: true})
	if calls != 0 {
		t.Fatalf("dead subscriber should not fire, got %d calls", calls)
	}
	live = true
	b.Emit(EmitOptions{Kind: "y", Immediate: true})
	if calls != 0 {
		t.Fatalf("swept subscriber must stay skipped after IsLive turns true, got %d calls", calls)
	}
}

func TestHandlerErrorDoesNotStopOtherHandlers(t *testing.T) {
	b := New(0, 0)
	secondCalled := false
	b.Subscribe(SubscribeOptions{Kind: "z", Priority: High, Handler: func(Event) error {
		return errors.New("boom")
	}})
	b.Subscribe(SubscribeOptions{Kind: "z", Priority: Low, Handler: func(Event) error {
		secondCalled = true
		return nil
	}})
	b.Emit(EmitOptions{Kind: "z", Immediate: true})
	if !secondCalled {
		t.Fatal("second handler should still run after first errors")
	}
	if b.FailedCalls() != 1 {
		t.Fatalf("expected 1 failed call, got %d", b.FailedCalls())
	}
}

func TestHandlerPanicIsCaught(t *testing.T) {
	b := New(0, 0)
	b.Subscribe(SubscribeOptions{Kind: "p", Handler: func(Event) error {
		panic("kaboom")
	}})
	b.Emit(EmitOptions{Kind: "p", Immediate: true}) // must not panic out of Emit
	if b.FailedCalls() != 1 {
		t.Fatalf("expected panic to count as a failed call, got %d", b.FailedCalls())
	}
}

func TestDeferredEventsDrainOnProcessEvents(t *testing.T) {
	b := New(0, 0)
	fired := false
	b.Subscribe(SubscribeOptions{Kind: "later", Handler: func(Event) error {
		fired = true
		return nil
	}})
	b.Emit(EmitOptions{Kind: "later", Immediate: false})
	if fired {
		t.Fatal("deferred event should not fire before ProcessEvents")
	}
	b.ProcessEvents()
	if !fired {
		t.Fatal("deferred event should fire on ProcessEvents")
	}
}

func TestRecursionBeyondMaxDepthIsEnqueuedNotInline(t *testing.T) {
	b := New(0, 2) // max recursion depth 2
	var depths []int
	var emit func(depth int)
	emit = func(depth int) {
		depths = append(depths, depth)
		if depth < 5 {
			b.Emit(EmitOptions{Kind: "recurse", Immediate: true})
		}
	}
	count := 0
	b.Subscribe(SubscribeOptions{Kind: "recurse", Handler: func(Event) error {
		count++
		emit(count)
		return nil
	}})
	b.Emit(EmitOptions{Kind: "recurse", Immediate: true})
	// After the inline cascade stops (bounded by max recursion depth),
	// remaining emissions sit in the queue until drained.
	if b.QueueLen() == 0 {
		t.Fatal("expected some emissions to be deferred into the queue")
	}
	before := count
	b.ProcessEvents()
	if count <= before {
		t.Fatal("ProcessEvents should have drained the deferred emissions")
	}
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	b := New(2, 0)
	var got []int
	b.Subscribe(SubscribeOptions{Kind: "q", Handler: func(ev Event) error {
		got = append(got, ev.Payload.(int))
		return nil
	}})
	b.Emit(EmitOptions{Kind: "q", Payload: 1})
	b.Emit(EmitOptions{Kind: "q", Payload: 2})
	b.Emit(EmitOptions{Kind: "q", Payload: 3}) // queue cap 2: drops payload 1
	b.ProcessEvents()
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("expected oldest dropped, got %v", got)
	}
}

func TestUnsubscribeDuringDispatchIsDeferred(t *testing.T) {
	b := New(0, 0)
	var subB Subscription
	calledB := false
	b.Subscribe(SubscribeOptions{Kind: "d", Priority: High, Handler: func(Event) error {
		b.Unsubscribe(subB) // must not remove subB before it gets to run this pass
		return nil
	}})
	subB = b.Subscribe(SubscribeOptions{Kind: "d", Priority: Low, Handler: func(Event) error {
		calledB = true
		return nil
	}})
	b.Emit(EmitOptions{Kind: "d", Immediate: true})
	if !calledB {
		t.Fatal("subscriber B should still run during the dispatch that unsubscribed it")
	}
	calledB = false
	b.Emit(EmitOptions{Kind: "d", Immediate: true})
	if calledB {
		t.Fatal("subscriber B should be gone on the next dispatch")
	}
}
