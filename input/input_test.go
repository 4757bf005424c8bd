package input

import "testing"

func TestActionMapResolvesDefaultBinding(t *testing.T) {
	m := NewActionMap()
	action, ok := m.Resolve(Binding{Device: Keyboard, Key: "space"})
	if !ok || action != Select {
		t.Fatalf("expected space to resolve to Select, got %v ok=%v", action, ok)
	}
}

func TestActionMapUnboundKeyMisses(t *testing.T) {
	m := NewActionMap()
	if _, ok := m.Resolve(Binding{Device: Keyboard, Key: "z"}); ok {
		t.Fatal("expected an unbound key to miss")
	}
}

func TestBindOverwritesExistingBinding(t *testing.T) {
	m := NewActionMap()
	m.Bind(Binding{Device: Keyboard, Key: "space"}, Pause)
	action, ok := m.Resolve(Binding{Device: Keyboard, Key: "space"})
	if !ok || action != Pause {
		t.Fatalf("expected rebinding space to Pause to take effect, got %v", action)
	}
}

func TestStateMachineAllowsMainMenuToGameplay(t *testing.T) {
	sm := NewStateMachine()
	if err := sm.Transition(Gameplay); err != nil {
		t.Fatalf("expected MainMenu->Gameplay to be allowed, got %v", err)
	}
	if sm.Current != Gameplay {
		t.Fatalf("expected current state Gameplay, got %v", sm.Current)
	}
}

func TestStateMachineRejectsForbiddenTransition(t *testing.T) {
	sm := NewStateMachine()
	err := sm.Transition(Victory)
	if err == nil {
		t.Fatal("expected MainMenu->Victory to be rejected")
	}
	if sm.Current != MainMenu {
		t.Fatalf("expected state to remain MainMenu after a rejected transition, got %v", sm.Current)
	}
}

func TestStateMachinePauseAndResume(t *testing.T) {
	sm := NewStateMachine()
	_ = sm.Transition(Gameplay)
	if err := sm.Transition(Paused); err != nil {
		t.Fatalf("expected Gameplay->Pause to be allowed, got %v", err)
	}
	if err := sm.Transition(Gameplay); err != nil {
		t.Fatalf("expected Pause->Gameplay to be allowed, got %v", err)
	}
}

func TestPlacementModeSelectPlacesWhenBuildableAndAffordable(t *testing.T) {
	p := &PlacementMode{}
	p.Begin("SteamCannon")
	cmd := p.Interpret(InputEvent{Action: Select, Pressed: true}, true, true)
	if cmd != PlaceCommand {
		t.Fatalf("expected PlaceCommand, got %v", cmd)
	}
}

func TestPlacementModeSelectNoOpWhenUnaffordable(t *testing.T) {
	p := &PlacementMode{}
	p.Begin("SteamCannon")
	cmd := p.Interpret(InputEvent{Action: Select, Pressed: true}, true, false)
	if cmd != NoCommand {
		t.Fatalf("expected NoCommand for an unaffordable placement, got %v", cmd)
	}
}

func TestPlacementModeCancelAborts(t *testing.T) {
	p := &PlacementMode{}
	p.Begin("SteamCannon")
	cmd := p.Interpret(InputEvent{Action: Cancel, Pressed: true}, true, true)
	if cmd != AbortCommand {
		t.Fatalf("expected AbortCommand, got %v", cmd)
	}
}

func TestPlacementModeIgnoresInputWhenInactive(t *testing.T) {
	p := &PlacementMode{}
	cmd := p.Interpret(InputEvent{Action: Select, Pressed: true}, true, true)
	if cmd != NoCommand {
		t.Fatalf("expected NoCommand when placement mode is inactive, got %v", cmd)
	}
}
