// Package input implements the abstract action surface and the
// Arcade-aligned game state machine: an abstract Action/InputEvent
// dispatch layered over guarded state transitions, decoupled from any
// particular device or key binding. Only the Arcade-flavored state set
// is implemented; no pygame-specific state or transition exists here.
package input

import (
	"strings"

	"github.com/kikugo/steamdefense/internal/simerr"
)

// Action enumerates the abstract input actions the core accepts.
type Action string

const (
	MoveUp          Action = "MoveUp"
	MoveDown        Action = "MoveDown"
	MoveLeft        Action = "MoveLeft"
	MoveRight       Action = "MoveRight"
	Select          Action = "Select"
	Confirm         Action = "Confirm"
	Cancel          Action = "Cancel"
	Pause           Action = "Pause"
	SpeedUp         Action = "SpeedUp"
	SpeedDown       Action = "SpeedDown"
	SpeedNormal     Action = "SpeedNormal"
	ToggleMenu      Action = "ToggleMenu"
	ShowStats       Action = "ShowStats"
	ToggleDebug     Action = "ToggleDebug"
	BuildMode       Action = "BuildMode"
	UpgradeTower    Action = "UpgradeTower"
	SellTower       Action = "SellTower"
	ZoomIn          Action = "ZoomIn"
	ZoomOut         Action = "ZoomOut"
	CameraReset     Action = "CameraReset"
	SelectTowerKind Action = "SelectTower" // carries Kind in InputEvent.TowerKind
)

// Device names the input source a binding reads from in the
// (device, key_or_button, modifiers) binding triple.
type Device string

const (
	Keyboard Device = "keyboard"
	Mouse    Device = "mouse"
	Gamepad  Device = "gamepad"
)

// Modifier is a held modifier key.
type Modifier string

const (
	ModShift Modifier = "shift"
	ModCtrl  Modifier = "ctrl"
	ModAlt   Modifier = "alt"
)

// Binding maps one raw input to an abstract Action.
type Binding struct {
	Device    Device
	Key       string
	Modifiers []Modifier
}

// WorldPos is the optional click/placement coordinate an InputEvent
// carries, avoiding a dependency on the grid package for what is just
// a pass-through coordinate pair here.
type WorldPos struct{ X, Y float64 }

// InputEvent is what the core consumes: every command arrives as
// (action, pressed, world_position?).
type InputEvent struct {
	Action    Action
	Pressed   bool
	Position  WorldPos
	HasPos    bool
	TowerKind string // populated for SelectTowerKind
}

// bindingKey builds a comparable map key for a Binding, whose
// Modifiers slice otherwise makes it unusable as a map key directly.
func bindingKey(b Binding) string {
	mods := make([]string, len(b.Modifiers))
	for i, m := range b.Modifiers {
		mods[i] = string(m)
	}
	return string(b.Device) + "|" + b.Key + "|" + strings.Join(mods, ",")
}

// ActionMap resolves raw bindings to abstract actions.
type ActionMap struct {
	bindings map[string]Action
}

// NewActionMap returns an ActionMap seeded with a reasonable keyboard
// default binding set; callers may Bind additional device/key
// combinations (gamepad, mouse) on top.
func NewActionMap() *ActionMap {
	m := &ActionMap{bindings: make(map[string]Action)}
	defaults := map[string]Action{
		"up": MoveUp, "down": MoveDown, "left": MoveLeft, "right": MoveRight,
		"w": MoveUp, "s": MoveDown, "a": MoveLeft, "d": MoveRight,
		"enter": Confirm, "escape": Cancel, "space": Select, "p": Pause,
		"+": SpeedUp, "-": SpeedDown, "0": SpeedNormal, "tab": ToggleMenu,
		"f1": ShowStats, "f2": ToggleDebug, "b": BuildMode,
		"u": UpgradeTower, "x": SellTower, "=": ZoomIn, "_": ZoomOut, "r": CameraReset,
	}
	for key, action := range defaults {
		m.Bind(Binding{Device: Keyboard, Key: key}, action)
	}
	return m
}

// Bind registers (or overwrites) the action triggered by b.
func (m *ActionMap) Bind(b Binding, a Action) {
	m.bindings[bindingKey(b)] = a
}

// Resolve looks up the action bound to b, if any.
func (m *ActionMap) Resolve(b Binding) (Action, bool) {
	a, ok := m.bindings[bindingKey(b)]
	return a, ok
}

// GameState is the top-level game state machine. It models the
// Arcade-aligned state set only; no pygame surface is modeled.
type GameState string

const (
	MainMenu GameState = "MainMenu"
	Gameplay GameState = "Gameplay"
	Paused   GameState = "Pause"
	GameOver GameState = "GameOver"
	Victory  GameState = "Victory"
)

// allowedTransitions is the transition guard table; anything absent
// here is forbidden and rejected with a StateError.
var allowedTransitions = map[GameState]map[GameState]bool{
	MainMenu: {Gameplay: true},
	Gameplay: {Paused: true, GameOver: true, Victory: true},
	Paused:   {Gameplay: true, MainMenu: true},
	GameOver: {MainMenu: true},
	Victory:  {MainMenu: true},
}

// StateMachine holds the current GameState and enforces the
// transition table.
type StateMachine struct {
	Current GameState
}

// NewStateMachine starts in MainMenu.
func NewStateMachine() *StateMachine {
	return &StateMachine{Current: MainMenu}
}

// Transition moves to next if the table allows it; otherwise it
// returns a StateError and leaves Current unchanged.
func (s *StateMachine) Transition(next GameState) error {
	if s.Current == next {
		return nil
	}
	if allowedTransitions[s.Current][next] {
		s.Current = next
		return nil
	}
	return &simerr.StateError{From: string(s.Current), To: string(next)}
}

// PlacementMode tracks whether the player is currently placing a
// tower, reinterpreting Select/Cancel while active.
type PlacementMode struct {
	Active bool
	Kind   string
}

// Begin enters placement mode for the given tower kind.
func (p *PlacementMode) Begin(kind string) {
	p.Active = true
	p.Kind = kind
}

// End leaves placement mode.
func (p *PlacementMode) End() {
	p.Active = false
	p.Kind = ""
}

// PlacementCommand is the abstract placement outcome Interpret returns.
type PlacementCommand string

const (
	NoCommand       PlacementCommand = ""
	PlaceCommand    PlacementCommand = "Place"
	AbortCommand    PlacementCommand = "AbortPlacement"
)

// Interpret resolves one InputEvent against the current placement
// mode: Select becomes Place, Cancel becomes AbortPlacement.
// affordable/buildable are supplied by the caller (sim owns the
// money/grid checks); Interpret only decides which abstract placement
// command applies.
func (p *PlacementMode) Interpret(ev InputEvent, buildable, affordable bool) PlacementCommand {
	if !p.Active || !ev.Pressed {
		return NoCommand
	}
	switch ev.Action {
	case Select:
		if buildable && affordable {
			return PlaceCommand
		}
		return NoCommand
	case Cancel:
		return AbortCommand
	default:
		return NoCommand
	}
}
