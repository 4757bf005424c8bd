package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kikugo/steamdefense/config"
	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/input"
	"github.com/kikugo/steamdefense/sim"
	"github.com/kikugo/steamdefense/tower"
)

// tickInterval drives SimulationLoop.Tick; the loop itself clamps each
// tick's real dt to 1/30s before applying the speed multiplier,
// regardless of how often ticks actually arrive, so this is a
// rendering cadence, not a physics one.
const tickInterval = 33 * time.Millisecond

// buildableKinds orders the tower kinds the number-key bindings
// select.
var buildableKinds = []tower.Kind{
	tower.SteamCannon, tower.AntiAir, tower.BronzeMortar, tower.SniperMecha,
	tower.LightningTower, tower.FlameThrower, tower.CryoSteam, tower.MineLayer,
	tower.ShieldGenerator,
}

type tickMsg time.Time

// model is the bubbletea Model wrapping one SimulationLoop: ticks
// advance the simulation, key events route through the action map,
// and View renders the latest snapshot.
type model struct {
	loop   *sim.SimulationLoop
	cfg    config.Config
	action *input.ActionMap

	cursor      grid.Pos
	placement   input.PlacementMode
	selectedKind tower.Kind
	selectedTower entitystore.ID
	hasSelectedTower bool

	showDebug bool
	showHelp  bool
	lastTick  time.Time

	quitting bool
	err      error
}

func newModel(cfg config.Config) (*model, error) {
	loop, err := sim.New(cfg)
	if err != nil {
		return nil, err
	}
	loop.Start()

	m := &model{
		loop:         loop,
		cfg:          cfg,
		action:       input.NewActionMap(),
		selectedKind: tower.SteamCannon,
		lastTick:     time.Now(),
	}
	for i, kind := range buildableKinds {
		key := string(rune('1' + i))
		m.action.Bind(input.Binding{Device: input.Keyboard, Key: key}, input.SelectTowerKind)
		_ = kind
	}
	return m, nil
}

func (m *model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		dt := now.Sub(m.lastTick).Seconds()
		m.lastTick = now
		m.loop.Tick(dt)
		return m, tickCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if key == "q" && !m.placement.Active {
		m.quitting = true
		return m, tea.Quit
	}

	action, ok := m.action.Resolve(input.Binding{Device: input.Keyboard, Key: key})
	if !ok {
		return m, nil
	}
	ev := input.InputEvent{Action: action, Pressed: true}

	switch action {
	case input.MoveUp:
		m.moveCursor(0, -1)
	case input.MoveDown:
		m.moveCursor(0, 1)
	case input.MoveLeft:
		m.moveCursor(-1, 0)
	case input.MoveRight:
		m.moveCursor(1, 0)
	case input.Select, input.Confirm:
		m.handleSelect(ev)
	case input.Cancel:
		m.handleCancel()
	case input.Pause:
		m.togglePause()
	case input.SpeedUp:
		m.loop.SetSpeed(m.loop.Speed() + 0.5)
	case input.SpeedDown:
		m.loop.SetSpeed(m.loop.Speed() - 0.5)
	case input.SpeedNormal:
		m.loop.SetSpeed(1.0)
	case input.BuildMode:
		m.placement.Begin(string(m.selectedKind))
	case input.SelectTowerKind:
		m.cycleSelectedKind(key)
		m.placement.Begin(string(m.selectedKind))
	case input.UpgradeTower:
		if m.hasSelectedTower {
			if m.loop.UpgradeTower(m.selectedTower) {
				m.err = nil
			} else {
				m.err = fmt.Errorf("cannot upgrade selected tower")
			}
		}
	case input.SellTower:
		if m.hasSelectedTower {
			if m.loop.SellTower(m.selectedTower) {
				m.hasSelectedTower = false
				m.err = nil
			}
		}
	case input.ToggleDebug:
		m.showDebug = !m.showDebug
	case input.ToggleMenu, input.ShowStats:
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *model) cycleSelectedKind(key string) {
	idx := int(key[0] - '1')
	if idx >= 0 && idx < len(buildableKinds) {
		m.selectedKind = buildableKinds[idx]
	}
}

func (m *model) moveCursor(dx, dy int) {
	x, y := m.cursor.X+dx, m.cursor.Y+dy
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= m.loop.Grid.W {
		x = m.loop.Grid.W - 1
	}
	if y >= m.loop.Grid.H {
		y = m.loop.Grid.H - 1
	}
	m.cursor = grid.Pos{X: x, Y: y}
}

func (m *model) worldCursor() grid.WorldPos {
	return m.loop.Grid.GridToWorldCenter(m.cursor)
}

func (m *model) handleSelect(ev input.InputEvent) {
	if m.placement.Active {
		buildable := m.loop.Grid.GetTile(m.cursor.X, m.cursor.Y) == grid.Buildable
		stats, ok := m.cfg.Towers[m.selectedKind]
		affordable := ok && m.loop.Economy.CanAfford(stats.Cost)
		switch m.placement.Interpret(ev, buildable, affordable) {
		case input.PlaceCommand:
			if t, ok := m.loop.PlaceTower(m.selectedKind, m.worldCursor(), tower.Closest); ok {
				m.selectedTower = t.ID
				m.hasSelectedTower = true
				m.err = nil
			} else {
				m.err = fmt.Errorf("cannot place %s here", m.selectedKind)
			}
			m.placement.End()
		case input.AbortCommand:
			m.placement.End()
		}
		return
	}
	m.selectTowerUnderCursor()
}

func (m *model) handleCancel() {
	if m.placement.Active {
		m.placement.End()
		return
	}
	m.hasSelectedTower = false
}

func (m *model) selectTowerUnderCursor() {
	target := m.worldCursor()
	for _, t := range m.loop.Towers() {
		if t.Pos == target {
			m.selectedTower = t.ID
			m.hasSelectedTower = true
			return
		}
	}
	m.hasSelectedTower = false
}

func (m *model) togglePause() {
	switch m.loop.State.Current {
	case input.Gameplay:
		if err := m.loop.State.Transition(input.Paused); err == nil {
			m.loop.SetPaused(true)
		}
	case input.Paused:
		if err := m.loop.State.Transition(input.Gameplay); err == nil {
			m.loop.SetPaused(false)
		}
	}
}

func (m *model) View() string {
	if m.quitting {
		return "steam defense halted.\n"
	}
	return m.render()
}
