package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kikugo/steamdefense/enemy"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/sim"
	"github.com/kikugo/steamdefense/tower"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")).
			Padding(0, 1)
	hudStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("244")).
			Padding(0, 1)
	mapStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("0"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("94"))
	wallStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	buildStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	spawnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	baseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	towerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	enemyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true)
)

func tileGlyph(k grid.Kind) (rune, lipgloss.Style) {
	switch k {
	case grid.Path:
		return '.', pathStyle
	case grid.Wall:
		return '#', wallStyle
	case grid.Spawn:
		return 'S', spawnStyle
	case grid.Base:
		return 'B', baseStyle
	case grid.Decoration:
		return '*', dimStyle
	case grid.Buildable:
		return '+', buildStyle
	case grid.Water:
		return '~', dimStyle
	case grid.Bridge:
		return '=', dimStyle
	default:
		return ' ', dimStyle
	}
}

var towerGlyphs = map[tower.Kind]rune{
	tower.SteamCannon:     '^',
	tower.AntiAir:         'A',
	tower.BronzeMortar:    'O',
	tower.SniperMecha:     '!',
	tower.LightningTower:  'Y',
	tower.FlameThrower:    'F',
	tower.CryoSteam:       'C',
	tower.MineLayer:       'X',
	tower.ShieldGenerator: '0',
}

var enemyGlyphs = map[enemy.Kind]rune{
	enemy.SteamSoldier:   'o',
	enemy.SkyZeppelin:    'v',
	enemy.SteamTank:      'T',
	enemy.LightningDrone: 'd',
	enemy.SteelSpider:    'x',
	enemy.IronGolem:      'G',
	enemy.CyberSurvivor:  'c',
}

// render draws the whole frame: header, bordered map, HUD footer, and
// an optional help overlay, in a header/map/footer layout composed
// with lipgloss instead of raw escape codes and fmt.Printf columns.
func (m *model) render() string {
	snap := m.loop.Snapshot()
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.renderTitle()))
	b.WriteString("\n")
	b.WriteString(mapStyle.Render(m.renderMap(snap)))
	b.WriteString("\n")
	b.WriteString(hudStyle.Render(m.renderHUD(snap)))
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(helpText()))
	}
	return b.String()
}

func (m *model) renderTitle() string {
	return fmt.Sprintf("Steam Defense — wave %d/%d — %s", m.loop.WaveIndex(), len(m.cfg.Waves), m.loop.State.Current)
}

// renderMap draws the static tile layout read straight off the grid
// (topology is fixed for the run) with entity glyphs placed from the
// tick's Snapshot — the renderer never reaches into tower.System or
// enemy.System directly; it only ever sees the read-only frame
// snapshot the simulation exposes.
func (m *model) renderMap(snap sim.Snapshot) string {
	g := m.loop.Grid
	rows := make([][]rune, g.H)
	styles := make([][]lipgloss.Style, g.H)
	for y := 0; y < g.H; y++ {
		rows[y] = make([]rune, g.W)
		styles[y] = make([]lipgloss.Style, g.W)
		for x := 0; x < g.W; x++ {
			rows[y][x], styles[y][x] = tileGlyph(g.GetTile(x, y))
		}
	}

	for _, ent := range snap.Entities {
		p := g.WorldToGrid(ent.Position)
		if p.Y < 0 || p.Y >= g.H || p.X < 0 || p.X >= g.W {
			continue
		}
		if glyph, ok := towerGlyphs[tower.Kind(ent.Kind)]; ok {
			rows[p.Y][p.X] = glyph
			styles[p.Y][p.X] = towerStyle
			continue
		}
		glyph, ok := enemyGlyphs[enemy.Kind(ent.Kind)]
		if !ok {
			glyph = '?'
		}
		rows[p.Y][p.X] = glyph
		styles[p.Y][p.X] = enemyStyle
	}

	if m.cursor.Y >= 0 && m.cursor.Y < g.H && m.cursor.X >= 0 && m.cursor.X < g.W {
		styles[m.cursor.Y][m.cursor.X] = cursorStyle
	}

	var b strings.Builder
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			b.WriteString(styles[y][x].Render(string(rows[y][x])))
		}
		if y < g.H-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *model) renderHUD(snap sim.Snapshot) string {
	placement := "-"
	if m.placement.Active {
		placement = m.placement.Kind
	}
	selected := "none"
	if m.hasSelectedTower {
		for _, tw := range m.loop.Towers() {
			if tw.ID == m.selectedTower {
				selected = fmt.Sprintf("%s L%d", tw.Kind, tw.Level)
				break
			}
		}
	}
	speedLabel := fmt.Sprintf("%.1fx", snap.Speed)
	if m.loop.Paused() {
		speedLabel = warnStyle.Render("paused")
	}
	hud := fmt.Sprintf(
		"money $%d  lives %d  score %d  speed %s\nbuild [%s]  selected: %s\n[tab] help  [q] quit",
		snap.Money, snap.Lives, snap.Score, speedLabel, placement, selected,
	)
	if m.err != nil {
		hud += "\n" + warnStyle.Render(m.err.Error())
	}
	return hud
}

func helpText() string {
	return "arrows/wasd move  space select/confirm  esc cancel  p pause\n" +
		"1-9 pick tower + enter build mode  u upgrade  x sell  +/- speed  f2 debug"
}
