// Package config loads and validates the configuration blob: screen,
// grid, gameplay-balance, enemy/tower stat tables, and wave
// definitions, layered on top of a JSON blob with a `godotenv.Load()`
// pass for environment-variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kikugo/steamdefense/enemy"
	"github.com/kikugo/steamdefense/internal/simerr"
	"github.com/kikugo/steamdefense/mapgen"
	"github.com/kikugo/steamdefense/tower"
)

// Screen is the window/renderer configuration. The core
// never reads this itself — it is validated here and handed to the
// external renderer — but it is part of the one config blob an
// operator supplies.
type Screen struct {
	Width         int  `json:"width"`
	Height        int  `json:"height"`
	TargetFPS     int  `json:"target_fps"`
	VSync         bool `json:"vsync"`
	Antialiasing  bool `json:"antialiasing"`
	Fullscreen    bool `json:"fullscreen"`
}

// GridConfig parameterizes mapgen.Params before a seed is applied.
type GridConfig struct {
	Width           int     `json:"grid_w"`
	Height          int     `json:"grid_h"`
	TileSize        float64 `json:"tile_size"`
	MinPathLength   int     `json:"min_path_length"`
	MaxPathLength   int     `json:"max_path_length"`
	PathWidth       int     `json:"path_width"`
	MinPlacementZones int   `json:"min_placement_zones"`
}

// WaveBalance is the wave-pacing slice of gameplay balance.
type WaveBalance struct {
	PrepTime          float64 `json:"prep_time"`
	SpawnInterval     float64 `json:"spawn_interval"`
	DifficultyScaling float64 `json:"difficulty_scaling"`
	MaxPerWave        int     `json:"max_per_wave"`
}

// EconomyBalance is the economy slice of gameplay balance, including
// the wave-clear interest rule.
type EconomyBalance struct {
	KillBonusMult float64 `json:"kill_bonus_mult"`
	InterestRate  float64 `json:"interest_rate"`
	SellRatio     float64 `json:"sell_ratio"`
}

// Balance is the gameplay balance block.
type Balance struct {
	StartingMoney int            `json:"starting_money"`
	StartingLives int            `json:"starting_lives"`
	Wave          WaveBalance    `json:"wave"`
	Economy       EconomyBalance `json:"economy"`
}

// WaveDef is one ordered wave definition entry.
type WaveDef struct {
	Enemies         []enemy.WaveEntry `json:"enemies"`
	LevelMultiplier float64           `json:"level_multiplier"`
}

// Config is the full validated configuration blob. Enemy and tower
// stat tables are keyed maps rather than fixed per-kind structs so
// operators can add kinds without a code change.
type Config struct {
	Screen  Screen                 `json:"screen"`
	Grid    GridConfig             `json:"grid"`
	Balance Balance                `json:"balance"`
	Enemies map[enemy.Kind]enemy.Stats `json:"enemies"`
	Towers  map[tower.Kind]tower.Stats `json:"towers"`
	Waves   []WaveDef              `json:"waves"`
	Theme   mapgen.Theme           `json:"theme"`
	Seed    int64                  `json:"seed"`
}

const minScreenWidth = 800
const minScreenHeight = 600

// Default returns a Config built from the default stat tables, the
// documented balance defaults, and a short built-in wave list so the
// command-line front end is playable with no config file at all.
// Callers loading their own campaign overwrite Waves via JSON.
func Default() Config {
	return Config{
		Screen: Screen{Width: 1280, Height: 800, TargetFPS: 60, VSync: true},
		Grid: GridConfig{
			Width: 24, Height: 16, TileSize: 32,
			MinPathLength: 40, MaxPathLength: 60, PathWidth: 2, MinPlacementZones: 8,
		},
		Balance: Balance{
			StartingMoney: 150, StartingLives: 20,
			Wave:    WaveBalance{PrepTime: 10, SpawnInterval: 1.0, DifficultyScaling: 1.15, MaxPerWave: 50},
			Economy: EconomyBalance{KillBonusMult: 1.0, InterestRate: 0.02, SellRatio: 0.7},
		},
		Enemies: enemy.DefaultStatsTable(),
		Towers:  tower.DefaultStatsTable(),
		Theme:   mapgen.IndustrialFactory,
		Waves:   defaultWaves(),
	}
}

// defaultWaves is a short built-in campaign of seven waves: it opens
// with SteamSoldiers and mixes in every other enemy kind by the later
// waves. LevelMultiplier 0 lets sim.SimulationLoop fall back to
// compounding wave.DifficultyScaling instead.
func defaultWaves() []WaveDef {
	return []WaveDef{
		{Enemies: []enemy.WaveEntry{{Kind: enemy.SteamSoldier, Count: 6}}},
		{Enemies: []enemy.WaveEntry{{Kind: enemy.SteamSoldier, Count: 8}, {Kind: enemy.SkyZeppelin, Count: 2}}},
		{Enemies: []enemy.WaveEntry{{Kind: enemy.SteamSoldier, Count: 10}, {Kind: enemy.SteelSpider, Count: 4}}},
		{Enemies: []enemy.WaveEntry{{Kind: enemy.SkyZeppelin, Count: 4}, {Kind: enemy.LightningDrone, Count: 4}}},
		{Enemies: []enemy.WaveEntry{{Kind: enemy.SteamSoldier, Count: 12}, {Kind: enemy.SteamTank, Count: 2}}},
		{Enemies: []enemy.WaveEntry{{Kind: enemy.SteelSpider, Count: 6}, {Kind: enemy.CyberSurvivor, Count: 3}}},
		{Enemies: []enemy.WaveEntry{{Kind: enemy.IronGolem, Count: 2}, {Kind: enemy.SteamTank, Count: 3}, {Kind: enemy.SkyZeppelin, Count: 4}}},
	}
}

// Load reads an optional .env file (via godotenv.Load()), unmarshals
// the JSON config at path, applies a STEAMDEFENSE_SEED override if set,
// and validates the result. No other environment variable is read. A
// missing .env is not an error (godotenv.Load returning an error there
// just means "no overrides"); a missing or invalid config file is a
// fatal simerr.ConfigError.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // best-effort; absence of .env is not fatal

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &simerr.ConfigError{Field: "path", Reason: err.Error()}
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, &simerr.ConfigError{Field: "json", Reason: err.Error()}
	}
	if seed := os.Getenv("STEAMDEFENSE_SEED"); seed != "" {
		if v, err := parseSeed(seed); err == nil {
			cfg.Seed = v
		}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseSeed(s string) (int64, error) {
	var v int64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

// Validate rejects anything that would make the core unplayable as a
// fatal startup ConfigError: screen dimensions below the 800x600
// floor, missing stat tables, and non-positive grid dimensions.
func Validate(cfg Config) error {
	if cfg.Screen.Width < minScreenWidth || cfg.Screen.Height < minScreenHeight {
		return &simerr.ConfigError{Field: "screen", Reason: "screen must be at least 800x600"}
	}
	if cfg.Grid.Width <= 0 || cfg.Grid.Height <= 0 {
		return &simerr.ConfigError{Field: "grid", Reason: "grid_w/grid_h must be positive"}
	}
	if len(cfg.Enemies) == 0 {
		return &simerr.ConfigError{Field: "enemies", Reason: "enemy stats table must not be empty"}
	}
	if len(cfg.Towers) == 0 {
		return &simerr.ConfigError{Field: "towers", Reason: "tower stats table must not be empty"}
	}
	if cfg.Balance.StartingMoney < 0 || cfg.Balance.StartingLives <= 0 {
		return &simerr.ConfigError{Field: "balance", Reason: "starting_money must be >= 0 and starting_lives > 0"}
	}
	return nil
}
