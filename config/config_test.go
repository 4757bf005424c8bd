package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kikugo/steamdefense/internal/simerr"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("expected the built-in default config to validate, got %v", err)
	}
}

func TestValidateRejectsUndersizedScreen(t *testing.T) {
	cfg := Default()
	cfg.Screen.Width = 640
	cfg.Screen.Height = 480
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected a ConfigError for a screen below 800x600")
	}
	if _, ok := err.(*simerr.ConfigError); !ok {
		t.Fatalf("expected *simerr.ConfigError, got %T", err)
	}
}

func TestValidateRejectsEmptyStatTables(t *testing.T) {
	cfg := Default()
	cfg.Enemies = nil
	if err := Validate(cfg); err == nil {
		t.Fatal("expected a ConfigError for an empty enemy stats table")
	}

	cfg = Default()
	cfg.Towers = nil
	if err := Validate(cfg); err == nil {
		t.Fatal("expected a ConfigError for an empty tower stats table")
	}
}

func TestValidateRejectsNonPositiveStartingLives(t *testing.T) {
	cfg := Default()
	cfg.Balance.StartingLives = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected a ConfigError for starting_lives <= 0")
	}
}

func TestLoadReadsJSONOverridesOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	overrides := map[string]interface{}{
		"balance": map[string]interface{}{
			"starting_money": 999,
			"starting_lives": 20,
		},
	}
	data, err := json.Marshal(overrides)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected Load to succeed, got %v", err)
	}
	if cfg.Balance.StartingMoney != 999 {
		t.Fatalf("expected starting_money override 999, got %d", cfg.Balance.StartingMoney)
	}
	if len(cfg.Enemies) == 0 {
		t.Fatal("expected the default enemy stats table to survive a partial JSON override")
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err == nil {
		t.Fatal("expected Load to fail for a missing config file")
	}
	if _, ok := err.(*simerr.ConfigError); !ok {
		t.Fatalf("expected *simerr.ConfigError, got %T", err)
	}
}

func TestSeedEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STEAMDEFENSE_SEED", "12345")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected Load to succeed, got %v", err)
	}
	if cfg.Seed != 12345 {
		t.Fatalf("expected STEAMDEFENSE_SEED override to set Seed=12345, got %d", cfg.Seed)
	}
}
