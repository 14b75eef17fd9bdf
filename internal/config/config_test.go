package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultMatchesDefault(t *testing.T) {
	cfg := Default()
	if err := yaml.Unmarshal(DefaultYAML(), &cfg); err != nil {
		t.Fatalf("embedded YAML does not parse: %v", err)
	}

	def := Default()
	if cfg.Chain != def.Chain {
		t.Errorf("chain mismatch: %+v vs %+v", cfg.Chain, def.Chain)
	}
	if cfg.Payment != def.Payment {
		t.Errorf("payment mismatch: %+v vs %+v", cfg.Payment, def.Payment)
	}
	if cfg.Game != def.Game {
		t.Errorf("game mismatch: %+v vs %+v", cfg.Game, def.Game)
	}
	if cfg.Server != def.Server {
		t.Errorf("server mismatch: %+v vs %+v", cfg.Server, def.Server)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestDefaultGrid(t *testing.T) {
	g := Default().Game
	if g.Cols() != 20 || g.Rows() != 20 {
		t.Errorf("expected a 20x20 grid, got %dx%d", g.Cols(), g.Rows())
	}
}

func TestLoadCustomPathOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("game:\n  initial_interval: 200ms\npayment:\n  amount: \"0.5\"\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Game.InitialInterval != 200*time.Millisecond {
		t.Errorf("InitialInterval = %v, expected 200ms", cfg.Game.InitialInterval)
	}
	if cfg.Payment.Amount != "0.5" {
		t.Errorf("Amount = %q, expected 0.5", cfg.Payment.Amount)
	}
	if cfg.Chain.ID != 13579 {
		t.Errorf("untouched chain id should keep default, got %d", cfg.Chain.ID)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing custom path")
	}
}

func TestValidateRejectsBrokenGrid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"grid does not divide", func(c *Config) { c.Game.Grid = 30 }, "must divide"},
		{"origin misaligned", func(c *Config) { c.Game.Origin.X = 205 }, "not grid aligned"},
		{"origin outside", func(c *Config) { c.Game.Origin.Y = 400 }, "outside the canvas"},
		{"floor above start", func(c *Config) { c.Game.MinInterval = time.Second }, "min_interval"},
		{"bad recipient", func(c *Config) { c.Payment.Recipient = "0x1234" }, "not a hex address"},
		{"no confirmations", func(c *Config) { c.Payment.Confirmations = 0 }, "confirmations"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestMarshalRoundTripsDurationsAsText(t *testing.T) {
	out, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if !strings.Contains(string(out), "initial_interval: 150ms") {
		t.Errorf("durations should be written as text, got:\n%s", out)
	}
}

func TestExpandHome(t *testing.T) {
	got, err := ExpandHome("/abs/path.db")
	if err != nil || got != "/abs/path.db" {
		t.Errorf("absolute path should be unchanged, got %q (%v)", got, err)
	}

	got, err = ExpandHome("~/x.db")
	if err != nil {
		t.Fatalf("ExpandHome() failed: %v", err)
	}
	if strings.HasPrefix(got, "~") {
		t.Errorf("tilde should be expanded, got %q", got)
	}
}
