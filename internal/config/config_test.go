package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Equation.HeatCapacity <= 0 {
		t.Error("heat capacity should be positive")
	}
	if cfg.Integration.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if cfg.Integration.StepSize <= 0 {
		t.Error("step size should be positive")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `
name: test-run
equation:
  heat_capacity: 1.0e8
integration:
  steps: 100
  step_size: 3600
  record_every: 5
grid:
  resolution: 10
  both_hemispheres: true
  anchor: belt
initial:
  temperature: 290
terms:
  - name: insolation
    params:
      q: 342
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "test-run" {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.Equation.HeatCapacity != 1e8 {
		t.Errorf("heat capacity = %v", cfg.Equation.HeatCapacity)
	}
	if cfg.Integration.RecordEvery != 5 {
		t.Errorf("record_every = %d", cfg.Integration.RecordEvery)
	}
	if len(cfg.Terms) != 1 || cfg.Terms[0].Name != "insolation" {
		t.Errorf("terms = %+v", cfg.Terms)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() *Config {
		cfg := DefaultConfig()
		cfg.Terms = []TermConfig{{Name: "insolation"}}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero heat capacity", func(c *Config) { c.Equation.HeatCapacity = 0 }},
		{"no steps", func(c *Config) { c.Integration.Steps = 0 }},
		{"negative step size", func(c *Config) { c.Integration.StepSize = -1 }},
		{"convergence window too small", func(c *Config) {
			c.Integration.Convergence = ConvergenceConfig{Enabled: true, Window: 1, Amplitude: 0.01}
		}},
		{"bad anchor", func(c *Config) { c.Grid.Anchor = "edge" }},
		{"no terms", func(c *Config) { c.Terms = nil }},
		{"unnamed term", func(c *Config) { c.Terms = []TermConfig{{}} }},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		err := cfg.Validate()
		var ce ebm.ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: got %v, want ConfigError", tt.name, err)
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestAnchorMode(t *testing.T) {
	tests := []struct {
		anchor string
		want   ebm.Anchor
	}{
		{"", ebm.AnchorBelt},
		{"belt", ebm.AnchorBelt},
		{"circle", ebm.AnchorCircle},
	}
	for _, tt := range tests {
		got, err := GridConfig{Anchor: tt.anchor}.AnchorMode()
		if err != nil {
			t.Fatalf("anchor %q: %v", tt.anchor, err)
		}
		if got != tt.want {
			t.Errorf("anchor %q = %v, want %v", tt.anchor, got, tt.want)
		}
	}
}

func TestPresetsDecodeAndValidate(t *testing.T) {
	names := PresetNames()
	if len(names) == 0 {
		t.Fatal("no presets registered")
	}
	for _, name := range names {
		cfg, err := Preset(name)
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if cfg.Name != name {
			t.Errorf("preset %s: name = %q", name, cfg.Name)
		}
	}

	if _, err := Preset("no-such-preset"); err == nil {
		t.Error("unknown preset should fail")
	}
}
