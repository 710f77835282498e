// Package config loads and validates run configurations: equation and
// integration parameters, grid layout, initial conditions and the ordered
// list of flux terms with their per-term parameter blocks.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

const (
	DefaultHeatCapacity = 2e8
	DefaultSteps        = 365
	DefaultStepSize     = 86400.0
	DefaultRecordEvery  = 1
	DefaultTemperature  = 288.0
)

type Config struct {
	Name        string            `yaml:"name"`
	Equation    EquationConfig    `yaml:"equation"`
	Integration IntegrationConfig `yaml:"integration"`
	Grid        GridConfig        `yaml:"grid"`
	Initial     InitialConfig     `yaml:"initial"`
	Ensemble    int               `yaml:"ensemble"`
	Terms       []TermConfig      `yaml:"terms"`
}

type EquationConfig struct {
	HeatCapacity float64 `yaml:"heat_capacity"`
}

type IntegrationConfig struct {
	Steps       int               `yaml:"steps"`
	StepSize    float64           `yaml:"step_size"`
	RecordEvery int               `yaml:"record_every"`
	Convergence ConvergenceConfig `yaml:"convergence"`
}

type ConvergenceConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Window    int     `yaml:"window"`
	Amplitude float64 `yaml:"amplitude"`
}

type GridConfig struct {
	Resolution      float64 `yaml:"resolution"`
	BothHemispheres bool    `yaml:"both_hemispheres"`
	Anchor          string  `yaml:"anchor"`
}

type InitialConfig struct {
	Time            float64 `yaml:"time"`
	Temperature     float64 `yaml:"temperature"`
	GlobalMean      float64 `yaml:"global_mean"`
	CosineShift     bool    `yaml:"cosine_shift"`
	CosineAmplitude float64 `yaml:"cosine_amplitude"`
	NoiseShift      bool    `yaml:"noise_shift"`
	NoiseAmplitude  float64 `yaml:"noise_amplitude"`
	NoiseSeed       int64   `yaml:"noise_seed"`
}

// TermConfig names one flux term and carries its parameter block
// undecoded; the experiment registry decodes it into the term's own
// parameter struct.
type TermConfig struct {
	Name   string    `yaml:"name"`
	Params yaml.Node `yaml:"params"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "default",
		Equation: EquationConfig{
			HeatCapacity: DefaultHeatCapacity,
		},
		Integration: IntegrationConfig{
			Steps:       DefaultSteps,
			StepSize:    DefaultStepSize,
			RecordEvery: DefaultRecordEvery,
		},
		Initial: InitialConfig{
			Temperature: DefaultTemperature,
			GlobalMean:  DefaultTemperature,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Equation.HeatCapacity <= 0 {
		return ebm.ConfigError{Field: "equation.heat_capacity", Message: "must be positive"}
	}
	if c.Integration.Steps <= 0 {
		return ebm.ConfigError{Field: "integration.steps", Message: "must be positive"}
	}
	if c.Integration.StepSize <= 0 {
		return ebm.ConfigError{Field: "integration.step_size", Message: "must be positive"}
	}
	if c.Integration.RecordEvery < 0 {
		return ebm.ConfigError{Field: "integration.record_every", Message: "must not be negative"}
	}
	if c.Integration.Convergence.Enabled {
		if c.Integration.Convergence.Window < 2 {
			return ebm.ConfigError{Field: "integration.convergence.window", Message: "needs at least two samples"}
		}
		if c.Integration.Convergence.Amplitude <= 0 {
			return ebm.ConfigError{Field: "integration.convergence.amplitude", Message: "must be positive"}
		}
	}
	if _, err := c.Grid.AnchorMode(); err != nil {
		return err
	}
	if c.Ensemble < 0 {
		return ebm.ConfigError{Field: "ensemble", Message: "must not be negative"}
	}
	if len(c.Terms) == 0 {
		return ebm.ConfigError{Field: "terms", Message: "at least one flux term is required"}
	}
	for i, term := range c.Terms {
		if term.Name == "" {
			return ebm.ConfigError{Field: fmt.Sprintf("terms[%d].name", i), Message: "missing term name"}
		}
	}
	return nil
}

// AnchorMode maps the anchor string onto the grid anchoring mode. An
// empty string defaults to belt anchoring, the layout most terms assume.
func (g GridConfig) AnchorMode() (ebm.Anchor, error) {
	switch g.Anchor {
	case "", "belt":
		return ebm.AnchorBelt, nil
	case "circle":
		return ebm.AnchorCircle, nil
	}
	return 0, ebm.ConfigError{Field: "grid.anchor", Message: fmt.Sprintf("unknown anchor %q", g.Anchor)}
}

// BuildGrid constructs the latitude grid described by the configuration.
func (g GridConfig) BuildGrid() (*ebm.Grid, error) {
	anchor, err := g.AnchorMode()
	if err != nil {
		return nil, err
	}
	return ebm.NewGrid(g.Resolution, g.BothHemispheres, anchor)
}

// InitialConditions converts the initial block into the state seed.
func (ic InitialConfig) InitialConditions() ebm.InitialConditions {
	return ebm.InitialConditions{
		Time:            ic.Time,
		Temperature:     ic.Temperature,
		GlobalMean:      ic.GlobalMean,
		CosineShift:     ic.CosineShift,
		CosineAmplitude: ic.CosineAmplitude,
		NoiseShift:      ic.NoiseShift,
		NoiseAmplitude:  ic.NoiseAmplitude,
		NoiseSeed:       ic.NoiseSeed,
	}
}
