package ebm

import (
	"math/rand"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/solar"
)

// InitialConditions seed the state before the first step. The starting
// temperature is uniform over the grid, optionally shifted by a cosine of
// latitude and per-band Gaussian noise.
type InitialConditions struct {
	Time        float64
	Temperature float64
	GlobalMean  float64

	CosineShift     bool
	CosineAmplitude float64
	NoiseShift      bool
	NoiseAmplitude  float64
	NoiseSeed       int64
}

// State is the single mutable record of one simulation run. The
// integrator and every flux term read and write it in strict sequential
// order; nothing in here is safe for concurrent use. Ensemble members each
// get their own instance.
type State struct {
	Time       float64
	Temp       Field
	GlobalMean float64
	Grid       *Grid

	// StepSize mirrors the integrator's step so terms can express
	// model-time cadences (noise delay) without reaching into the
	// integrator.
	StepSize float64

	// SubSteps counts model-equation evaluations: four per integration
	// step. It gates sampling (see Recorder) and is not the step index.
	SubSteps int

	// Caches owned by individual terms but readable by later terms in the
	// same sub-stage.
	Solar       Field
	TSI         float64
	SolarFactor float64
	Noise       float64
	Wind        Field
	TempDiff    Field
	Orbital     solar.Params

	Rec *Recorder

	init InitialConditions
}

// NewState builds the run state from initial conditions. Construction is
// the explicit setup phase: latitude arrays come from the grid, the
// temperature field is shaped here, and nothing below mutates the grid
// again. A nil recorder is allowed and disables auxiliary sampling.
func NewState(g *Grid, init InitialConditions, stepSize float64, rec *Recorder) *State {
	s := &State{
		Time:        init.Time,
		GlobalMean:  init.GlobalMean,
		Grid:        g,
		StepSize:    stepSize,
		SolarFactor: 1,
		Orbital:     solar.PresentDay,
		Rec:         rec,
		init:        init,
	}
	s.Temp = initialField(g, init)
	return s
}

func initialField(g *Grid, init InitialConditions) Field {
	t := Uniform(init.Temperature, g.Size())
	if g.Lats == nil {
		return t
	}
	if init.CosineShift {
		for i, lat := range g.Lats {
			t[i] += init.CosineAmplitude * (Cosd(lat) - 1)
		}
	}
	if init.NoiseShift {
		rng := rand.New(rand.NewSource(init.NoiseSeed))
		for i := range t {
			t[i] += rng.NormFloat64() * init.NoiseAmplitude
		}
	}
	return t
}

// Reset restores a single named field ("time", "temperature" or
// "globalmean") to its run-start value; used between ensemble members
// sharing a process.
func (s *State) Reset(field string) error {
	switch field {
	case "time":
		s.Time = s.init.Time
	case "temperature":
		s.Temp = initialField(s.Grid, s.init)
	case "globalmean":
		s.GlobalMean = s.init.GlobalMean
	default:
		return ConfigError{Field: field, Message: "unknown reset target"}
	}
	return nil
}

// ResetAll restores every running variable and clears the per-term caches.
func (s *State) ResetAll() {
	s.Time = s.init.Time
	s.Temp = initialField(s.Grid, s.init)
	s.GlobalMean = s.init.GlobalMean
	s.SubSteps = 0
	s.Solar = nil
	s.TSI = 0
	s.SolarFactor = 1
	s.Noise = 0
	s.Wind = nil
	s.TempDiff = nil
	s.Orbital = solar.PresentDay
}
