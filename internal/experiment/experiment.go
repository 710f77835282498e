package experiment

import (
	"context"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/config"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

// Experiment turns a validated configuration into runnable integrations.
type Experiment struct {
	cfg *config.Config
	reg *Registry

	// OnRecord, when set, is attached to every built integrator.
	OnRecord func(step int, time, gmt float64)
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, reg: NewRegistry()}, nil
}

// Build assembles a fresh state, equation and integrator. Every call
// returns fully isolated instances; ensemble members must not share
// state, recorders or term-internal trackers.
func (e *Experiment) Build(member int) (*ebm.State, *ebm.Equation, *ebm.Integrator, error) {
	grid, err := e.cfg.Grid.BuildGrid()
	if err != nil {
		return nil, nil, nil, err
	}

	recordEvery := e.cfg.Integration.RecordEvery
	if recordEvery == 0 {
		recordEvery = 1
	}
	rec := ebm.NewRecorder(e.cfg.Integration.Steps, recordEvery)

	init := e.cfg.Initial.InitialConditions()
	// Each ensemble member gets its own noise realization.
	init.NoiseSeed += int64(member)
	state := ebm.NewState(grid, init, e.cfg.Integration.StepSize, rec)

	terms := make([]ebm.Term, len(e.cfg.Terms))
	for i, tc := range e.cfg.Terms {
		params := tc.Params
		term, err := e.reg.Term(tc.Name, &params)
		if err != nil {
			return nil, nil, nil, err
		}
		terms[i] = term
	}

	eq := &ebm.Equation{
		HeatCapacity: e.cfg.Equation.HeatCapacity,
		Terms:        terms,
	}

	integ := &ebm.Integrator{
		Steps:       e.cfg.Integration.Steps,
		StepSize:    e.cfg.Integration.StepSize,
		RecordEvery: recordEvery,
		OnRecord:    e.OnRecord,
	}
	if c := e.cfg.Integration.Convergence; c.Enabled {
		integ.Monitor = &ebm.Monitor{Window: c.Window, Amplitude: c.Amplitude}
	}
	return state, eq, integ, nil
}

// Run executes a single integration.
func (e *Experiment) Run(ctx context.Context) (*ebm.Result, error) {
	state, eq, integ, err := e.Build(0)
	if err != nil {
		return nil, err
	}
	return integ.Run(ctx, state, eq)
}

// RunEnsemble executes the configured number of members concurrently and
// returns their results in member order. An ensemble size below two runs
// a single member.
func (e *Experiment) RunEnsemble(ctx context.Context) ([]*ebm.Result, error) {
	size := e.cfg.Ensemble
	if size < 2 {
		res, err := e.Run(ctx)
		if err != nil {
			return nil, err
		}
		return []*ebm.Result{res}, nil
	}
	ens := &ebm.Ensemble{Size: size, Build: e.Build}
	return ens.Run(ctx)
}
