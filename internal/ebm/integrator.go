package ebm

import (
	"context"
	"fmt"
)

// Result holds the recorded time series of one run. Time, Temp and
// GlobalMean carry the initial sample plus one entry per recorded step;
// Series holds the term-recorded auxiliary buffers (fluxes, albedo, noise,
// forcings), each one entry per recorded step, aligned to the same cursor.
type Result struct {
	Time       []float64
	Temp       []Field
	GlobalMean []float64
	Series     map[string][]Field

	// Converged is true when the steady-state criterion stopped the run;
	// false when the step budget was exhausted.
	Converged bool
	// Steps is the number of integration steps actually taken.
	Steps int
}

// Integrator is the classical fixed-step RK4 loop. Each step evaluates the
// model equation four times at perturbed temperatures, combines the slopes
// into a weighted increment, advances time, records at the configured
// cadence and optionally checks the steady-state criterion.
type Integrator struct {
	Steps       int
	StepSize    float64
	RecordEvery int

	// Monitor enables early termination when non-nil.
	Monitor *Monitor

	// OnRecord, when set, observes every recorded sample; used by the live
	// view. It must not mutate the state.
	OnRecord func(step int, time, gmt float64)
}

func (in *Integrator) validate() error {
	if in.Steps <= 0 {
		return ConfigError{Field: "steps", Message: fmt.Sprintf("must be positive, got %d", in.Steps)}
	}
	if in.StepSize <= 0 {
		return ConfigError{Field: "stepsize", Message: fmt.Sprintf("must be positive, got %g", in.StepSize)}
	}
	if in.RecordEvery <= 0 {
		return ConfigError{Field: "record_every", Message: fmt.Sprintf("must be positive, got %d", in.RecordEvery)}
	}
	if in.Monitor != nil && in.Monitor.Window <= 0 {
		return ConfigError{Field: "convergence.window", Message: "must be positive"}
	}
	return nil
}

// Run integrates the equation over the state. The state must be freshly
// constructed (or reset); it is mutated in place for the whole run. Terms
// are primed before the first step, so data-load failures abort before any
// integration happens.
func (in *Integrator) Run(ctx context.Context, s *State, eq *Equation) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if eq.HeatCapacity <= 0 {
		return nil, ConfigError{Field: "heat_capacity", Message: "must be positive"}
	}
	if err := eq.Prime(s); err != nil {
		return nil, err
	}

	h := in.StepSize
	slots := in.Steps/in.RecordEvery + 1
	res := &Result{
		Time:       make([]float64, slots),
		Temp:       make([]Field, slots),
		GlobalMean: make([]float64, slots),
	}
	res.Time[0] = s.Time
	res.Temp[0] = s.Temp.Clone()
	res.GlobalMean[0] = s.GlobalMean

	n := s.Grid.Size()
	scratch := make(Field, n)
	j := 0

	for i := 1; i <= in.Steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t0 := s.Temp.Clone()

		k1, err := in.slope(s, eq, h)
		if err != nil {
			return nil, err
		}
		perturb(scratch, t0, 0.5, k1)
		s.Temp = scratch

		k2, err := in.slope(s, eq, h)
		if err != nil {
			return nil, err
		}
		perturb(scratch, t0, 0.5, k2)
		s.Temp = scratch

		k3, err := in.slope(s, eq, h)
		if err != nil {
			return nil, err
		}
		perturb(scratch, t0, 1, k3)
		s.Temp = scratch

		k4, err := in.slope(s, eq, h)
		if err != nil {
			return nil, err
		}

		s.Time += h

		// The weighted increment always advances the state; recording
		// below is a sampling decision only.
		next := make(Field, n)
		for x := 0; x < n; x++ {
			next[x] = t0[x] + (k1[x]+2*k2[x]+2*k3[x]+k4[x])/6
		}
		s.Temp = next
		s.GlobalMean = s.Grid.GlobalMean(next)
		res.Steps = i

		if !next.IsValid() {
			return nil, NumericError{Step: i, Time: s.Time}
		}

		if i%in.RecordEvery == 0 {
			j++
			res.Time[j] = s.Time
			res.Temp[j] = next.Clone()
			res.GlobalMean[j] = s.GlobalMean
			if in.OnRecord != nil {
				in.OnRecord(i, s.Time, s.GlobalMean)
			}

			if in.Monitor != nil && s.SubSteps > 4*in.Monitor.Window && j >= in.Monitor.Window {
				window := res.GlobalMean[j-in.Monitor.Window+1 : j+1]
				if in.Monitor.Converged(window) {
					res.Converged = true
					break
				}
			}
		}
	}

	res.Time = res.Time[:j+1]
	res.Temp = res.Temp[:j+1]
	res.GlobalMean = res.GlobalMean[:j+1]
	if s.Rec != nil {
		s.Rec.Truncate(j)
		res.Series = s.Rec.Series()
	}
	return res, nil
}

// slope evaluates one RK stage: h times the model equation at the current
// state, advancing the sub-stage counter afterwards.
func (in *Integrator) slope(s *State, eq *Equation, h float64) (Field, error) {
	d, err := eq.Derivative(s)
	if err != nil {
		return nil, err
	}
	s.SubSteps++
	for i := range d {
		d[i] *= h
	}
	return d, nil
}

func perturb(dst, t0 Field, a float64, k Field) {
	for i := range dst {
		dst[i] = t0[i] + a*k[i]
	}
}
