package ebm

import (
	"context"
	"errors"
	"math"
	"testing"
)

// constantFlux feeds a fixed flux into the balance.
type constantFlux struct {
	value Field
}

func (c constantFlux) Name() string                   { return "constant" }
func (c constantFlux) Evaluate(*State) (Field, error) { return c.value, nil }

// relaxFlux pulls the temperature toward a target.
type relaxFlux struct {
	target, rate float64
}

func (r relaxFlux) Name() string { return "relax" }

func (r relaxFlux) Evaluate(s *State) (Field, error) {
	f := make(Field, s.Grid.Size())
	for i, t := range s.Temp {
		f[i] = r.rate * (r.target - t)
	}
	return f, nil
}

// probeFlux records the global mean at the sampling cadence and
// contributes nothing to the balance.
type probeFlux struct{}

func (probeFlux) Name() string { return "probe" }

func (probeFlux) Evaluate(s *State) (Field, error) {
	if s.Rec != nil {
		s.Rec.RecordScalar("probe", s.SubSteps, s.GlobalMean)
	}
	return Field{0}, nil
}

type failingFlux struct {
	err error
}

func (f failingFlux) Name() string                   { return "failing" }
func (f failingFlux) Evaluate(*State) (Field, error) { return nil, f.err }

type failingInit struct {
	constantFlux
	err error
}

func (f failingInit) Init(*State) error { return f.err }

func newScalarState(t *testing.T, stepSize float64, rec *Recorder) *State {
	t.Helper()
	g, err := NewGrid(0, false, AnchorCircle)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return NewState(g, InitialConditions{Temperature: 288, GlobalMean: 288}, stepSize, rec)
}

func TestRunConstantFlux(t *testing.T) {
	// With a constant flux every RK stage produces the same slope, so one
	// step advances by exactly h*flux/capacity.
	s := newScalarState(t, 0.5, nil)
	eq := &Equation{HeatCapacity: 2, Terms: []Term{constantFlux{Field{4}}}}
	integ := &Integrator{Steps: 10, StepSize: 0.5, RecordEvery: 1}

	res, err := integ.Run(context.Background(), s, eq)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Time) != 11 {
		t.Fatalf("samples = %d, want 11", len(res.Time))
	}
	if res.GlobalMean[0] != 288 {
		t.Errorf("initial sample = %g, want 288", res.GlobalMean[0])
	}
	for i := 1; i < len(res.Time); i++ {
		want := 288 + float64(i)
		if math.Abs(res.GlobalMean[i]-want) > 1e-9 {
			t.Errorf("sample %d = %g, want %g", i, res.GlobalMean[i], want)
		}
		if math.Abs(res.Time[i]-float64(i)*0.5) > 1e-12 {
			t.Errorf("time %d = %g, want %g", i, res.Time[i], float64(i)*0.5)
		}
	}
	if res.Steps != 10 {
		t.Errorf("Steps = %d, want 10", res.Steps)
	}
	if s.SubSteps != 40 {
		t.Errorf("SubSteps = %d, want 40", s.SubSteps)
	}
	if res.Converged {
		t.Error("run without a monitor reported convergence")
	}
}

func TestRunRecordCadence(t *testing.T) {
	s := newScalarState(t, 1, nil)
	eq := &Equation{HeatCapacity: 1, Terms: []Term{constantFlux{Field{1}}}}

	var recorded []int
	integ := &Integrator{
		Steps:       10,
		StepSize:    1,
		RecordEvery: 3,
		OnRecord: func(step int, _, _ float64) {
			recorded = append(recorded, step)
		},
	}

	res, err := integ.Run(context.Background(), s, eq)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Time) != 4 {
		t.Fatalf("samples = %d, want steps/recordEvery+1 = 4", len(res.Time))
	}
	wantTimes := []float64{0, 3, 6, 9}
	for i, want := range wantTimes {
		if res.Time[i] != want {
			t.Errorf("Time[%d] = %g, want %g", i, res.Time[i], want)
		}
	}
	if len(recorded) != 3 || recorded[0] != 3 || recorded[2] != 9 {
		t.Errorf("OnRecord steps = %v, want [3 6 9]", recorded)
	}
	// The state still advanced through step 10 even though it was not
	// sampled.
	if res.Steps != 10 {
		t.Errorf("Steps = %d, want 10", res.Steps)
	}
	if math.Abs(s.Time-10) > 1e-12 {
		t.Errorf("final time = %g, want 10", s.Time)
	}
}

func TestRunConvergenceStopsEarly(t *testing.T) {
	rec := NewRecorder(10000, 10)
	s := newScalarState(t, 0.01, rec)
	eq := &Equation{
		HeatCapacity: 1,
		Terms:        []Term{relaxFlux{target: 290, rate: 1}, probeFlux{}},
	}
	integ := &Integrator{
		Steps:       10000,
		StepSize:    0.01,
		RecordEvery: 10,
		Monitor:     &Monitor{Window: 5, Amplitude: 1e-6},
	}

	res, err := integ.Run(context.Background(), s, eq)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Converged {
		t.Fatal("relaxation toward a fixed point did not converge")
	}
	if res.Steps >= 10000 {
		t.Errorf("Steps = %d, expected an early stop", res.Steps)
	}
	if len(res.Time) != len(res.Temp) || len(res.Time) != len(res.GlobalMean) {
		t.Fatalf("truncated lengths disagree: %d/%d/%d",
			len(res.Time), len(res.Temp), len(res.GlobalMean))
	}
	final := res.GlobalMean[len(res.GlobalMean)-1]
	if math.Abs(final-290) > 1e-3 {
		t.Errorf("final gmt = %g, want ~290", final)
	}

	probe := res.Series["probe"]
	if probe == nil {
		t.Fatal("probe series missing from result")
	}
	if len(probe) != len(res.GlobalMean)-1 {
		t.Errorf("probe series length = %d, want %d", len(probe), len(res.GlobalMean)-1)
	}
}

func TestRunNumericError(t *testing.T) {
	s := newScalarState(t, 1, nil)
	eq := &Equation{HeatCapacity: 1, Terms: []Term{constantFlux{Field{math.Inf(1)}}}}
	integ := &Integrator{Steps: 5, StepSize: 1, RecordEvery: 1}

	_, err := integ.Run(context.Background(), s, eq)
	var nerr NumericError
	if !errors.As(err, &nerr) {
		t.Fatalf("got %v, want NumericError", err)
	}
	if nerr.Step != 1 {
		t.Errorf("failed at step %d, want 1", nerr.Step)
	}
}

func TestRunTermError(t *testing.T) {
	sentinel := errors.New("no such column")
	s := newScalarState(t, 1, nil)
	eq := &Equation{HeatCapacity: 1, Terms: []Term{failingFlux{sentinel}}}
	integ := &Integrator{Steps: 5, StepSize: 1, RecordEvery: 1}

	_, err := integ.Run(context.Background(), s, eq)
	if !errors.Is(err, sentinel) {
		t.Errorf("got %v, want wrapped sentinel", err)
	}
}

func TestRunPrimeFailureAbortsBeforeStepping(t *testing.T) {
	sentinel := errors.New("missing forcing file")
	s := newScalarState(t, 1, nil)
	eq := &Equation{
		HeatCapacity: 1,
		Terms:        []Term{failingInit{constantFlux{Field{1}}, sentinel}},
	}
	integ := &Integrator{Steps: 5, StepSize: 1, RecordEvery: 1}

	_, err := integ.Run(context.Background(), s, eq)
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want setup error", err)
	}
	if s.SubSteps != 0 {
		t.Errorf("SubSteps = %d after failed setup, want 0", s.SubSteps)
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newScalarState(t, 1, nil)
	eq := &Equation{HeatCapacity: 1, Terms: []Term{constantFlux{Field{1}}}}
	integ := &Integrator{Steps: 5, StepSize: 1, RecordEvery: 1}

	_, err := integ.Run(ctx, s, eq)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestRunRejectsBadParameters(t *testing.T) {
	eq := &Equation{HeatCapacity: 1, Terms: []Term{constantFlux{Field{1}}}}

	tests := []struct {
		name  string
		integ Integrator
		cap   float64
	}{
		{"zero steps", Integrator{Steps: 0, StepSize: 1, RecordEvery: 1}, 1},
		{"zero step size", Integrator{Steps: 10, StepSize: 0, RecordEvery: 1}, 1},
		{"zero record interval", Integrator{Steps: 10, StepSize: 1, RecordEvery: 0}, 1},
		{"bad monitor window", Integrator{Steps: 10, StepSize: 1, RecordEvery: 1, Monitor: &Monitor{}}, 1},
		{"zero heat capacity", Integrator{Steps: 10, StepSize: 1, RecordEvery: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScalarState(t, 1, nil)
			badEq := &Equation{HeatCapacity: tt.cap, Terms: eq.Terms}
			_, err := tt.integ.Run(context.Background(), s, badEq)
			var cerr ConfigError
			if !errors.As(err, &cerr) {
				t.Errorf("got %v, want ConfigError", err)
			}
		})
	}
}
