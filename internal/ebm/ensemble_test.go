package ebm

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestEnsembleMembersAreIndependent(t *testing.T) {
	e := &Ensemble{
		Size: 3,
		Build: func(member int) (*State, *Equation, *Integrator, error) {
			g, err := NewGrid(0, false, AnchorCircle)
			if err != nil {
				return nil, nil, nil, err
			}
			s := NewState(g, InitialConditions{Temperature: 288, GlobalMean: 288}, 1, nil)
			eq := &Equation{
				HeatCapacity: 1,
				Terms:        []Term{constantFlux{Field{float64(member + 1)}}},
			}
			integ := &Integrator{Steps: 10, StepSize: 1, RecordEvery: 1}
			return s, eq, integ, nil
		},
	}

	results, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	// Member m integrates a constant flux m+1, so after 10 unit steps its
	// temperature is 288 + 10*(m+1).
	for m, res := range results {
		want := 288 + 10*float64(m+1)
		got := res.GlobalMean[len(res.GlobalMean)-1]
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("member %d final gmt = %g, want %g", m, got, want)
		}
	}
}

func TestEnsembleBuildErrorAborts(t *testing.T) {
	sentinel := errors.New("bad member config")
	e := &Ensemble{
		Size: 4,
		Build: func(member int) (*State, *Equation, *Integrator, error) {
			if member == 2 {
				return nil, nil, nil, sentinel
			}
			g, _ := NewGrid(0, false, AnchorCircle)
			s := NewState(g, InitialConditions{Temperature: 288, GlobalMean: 288}, 1, nil)
			eq := &Equation{HeatCapacity: 1, Terms: []Term{constantFlux{Field{1}}}}
			return s, eq, &Integrator{Steps: 5, StepSize: 1, RecordEvery: 1}, nil
		},
	}

	_, err := e.Run(context.Background())
	if !errors.Is(err, sentinel) {
		t.Errorf("got %v, want build error", err)
	}
}

func TestEnsembleRunErrorAborts(t *testing.T) {
	sentinel := errors.New("forcing evaluation failed")
	e := &Ensemble{
		Size: 2,
		Build: func(member int) (*State, *Equation, *Integrator, error) {
			g, _ := NewGrid(0, false, AnchorCircle)
			s := NewState(g, InitialConditions{Temperature: 288, GlobalMean: 288}, 1, nil)
			terms := []Term{constantFlux{Field{1}}}
			if member == 1 {
				terms = []Term{failingFlux{sentinel}}
			}
			eq := &Equation{HeatCapacity: 1, Terms: terms}
			return s, eq, &Integrator{Steps: 5, StepSize: 1, RecordEvery: 1}, nil
		},
	}

	_, err := e.Run(context.Background())
	if !errors.Is(err, sentinel) {
		t.Errorf("got %v, want member run error", err)
	}
}
