package ebm

import (
	"errors"
	"math"
	"testing"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/solar"
)

func TestNewStateUniform(t *testing.T) {
	g, err := NewGrid(10, true, AnchorBelt)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	s := NewState(g, InitialConditions{Temperature: 288, GlobalMean: 288}, 86400, nil)

	if len(s.Temp) != g.Size() {
		t.Fatalf("temp length = %d, want %d", len(s.Temp), g.Size())
	}
	for i, v := range s.Temp {
		if v != 288 {
			t.Fatalf("Temp[%d] = %g, want 288", i, v)
		}
	}
	if s.SolarFactor != 1 {
		t.Errorf("SolarFactor = %g, want 1", s.SolarFactor)
	}
	if s.Orbital != solar.PresentDay {
		t.Errorf("Orbital = %+v, want present-day parameters", s.Orbital)
	}
}

func TestNewStateCosineShift(t *testing.T) {
	g, err := NewGrid(10, true, AnchorBelt)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	init := InitialConditions{
		Temperature:     288,
		CosineShift:     true,
		CosineAmplitude: 30,
	}
	s := NewState(g, init, 86400, nil)

	for i, lat := range g.Lats {
		want := 288 + 30*(Cosd(lat)-1)
		if math.Abs(s.Temp[i]-want) > 1e-12 {
			t.Fatalf("Temp[%d] = %g, want %g", i, s.Temp[i], want)
		}
	}
	// Coldest at the poles, warmest near the equator.
	if s.Temp[0] >= s.Temp[len(s.Temp)/2] {
		t.Error("pole band not colder than equator band")
	}
}

func TestNewStateNoiseShiftDeterministic(t *testing.T) {
	g, err := NewGrid(10, true, AnchorBelt)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	init := InitialConditions{
		Temperature:    288,
		NoiseShift:     true,
		NoiseAmplitude: 2,
		NoiseSeed:      42,
	}
	a := NewState(g, init, 86400, nil)
	b := NewState(g, init, 86400, nil)
	for i := range a.Temp {
		if a.Temp[i] != b.Temp[i] {
			t.Fatal("same seed produced different initial fields")
		}
	}

	init.NoiseSeed = 43
	c := NewState(g, init, 86400, nil)
	same := true
	for i := range a.Temp {
		if a.Temp[i] != c.Temp[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical initial fields")
	}
}

func TestStateReset(t *testing.T) {
	g, err := NewGrid(0, false, AnchorCircle)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	s := NewState(g, InitialConditions{Time: 100, Temperature: 288, GlobalMean: 288}, 3600, nil)

	s.Time = 5000
	s.Temp[0] = 300
	s.GlobalMean = 300

	if err := s.Reset("time"); err != nil {
		t.Fatalf("Reset(time): %v", err)
	}
	if s.Time != 100 {
		t.Errorf("Time = %g, want 100", s.Time)
	}
	if s.Temp[0] != 300 {
		t.Error("Reset(time) touched the temperature field")
	}

	if err := s.Reset("temperature"); err != nil {
		t.Fatalf("Reset(temperature): %v", err)
	}
	if s.Temp[0] != 288 {
		t.Errorf("Temp[0] = %g, want 288", s.Temp[0])
	}

	if err := s.Reset("globalmean"); err != nil {
		t.Fatalf("Reset(globalmean): %v", err)
	}
	if s.GlobalMean != 288 {
		t.Errorf("GlobalMean = %g, want 288", s.GlobalMean)
	}

	err = s.Reset("pressure")
	var cerr ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("Reset(pressure) = %v, want ConfigError", err)
	}
}

func TestStateResetAll(t *testing.T) {
	g, err := NewGrid(10, true, AnchorBelt)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	s := NewState(g, InitialConditions{Temperature: 288, GlobalMean: 288}, 86400, nil)

	s.Time = 1e6
	s.SubSteps = 400
	s.TSI = 2
	s.SolarFactor = 0.9
	s.Noise = 1.5
	s.Solar = Uniform(340, g.Size())
	s.Wind = Field{1}
	s.TempDiff = Field{0.5}
	s.Orbital = solar.Params{Eccentricity: 0.05}

	s.ResetAll()

	if s.Time != 0 || s.SubSteps != 0 {
		t.Errorf("Time/SubSteps = %g/%d, want 0/0", s.Time, s.SubSteps)
	}
	if s.TSI != 0 || s.SolarFactor != 1 || s.Noise != 0 {
		t.Error("solar caches not cleared")
	}
	if s.Solar != nil || s.Wind != nil || s.TempDiff != nil {
		t.Error("field caches not cleared")
	}
	if s.Orbital != solar.PresentDay {
		t.Error("orbital parameters not restored")
	}
	for _, v := range s.Temp {
		if v != 288 {
			t.Fatal("temperature field not restored")
		}
	}
}
