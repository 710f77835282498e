package ebm

import "testing"

func TestMonitorConverged(t *testing.T) {
	m := &Monitor{Window: 5, Amplitude: 0.01}

	tests := []struct {
		name   string
		window []float64
		want   bool
	}{
		{"flat window", []float64{288, 288, 288, 288, 288}, true},
		{"tiny oscillation", []float64{288.001, 288.002, 288.001, 288.002, 288.001}, true},
		{"still drifting", []float64{287.0, 287.5, 288.0, 288.5, 289.0}, false},
		{"too short", []float64{288}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Converged(tt.window); got != tt.want {
				t.Errorf("Converged(%v) = %t, want %t", tt.window, got, tt.want)
			}
		})
	}
}

func TestMonitorThreshold(t *testing.T) {
	// Two samples 0.02 apart have sample std 0.02/sqrt(2) ~ 0.01414.
	window := []float64{288.00, 288.02}
	if !(&Monitor{Window: 2, Amplitude: 0.0142}).Converged(window) {
		t.Error("window just under the amplitude should converge")
	}
	if (&Monitor{Window: 2, Amplitude: 0.0141}).Converged(window) {
		t.Error("window just over the amplitude should not converge")
	}
}
