package ebm

import "gonum.org/v1/gonum/stat"

// Monitor decides whether a run has reached a steady state: the sample
// standard deviation of a trailing window of recorded global-mean
// temperatures falls at or below Amplitude. Window counts recorded
// samples, not integration steps.
type Monitor struct {
	Window    int
	Amplitude float64
}

// Converged reports whether the trailing window satisfies the amplitude
// criterion. Exhaustion of the step budget is not this monitor's business;
// the integrator reports that case separately so callers can tell a
// converged run from one that merely ran out of steps.
func (m *Monitor) Converged(window []float64) bool {
	if len(window) < 2 {
		return false
	}
	return stat.StdDev(window, nil) <= m.Amplitude
}
