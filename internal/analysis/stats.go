// Package analysis provides post-run evaluation helpers: equilibrium
// statistics over recorded temperature series, ensemble averaging and
// polynomial fitting of zonal profiles.
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

// MeanStd returns the mean and sample standard deviation of a series.
func MeanStd(series []float64) (mean, std float64) {
	mean = stat.Mean(series, nil)
	std = stat.StdDev(series, nil)
	return mean, std
}

// Equilibrium evaluates the trailing window of a global-mean series and
// returns its mean and standard deviation, the numbers the steady-state
// criterion is judged on.
func Equilibrium(gmt []float64, window int) (mean, std float64, err error) {
	if window < 2 {
		return 0, 0, fmt.Errorf("window %d too small", window)
	}
	if len(gmt) < window {
		return 0, 0, fmt.Errorf("series has %d samples, window needs %d", len(gmt), window)
	}
	mean, std = MeanStd(gmt[len(gmt)-window:])
	return mean, std, nil
}

// EnsembleMean averages the global-mean series of several runs
// elementwise, truncated to the shortest member.
func EnsembleMean(results []*ebm.Result) []float64 {
	if len(results) == 0 {
		return nil
	}
	n := len(results[0].GlobalMean)
	for _, r := range results[1:] {
		if len(r.GlobalMean) < n {
			n = len(r.GlobalMean)
		}
	}
	out := make([]float64, n)
	for i := range out {
		for _, r := range results {
			out[i] += r.GlobalMean[i]
		}
		out[i] /= float64(len(results))
	}
	return out
}

// Polyfit fits a polynomial of the given degree to (x, y) by least
// squares and returns the coefficients in ascending order.
func Polyfit(x, y []float64, degree int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) <= degree {
		return nil, fmt.Errorf("need more than %d points for degree %d", degree, degree)
	}

	a := mat.NewDense(len(x), degree+1, nil)
	for i, xv := range x {
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= xv
		}
	}
	b := mat.NewVecDense(len(y), y)

	var qr mat.QR
	qr.Factorize(a)
	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, b); err != nil {
		return nil, err
	}

	coeffs := make([]float64, degree+1)
	for j := range coeffs {
		coeffs[j] = c.AtVec(j)
	}
	return coeffs, nil
}

// PolyEval evaluates coefficients from Polyfit at x.
func PolyEval(coeffs []float64, x float64) float64 {
	v := 0.0
	for j := len(coeffs) - 1; j >= 0; j-- {
		v = v*x + coeffs[j]
	}
	return v
}

// BoundaryTempDiff interpolates a zonal profile onto the full boundary
// set from pole to pole with a degree-4 fit and differences adjacent
// boundaries. It serves circle-anchored grids, where the bands themselves
// do not line up with the belt boundaries.
func BoundaryTempDiff(g *ebm.Grid, temp ebm.Field) (ebm.Field, error) {
	if g.Lats == nil {
		return nil, fmt.Errorf("temperature difference needs a latitude grid")
	}
	coeffs, err := Polyfit(g.Lats, temp, 4)
	if err != nil {
		return nil, err
	}

	lo := -90.0
	if !g.BothHemispheres {
		lo = 0
	}
	n := int((90 - lo) / g.Resolution)
	dT := make(ebm.Field, n)
	prev := PolyEval(coeffs, lo)
	for i := 0; i < n; i++ {
		next := PolyEval(coeffs, lo+float64(i+1)*g.Resolution)
		dT[i] = next - prev
		prev = next
	}
	return dT, nil
}
