package analysis

import (
	"math"
	"math/cmplx"
)

// Periodogram returns the amplitude spectrum of a recorded global-mean
// temperature series. The mean is removed first so the zero-frequency bin
// does not swamp seasonal or forcing-driven oscillations, and the series
// is zero-padded to a power of two.
func Periodogram(gmt []float64) []float64 {
	if len(gmt) < 2 {
		return nil
	}
	mean, _ := MeanStd(gmt)

	n := 1
	for n < len(gmt) {
		n *= 2
	}
	padded := make([]float64, n)
	for i, v := range gmt {
		padded[i] = v - mean
	}

	spec := fft(padded)
	amp := make([]float64, len(spec)/2)
	for i := range amp {
		amp[i] = cmplx.Abs(spec[i])
	}
	return amp
}

// DominantPeriod returns the strongest oscillation period in units of the
// sample interval, or 0 when the series has no interior spectral peak.
func DominantPeriod(gmt []float64, sampleInterval float64) float64 {
	amp := Periodogram(gmt)
	if len(amp) < 2 {
		return 0
	}
	maxIdx := 0
	maxAmp := 0.0
	for i := 1; i < len(amp); i++ {
		if amp[i] > maxAmp {
			maxAmp = amp[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0
	}
	// Bin k of an n-point transform corresponds to period n/k samples.
	n := 1
	for n < len(gmt) {
		n *= 2
	}
	return float64(n) / float64(maxIdx) * sampleInterval
}

// fft is a radix-2 Cooley-Tukey transform; len(data) must be a power of
// two, which Periodogram guarantees by padding.
func fft(data []float64) []complex128 {
	n := len(data)
	if n == 1 {
		return []complex128{complex(data[0], 0)}
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	fe := fft(even)
	fo := fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = fe[k] + w*fo[k]
		out[k+n/2] = fe[k] - w*fo[k]
	}
	return out
}
