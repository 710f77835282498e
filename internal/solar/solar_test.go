package solar

import (
	"math"
	"testing"
)

func TestDailyInsolationEquinox(t *testing.T) {
	// At the vernal equinox the declination is near zero, so the equator
	// should see close to S0/pi times the distance factor.
	q := DailyInsolation(0, 80, PresentDay)
	if q < 400 || q > 460 {
		t.Fatalf("equatorial equinox insolation = %.1f, want ~435", q)
	}

	// Poles receive almost nothing at equinox.
	if qp := DailyInsolation(89, 80, PresentDay); qp > 30 {
		t.Fatalf("polar equinox insolation = %.1f, want near zero", qp)
	}
}

func TestDailyInsolationPolarSeasons(t *testing.T) {
	// Northern high summer: the pole is in continuous daylight and
	// receives more than the equator.
	summer := DailyInsolation(90, 172, PresentDay)
	if summer < 500 {
		t.Fatalf("north pole midsummer insolation = %.1f, want > 500", summer)
	}
	// Polar night.
	if winter := DailyInsolation(90, 355, PresentDay); winter != 0 {
		t.Fatalf("north pole midwinter insolation = %.1f, want 0", winter)
	}
}

func TestAnnualMeanProperties(t *testing.T) {
	lats := []float64{-85, -45, 0, 45, 85}
	q := AnnualMean(lats, PresentDay)
	if len(q) != len(lats) {
		t.Fatalf("len = %d, want %d", len(q), len(lats))
	}
	// Annual mean decreases from equator to pole.
	if !(q[2] > q[1] && q[1] > q[0]) {
		t.Fatalf("annual mean not decreasing poleward: %v", q)
	}
	// Equatorial annual mean is around 400 W/m^2.
	if q[2] < 380 || q[2] > 440 {
		t.Fatalf("equatorial annual mean = %.1f, want ~410", q[2])
	}
	// Hemispheric near-symmetry of the annual mean.
	if d := math.Abs(q[0] - q[4]); d > 15 {
		t.Fatalf("hemispheric asymmetry %.1f too large: %v", d, q)
	}
}

func TestObliquityControlsPolarMean(t *testing.T) {
	low := Params{Eccentricity: 0.017236, Obliquity: 22.0, LongPeri: 281.37}
	high := Params{Eccentricity: 0.017236, Obliquity: 24.5, LongPeri: 281.37}
	qLow := AnnualMean([]float64{85}, low)[0]
	qHigh := AnnualMean([]float64{85}, high)[0]
	if qHigh <= qLow {
		t.Fatalf("higher obliquity should raise polar insolation: low=%.1f high=%.1f", qLow, qHigh)
	}
}
