// Package solar computes daily and annual-mean insolation over latitude
// from orbital parameters, after Berger (1978). It replaces the external
// insolation tables the model otherwise relies on with a direct
// evaluation, so long runs can vary the orbital configuration over time.
package solar

import "math"

// Constant is the total solar irradiance in W/m^2 used when no irradiance
// series modulates it.
const Constant = 1365.2

const daysPerYear = 365.2422

// Params is one orbital configuration: eccentricity, obliquity in degrees
// and the longitude of perihelion in degrees.
type Params struct {
	Eccentricity float64
	Obliquity    float64
	LongPeri     float64
}

// PresentDay matches the 1950 reference configuration.
var PresentDay = Params{
	Eccentricity: 0.017236,
	Obliquity:    23.446,
	LongPeri:     281.37,
}

// DailyInsolation returns the 24h-mean insolation at the given latitude
// (degrees) and calendar day (0..365, day 80 is the vernal equinox) for an
// orbital configuration.
func DailyInsolation(lat, day float64, p Params) float64 {
	lam := solarLongitude(day, p)
	phi := lat * math.Pi / 180
	eps := p.Obliquity * math.Pi / 180
	delta := math.Asin(math.Sin(eps) * math.Sin(lam))

	// Hour angle at sunrise/sunset, clamped for polar day and night.
	cosH0 := -math.Tan(phi) * math.Tan(delta)
	var h0 float64
	switch {
	case cosH0 <= -1:
		h0 = math.Pi
	case cosH0 >= 1:
		h0 = 0
	default:
		h0 = math.Acos(cosH0)
	}

	e := p.Eccentricity
	perih := (p.LongPeri + 180) * math.Pi / 180
	// Inverse square of the sun-earth distance in units of the semi-major
	// axis.
	rho := (1 + e*math.Cos(lam-perih)) / (1 - e*e)

	return Constant / math.Pi * rho * rho *
		(h0*math.Sin(phi)*math.Sin(delta) + math.Cos(phi)*math.Cos(delta)*math.Sin(h0))
}

// AnnualMean returns the annual-mean insolation for each latitude.
func AnnualMean(lats []float64, p Params) []float64 {
	q := make([]float64, len(lats))
	for i, lat := range lats {
		sum := 0.0
		for d := 0; d < 365; d++ {
			sum += DailyInsolation(lat, float64(d), p)
		}
		q[i] = sum / 365
	}
	return q
}

// solarLongitude converts a calendar day into true solar longitude,
// following Berger's series expansion in eccentricity.
func solarLongitude(day float64, p Params) float64 {
	e := p.Eccentricity
	perih := (p.LongPeri + 180) * math.Pi / 180
	beta := math.Sqrt(1 - e*e)

	lamM0 := -2 * ((e/2+e*e*e/8)*(1+beta)*math.Sin(-perih) -
		e*e/4*(0.5+beta)*math.Sin(-2*perih) +
		e*e*e/8*(1.0/3+beta)*math.Sin(-3*perih))
	lamM := lamM0 + (day-80)*2*math.Pi/daysPerYear

	return lamM + (2*e-e*e*e/4)*math.Sin(lamM-perih) +
		1.25*e*e*math.Sin(2*(lamM-perih)) +
		13.0/12*e*e*e*math.Sin(3*(lamM-perih))
}
