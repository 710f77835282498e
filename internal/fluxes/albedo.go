package fluxes

import (
	"math"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

// AlbedoFunc maps the current state onto an albedo distribution over the
// temperature grid. Albedo functions are pure: they never write state or
// output buffers themselves.
type AlbedoFunc func(s *ebm.State) ebm.Field

// StaticAlbedo is a single global albedo value.
func StaticAlbedo(alpha float64) AlbedoFunc {
	return func(s *ebm.State) ebm.Field {
		return ebm.Uniform(alpha, s.Grid.Size())
	}
}

// StaticBudyko is Budyko's three-zone distribution fixed to latitude:
// alphaP up to border1, alphaP+0.18 up to border2 and alphaP+0.3 poleward
// of that. On a zero-dimensional grid there is no latitude to key on and
// the distribution degenerates to the tropical value alphaP.
func StaticBudyko(alphaP, border1, border2 float64) AlbedoFunc {
	return func(s *ebm.State) ebm.Field {
		if s.Grid.Lats == nil {
			return ebm.Uniform(alphaP, s.Grid.Size())
		}
		a := make(ebm.Field, s.Grid.Size())
		for i, lat := range s.Grid.Lats {
			switch abs := math.Abs(lat); {
			case abs <= border1:
				a[i] = alphaP
			case abs <= border2:
				a[i] = alphaP + 0.18
			default:
				a[i] = alphaP + 0.3
			}
		}
		return a
	}
}

// DynamicBudyko is the three-zone distribution keyed to local temperature
// instead of latitude: alpha0 above t1, alpha1 between t2 and t1, alpha2
// at or below t2.
func DynamicBudyko(t1, t2, alpha0, alpha1, alpha2 float64) AlbedoFunc {
	return func(s *ebm.State) ebm.Field {
		a := make(ebm.Field, len(s.Temp))
		for i, t := range s.Temp {
			switch {
			case t <= t2:
				a[i] = alpha2
			case t <= t1:
				a[i] = alpha1
			default:
				a[i] = alpha0
			}
		}
		return a
	}
}

// SmoothAlbedo is the tanh transition from an ice-free albedo alphaF to
// an ice-covered alphaI around the reference temperature tRef.
func SmoothAlbedo(tRef, alphaF, alphaI, steepness float64) AlbedoFunc {
	return func(s *ebm.State) ebm.Field {
		a := make(ebm.Field, len(s.Temp))
		for i, t := range s.Temp {
			a[i] = alphaI - 0.5*(alphaI-alphaF)*(1+math.Tanh(steepness*(t-tRef)))
		}
		return a
	}
}

// DynamicSellers is Sellers' linear temperature dependence. z is surface
// elevation in meters and b the empirical per-band offset; either may be
// a single value broadcast over the grid. The albedo is capped at 0.85.
func DynamicSellers(z, b ebm.Field) AlbedoFunc {
	return func(s *ebm.State) ebm.Field {
		a := make(ebm.Field, len(s.Temp))
		for i, t := range s.Temp {
			tg := t - 0.0065*broadcast(z, i)
			if tg < 283.16 {
				a[i] = broadcast(b, i) - 0.009*tg
			} else {
				a[i] = broadcast(b, i) - 2.548
			}
			if a[i] > 0.85 {
				a[i] = 0.85
			}
		}
		return a
	}
}

// broadcast reads element i of a per-band parameter, treating a
// single-element field as a constant over the grid.
func broadcast(f ebm.Field, i int) float64 {
	if len(f) == 1 {
		return f[0]
	}
	return f[i]
}
