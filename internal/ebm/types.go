package ebm

import "math"

// Field is a zonal quantity: one value per latitude band, or a single
// value for the 0-dimensional model.
type Field []float64

func Uniform(v float64, n int) Field {
	f := make(Field, n)
	for i := range f {
		f[i] = v
	}
	return f
}

func (f Field) Clone() Field {
	c := make(Field, len(f))
	copy(c, f)
	return c
}

func (f Field) IsValid() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AddScaled accumulates a*g into f. A length-1 g is broadcast over f, so
// scalar flux contributions combine with zonal ones.
func (f Field) AddScaled(a float64, g Field) {
	if len(g) == 1 {
		for i := range f {
			f[i] += a * g[0]
		}
		return
	}
	for i := range f {
		f[i] += a * g[i]
	}
}

func (f Field) Scale(a float64) Field {
	c := make(Field, len(f))
	for i := range f {
		c[i] = a * f[i]
	}
	return c
}
