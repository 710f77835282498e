package ebm

// Term is one evaluable piece of the energy balance: a radiative flux, a
// meridional transfer or an external forcing. Evaluate is called once per
// RK sub-stage and may write term-owned caches and recorded series on the
// state. The returned field is either grid-sized or length 1 (broadcast).
type Term interface {
	Name() string
	Evaluate(s *State) (Field, error)
}

// Initializer is implemented by terms that need one-time setup before the
// loop starts: file-backed forcings load their series here, synthetic
// forcings generate their events. Load failures surface as DataLoadError
// and abort the run before any step is taken.
type Initializer interface {
	Init(s *State) error
}

// Equation assembles dT/dt: the configured terms are evaluated in order —
// ordering is a configuration contract, later terms may read caches
// written by earlier ones in the same sub-stage — summed, and divided by
// the heat capacity.
type Equation struct {
	HeatCapacity float64
	Terms        []Term
}

func (e *Equation) Derivative(s *State) (Field, error) {
	sum := make(Field, s.Grid.Size())
	for _, t := range e.Terms {
		f, err := t.Evaluate(s)
		if err != nil {
			return nil, err
		}
		sum.AddScaled(1, f)
	}
	inv := 1 / e.HeatCapacity
	for i := range sum {
		sum[i] *= inv
	}
	return sum, nil
}

// Prime runs every term's one-time setup.
func (e *Equation) Prime(s *State) error {
	for _, t := range e.Terms {
		if init, ok := t.(Initializer); ok {
			if err := init.Init(s); err != nil {
				return err
			}
		}
	}
	return nil
}
