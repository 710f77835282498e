package ebm

import (
	"context"
	"sync"
)

// Ensemble runs independent members concurrently. Members share nothing:
// Build must return a fresh state, equation and integrator per member —
// term instances own mutable trackers and caches, so reusing them across
// members would cross-contaminate runs.
type Ensemble struct {
	Size  int
	Build func(member int) (*State, *Equation, *Integrator, error)
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.Size)
	errs := make([]error, e.Size)

	var wg sync.WaitGroup
	for i := 0; i < e.Size; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			s, eq, integ, err := e.Build(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = integ.Run(ctx, s, eq)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
