package ebm

import "fmt"

// ConfigError reports inconsistent or missing run configuration. It is
// always raised before the integration loop starts.
type ConfigError struct {
	Field   string
	Message string
}

func (e ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// DataLoadError reports a missing or malformed external input file. It is
// fatal for the run; there is no skip-and-continue mode for forcings.
type DataLoadError struct {
	Path string
	Err  error
}

func (e DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e DataLoadError) Unwrap() error { return e.Err }

// NumericError reports a NaN or Inf temperature produced during
// integration, surfaced immediately instead of propagating through the
// remaining RK stages.
type NumericError struct {
	Step int
	Time float64
}

func (e NumericError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): temperature field is NaN/Inf", e.Step, e.Time)
}
