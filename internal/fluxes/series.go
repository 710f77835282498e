// Package fluxes implements the energy-flux terms the model equation sums:
// absorbed insolation with its albedo feedbacks, outgoing radiation,
// meridional transfer and external forcings. Every term reads the shared
// run state and returns a flux in W/m^2, scalar for the 0-dimensional
// model or per latitude band for the 1-dimensional one.
package fluxes

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

// TimeUnit names the unit of a forcing file's time column. The model runs
// in seconds; series timestamps are converted on load.
type TimeUnit string

const (
	Second TimeUnit = "second"
	Minute TimeUnit = "minute"
	Hour   TimeUnit = "hour"
	Day    TimeUnit = "day"
	Week   TimeUnit = "week"
	Month  TimeUnit = "month"
	Year   TimeUnit = "year"
)

// Seconds returns the conversion factor to seconds. Months and years use
// the 365-day calendar the rest of the model assumes.
func (u TimeUnit) Seconds() (float64, error) {
	switch u {
	case "", Second:
		return 1, nil
	case Minute:
		return 60, nil
	case Hour:
		return 3600, nil
	case Day:
		return 86400, nil
	case Week:
		return 86400 * 7, nil
	case Month:
		return 86400 * 365.0 / 12, nil
	case Year:
		return 86400 * 365, nil
	}
	return 0, ebm.ConfigError{Field: "timeunit", Message: fmt.Sprintf("unknown unit %q", string(u))}
}

// Series is one external forcing input: timestamps in seconds of model
// time paired with values.
type Series struct {
	Times  []float64
	Values []float64
}

// SeriesSpec describes how to read a (time, value) series from a text
// file. Columns are zero-based. A BP series counts time backwards from
// TimeStart ("before present"); otherwise timestamps are offset forward
// by TimeStart.
type SeriesSpec struct {
	Path        string
	Delimiter   string
	SkipHeader  int
	SkipFooter  int
	TimeColumn  int
	ValueColumn int
	Unit        TimeUnit
	BP          bool
	TimeStart   float64
}

// Load reads the series, applies the time convention and unit conversion
// and sorts it by ascending timestamp. Any problem with the file is a
// DataLoadError.
func (sp SeriesSpec) Load() (*Series, error) {
	cols, err := readColumns(sp.Path, sp.Delimiter, sp.SkipHeader, sp.SkipFooter, sp.TimeColumn, sp.ValueColumn)
	if err != nil {
		return nil, err
	}
	s := &Series{Times: cols[0], Values: cols[1]}
	if len(s.Times) == 0 {
		return nil, ebm.DataLoadError{Path: sp.Path, Err: fmt.Errorf("no data rows")}
	}

	factor, err := sp.Unit.Seconds()
	if err != nil {
		return nil, err
	}
	for i, t := range s.Times {
		if sp.BP {
			t = -(t - sp.TimeStart)
		} else {
			t += sp.TimeStart
		}
		s.Times[i] = t * factor
	}

	sort.Sort(byTime{s})
	return s, nil
}

type byTime struct{ s *Series }

func (b byTime) Len() int           { return len(b.s.Times) }
func (b byTime) Less(i, j int) bool { return b.s.Times[i] < b.s.Times[j] }
func (b byTime) Swap(i, j int) {
	b.s.Times[i], b.s.Times[j] = b.s.Times[j], b.s.Times[i]
	b.s.Values[i], b.s.Values[j] = b.s.Values[j], b.s.Values[i]
}

// readColumns parses the requested columns from a delimited text file.
// An empty delimiter splits on whitespace.
func readColumns(path, delimiter string, skipHeader, skipFooter int, columns ...int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ebm.DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, ebm.DataLoadError{Path: path, Err: err}
	}
	if skipHeader+skipFooter >= len(lines) {
		return nil, ebm.DataLoadError{Path: path, Err: fmt.Errorf("skip ranges cover the whole file")}
	}
	lines = lines[skipHeader : len(lines)-skipFooter]

	out := make([][]float64, len(columns))
	for lineNo, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var fields []string
		if delimiter == "" {
			fields = strings.Fields(line)
		} else {
			fields = strings.Split(line, delimiter)
		}
		for ci, col := range columns {
			if col >= len(fields) {
				return nil, ebm.DataLoadError{
					Path: path,
					Err:  fmt.Errorf("line %d: column %d out of range", lineNo+skipHeader+1, col),
				}
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[col]), 64)
			if err != nil {
				return nil, ebm.DataLoadError{Path: path, Err: fmt.Errorf("line %d: %w", lineNo+skipHeader+1, err)}
			}
			out[ci] = append(out[ci], v)
		}
	}
	return out, nil
}

// Tracker walks a series as simulation time advances. The cursor only
// moves forward: the value at time t is the series value at the greatest
// timestamp <= t, held constant between timestamps. Before the first
// timestamp the tracker reports its baseline; past the last one the final
// value persists.
type Tracker struct {
	series   *Series
	index    int
	value    float64
	baseline float64
	started  bool
}

// NewTracker wraps an ascending-time series. baseline is the value
// reported before the first timestamp is reached.
func NewTracker(s *Series, baseline float64) *Tracker {
	return &Tracker{series: s, value: baseline, baseline: baseline}
}

// At advances the cursor to time t and returns the held value.
func (tr *Tracker) At(t float64) float64 {
	for tr.index < len(tr.series.Times) && t >= tr.series.Times[tr.index] {
		tr.value = tr.series.Values[tr.index]
		tr.started = true
		tr.index++
	}
	return tr.value
}

// Index returns the cursor position; it never decreases.
func (tr *Tracker) Index() int { return tr.index }
