package ebm

// Recorder owns the auxiliary output buffers terms write into (fluxes,
// albedo, noise, forcings). Buffers are allocated once, before the loop
// starts, and truncated — never resized — when a run stops early.
//
// Sampling is gated on the sub-stage counter: a slot is written only on
// the first of the four RK stages of every interval-th step, so one slot
// holds the term values computed from the temperature stored at the same
// record cursor.
//
// A nil *Recorder is valid and disables sampling: terms call Record and
// ShouldSample unconditionally, so a state built without a recorder must
// not panic.
type Recorder struct {
	steps    int
	interval int
	series   map[string][]Field
	order    []string
}

func NewRecorder(steps, interval int) *Recorder {
	return &Recorder{
		steps:    steps,
		interval: interval,
		series:   make(map[string][]Field),
	}
}

// Interval is the record cadence in integration steps.
func (r *Recorder) Interval() int {
	if r == nil {
		return 0
	}
	return r.interval
}

// ShouldSample reports whether the given sub-stage count sits on a record
// boundary: subSteps mod (4*interval) == 0. A nil recorder never samples.
func (r *Recorder) ShouldSample(subSteps int) bool {
	return r != nil && subSteps%(4*r.interval) == 0
}

// Slot is the buffer index for a sub-stage count on a record boundary.
func (r *Recorder) Slot(subSteps int) int {
	return subSteps / (4 * r.interval)
}

// Record writes v into the named series at the slot for subSteps, if
// subSteps is on a record boundary. The buffer is allocated on first use
// with its final length.
func (r *Recorder) Record(name string, subSteps int, v Field) {
	if !r.ShouldSample(subSteps) {
		return
	}
	buf, ok := r.series[name]
	if !ok {
		buf = make([]Field, r.steps/r.interval)
		r.series[name] = buf
		r.order = append(r.order, name)
	}
	i := r.Slot(subSteps)
	if i < len(buf) {
		buf[i] = v.Clone()
	}
}

// RecordScalar is Record for scalar quantities.
func (r *Recorder) RecordScalar(name string, subSteps int, v float64) {
	r.Record(name, subSteps, Field{v})
}

// Truncate cuts every auxiliary buffer to n entries after an early stop.
func (r *Recorder) Truncate(n int) {
	if r == nil {
		return
	}
	for name, buf := range r.series {
		if n < len(buf) {
			r.series[name] = buf[:n]
		}
	}
}

// Series returns the recorded buffers keyed by name.
func (r *Recorder) Series() map[string][]Field {
	if r == nil {
		return nil
	}
	return r.series
}

// Names returns the series names in first-write order.
func (r *Recorder) Names() []string {
	if r == nil {
		return nil
	}
	return r.order
}
