package fluxes

import (
	"math"
	"math/rand"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/solar"
)

// Frequency classes of the synthetic event generator. The class bounds
// the randomized gap between events, expressed as a share of the series
// length.
type Frequency string

const (
	Common       Frequency = "common"
	Intermediate Frequency = "intermediate"
	Rare         Frequency = "rare"
	SuperRare    Frequency = "superrare"
)

func (f Frequency) gapShare() (lo, hi float64, err error) {
	switch f {
	case Common:
		return 0, 0.04, nil
	case Intermediate:
		return 0.04, 0.12, nil
	case Rare:
		return 0.12, 0.30, nil
	case SuperRare:
		return 0.30, 0.60, nil
	}
	return 0, 0, ebm.ConfigError{Field: "frequency", Message: "unknown class " + string(f)}
}

// RandomForcingParams configure a synthetic event series, e.g. volcanic
// eruptions: events of uniform random magnitude at randomized intervals,
// each with a step or exponential-decay time profile.
type RandomForcingParams struct {
	Start, Stop, Steps float64
	Unit               TimeUnit
	Strength           float64
	Frequency          Frequency
	Behaviour          string // "step" or "exponential"
	Lifetime           float64
	Seed               int64
	Negative           bool
	Read               bool
}

// RandomForcing generates its event series once, before the loop starts,
// and replays it through a tracker as time passes.
type RandomForcing struct {
	p  RandomForcingParams
	tr *Tracker
}

func NewRandomForcing(p RandomForcingParams) *RandomForcing {
	return &RandomForcing{p: p}
}

func (rf *RandomForcing) Name() string { return "forcing_random" }

func (rf *RandomForcing) Init(s *ebm.State) error {
	factor, err := rf.p.Unit.Seconds()
	if err != nil {
		return err
	}
	lo, hi, err := rf.p.Frequency.gapShare()
	if err != nil {
		return err
	}
	if rf.p.Steps <= 0 {
		return ebm.ConfigError{Field: "steps", Message: "event grid spacing must be positive"}
	}

	n := int(math.Abs(rf.p.Stop-rf.p.Start)/rf.p.Steps) + 1
	series := &Series{Times: make([]float64, n), Values: make([]float64, n)}
	for i := range series.Times {
		series.Times[i] = (rf.p.Start + float64(i)*rf.p.Steps) * factor
	}

	gapMin := int(float64(n) * lo)
	gapMax := int(float64(n) * hi)
	if gapMax <= gapMin {
		gapMax = gapMin + 1
	}

	rng := rand.New(rand.NewSource(rf.p.Seed))
	for i := 0; i < n; {
		event := rng.Float64() * rf.p.Strength
		switch rf.p.Behaviour {
		case "exponential":
			for k := 0; k < int(rf.p.Lifetime*4) && i+k < n; k++ {
				series.Values[i+k] = event * math.Exp(-float64(k)/rf.p.Lifetime)
			}
		default: // step
			for k := 0; k < int(rf.p.Lifetime) && i+k < n; k++ {
				series.Values[i+k] = event
			}
		}
		gap := gapMin + rng.Intn(gapMax-gapMin)
		if gap < 1 {
			gap = 1
		}
		i += gap
	}
	if rf.p.Negative {
		for i := range series.Values {
			series.Values[i] = -series.Values[i]
		}
	}

	rf.tr = NewTracker(series, 0)
	return nil
}

func (rf *RandomForcing) Evaluate(s *ebm.State) (ebm.Field, error) {
	f := rf.tr.At(s.Time)
	if rf.p.Read {
		s.Rec.RecordScalar(rf.Name(), s.SubSteps, f)
	}
	return ebm.Field{f}, nil
}

// PredefinedForcingParams configure a file-derived forcing series scaled
// by K.
type PredefinedForcingParams struct {
	Spec SeriesSpec
	K    float64
	Read bool
}

type PredefinedForcing struct {
	p  PredefinedForcingParams
	tr *Tracker
}

func NewPredefinedForcing(p PredefinedForcingParams) *PredefinedForcing {
	if p.K == 0 {
		p.K = 1
	}
	return &PredefinedForcing{p: p}
}

func (pf *PredefinedForcing) Name() string { return "forcing_predefined" }

func (pf *PredefinedForcing) Init(s *ebm.State) error {
	series, err := pf.p.Spec.Load()
	if err != nil {
		return err
	}
	pf.tr = NewTracker(series, 0)
	return nil
}

func (pf *PredefinedForcing) Evaluate(s *ebm.State) (ebm.Field, error) {
	f := pf.tr.At(s.Time) * pf.p.K
	if pf.p.Read {
		s.Rec.RecordScalar(pf.Name(), s.SubSteps, f)
	}
	return ebm.Field{f}, nil
}

// CO2ForcingParams configure the logarithmic radiative forcing
// F = A*ln(C/C0) driven by a concentration series. Before the first
// timestamp the forcing sits at the baseline concentration CO2Base.
type CO2ForcingParams struct {
	A       float64 // radiative forcing coefficient, standard 5.35
	C0      float64 // reference concentration, ppm
	CO2Base float64 // pre-series concentration, ppm
	Spec    SeriesSpec
	Read    bool
}

type CO2Forcing struct {
	p  CO2ForcingParams
	tr *Tracker
}

func NewCO2Forcing(p CO2ForcingParams) *CO2Forcing {
	return &CO2Forcing{p: p}
}

func (cf *CO2Forcing) Name() string { return "forcing_co2" }

func (cf *CO2Forcing) Init(s *ebm.State) error {
	series, err := cf.p.Spec.Load()
	if err != nil {
		return err
	}
	if cf.p.C0 <= 0 {
		return ebm.ConfigError{Field: "c0", Message: "reference concentration must be positive"}
	}
	// Convert concentrations to forcing up front so the tracker holds
	// flux values directly.
	for i, c := range series.Values {
		if c <= 0 {
			return ebm.DataLoadError{Path: cf.p.Spec.Path, Err: ebm.ConfigError{Field: "co2", Message: "non-positive concentration"}}
		}
		series.Values[i] = cf.p.A * math.Log(c/cf.p.C0)
	}
	cf.tr = NewTracker(series, cf.p.A*math.Log(cf.p.CO2Base/cf.p.C0))
	return nil
}

func (cf *CO2Forcing) Evaluate(s *ebm.State) (ebm.Field, error) {
	f := cf.tr.At(s.Time)
	if cf.p.Read {
		s.Rec.RecordScalar(cf.Name(), s.SubSteps, f)
	}
	return ebm.Field{f}, nil
}

// SolarForcingParams configure a total-solar-irradiance anomaly series.
// The term contributes no flux of its own: it feeds the anomaly into the
// incoming-radiation term through the state.
type SolarForcingParams struct {
	Spec SeriesSpec
	Read bool
}

type SolarForcing struct {
	p  SolarForcingParams
	tr *Tracker
}

func NewSolarForcing(p SolarForcingParams) *SolarForcing {
	return &SolarForcing{p: p}
}

func (sf *SolarForcing) Name() string { return "forcing_solar" }

func (sf *SolarForcing) Init(s *ebm.State) error {
	series, err := sf.p.Spec.Load()
	if err != nil {
		return err
	}
	sf.tr = NewTracker(series, 0)
	return nil
}

func (sf *SolarForcing) Evaluate(s *ebm.State) (ebm.Field, error) {
	s.TSI = sf.tr.At(s.Time)
	if sf.p.Read {
		s.Rec.RecordScalar(sf.Name(), s.SubSteps, s.TSI)
	}
	return ebm.Field{0}, nil
}

// AODForcingParams configure an aerosol-optical-depth series that dims
// the incoming radiation multiplicatively: factor = 1 - Scale*AOD,
// floored at zero.
type AODForcingParams struct {
	Spec  SeriesSpec
	Scale float64
	Read  bool
}

type AODForcing struct {
	p  AODForcingParams
	tr *Tracker
}

func NewAODForcing(p AODForcingParams) *AODForcing {
	if p.Scale == 0 {
		p.Scale = 1
	}
	return &AODForcing{p: p}
}

func (af *AODForcing) Name() string { return "forcing_aod" }

func (af *AODForcing) Init(s *ebm.State) error {
	series, err := af.p.Spec.Load()
	if err != nil {
		return err
	}
	af.tr = NewTracker(series, 0)
	return nil
}

func (af *AODForcing) Evaluate(s *ebm.State) (ebm.Field, error) {
	factor := 1 - af.p.Scale*af.tr.At(s.Time)
	if factor < 0 {
		factor = 0
	}
	s.SolarFactor = factor
	if af.p.Read {
		s.Rec.RecordScalar(af.Name(), s.SubSteps, factor)
	}
	return ebm.Field{0}, nil
}

// OrbitalForcingParams configure a table of orbital parameters over time:
// one time column plus eccentricity, obliquity and longitude-of-perihelion
// columns. The term updates the orbital state the insolation distribution
// is computed from.
type OrbitalForcingParams struct {
	Path       string
	Delimiter  string
	SkipHeader int
	SkipFooter int
	TimeColumn int
	EccColumn  int
	OblColumn  int
	PeriColumn int
	Unit       TimeUnit
	BP         bool
	TimeStart  float64
}

type OrbitalForcing struct {
	p    OrbitalForcingParams
	ecc  *Tracker
	obl  *Tracker
	peri *Tracker
}

func NewOrbitalForcing(p OrbitalForcingParams) *OrbitalForcing {
	return &OrbitalForcing{p: p}
}

func (of *OrbitalForcing) Name() string { return "forcing_orbital" }

func (of *OrbitalForcing) Init(s *ebm.State) error {
	base := SeriesSpec{
		Path:       of.p.Path,
		Delimiter:  of.p.Delimiter,
		SkipHeader: of.p.SkipHeader,
		SkipFooter: of.p.SkipFooter,
		TimeColumn: of.p.TimeColumn,
		Unit:       of.p.Unit,
		BP:         of.p.BP,
		TimeStart:  of.p.TimeStart,
	}
	for _, c := range []struct {
		col  int
		dst  **Tracker
		init float64
	}{
		{of.p.EccColumn, &of.ecc, solar.PresentDay.Eccentricity},
		{of.p.OblColumn, &of.obl, solar.PresentDay.Obliquity},
		{of.p.PeriColumn, &of.peri, solar.PresentDay.LongPeri},
	} {
		spec := base
		spec.ValueColumn = c.col
		series, err := spec.Load()
		if err != nil {
			return err
		}
		*c.dst = NewTracker(series, c.init)
	}
	return nil
}

func (of *OrbitalForcing) Evaluate(s *ebm.State) (ebm.Field, error) {
	s.Orbital = solar.Params{
		Eccentricity: of.ecc.At(s.Time),
		Obliquity:    of.obl.At(s.Time),
		LongPeri:     of.peri.At(s.Time),
	}
	return ebm.Field{0}, nil
}
