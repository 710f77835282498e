// Package experiment assembles configured runs: it resolves flux-term
// names into concrete terms, builds the grid, state and integrator from a
// configuration and drives single or ensemble integrations.
package experiment

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/fluxes"
)

// Registry maps flux-term and albedo names onto factories. Names are
// resolved once, at build time, into a concrete ordered term list; the
// integration loop never touches the registry.
type Registry struct {
	terms map[string]func(node *yaml.Node) (ebm.Term, error)
}

func NewRegistry() *Registry {
	r := &Registry{terms: make(map[string]func(node *yaml.Node) (ebm.Term, error))}

	r.terms["insolation"] = func(node *yaml.Node) (ebm.Term, error) {
		var p insolationYAML
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		albedo, err := buildAlbedo(p.Albedo, p.AlbedoParams, p.AlbedoZ, p.AlbedoB)
		if err != nil {
			return nil, err
		}
		return fluxes.NewInsolation(fluxes.InsolationParams{
			Q:              p.Q,
			Factor:         p.Factor,
			DQ:             p.DQ,
			Albedo:         albedo,
			ReadAlbedo:     p.ReadAlbedo,
			Noise:          p.Noise,
			NoiseAmplitude: p.NoiseAmplitude,
			NoiseDelay:     p.NoiseDelay,
			Seed:           p.Seed,
			SeedShift:      p.SeedShift,
			SolarInput:     p.SolarInput,
			Orbital:        p.Orbital,
		}), nil
	}

	r.terms["budyko_noclouds"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			Activated bool    `yaml:"activated"`
			A         float64 `yaml:"a"`
			B         float64 `yaml:"b"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewBudykoOutgoing(fluxes.BudykoOutgoingParams{
			Activated: p.Activated, A: p.A, B: p.B,
		}), nil
	}

	r.terms["budyko_clouds"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			Activated     bool    `yaml:"activated"`
			A             float64 `yaml:"a"`
			B             float64 `yaml:"b"`
			A1            float64 `yaml:"a1"`
			B1            float64 `yaml:"b1"`
			CloudFraction float64 `yaml:"cloud_fraction"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewBudykoOutgoing(fluxes.BudykoOutgoingParams{
			Activated: p.Activated, A: p.A, B: p.B,
			Clouds: true, A1: p.A1, B1: p.B1, CloudFraction: p.CloudFraction,
		}), nil
	}

	r.terms["planck"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			Activated  bool    `yaml:"activated"`
			Emissivity float64 `yaml:"emissivity"`
			Sigma      float64 `yaml:"sigma"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewPlanckOutgoing(fluxes.PlanckOutgoingParams{
			Activated: p.Activated, Emissivity: p.Emissivity, Sigma: p.Sigma,
		}), nil
	}

	r.terms["sellers"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			Activated   bool    `yaml:"activated"`
			Attenuation float64 `yaml:"attenuation"`
			Sigma       float64 `yaml:"sigma"`
			Gamma       float64 `yaml:"gamma"`
			Emissivity  float64 `yaml:"emissivity"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewSellersOutgoing(fluxes.SellersOutgoingParams{
			Activated: p.Activated, Attenuation: p.Attenuation,
			Sigma: p.Sigma, Gamma: p.Gamma, Emissivity: p.Emissivity,
		}), nil
	}

	r.terms["transfer_budyko"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			Activated bool    `yaml:"activated"`
			Beta      float64 `yaml:"beta"`
			Read      bool    `yaml:"read"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewBudykoTransfer(fluxes.BudykoTransferParams{
			Activated: p.Activated, Beta: p.Beta, Read: p.Read,
		}), nil
	}

	r.terms["transfer_sellers"] = func(node *yaml.Node) (ebm.Term, error) {
		var p sellersTransferYAML
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewSellersTransfer(fluxes.SellersTransferParams{
			Activated:  p.Activated,
			Readout:    p.Readout,
			KWV:        p.KWV,
			KH:         p.KH,
			KO:         p.KO,
			A:          p.A,
			G:          p.G,
			Eps:        p.Eps,
			P:          p.P,
			E0:         p.E0,
			L:          p.L,
			Rd:         p.Rd,
			Dy:         p.Dy,
			Dp:         p.Dp,
			Cp:         p.Cp,
			Dz:         p.Dz,
			LandCover:  p.LandCover,
			CpWater:    p.CpWater,
			WaterDens:  p.WaterDensity,
			FactorWV:   p.FactorWV,
			FactorAir:  p.FactorAir,
			FactorOC:   p.FactorOC,
			FactorKWV:  p.FactorKWV,
			FactorKAir: p.FactorKAir,
		}), nil
	}

	r.terms["forcing_random"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			Start     float64 `yaml:"start"`
			Stop      float64 `yaml:"stop"`
			Steps     float64 `yaml:"steps"`
			Unit      string  `yaml:"unit"`
			Strength  float64 `yaml:"strength"`
			Frequency string  `yaml:"frequency"`
			Behaviour string  `yaml:"behaviour"`
			Lifetime  float64 `yaml:"lifetime"`
			Seed      int64   `yaml:"seed"`
			Negative  bool    `yaml:"negative"`
			Read      bool    `yaml:"read"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewRandomForcing(fluxes.RandomForcingParams{
			Start: p.Start, Stop: p.Stop, Steps: p.Steps,
			Unit: fluxes.TimeUnit(p.Unit), Strength: p.Strength,
			Frequency: fluxes.Frequency(p.Frequency), Behaviour: p.Behaviour,
			Lifetime: p.Lifetime, Seed: p.Seed, Negative: p.Negative, Read: p.Read,
		}), nil
	}

	r.terms["forcing_predefined"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			seriesYAML `yaml:",inline"`
			K          float64 `yaml:"k"`
			Read       bool    `yaml:"read"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewPredefinedForcing(fluxes.PredefinedForcingParams{
			Spec: p.seriesYAML.spec(), K: p.K, Read: p.Read,
		}), nil
	}

	r.terms["forcing_co2"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			seriesYAML `yaml:",inline"`
			A          float64 `yaml:"a"`
			C0         float64 `yaml:"c0"`
			CO2Base    float64 `yaml:"co2_base"`
			Read       bool    `yaml:"read"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewCO2Forcing(fluxes.CO2ForcingParams{
			A: p.A, C0: p.C0, CO2Base: p.CO2Base,
			Spec: p.seriesYAML.spec(), Read: p.Read,
		}), nil
	}

	r.terms["forcing_solar"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			seriesYAML `yaml:",inline"`
			Read       bool `yaml:"read"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewSolarForcing(fluxes.SolarForcingParams{
			Spec: p.seriesYAML.spec(), Read: p.Read,
		}), nil
	}

	r.terms["forcing_aod"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			seriesYAML `yaml:",inline"`
			Scale      float64 `yaml:"scale"`
			Read       bool    `yaml:"read"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewAODForcing(fluxes.AODForcingParams{
			Spec: p.seriesYAML.spec(), Scale: p.Scale, Read: p.Read,
		}), nil
	}

	r.terms["forcing_orbital"] = func(node *yaml.Node) (ebm.Term, error) {
		var p struct {
			Path       string  `yaml:"path"`
			Delimiter  string  `yaml:"delimiter"`
			SkipHeader int     `yaml:"skip_header"`
			SkipFooter int     `yaml:"skip_footer"`
			TimeColumn int     `yaml:"time_column"`
			EccColumn  int     `yaml:"ecc_column"`
			OblColumn  int     `yaml:"obl_column"`
			PeriColumn int     `yaml:"peri_column"`
			Unit       string  `yaml:"unit"`
			BP         bool    `yaml:"bp"`
			TimeStart  float64 `yaml:"time_start"`
		}
		if err := decode(node, &p); err != nil {
			return nil, err
		}
		return fluxes.NewOrbitalForcing(fluxes.OrbitalForcingParams{
			Path: p.Path, Delimiter: p.Delimiter,
			SkipHeader: p.SkipHeader, SkipFooter: p.SkipFooter,
			TimeColumn: p.TimeColumn, EccColumn: p.EccColumn,
			OblColumn: p.OblColumn, PeriColumn: p.PeriColumn,
			Unit: fluxes.TimeUnit(p.Unit), BP: p.BP, TimeStart: p.TimeStart,
		}), nil
	}

	return r
}

// Term resolves a named term with its parameter block.
func (r *Registry) Term(name string, params *yaml.Node) (ebm.Term, error) {
	factory, ok := r.terms[name]
	if !ok {
		return nil, ebm.ConfigError{Field: "terms", Message: fmt.Sprintf("unknown flux term %q", name)}
	}
	return factory(params)
}

// TermNames lists the registered flux terms.
func (r *Registry) TermNames() []string {
	names := make([]string, 0, len(r.terms))
	for name := range r.terms {
		names = append(names, name)
	}
	return names
}

type insolationYAML struct {
	Q              float64   `yaml:"q"`
	Factor         float64   `yaml:"factor"`
	DQ             float64   `yaml:"dq"`
	Albedo         string    `yaml:"albedo"`
	AlbedoParams   []float64 `yaml:"albedo_params"`
	AlbedoZ        []float64 `yaml:"albedo_z"`
	AlbedoB        []float64 `yaml:"albedo_b"`
	ReadAlbedo     bool      `yaml:"read_albedo"`
	Noise          bool      `yaml:"noise"`
	NoiseAmplitude float64   `yaml:"noise_amplitude"`
	NoiseDelay     int       `yaml:"noise_delay"`
	Seed           bool      `yaml:"seed"`
	SeedShift      int64     `yaml:"seed_shift"`
	SolarInput     bool      `yaml:"solar_input"`
	Orbital        bool      `yaml:"orbital"`
}

type sellersTransferYAML struct {
	Activated    bool      `yaml:"activated"`
	Readout      bool      `yaml:"readout"`
	KWV          []float64 `yaml:"k_wv"`
	KH           []float64 `yaml:"k_h"`
	KO           []float64 `yaml:"k_o"`
	A            []float64 `yaml:"a"`
	G            float64   `yaml:"g"`
	Eps          float64   `yaml:"eps"`
	P            float64   `yaml:"p"`
	E0           float64   `yaml:"e0"`
	L            float64   `yaml:"l"`
	Rd           float64   `yaml:"rd"`
	Dy           float64   `yaml:"dy"`
	Dp           []float64 `yaml:"dp"`
	Cp           float64   `yaml:"cp"`
	Dz           []float64 `yaml:"dz"`
	LandCover    []float64 `yaml:"land_cover"`
	CpWater      float64   `yaml:"cp_water"`
	WaterDensity float64   `yaml:"water_density"`
	FactorWV     float64   `yaml:"factor_wv"`
	FactorAir    float64   `yaml:"factor_air"`
	FactorOC     float64   `yaml:"factor_oc"`
	FactorKWV    float64   `yaml:"factor_kwv"`
	FactorKAir   float64   `yaml:"factor_kair"`
}

type seriesYAML struct {
	Path        string  `yaml:"path"`
	Delimiter   string  `yaml:"delimiter"`
	SkipHeader  int     `yaml:"skip_header"`
	SkipFooter  int     `yaml:"skip_footer"`
	TimeColumn  int     `yaml:"time_column"`
	ValueColumn int     `yaml:"value_column"`
	Unit        string  `yaml:"unit"`
	BP          bool    `yaml:"bp"`
	TimeStart   float64 `yaml:"time_start"`
}

func (s seriesYAML) spec() fluxes.SeriesSpec {
	valueColumn := s.ValueColumn
	if valueColumn == 0 {
		valueColumn = 1
	}
	return fluxes.SeriesSpec{
		Path:        s.Path,
		Delimiter:   s.Delimiter,
		SkipHeader:  s.SkipHeader,
		SkipFooter:  s.SkipFooter,
		TimeColumn:  s.TimeColumn,
		ValueColumn: valueColumn,
		Unit:        fluxes.TimeUnit(s.Unit),
		BP:          s.BP,
		TimeStart:   s.TimeStart,
	}
}

func buildAlbedo(name string, params, z, b []float64) (fluxes.AlbedoFunc, error) {
	need := func(n int) error {
		if len(params) != n {
			return ebm.ConfigError{
				Field:   "albedo_params",
				Message: fmt.Sprintf("albedo %q needs %d parameters, got %d", name, n, len(params)),
			}
		}
		return nil
	}
	switch name {
	case "":
		return nil, nil
	case "static":
		if err := need(1); err != nil {
			return nil, err
		}
		return fluxes.StaticAlbedo(params[0]), nil
	case "static_bud":
		if err := need(3); err != nil {
			return nil, err
		}
		return fluxes.StaticBudyko(params[0], params[1], params[2]), nil
	case "dynamic_bud":
		if err := need(5); err != nil {
			return nil, err
		}
		return fluxes.DynamicBudyko(params[0], params[1], params[2], params[3], params[4]), nil
	case "smooth":
		if err := need(4); err != nil {
			return nil, err
		}
		return fluxes.SmoothAlbedo(params[0], params[1], params[2], params[3]), nil
	case "dynamic_sel":
		if len(z) == 0 || len(b) == 0 {
			return nil, ebm.ConfigError{Field: "albedo_z", Message: "dynamic_sel needs albedo_z and albedo_b"}
		}
		return fluxes.DynamicSellers(z, b), nil
	}
	return nil, ebm.ConfigError{Field: "albedo", Message: fmt.Sprintf("unknown albedo function %q", name)}
}

// decode unmarshals a parameter node, accepting an absent block as all
// defaults.
func decode(node *yaml.Node, out any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	return node.Decode(out)
}
