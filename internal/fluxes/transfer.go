package fluxes

import (
	"math"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
	"gonum.org/v1/gonum/stat"
)

// MbToPa converts millibar to Pascal.
const MbToPa = 100.0

// BudykoTransferParams configure the linear relaxation transfer
// F = beta*(T_global - T).
type BudykoTransferParams struct {
	Activated bool
	Beta      float64
	Read      bool
}

type BudykoTransfer struct {
	p BudykoTransferParams
}

func NewBudykoTransfer(p BudykoTransferParams) *BudykoTransfer {
	return &BudykoTransfer{p: p}
}

func (b *BudykoTransfer) Name() string { return "transfer_budyko" }

func (b *BudykoTransfer) Evaluate(s *ebm.State) (ebm.Field, error) {
	if !b.p.Activated {
		return ebm.Field{0}, nil
	}
	f := make(ebm.Field, len(s.Temp))
	for i, t := range s.Temp {
		f[i] = b.p.Beta * (s.GlobalMean - t)
	}
	if b.p.Read {
		s.Rec.Record(b.Name(), s.SubSteps, f)
	}
	return f, nil
}

// SellersTransferParams configure the composite Sellers transfer: latent
// water-vapour transport, atmospheric sensible heat and oceanic sensible
// heat, differenced across belt boundaries. The diffusivities KWV, KH,
// KO, the wind coefficient A, the pressure depth Dp, the mixing depth Dz
// and the ocean fraction come from the pre-interpolated per-boundary
// parameter tables; a single-element field broadcasts.
type SellersTransferParams struct {
	Activated bool
	Readout   bool

	KWV       ebm.Field // water-vapour diffusivity, m^2/s
	KH        ebm.Field // atmospheric eddy diffusivity, m^2/s
	KO        ebm.Field // oceanic diffusivity, m^2/s
	A         ebm.Field // meridional wind coefficient, m/s/K
	Dp        ebm.Field // tropospheric pressure depth, mb
	Dz        ebm.Field // ocean mixing depth, m
	LandCover ebm.Field // ocean fraction per boundary

	G          float64 // gravity, m/s^2
	Eps        float64 // ratio of gas constants (0.622)
	P          float64 // surface pressure, mb
	E0         float64 // saturation pressure, mb
	L          float64 // latent heat of condensation, J/kg
	Rd         float64 // gas constant of dry air, J/kg/K
	Dy         float64 // belt width, m
	Cp         float64 // specific heat of air, J/kg/K
	CpWater    float64 // specific heat of water, J/kg/K
	WaterDens  float64 // density of water, kg/m^3
	FactorWV   float64
	FactorAir  float64
	FactorOC   float64
	FactorKWV  float64
	FactorKAir float64
}

// SellersTransfer computes the net meridional transfer per band. The flux
// P across each interior belt boundary is differenced against the boundary
// circle length and divided by the belt area, so the term needs a
// belt-anchored grid: only there does the boundary count sit one below the
// band count.
type SellersTransfer struct {
	p SellersTransferParams
}

func NewSellersTransfer(p SellersTransferParams) *SellersTransfer {
	if p.FactorWV == 0 {
		p.FactorWV = 1
	}
	if p.FactorAir == 0 {
		p.FactorAir = 1
	}
	if p.FactorOC == 0 {
		p.FactorOC = 1
	}
	if p.FactorKWV == 0 {
		p.FactorKWV = 1
	}
	if p.FactorKAir == 0 {
		p.FactorKAir = 1
	}
	return &SellersTransfer{p: p}
}

func (se *SellersTransfer) Name() string { return "transfer_sellers" }

func (se *SellersTransfer) Init(s *ebm.State) error {
	if s.Grid.Lats == nil {
		return ebm.ConfigError{Field: "transfer_sellers", Message: "requires a latitude-resolved grid"}
	}
	if s.Grid.Anchor != ebm.AnchorBelt {
		return ebm.ConfigError{Field: "transfer_sellers", Message: "requires a belt-anchored grid"}
	}
	if len(s.Grid.Lats) < 2 {
		return ebm.ConfigError{Field: "transfer_sellers", Message: "needs at least two latitude bands"}
	}
	return nil
}

func (se *SellersTransfer) Evaluate(s *ebm.State) (ebm.Field, error) {
	if !se.p.Activated {
		return ebm.Field{0}, nil
	}

	dT := se.tempDiff(s)
	s.TempDiff = dT
	v := se.wind(s, dT)
	s.Wind = v

	m := len(dT)
	cL := make(ebm.Field, m)
	c := make(ebm.Field, m)
	f := make(ebm.Field, m)
	p := make(ebm.Field, m)
	for j := 0; j < m; j++ {
		tn := s.Temp[j+1]
		// Saturation pressure and humidity on the boundary, linearized
		// around the northern band temperature.
		e := se.p.E0 * (1 - 0.5*se.p.Eps*se.p.L*dT[j]/(se.p.Rd*tn*tn))
		q := se.p.Eps * e / se.p.P
		dq := se.p.Eps * se.p.Eps * se.p.L * e * dT[j] / (se.p.P * se.p.Rd * tn * tn)

		dp := broadcast(se.p.Dp, j)
		cL[j] = se.p.L * (v[j]*q - broadcast(se.p.KWV, j)*se.p.FactorKWV*dq/se.p.Dy) *
			(dp * MbToPa / se.p.G) * se.p.FactorWV
		c[j] = (v[j]*s.Temp[j] - broadcast(se.p.KH, j)*se.p.FactorKAir*dT[j]/se.p.Dy) *
			(se.p.Cp * dp * MbToPa / se.p.G) * se.p.FactorAir
		f[j] = -broadcast(se.p.KO, j) * broadcast(se.p.Dz, j) * broadcast(se.p.LandCover, j) *
			dT[j] / se.p.Dy * se.p.CpWater * se.p.WaterDens * se.p.FactorOC
		p[j] = cL[j] + c[j] + f[j]
	}

	// Difference the boundary fluxes into a net gain per band: the flux
	// through the southern boundary enters, the northern one leaves, each
	// weighted by its circle length, normalized by belt area.
	length := s.Grid.CircleLength()
	area := s.Grid.BeltArea()
	out := make(ebm.Field, len(s.Temp))
	for i := range out {
		var in, ex float64
		if i > 0 {
			in = p[i-1] * length[i-1]
		}
		if i < m {
			ex = p[i] * length[i]
		}
		out[i] = (in - ex) / area[i]
	}

	if se.p.Readout {
		s.Rec.Record("transfer_watervapour", s.SubSteps, cL)
		s.Rec.Record("transfer_air", s.SubSteps, c)
		s.Rec.Record("transfer_ocean", s.SubSteps, f)
		s.Rec.Record("meridional_wind", s.SubSteps, v)
		s.Rec.Record("transfer_boundary", s.SubSteps, p)
		s.Rec.Record(se.Name(), s.SubSteps, out)
	}
	return out, nil
}

// tempDiff is the temperature step across each interior belt boundary,
// positive northward.
func (se *SellersTransfer) tempDiff(s *ebm.State) ebm.Field {
	dT := make(ebm.Field, len(s.Temp)-1)
	for j := range dT {
		dT[j] = s.Temp[j+1] - s.Temp[j]
	}
	return dT
}

// wind computes Sellers' meridional wind on the boundaries. Each
// hemisphere is normalized by the circle-length-weighted mean absolute
// temperature difference; the sign of that correction flips at 5 degrees
// latitude.
func (se *SellersTransfer) wind(s *ebm.State, dT ebm.Field) ebm.Field {
	absDT := make([]float64, len(dT))
	for j, d := range dT {
		absDT[j] = math.Abs(d)
	}
	tAv := stat.Mean(absDT, s.Grid.CircleLength())

	k := 0
	for k < len(s.Grid.Lats) && s.Grid.Lats[k] < 5 {
		k++
	}

	v := make(ebm.Field, len(dT))
	for j := range v {
		if j < k {
			v[j] = -broadcast(se.p.A, j) * (dT[j] - tAv)
		} else {
			v[j] = -broadcast(se.p.A, j) * (dT[j] + tAv)
		}
	}
	return v
}
