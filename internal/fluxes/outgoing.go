package fluxes

import (
	"math"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

// StefanBoltzmann constant in W/m^2/K^4.
const StefanBoltzmann = 5.670374419e-8

// BudykoOutgoingParams configure the linear empirical outgoing flux
// R = -(A + B*(T - 273.15)), optionally with Budyko's cloud correction
// (A1 + B1*Tc)*CloudFraction subtracted from the clear-sky part.
type BudykoOutgoingParams struct {
	Activated     bool
	A             float64
	B             float64
	Clouds        bool
	A1            float64
	B1            float64
	CloudFraction float64
}

type BudykoOutgoing struct {
	p BudykoOutgoingParams
}

func NewBudykoOutgoing(p BudykoOutgoingParams) *BudykoOutgoing {
	return &BudykoOutgoing{p: p}
}

func (b *BudykoOutgoing) Name() string {
	if b.p.Clouds {
		return "budyko_clouds"
	}
	return "budyko_noclouds"
}

func (b *BudykoOutgoing) Evaluate(s *ebm.State) (ebm.Field, error) {
	if !b.p.Activated {
		return ebm.Field{0}, nil
	}
	r := make(ebm.Field, len(s.Temp))
	for i, t := range s.Temp {
		tc := t - 273.15
		out := b.p.A + b.p.B*tc
		if b.p.Clouds {
			out -= (b.p.A1 + b.p.B1*tc) * b.p.CloudFraction
		}
		r[i] = -out
	}
	s.Rec.Record(b.Name(), s.SubSteps, r)
	return r, nil
}

// PlanckOutgoingParams configure the grey-body Stefan-Boltzmann flux
// R = -eps*sigma*T^4.
type PlanckOutgoingParams struct {
	Activated  bool
	Emissivity float64
	Sigma      float64
}

type PlanckOutgoing struct {
	p PlanckOutgoingParams
}

func NewPlanckOutgoing(p PlanckOutgoingParams) *PlanckOutgoing {
	if p.Sigma == 0 {
		p.Sigma = StefanBoltzmann
	}
	return &PlanckOutgoing{p: p}
}

func (pl *PlanckOutgoing) Name() string { return "planck" }

func (pl *PlanckOutgoing) Evaluate(s *ebm.State) (ebm.Field, error) {
	if !pl.p.Activated {
		return ebm.Field{0}, nil
	}
	r := make(ebm.Field, len(s.Temp))
	for i, t := range s.Temp {
		r[i] = -pl.p.Emissivity * pl.p.Sigma * t * t * t * t
	}
	s.Rec.Record(pl.Name(), s.SubSteps, r)
	return r, nil
}

// SellersOutgoingParams configure Sellers' cloud-corrected black-body
// flux R = -eps*sigma*T^4*(1 - m*tanh(gamma*T^6)).
type SellersOutgoingParams struct {
	Activated   bool
	Attenuation float64 // m
	Sigma       float64
	Gamma       float64
	Emissivity  float64
}

type SellersOutgoing struct {
	p SellersOutgoingParams
}

func NewSellersOutgoing(p SellersOutgoingParams) *SellersOutgoing {
	if p.Sigma == 0 {
		p.Sigma = StefanBoltzmann
	}
	if p.Emissivity == 0 {
		p.Emissivity = 1
	}
	return &SellersOutgoing{p: p}
}

func (se *SellersOutgoing) Name() string { return "sellers" }

func (se *SellersOutgoing) Evaluate(s *ebm.State) (ebm.Field, error) {
	if !se.p.Activated {
		return ebm.Field{0}, nil
	}
	r := make(ebm.Field, len(s.Temp))
	for i, t := range s.Temp {
		t4 := t * t * t * t
		t6 := t4 * t * t
		r[i] = -se.p.Emissivity * se.p.Sigma * t4 * (1 - se.p.Attenuation*math.Tanh(se.p.Gamma*t6))
	}
	s.Rec.Record(se.Name(), s.SubSteps, r)
	return r, nil
}
