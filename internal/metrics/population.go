package metrics

import (
	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/sim"
)

type PeakPopulation struct {
	peak int
}

func NewPeakPopulation() *PeakPopulation { return &PeakPopulation{} }

func (p *PeakPopulation) Name() string { return "peak_population" }

func (p *PeakPopulation) OnFrame(f sim.Frame) {
	if f.Population > p.peak {
		p.peak = f.Population
	}
}

func (p *PeakPopulation) Value() float64 { return float64(p.peak) }
func (p *PeakPopulation) Reset()         { p.peak = 0 }

// Adjustments counts frames on which the controller resized the population.
type Adjustments struct {
	grows, shrinks int
}

func NewAdjustments() *Adjustments { return &Adjustments{} }

func (a *Adjustments) Name() string { return "adjustments" }

func (a *Adjustments) OnFrame(f sim.Frame) {
	if !f.Adjusted {
		return
	}
	switch f.Decision {
	case controllers.Grow:
		a.grows++
	case controllers.Shrink:
		a.shrinks++
	}
}

func (a *Adjustments) Value() float64 { return float64(a.grows + a.shrinks) }
func (a *Adjustments) Grows() int     { return a.grows }
func (a *Adjustments) Shrinks() int   { return a.shrinks }

func (a *Adjustments) Reset() {
	a.grows = 0
	a.shrinks = 0
}
