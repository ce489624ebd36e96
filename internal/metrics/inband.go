package metrics

import "github.com/san-kum/birdsim/internal/sim"

// InBand is the fraction of measured frames whose fps lies in [min, max].
type InBand struct {
	name     string
	min, max float64
	hits     int
	samples  int
}

func NewInBand(min, max float64) *InBand {
	return &InBand{name: "in_band", min: min, max: max}
}

func (b *InBand) Name() string { return b.name }

func (b *InBand) OnFrame(f sim.Frame) {
	if !f.Measured {
		return
	}
	b.samples++
	if f.FPS >= b.min && f.FPS <= b.max {
		b.hits++
	}
}

func (b *InBand) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.hits) / float64(b.samples)
}

func (b *InBand) Reset() {
	b.hits = 0
	b.samples = 0
}
