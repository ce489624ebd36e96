package dynamo

import "math"

// DefaultSamples is the waveform of the original demo: a dip from 10 to 5 and back.
var DefaultSamples = []float32{10, 9, 8, 7, 6, 5, 6, 7, 8, 9, 10}

// DefaultSampleInterval is the nominal duration of one sample in ms.
const DefaultSampleInterval = 0.1

// Profile is a cyclic acceleration waveform. It is structural: the sample
// index advances once per sub-step regardless of the sub-step width.
type Profile struct {
	samples  []float32
	interval float32
}

func NewProfile(samples []float32, interval float32) (*Profile, error) {
	if len(samples) == 0 {
		return nil, ErrInvalidProfile
	}
	for _, a := range samples {
		if math.IsNaN(float64(a)) || math.IsInf(float64(a), 0) {
			return nil, ErrInvalidProfile
		}
	}
	if !(interval > 0) {
		return nil, ErrInvalidProfile
	}
	c := make([]float32, len(samples))
	copy(c, samples)
	return &Profile{samples: c, interval: interval}, nil
}

// Constant returns a single-sample profile.
func Constant(a float32) *Profile {
	return &Profile{samples: []float32{a}, interval: DefaultSampleInterval}
}

func DefaultProfile() *Profile {
	p, _ := NewProfile(DefaultSamples, DefaultSampleInterval)
	return p
}

func (p *Profile) Len() int                { return len(p.samples) }
func (p *Profile) At(i int) float32        { return p.samples[i%len(p.samples)] }
func (p *Profile) SampleInterval() float32 { return p.interval }

// Samples returns a copy of the waveform.
func (p *Profile) Samples() []float32 {
	c := make([]float32, len(p.samples))
	copy(c, p.samples)
	return c
}

// Scaled returns a new profile with every sample multiplied by factor.
func (p *Profile) Scaled(factor float32) *Profile {
	c := make([]float32, len(p.samples))
	for i, a := range p.samples {
		c[i] = a * factor
	}
	return &Profile{samples: c, interval: p.interval}
}
