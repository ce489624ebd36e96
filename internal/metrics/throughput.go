package metrics

import (
	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/sim"
)

// Throughput is the mean frame rate over every observed frame, taken from
// first and last timestamps rather than from controller windows.
type Throughput struct {
	first, last float64
	frames      int
}

func NewThroughput() *Throughput { return &Throughput{} }

func (t *Throughput) Name() string { return "mean_fps" }

func (t *Throughput) OnFrame(f sim.Frame) {
	if t.frames == 0 {
		t.first = f.Timestamp
	}
	t.last = f.Timestamp
	t.frames++
}

func (t *Throughput) Value() float64 {
	elapsed := t.last - t.first
	if t.frames < 2 || elapsed <= 0 {
		return 0
	}
	return 1000 * float64(t.frames-1) / elapsed
}

func (t *Throughput) Reset() { *t = Throughput{} }

// AdvanceTime is the mean wall time spent integrating per frame, in
// microseconds.
type AdvanceTime struct {
	sum    int64
	frames int
}

func NewAdvanceTime() *AdvanceTime { return &AdvanceTime{} }

func (a *AdvanceTime) Name() string { return "advance_us" }

func (a *AdvanceTime) OnFrame(f sim.Frame) {
	a.sum += f.AdvanceNs
	a.frames++
}

func (a *AdvanceTime) Value() float64 {
	if a.frames == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.frames) / 1000
}

func (a *AdvanceTime) Reset() { *a = AdvanceTime{} }

// Standard returns the metrics recorded for every run.
func Standard(cfg controllers.Config) []sim.Metric {
	return []sim.Metric{
		NewThroughput(),
		NewInBand(cfg.Min, cfg.Max),
		NewPeakPopulation(),
		NewAdjustments(),
		NewAdvanceTime(),
	}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []sim.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
