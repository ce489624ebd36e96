package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/sim"
)

func frames() []sim.Frame {
	return []sim.Frame{
		{Index: 0, Timestamp: 0, Population: 10},
		{Index: 1, Timestamp: 20, Population: 10, FPS: 50, Measured: true},
		{Index: 2, Timestamp: 40, Population: 15, FPS: 50, Measured: true, Adjusted: true, Decision: controllers.Grow, Requested: 5},
		{Index: 3, Timestamp: 80, Population: 15, FPS: 30, Measured: true},
		{Index: 4, Timestamp: 120, Population: 11, FPS: 25, Measured: true, Adjusted: true, Decision: controllers.Shrink, Requested: 4},
	}
}

func feed(m sim.Metric) {
	for _, f := range frames() {
		m.OnFrame(f)
	}
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		metric sim.Metric
		want   float64
	}{
		{NewThroughput(), 1000 * 4 / 120.0},
		{NewInBand(28, 32), 0.25},
		{NewPeakPopulation(), 15},
		{NewAdjustments(), 2},
		{NewAdvanceTime(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			feed(tt.metric)
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Value() = %f, want %f", got, tt.want)
			}

			tt.metric.Reset()
			if got := tt.metric.Value(); got != 0 {
				t.Errorf("Value() after Reset = %f, want 0", got)
			}
		})
	}
}

func TestAdjustmentsSplit(t *testing.T) {
	a := NewAdjustments()
	feed(a)
	if a.Grows() != 1 || a.Shrinks() != 1 {
		t.Errorf("grows=%d shrinks=%d, want 1 and 1", a.Grows(), a.Shrinks())
	}
}

func TestStandardCollect(t *testing.T) {
	ms := Standard(controllers.DefaultConfig())
	for _, f := range frames() {
		for _, m := range ms {
			m.OnFrame(f)
		}
	}

	got := Collect(ms)
	if len(got) != len(ms) {
		t.Fatalf("Collect returned %d values for %d metrics", len(got), len(ms))
	}
	if got["peak_population"] != 15 {
		t.Errorf("peak_population = %f, want 15", got["peak_population"])
	}
}
