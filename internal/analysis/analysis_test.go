package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/sim"
)

func TestDominantPeriod(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 16.7 + 3*math.Sin(2*math.Pi*float64(i)/8)
	}

	bin, period := DominantPeriod(data)
	assert.Equal(t, 8, bin)
	assert.InDelta(t, 8.0, period, 1e-9)
}

func TestDominantPeriodFlat(t *testing.T) {
	data := make([]float64, 32)
	for i := range data {
		data[i] = 16.7
	}
	bin, period := DominantPeriod(data)
	assert.Equal(t, 0, bin)
	assert.Zero(t, period)
}

func TestPowerSpectrumLength(t *testing.T) {
	assert.Nil(t, PowerSpectrum([]float64{1}))
	assert.Len(t, PowerSpectrum(make([]float64, 10)), 6)
	assert.Len(t, PowerSpectrum(make([]float64, 7)), 4)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{5, 1, 4, 2, 3})
	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 3.0, s.P50)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarizeRun(t *testing.T) {
	frames := []sim.Frame{
		{Index: 0, Timestamp: 0, Population: 10},
		{Index: 1, Timestamp: 20, Population: 10, FPS: 50, Measured: true},
		{Index: 2, Timestamp: 40, Population: 15, FPS: 50, Measured: true, Adjusted: true, Decision: controllers.Grow, Requested: 5},
		{Index: 3, Timestamp: 80, Population: 12, FPS: 25, Measured: true, Adjusted: true, Decision: controllers.Shrink, Requested: 3},
		{Index: 4, Timestamp: 120, Population: 12, FPS: 25, Measured: true},
	}

	r := SummarizeRun(frames)
	require.Equal(t, 4, r.Interval.N)
	assert.InDelta(t, 30.0, r.Interval.Mean, 1e-12)
	assert.Equal(t, 4, r.FPS.N)
	assert.Equal(t, 15.0, r.Population.Max)
	assert.Equal(t, 3, r.SettleFrame)
	assert.Equal(t, 1, r.Grows)
	assert.Equal(t, 1, r.Shrinks)
}
