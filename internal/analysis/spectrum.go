package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/birdsim/internal/sim"
)

// FrameIntervals returns the time between consecutive frames in ms.
func FrameIntervals(frames []sim.Frame) []float64 {
	if len(frames) < 2 {
		return nil
	}
	out := make([]float64, len(frames)-1)
	for i := 1; i < len(frames); i++ {
		out[i-1] = frames[i].Timestamp - frames[i-1].Timestamp
	}
	return out
}

// PowerSpectrum returns |X(k)| for k in [0, n/2] of the mean-removed,
// Hann-windowed series.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	buf := make([]float64, n)
	for i, v := range data {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		buf[i] = (v - mean) * window
	}

	spectrum := fft.FFTReal(buf)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the bin with the largest non-DC magnitude and the
// corresponding period in samples. It returns 0, 0 when the series is flat.
func DominantPeriod(data []float64) (int, float64) {
	ps := PowerSpectrum(data)
	best, peak := 0, 1e-9
	for k := 1; k < len(ps); k++ {
		if ps[k] > peak {
			best, peak = k, ps[k]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return best, float64(len(data)) / float64(best)
}
