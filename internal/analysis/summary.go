package analysis

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/sim"
)

type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	P50    float64
	P90    float64
	P99    float64
	Max    float64
}

func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	s := Summary{
		N:    len(sorted),
		Mean: stat.Mean(sorted, nil),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		P50:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, sorted, nil),
		P99:  stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("n", s.N),
		slog.Float64("mean", s.Mean),
		slog.Float64("stddev", s.StdDev),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("max", s.Max),
	)
}

type RunSummary struct {
	Interval   Summary
	FPS        Summary
	Population Summary
	// SettleFrame is the frame of the last population adjustment, or -1.
	SettleFrame int
	Grows       int
	Shrinks     int
}

func SummarizeRun(frames []sim.Frame) RunSummary {
	r := RunSummary{SettleFrame: -1}
	fps := make([]float64, 0, len(frames))
	pop := make([]float64, 0, len(frames))

	for _, f := range frames {
		if f.Measured {
			fps = append(fps, f.FPS)
		}
		pop = append(pop, float64(f.Population))
		if f.Adjusted {
			r.SettleFrame = f.Index
			switch f.Decision {
			case controllers.Grow:
				r.Grows++
			case controllers.Shrink:
				r.Shrinks++
			}
		}
	}

	r.Interval = Summarize(FrameIntervals(frames))
	r.FPS = Summarize(fps)
	r.Population = Summarize(pop)
	return r
}
