package sim

import (
	"context"
	"log/slog"

	"github.com/san-kum/birdsim/internal/controllers"
)

// Frame is the record of one tick.
type Frame struct {
	Index      int                  `csv:"frame" json:"frame"`
	Timestamp  float64              `csv:"timestamp_ms" json:"timestamp_ms"`
	Delta      float32              `csv:"delta_ms" json:"delta_ms"`
	Population int                  `csv:"population" json:"population"`
	FPS        float64              `csv:"fps" json:"fps"`
	Measured   bool                 `csv:"measured" json:"measured"`
	Adjusted   bool                 `csv:"adjusted" json:"adjusted"`
	Decision   controllers.Decision `csv:"decision" json:"decision"`
	Requested  int                  `csv:"requested" json:"requested"`
	AdvanceNs  int64                `csv:"advance_ns" json:"advance_ns"`
}

func (f Frame) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", f.Index),
		slog.Float64("ts", f.Timestamp),
		slog.Float64("delta", float64(f.Delta)),
		slog.Int("population", f.Population),
		slog.Float64("fps", f.FPS),
		slog.Bool("adjusted", f.Adjusted),
	)
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

// Clock delivers monotonically increasing frame timestamps in milliseconds.
// population is the live count at the time of the request; clocks that model
// rendering cost use it.
type Clock interface {
	Tick(ctx context.Context, population int) (float64, error)
}
