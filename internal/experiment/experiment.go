package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/birdsim/internal/compute"
	"github.com/san-kum/birdsim/internal/config"
	"github.com/san-kum/birdsim/internal/metrics"
	"github.com/san-kum/birdsim/internal/sim"
	"github.com/san-kum/birdsim/internal/storage"
	"github.com/san-kum/birdsim/internal/surface"
)

// Result is the outcome of one headless run.
type Result struct {
	Frames     []sim.Frame
	Metrics    map[string]float64
	Population int
	Backend    string
	Elapsed    time.Duration
}

type Experiment struct {
	cfg     *config.Config
	flock   *sim.Flock
	metrics []sim.Metric
	frames  []sim.Frame
	logger  *slog.Logger
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:    cfg.Clone(),
		logger: slog.Default(),
	}
}

func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	e.logger = l
	return e
}

// Setup builds the flock on s, or on the configured surface when s is nil.
func (e *Experiment) Setup(s surface.Surface) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if s == nil {
		var err error
		s, err = surface.New(e.cfg.Surface, e.cfg.Display.Width, e.cfg.Display.Height)
		if err != nil {
			return err
		}
	}
	params, err := e.cfg.Params()
	if err != nil {
		return err
	}
	integ, err := compute.New(e.cfg.Backend, params)
	if err != nil {
		return err
	}
	f, err := sim.NewFlock(e.cfg.FlockOptions(), integ, s)
	if err != nil {
		return err
	}
	e.flock = f.WithLogger(e.logger)

	e.frames = e.frames[:0]
	e.flock.AddObserver(sim.ObserverFunc(func(fr sim.Frame) {
		e.frames = append(e.frames, fr)
	}))
	e.metrics = metrics.Standard(e.cfg.PopulationConfig())
	for _, m := range e.metrics {
		e.flock.AddObserver(m)
	}
	return nil
}

// Flock returns the flock built by Setup, for views that drive it themselves.
func (e *Experiment) Flock() *sim.Flock {
	return e.flock
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

// Run ticks the flock for the configured number of frames on the configured
// clock. A cancelled context ends the run early; the partial result is
// returned together with the context error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.flock == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	clk := e.cfg.NewClock()
	if wc, ok := clk.(*sim.WallClock); ok {
		defer wc.Stop()
	}

	start := time.Now()
	runner := sim.NewRunner(e.flock, clk).WithLogger(e.logger)
	runErr := runner.Run(ctx, e.cfg.Frames)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("run: %w", runErr)
	}

	return &Result{
		Frames:     append([]sim.Frame(nil), e.frames...),
		Metrics:    metrics.Collect(e.metrics),
		Population: e.flock.Len(),
		Backend:    e.flock.Integrator().Name(),
		Elapsed:    time.Since(start),
	}, runErr
}

// Metadata describes the result for storage under the given preset name.
func (e *Experiment) Metadata(preset string, r *Result) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:     preset,
		Seed:       e.cfg.Seed,
		Backend:    r.Backend,
		Clock:      e.cfg.Clock.Kind,
		Capacity:   e.cfg.Capacity,
		Boundary:   e.cfg.Boundary,
		SubSteps:   e.cfg.Integrator.SubSteps,
		Bounce:     e.cfg.Integrator.Bounce,
		TargetFPS:  e.cfg.Controller.Target,
		Frames:     len(r.Frames),
		Population: r.Population,
		Metrics:    r.Metrics,
	}
}
