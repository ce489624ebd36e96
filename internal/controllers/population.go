package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// State of the measurement window.
type State int

const (
	Priming State = iota
	Accumulating
	Measuring
)

func (s State) String() string {
	switch s {
	case Priming:
		return "priming"
	case Accumulating:
		return "accumulating"
	case Measuring:
		return "measuring"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Decision is the outcome of one measurement window.
type Decision int

const (
	Hold Decision = iota
	Grow
	Shrink
)

func (d Decision) String() string {
	switch d {
	case Grow:
		return "grow"
	case Shrink:
		return "shrink"
	}
	return "hold"
}

func ParseDecision(s string) (Decision, error) {
	switch s {
	case "", "hold":
		return Hold, nil
	case "grow":
		return Grow, nil
	case "shrink":
		return Shrink, nil
	}
	return Hold, fmt.Errorf("unknown decision: %q", s)
}

func (d Decision) MarshalCSV() (string, error) { return d.String(), nil }

func (d *Decision) UnmarshalCSV(s string) (err error) {
	*d, err = ParseDecision(s)
	return err
}

func (d Decision) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Decision) UnmarshalText(b []byte) (err error) {
	*d, err = ParseDecision(string(b))
	return err
}

var ErrInvalidConfig = errors.New("controllers: invalid population config")

type Config struct {
	Target     float64
	Min        float64
	Max        float64
	WindowSize int
}

func DefaultConfig() Config {
	return Config{Target: 30, Min: 28, Max: 32, WindowSize: 10}
}

func (c Config) Validate() error {
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window size %d", ErrInvalidConfig, c.WindowSize)
	}
	if c.Min > c.Max {
		return fmt.Errorf("%w: fps band [%g, %g]", ErrInvalidConfig, c.Min, c.Max)
	}
	if !(c.Target > 0) {
		return fmt.Errorf("%w: target fps %g", ErrInvalidConfig, c.Target)
	}
	return nil
}

// Adjuster grows or shrinks the population by n. It may fail part way; the
// controller does not retry within the same window.
type Adjuster func(n int) error

// Window describes the last completed measurement window.
type Window struct {
	FPS        float64
	Population int
	Decision   Decision
	Requested  int
	Err        error
}

func (w Window) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Float64("fps", w.FPS),
		slog.Int("population", w.Population),
		slog.String("decision", w.Decision.String()),
		slog.Int("requested", w.Requested),
	}
	if w.Err != nil {
		attrs = append(attrs, slog.String("err", w.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// Population converges the particle count toward a target frame rate band by
// measuring the time taken by WindowSize frames.
type Population struct {
	cfg         Config
	frameCount  int
	windowStart float64
	last        Window
	windows     int
	logger      *slog.Logger
}

func NewPopulation(cfg Config) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Population{cfg: cfg, logger: slog.Default()}, nil
}

// WithLogger replaces the default slog logger.
func (p *Population) WithLogger(l *slog.Logger) *Population {
	p.logger = l
	return p
}

func (p *Population) Config() Config     { return p.cfg }
func (p *Population) LastFPS() float64   { return p.last.FPS }
func (p *Population) LastWindow() Window { return p.last }

// Windows is the number of measurement windows completed so far.
func (p *Population) Windows() int { return p.windows }

func (p *Population) State() State {
	switch {
	case p.frameCount == 0:
		return Priming
	case p.frameCount < p.cfg.WindowSize:
		return Accumulating
	default:
		return Measuring
	}
}

// Reset returns the controller to Priming; the last measurement is kept.
func (p *Population) Reset() {
	p.frameCount = 0
	p.windowStart = 0
}

// Sample records one frame timestamp (ms). When a window completes it may call
// grow or shrink and reports whether it did, along with the latest measured fps.
func (p *Population) Sample(timestamp float64, population int, grow, shrink Adjuster) (bool, float64) {
	switch p.State() {
	case Priming:
		p.windowStart = timestamp
		p.frameCount = 1
		return false, p.last.FPS
	case Accumulating:
		p.frameCount++
		return false, p.last.FPS
	}

	elapsed := timestamp - p.windowStart
	p.windowStart = timestamp
	p.frameCount = 1
	if !(elapsed > 0) {
		return false, p.last.FPS
	}

	fps := 1000 * float64(p.cfg.WindowSize) / elapsed
	p.windows++
	w := Window{FPS: fps, Population: population}

	var fn Adjuster
	switch {
	case fps > p.cfg.Max:
		w.Decision, fn = Grow, grow
	case fps < p.cfg.Min:
		w.Decision, fn = Shrink, shrink
	}

	adjusted := false
	if fn != nil {
		w.Requested = Adjust(fps, p.cfg.Target, population)
		w.Err = fn(w.Requested)
		adjusted = true
		if w.Err != nil {
			p.logger.Warn("population adjustment failed", "window", w)
		} else {
			p.logger.Debug("population adjusted", "window", w)
		}
	}
	p.last = w
	return adjusted, fps
}

// Adjust maps the distance between actual and target fps to a population
// increment. Thresholds are inclusive; the result is at least 1.
func Adjust(actual, target float64, total int) int {
	d := math.Abs(actual - target)

	var div int
	switch {
	case d >= 20:
		div = 2
	case d >= 10:
		div = 3
	case d >= 5:
		div = 4
	case d >= 2:
		div = 5
	default:
		return 1
	}

	if total < 0 {
		total = 0
	}
	n := (total + div - 1) / div
	if n < 1 {
		n = 1
	}
	return n
}
