package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/san-kum/birdsim/internal/surface"
)

type Options struct {
	Capacity   int
	Boundary   float32
	Initial    int
	Velocity   float32 // initial velocity of every new particle
	Controller controllers.Config
	Token      surface.Token
	Seed       int64

	// Width and Height of the drawing area, used when the surface does not
	// report its own size.
	Width, Height float32
}

func DefaultOptions() Options {
	return Options{
		Capacity:   100000,
		Boundary:   1000,
		Initial:    100,
		Velocity:   1,
		Controller: controllers.DefaultConfig(),
		Token:      surface.Dot(5),
		Seed:       1,
		Width:      1000,
		Height:     400,
	}
}

// Flock ties a particle store to its integrator, population controller and
// render surface. One Tick runs per frame; ticks must not overlap.
type Flock struct {
	store *dynamo.Store
	integ dynamo.Integrator
	ctrl  *controllers.Population
	surf  surface.Surface

	token   surface.Token
	vel     float32
	xs      []float32
	handles []surface.Handle
	rng     *rand.Rand
	width   float32
	yScale  float32

	frame     int
	lastTs    float64
	hasLast   bool
	observers []Observer
	logger    *slog.Logger
}

func NewFlock(opts Options, integ dynamo.Integrator, surf surface.Surface) (*Flock, error) {
	if !(opts.Boundary > 0) {
		return nil, fmt.Errorf("boundary must be positive, got %g", opts.Boundary)
	}
	store, err := dynamo.NewStore(opts.Capacity, opts.Boundary)
	if err != nil {
		return nil, err
	}
	ctrl, err := controllers.NewPopulation(opts.Controller)
	if err != nil {
		return nil, err
	}
	if surf == nil {
		surf = surface.NewDiscard(opts.Width, opts.Height)
	}

	w, h := opts.Width, opts.Height
	if s, ok := surf.(surface.Sizer); ok {
		w, h = s.Size()
	}

	f := &Flock{
		store:   store,
		integ:   integ,
		ctrl:    ctrl,
		surf:    surf,
		token:   opts.Token,
		vel:     opts.Velocity,
		xs:      make([]float32, 0, opts.Capacity),
		handles: make([]surface.Handle, 0, opts.Capacity),
		rng:     rand.New(rand.NewSource(opts.Seed)),
		width:   w,
		yScale:  h / opts.Boundary,
		logger:  slog.Default(),
	}
	if err := f.Grow(opts.Initial); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Flock) WithLogger(l *slog.Logger) *Flock {
	f.logger = l
	f.ctrl.WithLogger(l)
	return f
}

func (f *Flock) AddObserver(o Observer) { f.observers = append(f.observers, o) }

func (f *Flock) Store() *dynamo.Store                { return f.store }
func (f *Flock) Controller() *controllers.Population { return f.ctrl }
func (f *Flock) Integrator() dynamo.Integrator       { return f.integ }
func (f *Flock) Surface() surface.Surface            { return f.surf }
func (f *Flock) Len() int                            { return f.store.Len() }
func (f *Flock) Frames() int                         { return f.frame }

// Grow adds n particles at random heights with the configured velocity. It
// stops at the first failure; particles already added stay.
func (f *Flock) Grow(n int) error {
	for i := 0; i < n; i++ {
		pos := f.rng.Float32() * f.store.Boundary()
		if _, err := f.store.Add(pos, f.vel); err != nil {
			if errors.Is(err, dynamo.ErrCapacityExceeded) {
				f.logger.Debug("capacity exceeded", "requested", n, "added", i, "capacity", f.store.Cap())
			}
			return fmt.Errorf("grow %d (added %d): %w", n, i, err)
		}
		x := f.rng.Float32() * f.width
		f.xs = append(f.xs, x)
		f.handles = append(f.handles, f.surf.Place(f.token, x, pos*f.yScale))
	}
	return nil
}

// Shrink removes up to n of the most recently added particles.
func (f *Flock) Shrink(n int) error {
	for i := 0; i < n && f.store.Len() > 0; i++ {
		f.store.RemoveLast()
		f.surf.RemoveLast()
		f.xs = f.xs[:len(f.xs)-1]
		f.handles = f.handles[:len(f.handles)-1]
	}
	return nil
}

// Advance integrates every live particle by deltaMs and repositions markers.
func (f *Flock) Advance(deltaMs float32) {
	f.integ.Advance(f.store, deltaMs)
	f.sync()
}

func (f *Flock) sync() {
	for i, h := range f.handles {
		f.surf.Move(h, f.xs[i], f.store.PositionOf(i)*f.yScale)
	}
}

// Tick runs one frame: the controller samples ts and may resize the
// population, then the flock advances by the time since the previous tick.
func (f *Flock) Tick(ts float64) Frame {
	windows := f.ctrl.Windows()
	adjusted, fps := f.ctrl.Sample(ts, f.store.Len(), f.Grow, f.Shrink)

	var delta float32
	if f.hasLast {
		delta = float32(ts - f.lastTs)
	}
	f.lastTs, f.hasLast = ts, true

	start := time.Now()
	f.Advance(delta)
	elapsed := time.Since(start)

	fr := Frame{
		Index:      f.frame,
		Timestamp:  ts,
		Delta:      delta,
		Population: f.store.Len(),
		FPS:        fps,
		Measured:   f.ctrl.Windows() != windows,
		Adjusted:   adjusted,
		AdvanceNs:  elapsed.Nanoseconds(),
	}
	if adjusted {
		w := f.ctrl.LastWindow()
		fr.Decision, fr.Requested = w.Decision, w.Requested
	}
	f.frame++

	for _, o := range f.observers {
		o.OnFrame(fr)
	}
	return fr
}

// Resume forgets the previous timestamp and restarts the measurement window,
// so the first tick after a pause neither integrates nor measures the gap.
func (f *Flock) Resume() {
	f.hasLast = false
	f.ctrl.Reset()
}

// Dump logs the state of one particle at debug level.
func (f *Flock) Dump(id int) {
	f.logger.Debug("particle", "id", id, "pos", f.store.PositionOf(id), "vel", f.store.VelocityOf(id))
}
