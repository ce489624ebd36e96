package sim

import (
	"context"
	"log/slog"
	"sync"
)

// Runner drives a flock from a clock on a single goroutine. Start and Stop
// may be called from any goroutine, any number of times. Stop never
// interrupts a tick in progress; it only keeps the next one from running.
type Runner struct {
	flock *Flock
	clock Clock

	mu      sync.Mutex
	running bool
	paused  bool
	wake    chan struct{}
	logger  *slog.Logger
}

func NewRunner(f *Flock, c Clock) *Runner {
	return &Runner{
		flock:   f,
		clock:   c,
		running: true,
		wake:    make(chan struct{}, 1),
		logger:  slog.Default(),
	}
}

func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	r.logger = l
	return r
}

func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.logger.Info("runner started")
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	r.paused = true
	r.logger.Info("runner stopped")
}

// Toggle flips between started and stopped and reports the new state.
func (r *Runner) Toggle() bool {
	if r.Running() {
		r.Stop()
		return false
	}
	r.Start()
	return true
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// resume reports whether the runner may tick, clearing the flock's timing
// state if it was stopped since the last tick.
func (r *Runner) resume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return false
	}
	if r.paused {
		r.paused = false
		r.flock.Resume()
	}
	return true
}

// Run ticks until ctx is cancelled, the clock fails, or maxFrames frames
// have run (maxFrames <= 0 means no limit).
func (r *Runner) Run(ctx context.Context, maxFrames int) error {
	frames := 0
	for maxFrames <= 0 || frames < maxFrames {
		if !r.Running() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.wake:
			}
			continue
		}

		ts, err := r.clock.Tick(ctx, r.flock.Len())
		if err != nil {
			return err
		}
		if !r.resume() {
			continue
		}
		r.flock.Tick(ts)
		frames++
	}
	return nil
}
