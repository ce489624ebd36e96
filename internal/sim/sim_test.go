package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/san-kum/birdsim/internal/integrators"
	"github.com/san-kum/birdsim/internal/surface"
)

func newTestFlock(t *testing.T, mutate func(*Options)) (*Flock, *surface.Canvas) {
	t.Helper()
	opts := DefaultOptions()
	opts.Capacity = 10000
	opts.Initial = 100
	if mutate != nil {
		mutate(&opts)
	}
	canvas := surface.NewCanvas(40, 10)
	f, err := NewFlock(opts, integrators.NewScalar(dynamo.DefaultParams()), canvas)
	require.NoError(t, err)
	return f, canvas
}

func TestFlockGrowShrinkKeepsSurfaceInSync(t *testing.T) {
	f, canvas := newTestFlock(t, nil)
	require.Equal(t, 100, f.Len())
	require.Equal(t, 100, canvas.Len())

	require.NoError(t, f.Grow(25))
	assert.Equal(t, 125, f.Len())
	assert.Equal(t, 125, canvas.Len())

	require.NoError(t, f.Shrink(200))
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 0, canvas.Len())
}

func TestFlockGrowStopsAtCapacity(t *testing.T) {
	f, canvas := newTestFlock(t, func(o *Options) {
		o.Capacity = 10
		o.Initial = 8
	})

	err := f.Grow(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dynamo.ErrCapacityExceeded))
	assert.Equal(t, 10, f.Len())
	assert.Equal(t, 10, canvas.Len())
}

func TestNewFlockRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero capacity", func(o *Options) { o.Capacity = 0 }},
		{"zero boundary", func(o *Options) { o.Boundary = 0 }},
		{"initial over capacity", func(o *Options) { o.Capacity = 4; o.Initial = 5 }},
		{"bad controller", func(o *Options) { o.Controller.WindowSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := NewFlock(opts, integrators.NewScalar(dynamo.DefaultParams()), nil)
			assert.Error(t, err)
		})
	}
}

func TestFlockTickDelta(t *testing.T) {
	f, _ := newTestFlock(t, nil)
	before := f.Store().PositionOf(0)

	fr := f.Tick(500)
	assert.Equal(t, float32(0), fr.Delta)
	assert.Equal(t, before, f.Store().PositionOf(0), "first tick must not integrate")

	fr = f.Tick(516)
	assert.Equal(t, float32(16), fr.Delta)
	assert.Equal(t, 1, fr.Index)
	assert.NotEqual(t, before, f.Store().PositionOf(0))

	f.Resume()
	fr = f.Tick(10000)
	assert.Equal(t, float32(0), fr.Delta)
	assert.Equal(t, controllers.Accumulating, f.Controller().State())
}

func TestVirtualClockFrameMs(t *testing.T) {
	c := NewVirtualClock(10, 2, 100)

	assert.Equal(t, 10.0, c.FrameMs(0))
	assert.Equal(t, 10.0, c.FrameMs(80))
	assert.Equal(t, 20.0, c.FrameMs(81))
	assert.Equal(t, 30.0, c.FrameMs(250))

	free := NewVirtualClock(0, 2, 100)
	assert.Equal(t, 3.0, free.FrameMs(10))
}

func TestVirtualClockDeterministic(t *testing.T) {
	ctx := context.Background()
	a := NewVirtualClock(1000.0/60, 2, 10)
	b := NewVirtualClock(1000.0/60, 2, 10)

	prev := -1.0
	for i := 0; i < 50; i++ {
		pop := i * 100
		ta, err := a.Tick(ctx, pop)
		require.NoError(t, err)
		tb, err := b.Tick(ctx, pop)
		require.NoError(t, err)
		assert.Equal(t, ta, tb)
		assert.Greater(t, ta, prev)
		prev = ta
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err := a.Tick(cctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerConverges(t *testing.T) {
	f, _ := newTestFlock(t, nil)
	clock := NewVirtualClock(1000.0/60, 2, 10)

	var last Frame
	measured := 0
	f.AddObserver(ObserverFunc(func(fr Frame) {
		last = fr
		if fr.Measured {
			measured++
		}
	}))

	r := NewRunner(f, clock)
	require.NoError(t, r.Run(context.Background(), 400))

	assert.Equal(t, 400, f.Frames())
	assert.Equal(t, 1713, f.Len())
	assert.Equal(t, 39, measured)
	assert.InDelta(t, 30.0, last.FPS, 1e-6)
	assert.InDelta(t, 30.0, f.Controller().LastFPS(), 1e-6)
}

func TestRunnerStartStopIdempotent(t *testing.T) {
	f, _ := newTestFlock(t, nil)
	r := NewRunner(f, NewVirtualClock(10, 0, 0))

	assert.True(t, r.Running())
	r.Start()
	assert.True(t, r.Running())
	r.Stop()
	r.Stop()
	assert.False(t, r.Running())
	assert.True(t, r.Toggle())
	assert.False(t, r.Toggle())
}

func TestRunnerStopPreventsNextTick(t *testing.T) {
	f, _ := newTestFlock(t, nil)
	r := NewRunner(f, NewVirtualClock(10, 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.AddObserver(ObserverFunc(func(fr Frame) {
		if fr.Index == 5 {
			r.Stop()
			cancel()
		}
	}))

	err := r.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 6, f.Frames())
}

func TestRunnerRestartResumesTiming(t *testing.T) {
	f, _ := newTestFlock(t, nil)
	r := NewRunner(f, NewVirtualClock(10, 0, 0))

	var frames []Frame
	f.AddObserver(ObserverFunc(func(fr Frame) { frames = append(frames, fr) }))

	require.NoError(t, r.Run(context.Background(), 3))
	r.Stop()
	r.Start()
	require.NoError(t, r.Run(context.Background(), 2))

	require.Len(t, frames, 5)
	assert.Equal(t, float32(10), frames[2].Delta)
	assert.Equal(t, float32(0), frames[3].Delta)
	assert.Equal(t, float32(10), frames[4].Delta)
}
