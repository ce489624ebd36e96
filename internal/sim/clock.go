package sim

import (
	"context"
	"math"
	"time"
)

// WallClock ticks at a fixed refresh period and reports milliseconds since it
// was created.
type WallClock struct {
	ticker *time.Ticker
	start  time.Time
}

func NewWallClock(refresh time.Duration) *WallClock {
	return &WallClock{ticker: time.NewTicker(refresh), start: time.Now()}
}

func (c *WallClock) Tick(ctx context.Context, _ int) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case t := <-c.ticker.C:
		return float64(t.Sub(c.start)) / float64(time.Millisecond), nil
	}
}

func (c *WallClock) Stop() { c.ticker.Stop() }

// VirtualClock models a display that refreshes every RefreshMs and a frame
// whose cost grows linearly with the population. A frame that misses a
// refresh waits for the next one. The first tick is at 0.
type VirtualClock struct {
	RefreshMs     float64
	BaseMs        float64
	PerParticleUs float64

	now     float64
	started bool
}

func NewVirtualClock(refreshMs, baseMs, perParticleUs float64) *VirtualClock {
	return &VirtualClock{RefreshMs: refreshMs, BaseMs: baseMs, PerParticleUs: perParticleUs}
}

// FrameMs is the duration of one frame rendering population particles.
func (c *VirtualClock) FrameMs(population int) float64 {
	cost := c.BaseMs + c.PerParticleUs*float64(population)/1000
	if c.RefreshMs <= 0 {
		return cost
	}
	if cost <= c.RefreshMs {
		return c.RefreshMs
	}
	return math.Ceil(cost/c.RefreshMs) * c.RefreshMs
}

func (c *VirtualClock) Tick(ctx context.Context, population int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !c.started {
		c.started = true
		return c.now, nil
	}
	c.now += c.FrameMs(population)
	return c.now, nil
}

func (c *VirtualClock) Now() float64 { return c.now }
