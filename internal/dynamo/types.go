package dynamo

import (
	"fmt"
	"math"
)

// BounceMode selects what happens to position when a sub-step crosses the boundary.
type BounceMode int

const (
	// BounceKeep keeps the advanced position and only flips velocity.
	BounceKeep BounceMode = iota
	// BounceRevert restores the pre-step position and flips velocity.
	BounceRevert
)

func (b BounceMode) String() string {
	switch b {
	case BounceKeep:
		return "keep"
	case BounceRevert:
		return "revert"
	default:
		return fmt.Sprintf("bounce(%d)", int(b))
	}
}

func ParseBounceMode(s string) (BounceMode, error) {
	switch s {
	case "", "keep":
		return BounceKeep, nil
	case "revert":
		return BounceRevert, nil
	}
	return BounceKeep, fmt.Errorf("%w: unknown bounce mode %q", ErrInvalidParams, s)
}

const (
	// DefaultSubSteps walks the default profile once per frame.
	DefaultSubSteps = 11
	// DefaultTimeScale converts milliseconds into seconds.
	DefaultTimeScale = 0.001
	// DefaultMaxSubSteps bounds the derived sub-step count.
	DefaultMaxSubSteps = 4096
)

type Params struct {
	Profile     *Profile
	SubSteps    int // 0 derives the count from the profile's sample interval
	MaxSubSteps int
	TimeScale   float32
	Bounce      BounceMode
}

func DefaultParams() Params {
	return Params{
		Profile:     DefaultProfile(),
		SubSteps:    DefaultSubSteps,
		MaxSubSteps: DefaultMaxSubSteps,
		TimeScale:   DefaultTimeScale,
		Bounce:      BounceKeep,
	}
}

func (p Params) Validate() error {
	if p.Profile == nil || p.Profile.Len() == 0 {
		return ErrInvalidProfile
	}
	if p.SubSteps < 0 {
		return fmt.Errorf("%w: sub_steps %d", ErrInvalidParams, p.SubSteps)
	}
	if p.SubSteps == 0 && p.MaxSubSteps < 1 {
		return fmt.Errorf("%w: max_sub_steps %d", ErrInvalidParams, p.MaxSubSteps)
	}
	if !(p.TimeScale > 0) || math.IsInf(float64(p.TimeScale), 0) {
		return fmt.Errorf("%w: time_scale %v", ErrInvalidParams, p.TimeScale)
	}
	if p.Bounce != BounceKeep && p.Bounce != BounceRevert {
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Bounce)
	}
	return nil
}

// Plan returns the sub-step count and width for one frame of deltaMs.
// ok is false for non-positive or NaN deltas, which must leave state untouched.
func (p Params) Plan(deltaMs float32) (steps int, subDt float32, ok bool) {
	if !(deltaMs > 0) || math.IsInf(float64(deltaMs), 0) {
		return 0, 0, false
	}
	steps = p.SubSteps
	if steps == 0 {
		// clamp before converting so huge deltas cannot overflow int
		f := math.Ceil(float64(deltaMs) / float64(p.Profile.SampleInterval()))
		switch {
		case f > float64(p.MaxSubSteps):
			steps = p.MaxSubSteps
		case f < 1:
			steps = 1
		default:
			steps = int(f)
		}
	}
	subDt = deltaMs * p.TimeScale / float32(steps)
	return steps, subDt, true
}

// Integrator advances every live particle of a store by one frame.
type Integrator interface {
	Name() string
	Advance(s *Store, deltaMs float32)
}
