package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/birdsim/internal/controllers"
	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/san-kum/birdsim/internal/sim"
	"github.com/san-kum/birdsim/internal/surface"
)

const (
	DefaultCapacity      = 100000
	DefaultBoundary      = 1000.0
	DefaultInitial       = 100
	DefaultVelocity      = 1.0
	DefaultFrames        = 600
	DefaultRefreshHz     = 60.0
	DefaultBaseMs        = 2.0
	DefaultPerParticleUs = 10.0
	DefaultWidth         = 1000
	DefaultHeight        = 400
	DefaultMarker        = 5.0
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Backend    string           `yaml:"backend"`
	Surface    string           `yaml:"surface"`
	Capacity   int              `yaml:"capacity"`
	Boundary   float32          `yaml:"boundary"`
	Initial    int              `yaml:"initial"`
	Velocity   float32          `yaml:"velocity"`
	Seed       int64            `yaml:"seed"`
	Frames     int              `yaml:"frames"`
	Profile    ProfileConfig    `yaml:"profile"`
	Integrator IntegratorConfig `yaml:"integrator"`
	Controller ControllerConfig `yaml:"controller"`
	Clock      ClockConfig      `yaml:"clock"`
	Display    DisplayConfig    `yaml:"display"`
}

type ProfileConfig struct {
	Samples  []float32 `yaml:"samples"`
	Interval float32   `yaml:"interval_ms"`
	Scale    float32   `yaml:"scale"`
}

type IntegratorConfig struct {
	SubSteps    int     `yaml:"sub_steps"`
	MaxSubSteps int     `yaml:"max_sub_steps"`
	TimeScale   float32 `yaml:"time_scale"`
	Bounce      string  `yaml:"bounce"`
}

type ControllerConfig struct {
	Target float64 `yaml:"target_fps"`
	Min    float64 `yaml:"min_fps"`
	Max    float64 `yaml:"max_fps"`
	Window int     `yaml:"window"`
}

type ClockConfig struct {
	Kind          string  `yaml:"kind"`
	RefreshHz     float64 `yaml:"refresh_hz"`
	BaseMs        float64 `yaml:"base_ms"`
	PerParticleUs float64 `yaml:"per_particle_us"`
}

type DisplayConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Marker float32 `yaml:"marker"`
}

func DefaultConfig() *Config {
	ctrl := controllers.DefaultConfig()
	return &Config{
		Backend:  "auto",
		Surface:  "discard",
		Capacity: DefaultCapacity,
		Boundary: DefaultBoundary,
		Initial:  DefaultInitial,
		Velocity: DefaultVelocity,
		Seed:     1,
		Frames:   DefaultFrames,
		Profile: ProfileConfig{
			Samples:  append([]float32(nil), dynamo.DefaultSamples...),
			Interval: dynamo.DefaultSampleInterval,
			Scale:    1,
		},
		Integrator: IntegratorConfig{
			SubSteps:    dynamo.DefaultSubSteps,
			MaxSubSteps: dynamo.DefaultMaxSubSteps,
			TimeScale:   dynamo.DefaultTimeScale,
			Bounce:      dynamo.BounceKeep.String(),
		},
		Controller: ControllerConfig{
			Target: ctrl.Target,
			Min:    ctrl.Min,
			Max:    ctrl.Max,
			Window: ctrl.WindowSize,
		},
		Clock: ClockConfig{
			Kind:          "virtual",
			RefreshHz:     DefaultRefreshHz,
			BaseMs:        DefaultBaseMs,
			PerParticleUs: DefaultPerParticleUs,
		},
		Display: DisplayConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Marker: DefaultMarker,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Profile.Samples = append([]float32(nil), c.Profile.Samples...)
	return &cp
}

func (c *Config) Validate() error {
	switch {
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity %d", ErrInvalidConfig, c.Capacity)
	case !(c.Boundary > 0):
		return fmt.Errorf("%w: boundary %v", ErrInvalidConfig, c.Boundary)
	case c.Initial < 0 || c.Initial > c.Capacity:
		return fmt.Errorf("%w: initial %d outside [0, %d]", ErrInvalidConfig, c.Initial, c.Capacity)
	case c.Frames < 0:
		return fmt.Errorf("%w: frames %d", ErrInvalidConfig, c.Frames)
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	if err := c.PopulationConfig().Validate(); err != nil {
		return err
	}
	switch c.Clock.Kind {
	case "virtual":
		if c.Clock.RefreshHz < 0 || c.Clock.BaseMs < 0 || c.Clock.PerParticleUs < 0 {
			return fmt.Errorf("%w: negative clock timing", ErrInvalidConfig)
		}
	case "wall":
		if !(c.Clock.RefreshHz > 0) {
			return fmt.Errorf("%w: refresh_hz %v", ErrInvalidConfig, c.Clock.RefreshHz)
		}
	default:
		return fmt.Errorf("%w: clock kind %q", ErrInvalidConfig, c.Clock.Kind)
	}
	return nil
}

// Params builds the integrator parameters, applying the profile scale.
func (c *Config) Params() (dynamo.Params, error) {
	prof, err := dynamo.NewProfile(c.Profile.Samples, c.Profile.Interval)
	if err != nil {
		return dynamo.Params{}, err
	}
	if c.Profile.Scale != 0 && c.Profile.Scale != 1 {
		prof = prof.Scaled(c.Profile.Scale)
	}
	bounce, err := dynamo.ParseBounceMode(c.Integrator.Bounce)
	if err != nil {
		return dynamo.Params{}, err
	}
	p := dynamo.Params{
		Profile:     prof,
		SubSteps:    c.Integrator.SubSteps,
		MaxSubSteps: c.Integrator.MaxSubSteps,
		TimeScale:   c.Integrator.TimeScale,
		Bounce:      bounce,
	}
	if err := p.Validate(); err != nil {
		return dynamo.Params{}, err
	}
	return p, nil
}

func (c *Config) PopulationConfig() controllers.Config {
	return controllers.Config{
		Target:     c.Controller.Target,
		Min:        c.Controller.Min,
		Max:        c.Controller.Max,
		WindowSize: c.Controller.Window,
	}
}

func (c *Config) FlockOptions() sim.Options {
	return sim.Options{
		Capacity:   c.Capacity,
		Boundary:   c.Boundary,
		Initial:    c.Initial,
		Velocity:   c.Velocity,
		Controller: c.PopulationConfig(),
		Token:      surface.Dot(c.Display.Marker),
		Seed:       c.Seed,
		Width:      float32(c.Display.Width),
		Height:     float32(c.Display.Height),
	}
}

// RefreshMs is the display refresh period, or 0 when unsynchronised.
func (c *Config) RefreshMs() float64 {
	if c.Clock.RefreshHz <= 0 {
		return 0
	}
	return 1000 / c.Clock.RefreshHz
}

// NewClock builds the configured frame clock. The caller stops wall clocks.
func (c *Config) NewClock() sim.Clock {
	if c.Clock.Kind == "wall" {
		return sim.NewWallClock(time.Duration(float64(time.Millisecond) * c.RefreshMs()))
	}
	return sim.NewVirtualClock(c.RefreshMs(), c.Clock.BaseMs, c.Clock.PerParticleUs)
}
