package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrUnknownKnob = errors.New("config: unknown knob")

// knobs are the numeric settings that scenarios and sweeps may override.
var knobs = map[string]func(*Config, float64){
	"initial":         func(c *Config, v float64) { c.Initial = int(v) },
	"capacity":        func(c *Config, v float64) { c.Capacity = int(v) },
	"boundary":        func(c *Config, v float64) { c.Boundary = float32(v) },
	"velocity":        func(c *Config, v float64) { c.Velocity = float32(v) },
	"seed":            func(c *Config, v float64) { c.Seed = int64(v) },
	"frames":          func(c *Config, v float64) { c.Frames = int(v) },
	"profile_scale":   func(c *Config, v float64) { c.Profile.Scale = float32(v) },
	"sub_steps":       func(c *Config, v float64) { c.Integrator.SubSteps = int(v) },
	"max_sub_steps":   func(c *Config, v float64) { c.Integrator.MaxSubSteps = int(v) },
	"time_scale":      func(c *Config, v float64) { c.Integrator.TimeScale = float32(v) },
	"target_fps":      setTarget,
	"min_fps":         func(c *Config, v float64) { c.Controller.Min = v },
	"max_fps":         func(c *Config, v float64) { c.Controller.Max = v },
	"window":          func(c *Config, v float64) { c.Controller.Window = int(v) },
	"refresh_hz":      func(c *Config, v float64) { c.Clock.RefreshHz = v },
	"base_ms":         func(c *Config, v float64) { c.Clock.BaseMs = v },
	"per_particle_us": func(c *Config, v float64) { c.Clock.PerParticleUs = v },
}

// setTarget moves the band with the target, keeping its width.
func setTarget(c *Config, v float64) {
	half := (c.Controller.Max - c.Controller.Min) / 2
	c.Controller.Target = v
	c.Controller.Min = v - half
	c.Controller.Max = v + half
}

func Knobs() []string {
	names := make([]string, 0, len(knobs))
	for name := range knobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set assigns one knob. The result is not validated.
func (c *Config) Set(name string, v float64) error {
	fn, ok := knobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKnob, name)
	}
	fn(c, v)
	return nil
}

// Apply sets every knob in params in name order and validates the result.
// Applied configs drive batch runs, so they must also be bounded.
func (c *Config) Apply(params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Set(name, params[name]); err != nil {
			return err
		}
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return c.RequireBounded()
}

// RequireBounded rejects frames: 0, which Validate accepts as "run until
// cancelled" for interactive runs.
func (c *Config) RequireBounded() error {
	if c.Frames < 1 {
		return fmt.Errorf("%w: frames %d, batch runs need a frame limit", ErrInvalidConfig, c.Frames)
	}
	return nil
}

// ParseRange parses "name=v1,v2,..." into a knob name and its values.
func ParseRange(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("%w: range %q, want name=v1,v2", ErrInvalidConfig, s)
	}
	if _, ok := knobs[name]; !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownKnob, name)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: range %q: %v", ErrInvalidConfig, s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
