package config

import "sort"

var Presets = map[string]func(*Config){
	"canonical": func(*Config) {},
	"derived": func(c *Config) {
		c.Integrator.SubSteps = 0
	},
	"revert": func(c *Config) {
		c.Integrator.Bounce = "revert"
	},
	// accelerations in units/ms², stepped in ms
	"prescaled": func(c *Config) {
		c.Profile.Scale = 1e-6
		c.Integrator.TimeScale = 1
		c.Velocity = 1e-3
	},
	"stress": func(c *Config) {
		c.Initial = 10000
		c.Controller.Target = 60
		c.Controller.Min = 58
		c.Controller.Max = 62
		c.Clock.RefreshHz = 120
		c.Clock.PerParticleUs = 1
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
