package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/birdsim/internal/config"
	"github.com/san-kum/birdsim/internal/experiment"
	"github.com/san-kum/birdsim/internal/sim"
	"github.com/san-kum/birdsim/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset plus knob overrides
type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	Frames int                `yaml:"frames"`
	Set    map[string]float64 `yaml:"set"`
	Save   bool               `yaml:"save"`
}

// StepResult pairs a step with its run and, when saved, the run id
type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *experiment.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}

	return &scenario, nil
}

func (s ScenarioStep) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Frames > 0 {
		cfg.Frames = s.Frames
	}
	if err := cfg.Apply(s.Set); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s ScenarioStep) label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Preset != "":
		return s.Preset
	}
	return "run"
}

// RunScenario executes all steps in order. Steps marked save are written
// to store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		slog.Info("scenario step", "n", i+1, "of", len(scenario.Steps), "step", step.label())

		cfg, err := step.config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.Save && store != nil {
			sr.RunID, err = store.Save(exp.Metadata(step.label(), result), result.Frames)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs the base config across evenly spaced values of one knob
type ParameterSweep struct {
	Base     *config.Config
	Knob     string
	Min      float64
	Max      float64
	NumSteps int
}

// SweepResult holds the outcome at one knob value
type SweepResult struct {
	Value      float64
	Population int
	MeanFPS    float64
	InBand     float64
}

// RunSweep executes the sweep in increasing knob order
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	var step float64
	if sweep.NumSteps > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		val := sweep.Min + float64(i)*step

		cfg := sweep.Base.Clone()
		if err := cfg.Apply(map[string]float64{sweep.Knob: val}); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Knob, val, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			Value:      val,
			Population: result.Population,
			MeanFPS:    result.Metrics["mean_fps"],
			InBand:     result.Metrics["in_band"],
		})

		slog.Debug("sweep", "step", i+1, "of", sweep.NumSteps, sweep.Knob, val, "population", result.Population)
	}

	return results, nil
}

// MonteCarloConfig perturbs the simulated per-particle frame cost and the
// initial population of the base config across trials.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64 // relative, e.g. 0.5 for +-50%
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID       int
	PerParticleUs float64
	Initial       int
	Final         int
	FinalFPS      float64
	Settled       bool // last measured frame rate inside the band
}

// RunMonteCarlo executes the trials
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if err := cfg.Base.RequireBounded(); err != nil {
		return nil, err
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		trialCfg := cfg.Base.Clone()
		trialCfg.Clock.Kind = "virtual"
		trialCfg.Clock.PerParticleUs *= 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		initial := float64(trialCfg.Initial) * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		trialCfg.Initial = max(1, min(int(initial), trialCfg.Capacity))
		trialCfg.Seed = rng.Int63()

		exp := experiment.New(trialCfg)
		if err := exp.Setup(nil); err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		fps, ok := lastMeasured(result.Frames)
		results = append(results, MonteCarloResult{
			TrialID:       trial,
			PerParticleUs: trialCfg.Clock.PerParticleUs,
			Initial:       trialCfg.Initial,
			Final:         result.Population,
			FinalFPS:      fps,
			Settled:       ok && fps >= trialCfg.Controller.Min && fps <= trialCfg.Controller.Max,
		})

		if (trial+1)%10 == 0 {
			slog.Info("monte carlo", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

func lastMeasured(frames []sim.Frame) (float64, bool) {
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Measured {
			return frames[i].FPS, true
		}
	}
	return 0, false
}

// MonteCarloStats counts settled and unsettled trials
func MonteCarloStats(results []MonteCarloResult) (settled int, unsettled int) {
	for _, r := range results {
		if r.Settled {
			settled++
		} else {
			unsettled++
		}
	}
	return
}
