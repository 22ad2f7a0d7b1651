// Package automation runs scripted sequences of simulations and
// studies defined in a YAML scenario file, so a whole measurement
// campaign reproduces from one document.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/experiment"
	"github.com/san-kum/heatmc/internal/metrics"
	"github.com/san-kum/heatmc/internal/sim"
	"github.com/san-kum/heatmc/internal/storage"
)

// Scenario defines a scripted simulation sequence.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Kind selects the action:
// "run" executes one simulation, "compare", "sweep" and "converge"
// execute the corresponding study.
type ScenarioStep struct {
	Kind      string    `yaml:"kind"`
	Material  string    `yaml:"material"`
	Materials []string  `yaml:"materials"`
	Field     string    `yaml:"field"`
	Values    []float64 `yaml:"values"`
	Counts    []int     `yaml:"counts"`
	Runs      int       `yaml:"runs"`

	// Optional overrides of the material defaults.
	Time       float64 `yaml:"time"`
	Q          int     `yaml:"q"`
	Packets    int     `yaml:"packets"`
	Convection float64 `yaml:"convection"`
	Engine     string  `yaml:"engine"`
	Seed       int64   `yaml:"seed"`
}

// StepResult reports what one step produced.
type StepResult struct {
	Step   int
	Kind   string
	RunID  string
	Points []experiment.Point
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("invalid scenario file: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return &sc, nil
}

func (s *ScenarioStep) buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Material != "" {
		built, err := config.MaterialConfig(s.Material, cfg.Q)
		if err != nil {
			return nil, err
		}
		cfg = built
	}
	if s.Time > 0 {
		cfg.TMax = s.Time
	}
	if s.Q > 0 {
		cfg.Q = s.Q
	}
	if s.Packets > 0 {
		cfg.NPackets = s.Packets
	}
	if s.Convection > 0 {
		cfg.Convection = s.Convection
	}
	if s.Engine != "" {
		cfg.Engine = s.Engine
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, cfg.Validate()
}

func (s *ScenarioStep) runs() int {
	if s.Runs > 0 {
		return s.Runs
	}
	return 8
}

// Run executes every step in order. Single runs are persisted to the
// store; study steps return their points for reporting.
func (sc *Scenario) Run(ctx context.Context, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		cfg, err := step.buildConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res := StepResult{Step: i + 1, Kind: step.Kind}

		switch step.Kind {
		case "run":
			engine, err := sim.New(cfg)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			for _, m := range metrics.Default(cfg.Steps()) {
				engine.AddMetric(m)
			}
			runResult, err := engine.Run(ctx)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			runID, err := st.Save(runResult)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.RunID = runID

		case "compare":
			runner, err := experiment.NewRunner(cfg, step.runs())
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.Points, err = runner.CompareMaterials(ctx, step.Materials)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}

		case "sweep":
			runner, err := experiment.NewRunner(cfg, step.runs())
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.Points, err = runner.Sweep(ctx, step.Field, step.Values)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}

		case "converge":
			runner, err := experiment.NewRunner(cfg, step.runs())
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.Points, err = runner.ConvergenceStudy(ctx, step.Counts)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}

		default:
			return results, fmt.Errorf("step %d: unknown kind %q", i+1, step.Kind)
		}

		results = append(results, res)
	}

	return results, nil
}
