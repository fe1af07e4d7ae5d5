// Package automation runs scripted batches of simulations and Monte Carlo ensembles
// built from a base configuration.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/experiment"
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. It starts from Config (a YAML file), else from
// Preset, else from the defaults; non-zero fields then override it.
type ScenarioStep struct {
	Preset    string             `yaml:"preset"`
	Config    string             `yaml:"config"`
	Scheme    string             `yaml:"scheme"`
	Precision string             `yaml:"precision"`
	Days      int                `yaml:"days"`
	Seed      uint64             `yaml:"seed"`
	Initial   config.Values      `yaml:"initial"`
	Params    map[string]float64 `yaml:"params"`
	SaveAs    string             `yaml:"save_as"`
}

// StepResult is the outcome of one scenario step. RunID is empty when the step was
// not stored.
type StepResult struct {
	Step   int
	RunID  string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("automation: scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Resolve returns the configuration of the step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("automation: unknown preset %q", s.Preset)
		}
	}

	if s.Scheme != "" {
		cfg.Scheme = s.Scheme
	}
	if s.Precision != "" {
		cfg.Precision = s.Precision
	}
	if s.Days > 0 {
		cfg.Days = s.Days
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if len(s.Initial) > 0 {
		cfg.Initial = append(config.Values(nil), s.Initial...)
	}
	for name, v := range s.Params {
		if err := setParam(&cfg.Params, name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setParam replaces one parameter of p with a shared value.
func setParam(p *config.ParamsConfig, name string, v float64) error {
	var field *config.Values
	switch name {
	case "capacity":
		field = &p.Capacity
	case "ksat":
		field = &p.Ksat
	case "alpha":
		field = &p.Alpha
	case "beta":
		field = &p.Beta
	case "gamma":
		field = &p.Gamma
	case "eps":
		field = &p.Eps
	default:
		return fmt.Errorf("automation: unknown parameter %q", name)
	}
	*field = config.Values{v}
	return nil
}

// RunScenario executes all steps in order. Steps with SaveAs are written to store
// when it is non-nil. On error the results of the completed steps are returned.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, log logrus.FieldLogger, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log = orDiscard(log)

	for i, step := range scenario.Steps {
		stepLog := log.WithFields(logrus.Fields{"scenario": scenario.Name, "step": i + 1})

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(reg, stepLog); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		stepLog.WithFields(logrus.Fields{"scheme": cfg.Scheme, "days": cfg.Days}).Info("running step")
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Result: result}
		if store != nil && step.SaveAs != "" {
			s := exp.GetSimulator()
			sr.RunID, err = store.Save(storage.RunInfo{
				Name:      step.SaveAs,
				Precision: cfg.Precision,
				Backend:   s.Backend().Name(),
				Seed:      cfg.Seed,
				Params:    s.Parameters(),
				Initial:   exp.Initial(),
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
