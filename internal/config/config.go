package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/soilsim/internal/forcing"
	"github.com/san-kum/soilsim/internal/integrators"
	"github.com/san-kum/soilsim/internal/soil"
)

const (
	DefaultScheme    = "implicit"
	DefaultPrecision = "standard"
	DefaultBackend   = "local"
	DefaultDays      = 365
	DefaultInitial   = 50.0
)

// Values is a parameter written either as a single number or as a list with one
// entry per ensemble member.
type Values []float64

func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var x float64
		if err := node.Decode(&x); err != nil {
			return err
		}
		*v = Values{x}
		return nil
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		*v = xs
		return nil
	}
	return fmt.Errorf("config: line %d: want a number or a list of numbers", node.Line)
}

func (v Values) MarshalYAML() (interface{}, error) {
	if len(v) == 1 {
		return v[0], nil
	}
	return []float64(v), nil
}

type ParamsConfig struct {
	Capacity Values `yaml:"capacity"`
	Ksat     Values `yaml:"ksat"`
	Alpha    Values `yaml:"alpha"`
	Beta     Values `yaml:"beta"`
	Gamma    Values `yaml:"gamma"`
	Eps      Values `yaml:"eps"`
}

// FromParameters converts p into its configuration form.
func FromParameters(p soil.Parameters) ParamsConfig {
	return ParamsConfig{
		Capacity: Values(p.Capacity.Clone()),
		Ksat:     Values(p.Ksat.Clone()),
		Alpha:    Values(p.Alpha.Clone()),
		Beta:     Values(p.Beta.Clone()),
		Gamma:    Values(p.Gamma.Clone()),
		Eps:      Values(p.Eps.Clone()),
	}
}

func (p ParamsConfig) Parameters() soil.Parameters {
	return soil.Parameters{
		Capacity: soil.Values(p.Capacity).Clone(),
		Ksat:     soil.Values(p.Ksat).Clone(),
		Alpha:    soil.Values(p.Alpha).Clone(),
		Beta:     soil.Values(p.Beta).Clone(),
		Gamma:    soil.Values(p.Gamma).Clone(),
		Eps:      soil.Values(p.Eps).Clone(),
	}
}

// ForcingConfig names where the daily forcing comes from: "synthetic" (generated
// from Synthetic, with the run's days and seed), "csv" (read from Path) or
// "constant" (Precip and ET every day).
type ForcingConfig struct {
	Source    string            `yaml:"source"`
	Path      string            `yaml:"path,omitempty"`
	Precip    float64           `yaml:"precip,omitempty"`
	ET        float64           `yaml:"et,omitempty"`
	Synthetic forcing.Synthetic `yaml:"synthetic"`
}

type SnowConfig struct {
	Enabled   bool    `yaml:"enabled"`
	DDF       float64 `yaml:"ddf"`
	Threshold float64 `yaml:"threshold"`
}

// Snow returns the snowpack setting, forcing.Disabled unless enabled.
func (s SnowConfig) Snow() forcing.Snow {
	if !s.Enabled {
		return forcing.Disabled
	}
	return forcing.Snow{DDF: s.DDF, Threshold: s.Threshold}
}

type Config struct {
	Scheme    string        `yaml:"scheme"`
	Precision string        `yaml:"precision"`
	MaxIters  int           `yaml:"max_iters"`
	Backend   string        `yaml:"backend"`
	Workers   int           `yaml:"workers"`
	Days      int           `yaml:"days"`
	Seed      uint64        `yaml:"seed"`
	Initial   Values        `yaml:"initial"`
	Params    ParamsConfig  `yaml:"params"`
	Forcing   ForcingConfig `yaml:"forcing"`
	Snow      SnowConfig    `yaml:"snow"`
}

func DefaultConfig() *Config {
	return &Config{
		Scheme:    DefaultScheme,
		Precision: DefaultPrecision,
		MaxIters:  integrators.DefaultMaxIters,
		Backend:   DefaultBackend,
		Days:      DefaultDays,
		Seed:      1,
		Initial:   Values{DefaultInitial},
		Params: ParamsConfig{
			Capacity: Values{150},
			Ksat:     Values{5},
			Alpha:    Values{1},
			Beta:     Values{2},
			Gamma:    Values{1},
			Eps:      Values{0},
		},
		Forcing: ForcingConfig{
			Source:    "synthetic",
			Synthetic: forcing.DefaultSynthetic(),
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
		return nil, err
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

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Initial = append(Values(nil), c.Initial...)
	out.Params = FromParameters(c.Params.Parameters())
	return &out
}

// Tolerance maps Precision onto the solver tolerance.
func (c *Config) Tolerance() (integrators.Tolerance, error) {
	switch c.Precision {
	case "", "standard":
		return integrators.StandardTolerance, nil
	case "precise":
		return integrators.PreciseTolerance, nil
	}
	return integrators.Tolerance{}, fmt.Errorf("config: unknown precision %q (want standard or precise)", c.Precision)
}

func (c *Config) InitialValues() soil.Values {
	return soil.Values(c.Initial).Clone()
}

// Validate checks everything that can be checked without reading forcing data.
func (c *Config) Validate() error {
	switch c.Scheme {
	case "implicit", "rk2":
	default:
		return fmt.Errorf("config: unknown scheme %q", c.Scheme)
	}
	if _, err := c.Tolerance(); err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("config: days %d, want >= 1", c.Days)
	}
	if c.MaxIters < 1 {
		return fmt.Errorf("config: max_iters %d, want >= 1", c.MaxIters)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers %d, want >= 0", c.Workers)
	}
	if len(c.Initial) == 0 {
		return fmt.Errorf("config: initial storage missing")
	}
	switch c.Forcing.Source {
	case "synthetic", "constant":
	case "csv":
		if c.Forcing.Path == "" {
			return fmt.Errorf("config: csv forcing needs a path")
		}
	default:
		return fmt.Errorf("config: unknown forcing source %q", c.Forcing.Source)
	}
	if c.Snow.Enabled && !c.Snow.Snow().Enabled() {
		return fmt.Errorf("config: snow ddf and threshold must be finite")
	}
	return c.Params.Parameters().Validate()
}
