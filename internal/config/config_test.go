package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/soilsim/internal/integrators"
	"github.com/san-kum/soilsim/internal/soil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scheme != "implicit" {
		t.Errorf("expected scheme implicit, got %s", cfg.Scheme)
	}
	if cfg.Days <= 0 {
		t.Error("days should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValuesYAML(t *testing.T) {
	var doc struct {
		A Values `yaml:"a"`
		B Values `yaml:"b"`
	}
	if err := yaml.Unmarshal([]byte("a: 3.5\nb: [1, 2, 3]\n"), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.A) != 1 || doc.A[0] != 3.5 {
		t.Errorf("scalar decoded as %v", doc.A)
	}
	if len(doc.B) != 3 || doc.B[2] != 3 {
		t.Errorf("list decoded as %v", doc.B)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "a: 3.5") {
		t.Errorf("scalar not written as a number:\n%s", out)
	}

	if err := yaml.Unmarshal([]byte("a: {x: 1}\n"), &doc); err == nil {
		t.Error("expected error for a mapping")
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("sweep")
	cfg.Snow = SnowConfig{Enabled: true, DDF: 2.5, Threshold: 0.5}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Scheme != "rk2" || got.Backend != "parallel" {
		t.Errorf("scheme/backend %s/%s", got.Scheme, got.Backend)
	}
	if len(got.Params.Capacity) != 8 || got.Params.Capacity[7] != 270 {
		t.Errorf("capacity %v", got.Params.Capacity)
	}
	if len(got.Params.Alpha) != 1 || got.Params.Alpha[0] != 1 {
		t.Errorf("alpha %v", got.Params.Alpha)
	}
	if !got.Snow.Snow().Enabled() || got.Snow.DDF != 2.5 {
		t.Errorf("snow %+v", got.Snow)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	doc := "scheme: rk2\nparams:\n  ksat: [1, 2]\n  capacity: [50, 60]\n  beta: [1, 1]\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Days != DefaultDays || cfg.Precision != DefaultPrecision {
		t.Errorf("defaults lost: %+v", cfg)
	}
	layout, n, err := cfg.Params.Parameters().Resolve()
	if err != nil || layout != soil.LayoutSharedExponents || n != 2 {
		t.Errorf("layout %v n %d err %v", layout, n, err)
	}
}

func TestTolerance(t *testing.T) {
	tests := []struct {
		precision string
		want      integrators.Tolerance
		wantErr   bool
	}{
		{"", integrators.StandardTolerance, false},
		{"standard", integrators.StandardTolerance, false},
		{"precise", integrators.PreciseTolerance, false},
		{"sloppy", integrators.Tolerance{}, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Precision = tt.precision
		got, err := cfg.Tolerance()
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("precision %q: got %+v, %v", tt.precision, got, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"scheme", func(c *Config) { c.Scheme = "rk4" }},
		{"days", func(c *Config) { c.Days = 0 }},
		{"max iters", func(c *Config) { c.MaxIters = 0 }},
		{"workers", func(c *Config) { c.Workers = -1 }},
		{"initial", func(c *Config) { c.Initial = nil }},
		{"source", func(c *Config) { c.Forcing.Source = "radar" }},
		{"csv path", func(c *Config) { c.Forcing.Source = "csv" }},
		{"eps", func(c *Config) { c.Params.Eps = Values{1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Params.Ksat = Values{1, 2, 3}
	cfg.Params.Beta = Values{1, 2}
	cfg.Params.Capacity = Values{10, 20, 30}
	if err := cfg.Validate(); !errors.Is(err, soil.ErrShapeMismatch) {
		t.Errorf("expected shape mismatch, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("clay")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params.Capacity[0] != 300 {
		t.Errorf("expected capacity 300, got %v", cfg.Params.Capacity)
	}
	if cfg.Forcing.Source != "synthetic" || cfg.MaxIters != integrators.DefaultMaxIters {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	cfg.Params.Capacity[0] = 1
	if Presets["clay"].Params.Capacity[0] != 300 {
		t.Error("GetPreset returned shared storage")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets returned %d of %d", len(names), len(Presets))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestFromParameters(t *testing.T) {
	p := soil.Parameters{
		Capacity: soil.Values{50, 100},
		Ksat:     soil.Values{1, 2},
		Alpha:    soil.Scalar(1),
		Beta:     soil.Values{2, 3},
		Gamma:    soil.Scalar(1),
		Eps:      soil.Scalar(0),
	}
	pc := FromParameters(p)
	if len(pc.Capacity) != 2 || pc.Beta[1] != 3 || pc.Alpha[0] != 1 {
		t.Errorf("unexpected conversion %+v", pc)
	}

	pc.Capacity[0] = 1
	if p.Capacity[0] != 50 {
		t.Error("FromParameters shares storage with its input")
	}
}
