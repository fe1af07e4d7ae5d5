package config

import "sort"

var Presets = map[string]*Config{
	"sandy": {
		Scheme: "implicit", Precision: "standard", Backend: "local", Days: 730, Seed: 7,
		Initial: Values{30},
		Params: ParamsConfig{
			Capacity: Values{80}, Ksat: Values{25}, Alpha: Values{0.5},
			Beta: Values{4}, Gamma: Values{1}, Eps: Values{0},
		},
	},
	"loam": {
		Scheme: "implicit", Precision: "standard", Backend: "local", Days: 730, Seed: 7,
		Initial: Values{90},
		Params: ParamsConfig{
			Capacity: Values{180}, Ksat: Values{8}, Alpha: Values{1},
			Beta: Values{2.5}, Gamma: Values{1}, Eps: Values{0.1},
		},
	},
	"clay": {
		Scheme: "implicit", Precision: "precise", Backend: "local", Days: 730, Seed: 7,
		Initial: Values{200},
		Params: ParamsConfig{
			Capacity: Values{300}, Ksat: Values{1.5}, Alpha: Values{2.5},
			Beta: Values{6}, Gamma: Values{0.7}, Eps: Values{0.3},
		},
	},
	"saturation": {
		Scheme: "implicit", Precision: "standard", Backend: "local", Days: 60,
		Initial: Values{90},
		Params: ParamsConfig{
			Capacity: Values{100}, Ksat: Values{2}, Alpha: Values{0},
			Beta: Values{1}, Gamma: Values{1}, Eps: Values{0},
		},
		Forcing: ForcingConfig{Source: "constant", Precip: 40, ET: 1},
	},
	"sweep": {
		Scheme: "rk2", Precision: "standard", Backend: "parallel", Days: 3 * 365, Seed: 11,
		Initial: Values{50},
		Params: ParamsConfig{
			Capacity: Values{60, 90, 120, 150, 180, 210, 240, 270},
			Ksat:     Values{1, 2, 4, 6, 8, 12, 16, 24},
			Beta:     Values{1.5, 2, 2.5, 3, 3.5, 4, 5, 6},
			Alpha:    Values{1},
			Gamma:    Values{1},
			Eps:      Values{0},
		},
	},
}

// GetPreset returns a copy of the named preset with any unset sections taken from
// DefaultConfig, or nil when no such preset exists.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.MaxIters == 0 {
		cfg.MaxIters = def.MaxIters
	}
	if cfg.Forcing.Source == "" {
		cfg.Forcing = def.Forcing
	}
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
