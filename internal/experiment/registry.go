package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/soilsim/internal/compute"
	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/forcing"
	"github.com/san-kum/soilsim/internal/metrics"
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
)

// Registry maps configuration names onto schemes, backends and forcing sources.
type Registry struct {
	schemes  map[string]sim.Scheme
	backends map[string]func(members, workers int) (compute.Backend, error)
	forcings map[string]func(cfg *config.Config) (forcing.Series, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		schemes:  make(map[string]sim.Scheme),
		backends: make(map[string]func(int, int) (compute.Backend, error)),
		forcings: make(map[string]func(*config.Config) (forcing.Series, error)),
	}

	r.schemes["implicit"] = sim.SchemeImplicit
	r.schemes["rk2"] = sim.SchemeRK2

	for _, name := range compute.Names() {
		r.backends[name] = func(_, workers int) (compute.Backend, error) { return compute.Select(name, workers) }
	}
	r.backends["auto"] = func(members, _ int) (compute.Backend, error) {
		return compute.AutoSelectBackend(members), nil
	}

	r.forcings["synthetic"] = func(cfg *config.Config) (forcing.Series, error) {
		g := cfg.Forcing.Synthetic
		g.Days = cfg.Days
		g.Seed = cfg.Seed
		return g.Generate()
	}
	r.forcings["constant"] = func(cfg *config.Config) (forcing.Series, error) {
		return forcing.Constant(cfg.Days, cfg.Forcing.Precip, cfg.Forcing.ET), nil
	}
	r.forcings["csv"] = func(cfg *config.Config) (forcing.Series, error) {
		s, err := forcing.LoadCSV(cfg.Forcing.Path)
		if err != nil {
			return forcing.Series{}, err
		}
		if s.Days() > cfg.Days {
			s = s.Slice(0, cfg.Days)
		}
		return s, nil
	}

	return r
}

func (r *Registry) GetScheme(name string) (sim.Scheme, error) {
	s, ok := r.schemes[name]
	if !ok {
		return "", fmt.Errorf("unknown scheme: %s", name)
	}
	return s, nil
}

func (r *Registry) GetBackend(name string, members, workers int) (compute.Backend, error) {
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return fn(members, workers)
}

func (r *Registry) GetForcing(cfg *config.Config) (forcing.Series, error) {
	fn, ok := r.forcings[cfg.Forcing.Source]
	if !ok {
		return forcing.Series{}, fmt.Errorf("unknown forcing source: %s", cfg.Forcing.Source)
	}
	return fn(cfg)
}

func (r *Registry) ListSchemes() []string  { return keys(r.schemes) }
func (r *Registry) ListBackends() []string { return keys(r.backends) }
func (r *Registry) ListForcings() []string { return keys(r.forcings) }

func (r *Registry) DefaultMetrics(capacity soil.Values) []sim.Metric {
	return metrics.Standard(capacity)
}

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
