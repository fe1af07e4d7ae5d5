package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/soilsim/internal/forcing"
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
)

func TestMeanStorage(t *testing.T) {
	m := NewMeanStorage()

	m.Observe(1, []float64{10, 20}, sim.DayReport{})
	m.Observe(2, []float64{30, 40}, sim.DayReport{})

	if got := m.Value(); math.Abs(got-25) > 1e-12 {
		t.Errorf("expected mean 25, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestPeakStorage(t *testing.T) {
	p := NewPeakStorage()
	if p.Value() != 0 {
		t.Errorf("empty peak should be 0, got %f", p.Value())
	}
	p.Observe(1, []float64{3, 9}, sim.DayReport{})
	p.Observe(2, []float64{5, 1}, sim.DayReport{})
	if p.Value() != 9 {
		t.Errorf("expected peak 9, got %f", p.Value())
	}
}

func TestSaturationAndDrought(t *testing.T) {
	sat := NewSaturation(soil.Values{10, 20}, 1e-9)
	dry := NewDrought()

	days := [][]float64{
		{10, 5},
		{soil.Floor, 20},
		{4, 19.5},
	}
	for d, state := range days {
		sat.Observe(d+1, state, sim.DayReport{})
		dry.Observe(d+1, state, sim.DayReport{})
	}

	if got := sat.Value(); math.Abs(got-2.0/6.0) > 1e-12 {
		t.Errorf("saturation fraction %f, want 1/3", got)
	}
	if got := dry.Value(); math.Abs(got-1.0/6.0) > 1e-12 {
		t.Errorf("drought fraction %f, want 1/6", got)
	}
}

func TestSolverMetrics(t *testing.T) {
	f := NewFallbackRate()
	n := NewNewtonPerDay()

	reports := []sim.DayReport{
		{Day: 1, Newton: 6, Fallbacks: 0},
		{Day: 2, Newton: 2, Bisection: 1, Fallbacks: 1, Saturated: 1},
	}
	for _, r := range reports {
		f.Observe(r.Day, []float64{1, 1}, r)
		n.Observe(r.Day, []float64{1, 1}, r)
	}

	if got := f.Value(); got != 0.25 {
		t.Errorf("fallback rate %f, want 0.25", got)
	}
	if got := n.Value(); got != 2 {
		t.Errorf("newton per day %f, want 2", got)
	}
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("soilsim", reg)

	c.OnDay(1, []float64{10, 30}, sim.DayReport{Day: 1, Newton: 4})
	c.OnDay(2, []float64{50, 70}, sim.DayReport{Day: 2, Newton: 1, Bisection: 2, Fallbacks: 2, Saturated: 1, Unconverged: 1})

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"days", c.DaysTotal, 2},
		{"newton", c.NewtonIterations, 5},
		{"bisection", c.BisectionIterations, 2},
		{"unconverged", c.UnconvergedTotal, 1},
		{"saturated", c.FallbacksTotal.WithLabelValues("saturated"), 1},
		{"bisected", c.FallbacksTotal.WithLabelValues("bisection"), 1},
		{"dry", c.FallbacksTotal.WithLabelValues("dry"), 0},
		{"mean storage", c.MeanStorage, 60},
	}
	for _, tt := range checks {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(c.NewtonPerDay); n != 1 {
		t.Errorf("expected one histogram series, got %d", n)
	}
}

func TestStandardMetricsInRun(t *testing.T) {
	params := soil.Uniform(soil.Member{Capacity: 100, Ksat: 2, Alpha: 1, Beta: 1, Gamma: 1})
	reg := prometheus.NewRegistry()
	collector := NewCollector("soilsim", reg)

	opts := []sim.Option{sim.WithObserver(collector)}
	for _, m := range Standard(params.Capacity) {
		opts = append(opts, sim.WithMetric(m))
	}
	s, err := sim.New(params, opts...)
	if err != nil {
		t.Fatal(err)
	}

	result, err := s.Run(context.Background(), soil.Scalar(50), forcing.Constant(11, 3, 2))
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"mean_storage", "peak_storage", "saturation_fraction", "drought_fraction", "fallback_rate", "newton_per_day"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if got := testutil.ToFloat64(collector.DaysTotal); got != 10 {
		t.Errorf("collector saw %v days, want 10", got)
	}
	if got := testutil.ToFloat64(collector.NewtonIterations); got != float64(result.Diagnostics.NewtonIterations) {
		t.Errorf("collector newton %v, diagnostics %d", got, result.Diagnostics.NewtonIterations)
	}
}
