package metrics

import "github.com/san-kum/soilsim/internal/sim"

// FallbackRate is the share of member-days the implicit solver resolved by bisection.
type FallbackRate struct {
	name      string
	fallbacks int
	samples   int
}

func NewFallbackRate() *FallbackRate {
	return &FallbackRate{name: "fallback_rate"}
}

func (f *FallbackRate) Name() string { return f.name }

func (f *FallbackRate) Observe(day int, state []float64, report sim.DayReport) {
	f.fallbacks += report.Fallbacks
	f.samples += len(state)
}

func (f *FallbackRate) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return float64(f.fallbacks) / float64(f.samples)
}

func (f *FallbackRate) Reset() {
	f.fallbacks = 0
	f.samples = 0
}

// NewtonPerDay is the mean number of Newton iterations per member-day.
type NewtonPerDay struct {
	name       string
	iterations int
	samples    int
}

func NewNewtonPerDay() *NewtonPerDay {
	return &NewtonPerDay{name: "newton_per_day"}
}

func (n *NewtonPerDay) Name() string { return n.name }

func (n *NewtonPerDay) Observe(day int, state []float64, report sim.DayReport) {
	n.iterations += report.Newton
	n.samples += len(state)
}

func (n *NewtonPerDay) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return float64(n.iterations) / float64(n.samples)
}

func (n *NewtonPerDay) Reset() {
	n.iterations = 0
	n.samples = 0
}

// Standard returns the metrics reported by every run.
func Standard(capacity []float64) []sim.Metric {
	return []sim.Metric{
		NewMeanStorage(),
		NewPeakStorage(),
		NewSaturation(capacity, 1e-9),
		NewDrought(),
		NewFallbackRate(),
		NewNewtonPerDay(),
	}
}
