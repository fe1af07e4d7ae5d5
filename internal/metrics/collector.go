package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/soilsim/internal/sim"
)

// Collector exports solver activity as Prometheus series. It implements sim.Observer.
type Collector struct {
	DaysTotal           prometheus.Counter
	NewtonIterations    prometheus.Counter
	BisectionIterations prometheus.Counter
	FallbacksTotal      *prometheus.CounterVec
	UnconvergedTotal    prometheus.Counter
	MeanStorage         prometheus.Gauge
	NewtonPerDay        prometheus.Histogram
}

// NewCollector registers the solver series with reg under namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DaysTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "days_total",
				Help:      "Total number of simulated days",
			},
		),

		NewtonIterations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "newton_iterations_total",
				Help:      "Total Newton-Raphson iterations across all members",
			},
		),

		BisectionIterations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bisection_iterations_total",
				Help:      "Total bisection iterations across all members",
			},
		),

		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Member-days resolved by the bisection fallback, by outcome",
			},
			[]string{"outcome"},
		),

		UnconvergedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unconverged_total",
				Help:      "Member-days that reached the iteration cap",
			},
		),

		MeanStorage: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mean_storage",
				Help:      "Ensemble mean storage on the latest simulated day",
			},
		),

		NewtonPerDay: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "newton_iterations_per_day",
				Help:      "Newton iterations spent on one day across all members",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
}

func (c *Collector) OnDay(day int, state []float64, report sim.DayReport) {
	c.DaysTotal.Inc()
	c.NewtonIterations.Add(float64(report.Newton))
	c.BisectionIterations.Add(float64(report.Bisection))
	c.UnconvergedTotal.Add(float64(report.Unconverged))

	bisected := report.Fallbacks - report.Saturated - report.Dry
	c.FallbacksTotal.WithLabelValues("bisection").Add(float64(bisected))
	c.FallbacksTotal.WithLabelValues("saturated").Add(float64(report.Saturated))
	c.FallbacksTotal.WithLabelValues("dry").Add(float64(report.Dry))

	c.NewtonPerDay.Observe(float64(report.Newton))

	if len(state) > 0 {
		total := 0.0
		for _, s := range state {
			total += s
		}
		c.MeanStorage.Set(total / float64(len(state)))
	}
}
