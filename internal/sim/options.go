package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/san-kum/soilsim/internal/compute"
	"github.com/san-kum/soilsim/internal/forcing"
	"github.com/san-kum/soilsim/internal/integrators"
)

type Option func(*Simulator)

func WithScheme(s Scheme) Option {
	return func(sim *Simulator) { sim.scheme = s }
}

// WithTolerance sets the convergence test of the implicit scheme.
func WithTolerance(tol integrators.Tolerance) Option {
	return func(sim *Simulator) { sim.tol = tol }
}

// WithMaxIters caps Newton and bisection iterations per member-day.
func WithMaxIters(n int) Option {
	return func(sim *Simulator) { sim.maxIters = n }
}

func WithBackend(b compute.Backend) Option {
	return func(sim *Simulator) { sim.backend = b }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(sim *Simulator) { sim.log = log }
}

// WithSnow routes precipitation through a degree-day snowpack before integration.
func WithSnow(sn forcing.Snow) Option {
	return func(sim *Simulator) { sim.snow = sn }
}

func WithMetric(m Metric) Option {
	return func(sim *Simulator) { sim.metrics = append(sim.metrics, m) }
}

func WithObserver(o Observer) Option {
	return func(sim *Simulator) { sim.observers = append(sim.observers, o) }
}
