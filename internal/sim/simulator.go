package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/soilsim/internal/compute"
	"github.com/san-kum/soilsim/internal/forcing"
	"github.com/san-kum/soilsim/internal/integrators"
	"github.com/san-kum/soilsim/internal/soil"
)

// Simulator integrates the soil store over a forcing series. Parameters are validated
// and the flux kernel is chosen once, by New; a Simulator may then run any number of
// series, one at a time.
type Simulator struct {
	params  soil.Parameters
	layout  soil.Layout
	members int
	kernel  soil.Kernel
	models  []soil.Model

	scheme   Scheme
	tol      integrators.Tolerance
	maxIters int
	backend  compute.Backend
	log      logrus.FieldLogger
	snow     forcing.Snow

	metrics   []Metric
	observers []Observer
}

// New validates params and returns a Simulator using the implicit scheme, the
// standard tolerance and the local backend unless overridden by opts.
func New(params soil.Parameters, opts ...Option) (*Simulator, error) {
	kernel, err := soil.NewKernel(params)
	if err != nil {
		return nil, err
	}
	layout, n, _ := params.Resolve()

	s := &Simulator{
		params:   params.Clone(),
		layout:   layout,
		members:  n,
		kernel:   kernel,
		scheme:   SchemeImplicit,
		tol:      integrators.StandardTolerance,
		maxIters: integrators.DefaultMaxIters,
		backend:  compute.NewLocalBackend(),
		log:      defaultLogger(),
		snow:     forcing.Disabled,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := ParseScheme(string(s.scheme)); err != nil {
		return nil, err
	}
	if s.maxIters < 1 {
		return nil, fmt.Errorf("sim: max iterations %d, want >= 1", s.maxIters)
	}
	if !(s.tol.Abs > 0) || !(s.tol.Func > 0) {
		return nil, fmt.Errorf("sim: tolerance %+v must be positive", s.tol)
	}

	s.models = make([]soil.Model, n)
	for i := range s.models {
		s.models[i] = soil.NewModel(s.params.Member(i))
	}
	return s, nil
}

func defaultLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

func (s *Simulator) Layout() soil.Layout              { return s.layout }
func (s *Simulator) Members() int                     { return s.members }
func (s *Simulator) Kernel() string                   { return s.kernel.Name() }
func (s *Simulator) Scheme() Scheme                   { return s.scheme }
func (s *Simulator) Backend() compute.Backend         { return s.backend }
func (s *Simulator) Parameters() soil.Parameters      { return s.params.Clone() }
func (s *Simulator) Tolerance() integrators.Tolerance { return s.tol }

// Run integrates series from initial and returns the full moisture path. initial is
// either one value shared by every member or one value per member. On cancellation
// the days completed so far are returned together with the context error.
func (s *Simulator) Run(ctx context.Context, initial soil.Values, series forcing.Series) (*Result, error) {
	st, err := s.Start(initial, series)
	if err != nil {
		return nil, err
	}

	for !st.Done() {
		if _, err := st.Step(ctx); err != nil {
			return st.Result(), err
		}
	}

	res := st.Result()
	st.log.WithFields(logrus.Fields{
		"days":      res.Days(),
		"members":   res.Members(),
		"newton":    res.Diagnostics.NewtonIterations,
		"bisection": res.Diagnostics.BisectionIterations,
	}).Debug("run complete")
	return res, nil
}

// Start checks initial and series and returns a Stepper positioned on day 0.
func (s *Simulator) Start(initial soil.Values, series forcing.Series) (*Stepper, error) {
	if err := series.Validate(); err != nil {
		if errors.Is(err, forcing.ErrLength) || errors.Is(err, forcing.ErrEmpty) {
			return nil, fmt.Errorf("%w: %w", ErrForcingLength, err)
		}
		return nil, fmt.Errorf("sim: %w", err)
	}
	if err := s.checkInitial(initial); err != nil {
		return nil, err
	}

	var pack []float64
	if s.snow.Enabled() && series.HasTemp() {
		series, pack = s.snow.Apply(series)
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	return newStepper(s, initial, series, pack), nil
}

func (s *Simulator) checkInitial(initial soil.Values) error {
	if len(initial) != 1 && len(initial) != s.members {
		return fmt.Errorf("%w: %d values for %d members", ErrInitialState, len(initial), s.members)
	}
	for i := 0; i < s.members; i++ {
		v := initial.At(i)
		capacity := s.kernel.Capacity(i)
		if math.IsNaN(v) || v < soil.Floor || v > capacity {
			return StateError{Member: i, Value: v, Capacity: capacity}
		}
	}
	return nil
}
