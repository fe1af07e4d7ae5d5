package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/forcing"
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
)

// Experiment is one configured run: the forcing it reads and the simulator that
// integrates it.
type Experiment struct {
	cfg       *config.Config
	series    forcing.Series
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the configuration, loads or generates forcing and builds the
// simulator. extra options are applied after the configured ones.
func (e *Experiment) Setup(reg *Registry, log logrus.FieldLogger, extra ...sim.Option) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	params := e.cfg.Params.Parameters()
	_, members, err := params.Resolve()
	if err != nil {
		return err
	}

	scheme, err := reg.GetScheme(e.cfg.Scheme)
	if err != nil {
		return err
	}
	tol, err := e.cfg.Tolerance()
	if err != nil {
		return err
	}
	backend, err := reg.GetBackend(e.cfg.Backend, members, e.cfg.Workers)
	if err != nil {
		return err
	}
	series, err := reg.GetForcing(e.cfg)
	if err != nil {
		return fmt.Errorf("forcing: %w", err)
	}

	opts := []sim.Option{
		sim.WithScheme(scheme),
		sim.WithTolerance(tol),
		sim.WithMaxIters(e.cfg.MaxIters),
		sim.WithBackend(backend),
		sim.WithSnow(e.cfg.Snow.Snow()),
	}
	if log != nil {
		opts = append(opts, sim.WithLogger(log))
	}
	for _, m := range reg.DefaultMetrics(params.Capacity) {
		opts = append(opts, sim.WithMetric(m))
	}
	opts = append(opts, extra...)

	s, err := sim.New(params, opts...)
	if err != nil {
		return err
	}

	e.series = series
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.Initial(), e.series)
}

// Start returns a Stepper for day-by-day driving.
func (e *Experiment) Start() (*sim.Stepper, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Start(e.Initial(), e.series)
}

func (e *Experiment) Initial() soil.Values { return e.cfg.InitialValues() }

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Series() forcing.Series { return e.series }

// GetSimulator returns the underlying simulator
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
