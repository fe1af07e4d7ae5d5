package sim

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/soilsim/internal/forcing"
	"github.com/san-kum/soilsim/internal/integrators"
	"github.com/san-kum/soilsim/internal/soil"
)

// Stepper advances a run one day at a time. It is not safe for concurrent use.
type Stepper struct {
	sim    *Simulator
	series forcing.Series
	log    logrus.FieldLogger

	trap *integrators.Trapezoid
	rk   integrators.Explicit

	path  [][]float64
	state []float64
	stats []integrators.StepStats
	day   int
	diag  Diagnostics
	pack  []float64
}

func newStepper(s *Simulator, initial soil.Values, series forcing.Series, pack []float64) *Stepper {
	days := series.Days()
	st := &Stepper{
		sim:    s,
		series: series,
		log: s.log.WithFields(logrus.Fields{
			"scheme": string(s.scheme),
			"kernel": s.kernel.Name(),
		}),
		path:  make([][]float64, s.members),
		state: make([]float64, s.members),
		diag:  Diagnostics{Days: make([]DayReport, 0, days-1)},
		pack:  pack,
	}

	switch s.scheme {
	case SchemeImplicit:
		st.trap = integrators.NewTrapezoid(s.tol)
		st.trap.MaxIters = s.maxIters
		st.stats = make([]integrators.StepStats, s.members)
	case SchemeRK2:
		st.rk = integrators.NewRalston()
	}

	for i := range st.path {
		st.path[i] = make([]float64, days)
		st.path[i][0] = initial.At(i)
		st.state[i] = st.path[i][0]
	}
	return st
}

// Day returns the last completed day; 0 before the first Step.
func (st *Stepper) Day() int { return st.day }

func (st *Stepper) Days() int { return st.series.Days() }

func (st *Stepper) Done() bool { return st.day >= st.series.Days()-1 }

// State returns the storage of every member on the current day. The slice is reused
// by the next Step.
func (st *Stepper) State() []float64 { return st.state }

// Forcing returns the precipitation and evapotranspiration applied on day d, after
// the snowpack when one is configured.
func (st *Stepper) Forcing(d int) (precip, et float64) {
	return st.series.Precip[d], st.series.ET[d]
}

// Step integrates the next day for every member.
func (st *Stepper) Step(ctx context.Context) (DayReport, error) {
	if st.Done() {
		return DayReport{}, ErrFinished
	}
	if err := ctx.Err(); err != nil {
		return DayReport{}, err
	}

	d := st.day + 1
	p, e := st.Forcing(d)

	var body func(start, end int)
	if st.trap != nil {
		body = func(start, end int) {
			for i := start; i < end; i++ {
				row := st.path[i]
				row[d], st.stats[i] = st.trap.Step(&st.sim.models[i], row[d-1], p, e)
			}
		}
	} else {
		kernel := st.sim.kernel
		body = func(start, end int) {
			for i := start; i < end; i++ {
				row := st.path[i]
				row[d] = st.rk.Step(kernel, i, row[d-1], p, e)
			}
		}
	}

	if err := st.sim.backend.ForEach(ctx, st.sim.members, body); err != nil {
		return DayReport{}, err
	}

	for i, row := range st.path {
		st.state[i] = row[d]
	}
	report := st.reduce(d)
	st.day = d
	st.diag.add(report)

	for _, m := range st.sim.metrics {
		m.Observe(d, st.state, report)
	}
	for _, o := range st.sim.observers {
		o.OnDay(d, st.state, report)
	}
	return report, nil
}

func (st *Stepper) reduce(d int) DayReport {
	report := DayReport{Day: d}
	if st.trap == nil {
		return report
	}

	for i, s := range st.stats {
		report.Newton += s.Newton
		report.Bisection += s.Bisection

		switch s.Method {
		case integrators.MethodBisection:
			report.Fallbacks++
		case integrators.MethodSaturated:
			report.Fallbacks++
			report.Saturated++
		case integrators.MethodDry:
			report.Fallbacks++
			report.Dry++
			st.log.WithFields(logrus.Fields{"day": d, "member": i}).
				Warn("trapezoidal root below zero, storage set to floor")
		}
		if s.Method != integrators.MethodNewton {
			st.log.WithFields(logrus.Fields{
				"day":       d,
				"member":    i,
				"method":    s.Method.String(),
				"newton":    s.Newton,
				"bisection": s.Bisection,
			}).Debug("newton left the domain")
		}

		if !s.Converged {
			report.Unconverged++
			st.log.WithFields(logrus.Fields{
				"day":       d,
				"member":    i,
				"newton":    s.Newton,
				"bisection": s.Bisection,
			}).Debug("step did not converge, keeping last iterate")
		}
	}
	return report
}

// Result returns the run so far. Path rows extend to the full series length; days
// after Day() are zero until stepped.
func (st *Stepper) Result() *Result {
	metrics := make(map[string]float64, len(st.sim.metrics))
	for _, m := range st.sim.metrics {
		metrics[m.Name()] = m.Value()
	}
	return &Result{
		Path:        st.path,
		Diagnostics: st.diag,
		Metrics:     metrics,
		Layout:      st.sim.layout,
		Kernel:      st.sim.kernel.Name(),
		Scheme:      st.sim.scheme,
		Snowpack:    st.pack,
	}
}
