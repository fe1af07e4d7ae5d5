package integrators

import (
	"math"

	"github.com/san-kum/soilsim/internal/soil"
)

// Method records how a day's implicit step was resolved.
type Method uint8

const (
	MethodNewton Method = iota
	MethodBisection
	// MethodSaturated: the store fills; resolved at capacity without iterating.
	MethodSaturated
	// MethodDry: the trapezoidal root lies at or below zero; resolved at the floor.
	MethodDry
)

func (m Method) String() string {
	switch m {
	case MethodNewton:
		return "newton"
	case MethodBisection:
		return "bisection"
	case MethodSaturated:
		return "saturated"
	case MethodDry:
		return "dry"
	default:
		return "unknown"
	}
}

// StepStats describes the work spent on one member for one day.
type StepStats struct {
	Newton    int
	Bisection int
	Method    Method
	Converged bool
}

// Trapezoid is the implicit trapezoidal-rule integrator. Each day is seeded with an
// explicit Euler guess and corrected by Newton-Raphson on
//
//	r(S) = S - S0 - dt/2 * (rate(S) + rate(S0))
//
// using the analytic slope of the flux model. When a Newton update leaves
// (0, capacity) the day is re-solved by bisection on [0, capacity].
type Trapezoid struct {
	Tol      Tolerance
	MaxIters int
	euler    *Euler
}

func NewTrapezoid(tol Tolerance) *Trapezoid {
	return &Trapezoid{
		Tol:      tol,
		MaxIters: DefaultMaxIters,
		euler:    NewEuler(),
	}
}

func (t *Trapezoid) Name() string { return "implicit" }

// Step advances storage s0 by one day under precipitation p and evapotranspiration
// demand e. The result always lies in [soil.Floor, capacity]; a day that exhausts
// MaxIters keeps its last iterate and reports Converged = false.
func (t *Trapezoid) Step(m *soil.Model, s0, p, e float64) (float64, StepStats) {
	var st StepStats
	rate0 := m.Rate(s0, p, e)
	s := t.euler.Guess(m, s0, rate0)

	half := 0.5 * Day
	r := math.Inf(1)
	absErr, funcErr := math.Inf(1), math.Inf(1)

	for !t.Tol.met(absErr, funcErr) && st.Newton < t.MaxIters {
		rPrev := r
		r = s - s0 - half*(m.Rate(s, p, e)+rate0)
		dr := 1 - half*m.Slope(s, p, e)
		delta := r / dr

		next := s - delta
		if next >= m.Capacity || next <= 0 || math.IsNaN(next) {
			return t.bisect(m, s0, rate0, p, e, st)
		}

		s = next
		absErr = math.Abs(delta)
		funcErr = math.Abs(r - rPrev)
		st.Newton++
	}

	st.Method = MethodNewton
	st.Converged = t.Tol.met(absErr, funcErr)
	return soil.Clamp(s, m.Capacity), st
}

func (t *Trapezoid) residual(m *soil.Model, s, s0, rate0, p, e float64) float64 {
	return s - s0 - 0.5*Day*(m.Rate(s, p, e)+rate0)
}

// bisect solves the day on the bracket [0, capacity]. A residual that is already
// non-positive at capacity means the store fills; one that is non-negative at zero
// means the root lies below the domain. The residual is strictly increasing in S, so
// otherwise the bracket holds exactly one root.
func (t *Trapezoid) bisect(m *soil.Model, s0, rate0, p, e float64, st StepStats) (float64, StepStats) {
	lo, hi := 0.0, m.Capacity
	fa := t.residual(m, lo, s0, rate0, p, e)
	fb := t.residual(m, hi, s0, rate0, p, e)

	switch {
	case fb <= 0:
		st.Bisection++
		st.Method = MethodSaturated
		st.Converged = true
		return m.Capacity, st
	case fa >= 0:
		st.Bisection++
		st.Method = MethodDry
		st.Converged = true
		return soil.Floor, st
	}

	mid := 0.5 * (lo + hi)
	f := t.residual(m, mid, s0, rate0, p, e)
	absErr, funcErr := math.Inf(1), math.Inf(1)

	for !t.Tol.met(absErr, funcErr) && st.Bisection < t.MaxIters && f != 0 {
		if fa*f < 0 {
			hi = mid
		} else {
			lo, fa = mid, f
		}
		next := 0.5 * (lo + hi)
		absErr = math.Abs(next - mid)
		mid = next

		fPrev := f
		f = t.residual(m, mid, s0, rate0, p, e)
		funcErr = math.Abs(f - fPrev)
		st.Bisection++
	}

	st.Method = MethodBisection
	st.Converged = f == 0 || t.Tol.met(absErr, funcErr)
	return soil.Clamp(mid, m.Capacity), st
}
