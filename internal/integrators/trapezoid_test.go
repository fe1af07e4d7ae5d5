package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/soilsim/internal/soil"
)

func linearModel() soil.Model {
	return soil.NewModel(soil.Member{Capacity: 100, Ksat: 2, Alpha: 1, Beta: 1, Gamma: 1})
}

func TestTrapezoidLinearClosedForm(t *testing.T) {
	m := linearModel()
	integ := NewTrapezoid(PreciseTolerance)

	tests := []struct {
		name     string
		s0, p, e float64
	}{
		{"wetting", 30, 6, 1},
		{"drying", 70, 0, 4},
		{"balanced", 50, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// rate(S) = p - lambda*S for the all-linear model
			lambda := (tt.p + m.Ksat + tt.e) / m.Capacity
			want := (tt.s0 + 0.5*(tt.p-lambda*tt.s0) + 0.5*tt.p) / (1 + 0.5*lambda)

			got, st := integ.Step(&m, tt.s0, tt.p, tt.e)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("got %.12f, want %.12f", got, want)
			}
			if st.Method != MethodNewton || !st.Converged {
				t.Errorf("unexpected stats %+v", st)
			}
			if st.Newton < 1 || st.Newton > 3 {
				t.Errorf("expected a few Newton iterations on a linear residual, got %d", st.Newton)
			}
		})
	}
}

func TestTrapezoidZeroForcingHoldsState(t *testing.T) {
	m := soil.NewModel(soil.Member{Capacity: 100, Ksat: 0, Alpha: 2, Beta: 3, Gamma: 0.5})
	integ := NewTrapezoid(StandardTolerance)

	for _, s0 := range []float64{soil.Floor, 1, 42, 99.5} {
		got, st := integ.Step(&m, s0, 0, 0)
		if got != s0 {
			t.Errorf("s0=%g: moved to %g", s0, got)
		}
		if st.Bisection != 0 {
			t.Errorf("s0=%g: unexpected bisection", s0)
		}
	}
}

func TestTrapezoidSaturationShortCircuit(t *testing.T) {
	m := soil.NewModel(soil.Member{Capacity: 100, Ksat: 2, Alpha: 0, Beta: 1, Gamma: 1})
	integ := NewTrapezoid(StandardTolerance)

	got, st := integ.Step(&m, 50, 1e6, 1)
	if got != 100 {
		t.Fatalf("expected capacity, got %g", got)
	}
	if st.Method != MethodSaturated {
		t.Errorf("expected saturated, got %s", st.Method)
	}
	if st.Newton != 0 || st.Bisection != 1 {
		t.Errorf("expected 0 newton / 1 bisection, got %d / %d", st.Newton, st.Bisection)
	}
}

func TestTrapezoidDryShortCircuit(t *testing.T) {
	m := soil.NewModel(soil.Member{Capacity: 100, Ksat: 0, Alpha: 1, Beta: 1, Gamma: 1})
	integ := NewTrapezoid(StandardTolerance)

	got, st := integ.Step(&m, 1, 0, 1000)
	if got != soil.Floor {
		t.Fatalf("expected floor, got %g", got)
	}
	if st.Method != MethodDry || st.Bisection != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestTrapezoidBisectFindsInteriorRoot(t *testing.T) {
	m := soil.NewModel(soil.Member{Capacity: 80, Ksat: 3, Alpha: 2.5, Beta: 4, Gamma: 0.5})
	integ := NewTrapezoid(PreciseTolerance)
	s0, p, e := 20.0, 12.0, 3.0
	rate0 := m.Rate(s0, p, e)

	got, st := integ.bisect(&m, s0, rate0, p, e, StepStats{})
	if st.Method != MethodBisection {
		t.Fatalf("expected bisection, got %s", st.Method)
	}
	if r := integ.residual(&m, got, s0, rate0, p, e); math.Abs(r) > 1e-8 {
		t.Errorf("residual at root too large: %e", r)
	}

	newton, _ := integ.Step(&m, s0, p, e)
	if math.Abs(newton-got) > 1e-8 {
		t.Errorf("bisection %.10f disagrees with newton %.10f", got, newton)
	}
}

func TestTrapezoidNonConvergenceKeepsIterate(t *testing.T) {
	m := soil.NewModel(soil.Member{Capacity: 100, Ksat: 2, Alpha: 2, Beta: 2, Gamma: 2})
	integ := NewTrapezoid(PreciseTolerance)
	integ.MaxIters = 1

	got, st := integ.Step(&m, 40, 5, 2)
	if st.Converged {
		t.Error("expected non-convergence with a single iteration")
	}
	if st.Newton != 1 {
		t.Errorf("expected 1 newton iteration, got %d", st.Newton)
	}
	if got < soil.Floor || got > m.Capacity {
		t.Errorf("iterate out of bounds: %g", got)
	}
}

func TestMethodString(t *testing.T) {
	tests := map[Method]string{
		MethodNewton:    "newton",
		MethodBisection: "bisection",
		MethodSaturated: "saturated",
		MethodDry:       "dry",
		Method(42):      "unknown",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("%d: got %q, want %q", m, got, want)
		}
	}
}
