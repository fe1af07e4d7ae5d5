package integrators

// Tolerance is the convergence test shared by the Newton and bisection solvers: a
// step stops once both the update and the change in residual are within bounds.
type Tolerance struct {
	Abs  float64 `yaml:"abs" json:"abs"`
	Func float64 `yaml:"func" json:"func"`
}

// DefaultMaxIters caps both the Newton and the bisection loop of a single day.
const DefaultMaxIters = 100

var (
	StandardTolerance = Tolerance{Abs: 1.0e-6, Func: 1.0e-6}
	PreciseTolerance  = Tolerance{Abs: 1.0e-10, Func: 1.0e-10}
)

func (t Tolerance) met(absErr, funcErr float64) bool {
	return absErr <= t.Abs && funcErr <= t.Func
}
