package integrators

import "github.com/san-kum/soilsim/internal/soil"

const (
	ralstonC2 = 2.0 / 3.0
	ralstonB1 = 0.25
	ralstonB2 = 0.75
)

// Explicit advances one ensemble member by one day without any correction.
type Explicit interface {
	Name() string
	Step(k soil.Kernel, i int, s, p, e float64) float64
}

// Ralston is the two-stage, second order Runge-Kutta scheme with weights (1/4, 3/4)
// and the second stage at 2/3 of the step.
type Ralston struct{}

func NewRalston() *Ralston {
	return &Ralston{}
}

func (r *Ralston) Name() string { return "rk2" }

func (r *Ralston) Step(k soil.Kernel, i int, s, p, e float64) float64 {
	k1 := k.Rate(i, s, p, e)
	k2 := k.Rate(i, s+ralstonC2*Day*k1, p, e)
	return soil.Clamp(s+Day*(ralstonB1*k1+ralstonB2*k2), k.Capacity(i))
}
