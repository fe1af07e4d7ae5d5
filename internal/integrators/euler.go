package integrators

import "github.com/san-kum/soilsim/internal/soil"

// Day is the fixed step length. Every scheme advances by whole days.
const Day = 1.0

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(k soil.Kernel, i int, s, p, et float64) float64 {
	return soil.Clamp(s+Day*k.Rate(i, s, p, et), k.Capacity(i))
}

// Guess returns the explicit Euler predictor used to seed the implicit corrector.
func (e *Euler) Guess(m *soil.Model, s0, rate0 float64) float64 {
	return soil.Clamp(s0+Day*rate0, m.Capacity)
}
