package sim

import (
	"fmt"

	"github.com/san-kum/soilsim/internal/soil"
)

// Scheme selects the time-stepping method.
type Scheme string

const (
	SchemeImplicit Scheme = "implicit"
	SchemeRK2      Scheme = "rk2"
)

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeImplicit, SchemeRK2:
		return Scheme(s), nil
	}
	return "", fmt.Errorf("sim: unknown scheme %q (want %s or %s)", s, SchemeImplicit, SchemeRK2)
}

// DayReport summarises the solver work of one day across all members.
type DayReport struct {
	Day         int `json:"day"`
	Newton      int `json:"newton"`
	Bisection   int `json:"bisection"`
	Fallbacks   int `json:"fallbacks"`
	Saturated   int `json:"saturated"`
	Dry         int `json:"dry"`
	Unconverged int `json:"unconverged"`
}

// Diagnostics accumulates solver work over a run. The explicit scheme leaves every
// counter at zero.
type Diagnostics struct {
	NewtonIterations    int         `json:"newton_iterations"`
	BisectionIterations int         `json:"bisection_iterations"`
	Days                []DayReport `json:"days"`
}

func (d *Diagnostics) add(r DayReport) {
	d.NewtonIterations += r.Newton
	d.BisectionIterations += r.Bisection
	d.Days = append(d.Days, r)
}

// Fallbacks returns the number of member-days resolved by bisection.
func (d Diagnostics) Fallbacks() int {
	n := 0
	for _, r := range d.Days {
		n += r.Fallbacks
	}
	return n
}

// Unconverged returns the number of member-days that exhausted the iteration cap.
func (d Diagnostics) Unconverged() int {
	n := 0
	for _, r := range d.Days {
		n += r.Unconverged
	}
	return n
}

// Metric reduces a run to a single number. Observe is called once per simulated day
// with the storage of every member on that day.
type Metric interface {
	Name() string
	Observe(day int, state []float64, report DayReport)
	Value() float64
	Reset()
}

// Observer is notified after every simulated day. state must not be retained.
type Observer interface {
	OnDay(day int, state []float64, report DayReport)
}

// Result is the outcome of a run. Path is member-major: Path[i][d] is the storage of
// member i at the end of day d, and Path[i][0] is its initial condition.
type Result struct {
	Path        [][]float64        `json:"path"`
	Diagnostics Diagnostics        `json:"diagnostics"`
	Metrics     map[string]float64 `json:"metrics"`
	Layout      soil.Layout        `json:"-"`
	Kernel      string             `json:"kernel"`
	Scheme      Scheme             `json:"scheme"`
	Snowpack    []float64          `json:"snowpack,omitempty"`
}

func (r *Result) Members() int { return len(r.Path) }

func (r *Result) Days() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path[0])
}

// Final returns the storage of every member on the last day.
func (r *Result) Final() []float64 {
	out := make([]float64, len(r.Path))
	for i, row := range r.Path {
		out[i] = row[len(row)-1]
	}
	return out
}

// Day returns the storage of every member on day d.
func (r *Result) Day(d int) []float64 {
	out := make([]float64, len(r.Path))
	for i, row := range r.Path {
		out[i] = row[d]
	}
	return out
}
