package soil

import (
	"fmt"
	"math"
)

// Floor is the lower bound of stored moisture. It keeps moisture fractions away from
// zero where the drainage and evapotranspiration derivatives are singular.
const Floor = 1.0e-6

// Values holds one parameter either as a single shared value or one value per member.
type Values []float64

// Scalar returns Values holding a single shared value.
func Scalar(v float64) Values { return Values{v} }

// IsScalar reports whether v applies to every member.
func (v Values) IsScalar() bool { return len(v) == 1 }

// At returns the value for member i, broadcasting scalars.
func (v Values) At(i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}

// Clone returns an independent copy of v.
func (v Values) Clone() Values {
	c := make(Values, len(v))
	copy(c, v)
	return c
}

// Parameters is the parameter set of the bucket store. Each field is either a
// scalar or a per-member vector.
type Parameters struct {
	Capacity Values `json:"capacity"`
	Ksat     Values `json:"ksat"`
	Alpha    Values `json:"alpha"`
	Beta     Values `json:"beta"`
	Gamma    Values `json:"gamma"`
	Eps      Values `json:"eps"`
}

// Member is the parameter set of one ensemble member.
type Member struct {
	Capacity float64
	Ksat     float64
	Alpha    float64
	Beta     float64
	Gamma    float64
	Eps      float64
}

// Uniform returns scalar Parameters for a single member.
func Uniform(m Member) Parameters {
	return Parameters{
		Capacity: Scalar(m.Capacity),
		Ksat:     Scalar(m.Ksat),
		Alpha:    Scalar(m.Alpha),
		Beta:     Scalar(m.Beta),
		Gamma:    Scalar(m.Gamma),
		Eps:      Scalar(m.Eps),
	}
}

// Layout describes which parameters are shared and which are per member.
type Layout int

const (
	// LayoutScalar: every parameter is shared.
	LayoutScalar Layout = iota
	// LayoutMember: every parameter is per member.
	LayoutMember
	// LayoutSharedExponents: alpha, gamma and eps are shared while capacity, ksat and
	// beta are per member.
	LayoutSharedExponents
)

func (l Layout) String() string {
	switch l {
	case LayoutScalar:
		return "scalar"
	case LayoutMember:
		return "member"
	case LayoutSharedExponents:
		return "shared-exponents"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

type namedValues struct {
	name string
	v    Values
}

func (p Parameters) named() []namedValues {
	return []namedValues{
		{"capacity", p.Capacity},
		{"ksat", p.Ksat},
		{"alpha", p.Alpha},
		{"beta", p.Beta},
		{"gamma", p.Gamma},
		{"eps", p.Eps},
	}
}

// Resolve determines the layout and ensemble size of p. It fails with a
// *ConfigError when vectors disagree in length or when the scalar/vector mix is not
// one of the supported layouts.
func (p Parameters) Resolve() (Layout, int, error) {
	n := 1
	vectors := 0
	for _, nv := range p.named() {
		switch {
		case len(nv.v) == 0:
			return 0, 0, &ConfigError{Param: nv.name, Member: -1, Wrapped: ErrEmptyParameter}
		case len(nv.v) == 1:
			continue
		}
		if vectors > 0 && len(nv.v) != n {
			return 0, 0, &ConfigError{
				Param:   nv.name,
				Member:  -1,
				Detail:  fmt.Sprintf("has %d members, expected %d", len(nv.v), n),
				Wrapped: ErrShapeMismatch,
			}
		}
		n = len(nv.v)
		vectors++
	}

	switch {
	case vectors == 0:
		return LayoutScalar, 1, nil
	case vectors == len(p.named()):
		return LayoutMember, n, nil
	case p.Alpha.IsScalar() && p.Gamma.IsScalar() && p.Eps.IsScalar() &&
		!p.Capacity.IsScalar() && !p.Ksat.IsScalar() && !p.Beta.IsScalar():
		return LayoutSharedExponents, n, nil
	}
	return 0, 0, &ConfigError{
		Member:  -1,
		Detail:  "use all scalars, all vectors, or vectors for capacity, ksat and beta only",
		Wrapped: ErrIncompatibleLayout,
	}
}

// Validate checks the layout and the physical range of every value.
func (p Parameters) Validate() error {
	if _, _, err := p.Resolve(); err != nil {
		return err
	}
	checks := []struct {
		name string
		v    Values
		ok   func(float64) bool
		want string
	}{
		{"capacity", p.Capacity, func(x float64) bool { return x > 0 }, "> 0"},
		{"ksat", p.Ksat, func(x float64) bool { return x >= 0 }, ">= 0"},
		{"alpha", p.Alpha, func(x float64) bool { return x >= 0 }, ">= 0"},
		{"beta", p.Beta, func(x float64) bool { return x >= 0 }, ">= 0"},
		{"gamma", p.Gamma, func(x float64) bool { return x >= 0 }, ">= 0"},
		{"eps", p.Eps, func(x float64) bool { return x >= 0 && x < 1 }, "in [0, 1)"},
	}
	for _, c := range checks {
		for i, x := range c.v {
			if math.IsNaN(x) || math.IsInf(x, 0) || !c.ok(x) {
				member := i
				if c.v.IsScalar() {
					member = -1
				}
				return &ConfigError{
					Param:   c.name,
					Member:  member,
					Detail:  fmt.Sprintf("got %g, want %s", x, c.want),
					Wrapped: ErrParameterBounds,
				}
			}
		}
	}
	return nil
}

// Member returns the parameter set of member i, broadcasting scalars.
func (p Parameters) Member(i int) Member {
	return Member{
		Capacity: p.Capacity.At(i),
		Ksat:     p.Ksat.At(i),
		Alpha:    p.Alpha.At(i),
		Beta:     p.Beta.At(i),
		Gamma:    p.Gamma.At(i),
		Eps:      p.Eps.At(i),
	}
}

// Members expands p into n per-member parameter sets.
func (p Parameters) Members(n int) []Member {
	out := make([]Member, n)
	for i := range out {
		out[i] = p.Member(i)
	}
	return out
}

// Clone returns a deep copy of p.
func (p Parameters) Clone() Parameters {
	return Parameters{
		Capacity: p.Capacity.Clone(),
		Ksat:     p.Ksat.Clone(),
		Alpha:    p.Alpha.Clone(),
		Beta:     p.Beta.Clone(),
		Gamma:    p.Gamma.Clone(),
		Eps:      p.Eps.Clone(),
	}
}

// Clamp limits s to [Floor, capacity].
func Clamp(s, capacity float64) float64 {
	return math.Max(Floor, math.Min(capacity, s))
}
