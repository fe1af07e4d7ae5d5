package soil

import "math"

type exponent uint8

const (
	expGeneral exponent = iota
	expZero
	expOne
)

func classify(x float64) exponent {
	switch x {
	case 0:
		return expZero
	case 1:
		return expOne
	default:
		return expGeneral
	}
}

// Terms holds the three flux contributions to dS/dt for one day.
type Terms struct {
	Infiltration       float64
	Drainage           float64
	Evapotranspiration float64
}

// Total returns dS/dt.
func (t Terms) Total() float64 {
	return t.Infiltration + t.Drainage + t.Evapotranspiration
}

// Model evaluates the fluxes of a single parameter set. Exponent fast paths are
// classified once by NewModel.
type Model struct {
	Member

	epsInv   float64
	capInv   float64
	alphaExp exponent
	betaExp  exponent
	gammaExp exponent
	drains   bool
}

// NewModel prepares m for repeated evaluation.
func NewModel(m Member) Model {
	return Model{
		Member:   m,
		epsInv:   1.0 / (1.0 - m.Eps),
		capInv:   1.0 / m.Capacity,
		alphaExp: classify(m.Alpha),
		betaExp:  classify(m.Beta),
		gammaExp: classify(m.Gamma),
		drains:   m.Ksat != 0 && m.Beta != 0,
	}
}

// Fraction returns S/S_cap limited to [0, 1].
func (m *Model) Fraction(s float64) float64 {
	return math.Max(0, math.Min(1, s*m.capInv))
}

// deficit returns g = (1 - f)/(1 - eps), the scaled storage deficit that controls
// infiltration. g >= 1 whenever S <= S_cap*eps.
func (m *Model) deficit(f float64) float64 {
	return (1 - f) * m.epsInv
}

// Infiltration returns the infiltration flux for precipitation p at storage s. It
// never exceeds p.
func (m *Model) Infiltration(s, p float64) float64 {
	if p <= 0 {
		return 0
	}
	switch m.alphaExp {
	case expZero:
		return p
	case expOne:
		return p * math.Min(1, m.deficit(m.Fraction(s)))
	default:
		return p * math.Min(1, math.Pow(m.deficit(m.Fraction(s)), m.Alpha))
	}
}

// Drainage returns the (non-positive) drainage flux at storage s.
func (m *Model) Drainage(s float64) float64 {
	if !m.drains {
		return 0
	}
	if m.betaExp == expOne {
		return -m.Ksat * m.Fraction(s)
	}
	return -m.Ksat * math.Pow(m.Fraction(s), m.Beta)
}

// Evapotranspiration returns the (non-positive) evapotranspiration flux for demand e
// at storage s.
func (m *Model) Evapotranspiration(s, e float64) float64 {
	switch m.gammaExp {
	case expZero:
		return 0
	case expOne:
		return -e * m.Fraction(s)
	default:
		return -e * math.Pow(m.Fraction(s), m.Gamma)
	}
}

// Terms returns every flux contribution at storage s.
func (m *Model) Terms(s, p, e float64) Terms {
	return Terms{
		Infiltration:       m.Infiltration(s, p),
		Drainage:           m.Drainage(s),
		Evapotranspiration: m.Evapotranspiration(s, e),
	}
}

// Rate returns dS/dt at storage s.
func (m *Model) Rate(s, p, e float64) float64 {
	return m.Infiltration(s, p) + m.Drainage(s) + m.Evapotranspiration(s, e)
}

// Slope returns d(Rate)/dS at storage s. Where a flux is clamped (full infiltration)
// or undefined (fraction at an end of [0, 1] with an exponent below one) its
// contribution is zero.
func (m *Model) Slope(s, p, e float64) float64 {
	f := m.Fraction(s)
	return m.infiltrationSlope(f, p) + m.drainageSlope(f) + m.evapotranspirationSlope(f, e)
}

func (m *Model) infiltrationSlope(f, p float64) float64 {
	if p <= 0 || m.alphaExp == expZero {
		return 0
	}
	g := m.deficit(f)
	if g >= 1 {
		return 0
	}
	scale := -p * m.epsInv * m.capInv
	switch {
	case m.alphaExp == expOne:
		return scale
	case g <= 0 && m.Alpha < 1:
		return 0
	case m.Alpha == 2:
		return scale * 2 * g
	default:
		return scale * m.Alpha * math.Pow(g, m.Alpha-1)
	}
}

func (m *Model) drainageSlope(f float64) float64 {
	if !m.drains {
		return 0
	}
	if m.betaExp == expOne {
		return -m.Ksat * m.capInv
	}
	if f <= 0 && m.Beta < 1 {
		return 0
	}
	return -m.Ksat * m.Beta * m.capInv * math.Pow(f, m.Beta-1)
}

func (m *Model) evapotranspirationSlope(f, e float64) float64 {
	switch {
	case m.gammaExp == expZero:
		return 0
	case m.gammaExp == expOne:
		return -e * m.capInv
	case f <= 0 && m.Gamma < 1:
		return 0
	}
	return -e * m.Gamma * m.capInv * math.Pow(f, m.Gamma-1)
}
