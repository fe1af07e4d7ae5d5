package soil

import "math"

// Kernel evaluates dS/dt for every member of an ensemble. Implementations are
// specialised for a parameter layout and for exponents that avoid power calls; the
// choice is made once by NewKernel.
type Kernel interface {
	Name() string
	Size() int
	Capacity(i int) float64
	Rate(i int, s, p, e float64) float64
}

// NewKernel resolves the layout of p and returns the matching kernel.
func NewKernel(p Parameters) (Kernel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	layout, n, _ := p.Resolve()

	switch layout {
	case LayoutScalar:
		return &uniformKernel{model: NewModel(p.Member(0)), n: 1}, nil
	case LayoutMember:
		models := make([]Model, n)
		for i := range models {
			models[i] = NewModel(p.Member(i))
		}
		return &memberKernel{models: models}, nil
	}

	base := newSharedBase(p, n)
	alpha := p.Alpha[0]
	switch classify(alpha) {
	case expZero:
		return &sharedAlpha0Kernel{base}, nil
	case expOne:
		return &sharedAlpha1Kernel{base}, nil
	default:
		return &sharedKernel{sharedBase: base, alpha: alpha}, nil
	}
}

// Broadcast returns a kernel evaluating one parameter set for n members.
func Broadcast(m Member, n int) Kernel {
	return &uniformKernel{model: NewModel(m), n: n}
}

type uniformKernel struct {
	model Model
	n     int
}

func (k *uniformKernel) Name() string         { return "uniform" }
func (k *uniformKernel) Size() int            { return k.n }
func (k *uniformKernel) Capacity(int) float64 { return k.model.Capacity }
func (k *uniformKernel) Rate(_ int, s, p, e float64) float64 {
	return k.model.Rate(s, p, e)
}

type memberKernel struct {
	models []Model
}

func (k *memberKernel) Name() string           { return "member" }
func (k *memberKernel) Size() int              { return len(k.models) }
func (k *memberKernel) Capacity(i int) float64 { return k.models[i].Capacity }
func (k *memberKernel) Rate(i int, s, p, e float64) float64 {
	return k.models[i].Rate(s, p, e)
}

// sharedBase carries the per-member vectors of the shared-exponent layout together
// with the evapotranspiration term, which is fixed by the shared gamma.
type sharedBase struct {
	capacity []float64
	capInv   []float64
	ksat     []float64
	beta     []float64
	epsInv   float64
	gamma    float64
	et       func(f, e float64) float64
}

func newSharedBase(p Parameters, n int) sharedBase {
	b := sharedBase{
		capacity: make([]float64, n),
		capInv:   make([]float64, n),
		ksat:     make([]float64, n),
		beta:     make([]float64, n),
		epsInv:   1.0 / (1.0 - p.Eps[0]),
		gamma:    p.Gamma[0],
	}
	for i := 0; i < n; i++ {
		b.capacity[i] = p.Capacity.At(i)
		b.capInv[i] = 1.0 / b.capacity[i]
		b.ksat[i] = p.Ksat.At(i)
		b.beta[i] = p.Beta.At(i)
	}

	gamma := b.gamma
	switch classify(gamma) {
	case expZero:
		b.et = func(float64, float64) float64 { return 0 }
	case expOne:
		b.et = func(f, e float64) float64 { return -e * f }
	default:
		b.et = func(f, e float64) float64 { return -e * math.Pow(f, gamma) }
	}
	return b
}

func (b *sharedBase) Size() int              { return len(b.capacity) }
func (b *sharedBase) Capacity(i int) float64 { return b.capacity[i] }

func (b *sharedBase) fraction(i int, s float64) float64 {
	return math.Max(0, math.Min(1, s*b.capInv[i]))
}

func (b *sharedBase) drainage(i int, f float64) float64 {
	switch {
	case b.ksat[i] == 0 || b.beta[i] == 0:
		return 0
	case b.beta[i] == 1:
		return -b.ksat[i] * f
	}
	return -b.ksat[i] * math.Pow(f, b.beta[i])
}

type sharedAlpha0Kernel struct{ sharedBase }

func (k *sharedAlpha0Kernel) Name() string { return "shared-alpha0" }

func (k *sharedAlpha0Kernel) Rate(i int, s, p, e float64) float64 {
	f := k.fraction(i, s)
	inf := 0.0
	if p > 0 {
		inf = p
	}
	return inf + k.drainage(i, f) + k.et(f, e)
}

type sharedAlpha1Kernel struct{ sharedBase }

func (k *sharedAlpha1Kernel) Name() string { return "shared-alpha1" }

func (k *sharedAlpha1Kernel) Rate(i int, s, p, e float64) float64 {
	f := k.fraction(i, s)
	inf := 0.0
	if p > 0 {
		inf = p * math.Min(1, (1-f)*k.epsInv)
	}
	return inf + k.drainage(i, f) + k.et(f, e)
}

type sharedKernel struct {
	sharedBase
	alpha float64
}

func (k *sharedKernel) Name() string { return "shared" }

func (k *sharedKernel) Rate(i int, s, p, e float64) float64 {
	f := k.fraction(i, s)
	inf := 0.0
	if p > 0 {
		inf = p * math.Min(1, math.Pow((1-f)*k.epsInv, k.alpha))
	}
	return inf + k.drainage(i, f) + k.et(f, e)
}
