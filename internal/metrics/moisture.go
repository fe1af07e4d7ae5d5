package metrics

import (
	"math"

	"github.com/san-kum/soilsim/internal/sim"
)

// MeanStorage is the storage averaged over every member and observed day.
type MeanStorage struct {
	name    string
	samples int
	total   float64
}

func NewMeanStorage() *MeanStorage {
	return &MeanStorage{name: "mean_storage"}
}

func (m *MeanStorage) Name() string { return m.name }

func (m *MeanStorage) Observe(day int, state []float64, report sim.DayReport) {
	for _, s := range state {
		m.total += s
	}
	m.samples += len(state)
}

func (m *MeanStorage) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanStorage) Reset() {
	m.total = 0
	m.samples = 0
}

// PeakStorage is the largest storage seen on any observed day.
type PeakStorage struct {
	name string
	peak float64
}

func NewPeakStorage() *PeakStorage {
	return &PeakStorage{name: "peak_storage", peak: math.Inf(-1)}
}

func (p *PeakStorage) Name() string { return p.name }

func (p *PeakStorage) Observe(day int, state []float64, report sim.DayReport) {
	for _, s := range state {
		p.peak = math.Max(p.peak, s)
	}
}

func (p *PeakStorage) Value() float64 {
	if math.IsInf(p.peak, -1) {
		return 0
	}
	return p.peak
}

func (p *PeakStorage) Reset() {
	p.peak = math.Inf(-1)
}
