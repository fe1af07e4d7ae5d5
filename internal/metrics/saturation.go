package metrics

import (
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
)

// Saturation is the share of member-days spent within tolerance of capacity.
type Saturation struct {
	name      string
	capacity  soil.Values
	tolerance float64
	saturated int
	samples   int
}

func NewSaturation(capacity soil.Values, tolerance float64) *Saturation {
	return &Saturation{
		name:      "saturation_fraction",
		capacity:  capacity,
		tolerance: tolerance,
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(day int, state []float64, report sim.DayReport) {
	for i, v := range state {
		s.samples++
		if v >= s.capacity.At(i)-s.tolerance {
			s.saturated++
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// Drought is the share of member-days at the storage floor.
type Drought struct {
	name    string
	dry     int
	samples int
}

func NewDrought() *Drought {
	return &Drought{name: "drought_fraction"}
}

func (d *Drought) Name() string { return d.name }

func (d *Drought) Observe(day int, state []float64, report sim.DayReport) {
	for _, v := range state {
		d.samples++
		if v <= soil.Floor {
			d.dry++
		}
	}
}

func (d *Drought) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.dry) / float64(d.samples)
}

func (d *Drought) Reset() {
	d.dry = 0
	d.samples = 0
}
