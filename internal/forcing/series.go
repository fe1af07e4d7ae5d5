// Package forcing holds the daily weather that drives the soil store: precipitation,
// potential evapotranspiration and an optional temperature series for the snow
// pre-step.
package forcing

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmpty        = errors.New("forcing: series has no days")
	ErrLength       = errors.New("forcing: series lengths differ")
	ErrInvalidValue = errors.New("forcing: invalid value")
)

// Series is one daily record per entry. Entry i drives the step from day i-1 to day
// i; entry 0 is never consumed.
type Series struct {
	Precip []float64 `json:"precip"`
	ET     []float64 `json:"et"`
	Temp   []float64 `json:"temp,omitempty"`
}

// Days returns the number of days covered by the precipitation record.
func (s Series) Days() int { return len(s.Precip) }

// HasTemp reports whether a temperature record accompanies the series.
func (s Series) HasTemp() bool { return len(s.Temp) > 0 }

func (s Series) Validate() error {
	days := len(s.Precip)
	if days == 0 {
		return ErrEmpty
	}
	if len(s.ET) != days {
		return fmt.Errorf("%w: %d precipitation days, %d evapotranspiration days", ErrLength, days, len(s.ET))
	}
	if s.HasTemp() && len(s.Temp) != days {
		return fmt.Errorf("%w: %d precipitation days, %d temperature days", ErrLength, days, len(s.Temp))
	}

	for i := 0; i < days; i++ {
		if p := s.Precip[i]; !finite(p) || p < 0 {
			return fmt.Errorf("%w: precipitation %g on day %d", ErrInvalidValue, p, i)
		}
		if e := s.ET[i]; !finite(e) || e < 0 {
			return fmt.Errorf("%w: evapotranspiration %g on day %d", ErrInvalidValue, e, i)
		}
	}
	for i, t := range s.Temp {
		if !finite(t) {
			return fmt.Errorf("%w: temperature %g on day %d", ErrInvalidValue, t, i)
		}
	}
	return nil
}

// Clone returns a series backed by fresh slices.
func (s Series) Clone() Series {
	c := Series{
		Precip: append([]float64(nil), s.Precip...),
		ET:     append([]float64(nil), s.ET...),
	}
	if s.HasTemp() {
		c.Temp = append([]float64(nil), s.Temp...)
	}
	return c
}

// Slice returns days [from, to) sharing the backing arrays of s.
func (s Series) Slice(from, to int) Series {
	out := Series{Precip: s.Precip[from:to], ET: s.ET[from:to]}
	if s.HasTemp() {
		out.Temp = s.Temp[from:to]
	}
	return out
}

// Constant returns a series of the given length with the same forcing every day.
func Constant(days int, precip, et float64) Series {
	s := Series{Precip: make([]float64, days), ET: make([]float64, days)}
	for i := 0; i < days; i++ {
		s.Precip[i] = precip
		s.ET[i] = et
	}
	return s
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
