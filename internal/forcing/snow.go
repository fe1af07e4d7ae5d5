package forcing

import "math"

// Snow is the degree-day snowpack applied to precipitation before integration.
// Precipitation on days at or below Threshold is stored as snow; warmer days melt
// DDF*(T - Threshold) of the pack into that day's precipitation.
type Snow struct {
	DDF       float64 `yaml:"ddf" json:"ddf"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// Disabled is the snow setting that leaves precipitation untouched.
var Disabled = Snow{DDF: math.NaN(), Threshold: math.NaN()}

// Enabled reports whether both coefficients are finite.
func (sn Snow) Enabled() bool {
	return finite(sn.DDF) && finite(sn.Threshold)
}

// Apply returns a copy of s whose precipitation has passed through the snowpack,
// together with the pack depth at the end of each day. The pack starts empty. When
// the snowpack is disabled or s carries no temperature the copy is unchanged and the
// pack is nil.
func (sn Snow) Apply(s Series) (Series, []float64) {
	out := s.Clone()
	if !sn.Enabled() || !s.HasTemp() {
		return out, nil
	}

	pack := make([]float64, len(out.Precip))
	snow := 0.0
	for i, t := range out.Temp {
		if t <= sn.Threshold {
			snow += out.Precip[i]
			out.Precip[i] = 0
		} else {
			melt := sn.DDF * (t - sn.Threshold)
			out.Precip[i] += math.Min(snow, melt)
			snow = math.Max(snow-melt, 0)
		}
		pack[i] = snow
	}
	return out, pack
}
