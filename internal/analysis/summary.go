package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/soilsim/internal/soil"
)

type Summary struct {
	Member        int     `json:"member"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"std_dev"`
	Median        float64 `json:"median"`
	SaturatedDays int     `json:"saturated_days"`
	DryDays       int     `json:"dry_days"`
}

// Summarize returns one Summary per member of path. capacity may be scalar or per
// member.
func Summarize(path [][]float64, capacity soil.Values) []Summary {
	out := make([]Summary, len(path))
	for i, row := range path {
		s := Summary{Member: i}
		if len(row) == 0 {
			out[i] = s
			continue
		}

		s.Min = floats.Min(row)
		s.Max = floats.Max(row)
		s.Mean, s.StdDev = stat.MeanStdDev(row, nil)
		if len(row) == 1 {
			s.StdDev = 0
		}

		sorted := append([]float64(nil), row...)
		sort.Float64s(sorted)
		s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)

		capacityI := capacity.At(i)
		for _, v := range row {
			switch {
			case v >= capacityI:
				s.SaturatedDays++
			case v <= soil.Floor:
				s.DryDays++
			}
		}
		out[i] = s
	}
	return out
}

// Envelope is the ensemble spread on every day.
type Envelope struct {
	Mean  []float64
	Lower []float64
	Upper []float64
}

// Band returns the per-day ensemble mean together with the q and 1-q empirical
// quantiles across members.
func Band(path [][]float64, q float64) Envelope {
	if len(path) == 0 {
		return Envelope{}
	}
	days := len(path[0])
	env := Envelope{
		Mean:  make([]float64, days),
		Lower: make([]float64, days),
		Upper: make([]float64, days),
	}

	column := make([]float64, len(path))
	for d := 0; d < days; d++ {
		for i, row := range path {
			column[i] = row[d]
		}
		env.Mean[d] = stat.Mean(column, nil)
		sort.Float64s(column)
		env.Lower[d] = stat.Quantile(q, stat.Empirical, column, nil)
		env.Upper[d] = stat.Quantile(1-q, stat.Empirical, column, nil)
	}
	return env
}
