package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrShape = errors.New("analysis: paths differ in shape")

// Difference locates the largest relative disagreement between two paths.
type Difference struct {
	Member   int     `json:"member"`
	Day      int     `json:"day"`
	Relative float64 `json:"relative"`
	RMSE     float64 `json:"rmse"`
}

// MaxRelativeDifference compares a against the reference b, member by member. The
// relative difference on a day is |a - b| / |b|.
func MaxRelativeDifference(a, b [][]float64) (Difference, error) {
	if len(a) != len(b) {
		return Difference{}, fmt.Errorf("%w: %d and %d members", ErrShape, len(a), len(b))
	}

	var worst Difference
	sq, count := 0.0, 0
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return Difference{}, fmt.Errorf("%w: member %d has %d and %d days", ErrShape, i, len(a[i]), len(b[i]))
		}
		if len(a[i]) == 0 {
			continue
		}
		d := floats.Distance(a[i], b[i], 2)
		sq += d * d
		count += len(a[i])

		for day := range a[i] {
			rel := math.Abs(a[i][day]-b[i][day]) / math.Abs(b[i][day])
			if rel > worst.Relative {
				worst.Member, worst.Day, worst.Relative = i, day, rel
			}
		}
	}
	if count > 0 {
		worst.RMSE = math.Sqrt(sq / float64(count))
	}
	return worst, nil
}
