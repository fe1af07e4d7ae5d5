package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/soilsim/internal/soil"
)

func TestSummarize(t *testing.T) {
	path := [][]float64{
		{10, 20, 30, 40},
		{soil.Floor, 5, 50, 50},
	}

	got := Summarize(path, soil.Values{100, 50})

	if got[0].Min != 10 || got[0].Max != 40 || got[0].Mean != 25 || got[0].Median != 20 {
		t.Errorf("member 0 summary %+v", got[0])
	}
	if math.Abs(got[0].StdDev-math.Sqrt(500.0/3)) > 1e-12 {
		t.Errorf("member 0 std dev %v", got[0].StdDev)
	}
	if got[1].SaturatedDays != 2 || got[1].DryDays != 1 {
		t.Errorf("member 1 counts %+v", got[1])
	}
	if got[0].SaturatedDays != 0 || got[0].DryDays != 0 {
		t.Errorf("member 0 counts %+v", got[0])
	}
}

func TestBand(t *testing.T) {
	path := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, 40},
	}

	env := Band(path, 0.25)
	if env.Mean[0] != 2.5 || env.Mean[1] != 25 {
		t.Errorf("mean %v", env.Mean)
	}
	if env.Lower[1] != 10 || env.Upper[1] != 30 {
		t.Errorf("band [%v, %v]", env.Lower[1], env.Upper[1])
	}
	if path[3][1] != 40 {
		t.Error("input modified")
	}
}

func TestDominantPeriod(t *testing.T) {
	n := 365 * 2
	data := make([]float64, n)
	for i := range data {
		data[i] = 50 + 10*math.Sin(2*math.Pi*float64(i)/365) + 2*math.Sin(2*math.Pi*float64(i)/73)
	}

	if got := DominantPeriod(data); math.Abs(got-365) > 1e-9 {
		t.Errorf("dominant period %v, want 365", got)
	}

	constant := []float64{3, 3, 3, 3}
	if got := DominantPeriod(constant); got != 0 {
		t.Errorf("constant series period %v, want 0", got)
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("expected nil spectrum for a single value")
	}
}

func TestMaxRelativeDifference(t *testing.T) {
	a := [][]float64{{100, 50}, {10, 10}}
	b := [][]float64{{100, 49}, {10, 8}}

	d, err := MaxRelativeDifference(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if d.Member != 1 || d.Day != 1 || d.Relative != 0.25 {
		t.Errorf("worst %+v", d)
	}
	if math.Abs(d.RMSE-math.Sqrt(5.0/4)) > 1e-12 {
		t.Errorf("rmse %v", d.RMSE)
	}

	if _, err := MaxRelativeDifference(a, b[:1]); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
	if _, err := MaxRelativeDifference([][]float64{{1}}, [][]float64{{1, 2}}); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}
