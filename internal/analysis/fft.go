package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k|^2 / n of the mean-removed series for k = 0..n/2. Index
// k corresponds to a period of n/k days.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	centred := make([]float64, n)
	copy(centred, data)
	floats.AddConst(-stat.Mean(data, nil), centred)

	coeffs := fft.FFTReal(centred)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(coeffs[k])
		ps[k] = a * a / float64(n)
	}
	return ps
}

// DominantPeriod returns the period, in days, of the strongest non-constant component
// of data, and zero when the series is constant or too short.
func DominantPeriod(data []float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0
	}
	k := floats.MaxIdx(ps[1:]) + 1
	if ps[k] == 0 {
		return 0
	}
	return float64(len(data)) / float64(k)
}
