// Package analysis summarises moisture paths.
//
//   - [Summarize]: per-member statistics and days spent saturated or dry
//   - [Band]: per-day ensemble mean and quantile envelope
//   - [PowerSpectrum] and [DominantPeriod]: spectral content of a member's path
//   - [MaxRelativeDifference]: agreement between two runs, e.g. two schemes
//
// # Scheme comparison
//
// Running the same configuration with both schemes and comparing paths bounds the
// explicit scheme's error:
//
//	diff, err := analysis.MaxRelativeDifference(implicit.Path, rk2.Path)
package analysis
