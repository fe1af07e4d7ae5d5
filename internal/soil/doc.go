// Package soil provides the flux model of a daily bucket-style soil-moisture store.
//
// A single lumped reservoir holds moisture S between a small positive floor and a
// capacity S_cap. Three power-law fluxes change it:
//
//   - infiltration: P * min(1, g^alpha) with g = (1 - S/S_cap) / (1 - eps)
//   - drainage: -Ksat * (S/S_cap)^beta
//   - evapotranspiration: -E * (S/S_cap)^gamma
//
// [Model] evaluates the fluxes and their analytic derivative for one parameter set.
// [Kernel] evaluates the total rate across an ensemble of parameter sets; the
// concrete kernel is chosen once by [NewKernel] from the [Layout] of the
// [Parameters] and the exponent values, so hot loops never branch on layout.
//
// All evaluation is pure and safe to call concurrently.
package soil
