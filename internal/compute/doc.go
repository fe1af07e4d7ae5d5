// Package compute provides the execution backends that advance ensemble members.
//
// Two backends are available:
//
//   - local: a serial loop on the calling goroutine (default)
//   - parallel: contiguous chunks of members fanned out with errgroup
//
// Backends never share a member between chunks, so callers may write per-member
// output rows and scratch slots without locking:
//
//	backend, _ := compute.Select("parallel", 8)
//	err := backend.ForEach(ctx, n, func(start, end int) {
//		for i := start; i < end; i++ {
//			next[i] = step(i, prev[i])
//		}
//	})
package compute
