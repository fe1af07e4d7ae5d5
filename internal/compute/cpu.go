package compute

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MinParallelMembers is the ensemble size below which chunking costs more than it saves.
const MinParallelMembers = 64

// LocalBackend runs every member on the calling goroutine.
type LocalBackend struct{}

func NewLocalBackend() *LocalBackend {
	return &LocalBackend{}
}

func (l *LocalBackend) Name() string    { return "local" }
func (l *LocalBackend) Available() bool { return true }
func (l *LocalBackend) Cleanup()        {}

func (l *LocalBackend) ForEach(ctx context.Context, n int, fn func(start, end int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n > 0 {
		fn(0, n)
	}
	return nil
}

// ParallelBackend fans members out over a fixed number of goroutines in contiguous
// chunks.
type ParallelBackend struct {
	workers int
}

func NewParallelBackend(workers int) *ParallelBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelBackend{workers: workers}
}

func (p *ParallelBackend) Name() string    { return "parallel" }
func (p *ParallelBackend) Available() bool { return true }
func (p *ParallelBackend) Cleanup()        {}
func (p *ParallelBackend) Workers() int    { return p.workers }

func (p *ParallelBackend) ForEach(ctx context.Context, n int, fn func(start, end int)) error {
	if n <= 0 {
		return ctx.Err()
	}

	workers := p.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(0, n)
		return nil
	}

	chunkSize := (n + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)

	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(start, end)
			return nil
		})
	}

	return g.Wait()
}
