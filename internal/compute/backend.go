package compute

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Backend executes per-member work for one day. ForEach splits [0, n) into disjoint
// chunks and calls fn once per chunk; every index is covered by exactly one call.
type Backend interface {
	Name() string
	Available() bool
	ForEach(ctx context.Context, n int, fn func(start, end int)) error
	Cleanup()
}

var ErrUnknownBackend = errors.New("compute: unknown backend")

var constructors = map[string]func(workers int) Backend{
	"local":    func(int) Backend { return NewLocalBackend() },
	"parallel": func(workers int) Backend { return NewParallelBackend(workers) },
}

// Select returns the named backend. workers is ignored by the local backend; zero
// means one worker per CPU.
func Select(name string, workers int) (Backend, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, Names())
	}
	b := ctor(workers)
	if !b.Available() {
		return nil, fmt.Errorf("compute: backend %q not available", name)
	}
	return b, nil
}

// AutoSelectBackend picks the parallel backend for ensembles large enough to amortise
// the fan-out and the local loop otherwise.
func AutoSelectBackend(members int) Backend {
	if members >= MinParallelMembers {
		return NewParallelBackend(0)
	}
	return NewLocalBackend()
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
