package sim

import (
	"errors"
	"fmt"
)

var (
	ErrForcingLength = errors.New("sim: forcing length mismatch")
	ErrInitialState  = errors.New("sim: invalid initial state")
	ErrFinished      = errors.New("sim: run already finished")
)

// StateError reports an initial storage outside [soil.Floor, capacity].
type StateError struct {
	Member   int
	Value    float64
	Capacity float64
}

func (e StateError) Error() string {
	return fmt.Sprintf("sim: member %d initial storage %g outside [1e-06, %g]", e.Member, e.Value, e.Capacity)
}

func (e StateError) Unwrap() error { return ErrInitialState }
