package soil

import (
	"errors"
	"fmt"
)

// Configuration errors. They are always reported before any integration starts.
var (
	// ErrShapeMismatch indicates per-member parameter vectors of different lengths.
	ErrShapeMismatch = errors.New("soil: per-member parameter vectors differ in length")

	// ErrIncompatibleLayout indicates an unsupported mix of scalar and per-member parameters.
	ErrIncompatibleLayout = errors.New("soil: incompatible set of scalar and per-member parameters")

	// ErrParameterBounds indicates a parameter value outside its physical range.
	ErrParameterBounds = errors.New("soil: parameter out of valid bounds")

	// ErrEmptyParameter indicates a parameter with no values.
	ErrEmptyParameter = errors.New("soil: parameter has no values")
)

// ConfigError wraps a configuration error with the parameter it concerns.
type ConfigError struct {
	Param   string
	Member  int
	Detail  string
	Wrapped error
}

func (e *ConfigError) Error() string {
	msg := e.Wrapped.Error()
	if e.Param != "" {
		msg += fmt.Sprintf(" (%s", e.Param)
		if e.Member >= 0 {
			msg += fmt.Sprintf("[%d]", e.Member)
		}
		msg += ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}
