package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInputInterface indicates a model without an input bus was used as a connect destination.
	ErrNoInputInterface = errors.New("dynamo: model has no input interface")

	// ErrNoOutputInterface indicates a model without an output bus was used as a connect source.
	ErrNoOutputInterface = errors.New("dynamo: model has no output interface")

	// ErrInvalidClock indicates a non-positive step or an empty time span.
	ErrInvalidClock = errors.New("dynamo: invalid clock (need dt > 0 and end > start)")

	// ErrInvalidState indicates a model state that went NaN or Inf during a run.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates a state or matrix sized differently from its model.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with the tick at which it surfaced.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
