package dynamo

import (
	"fmt"

	"github.com/san-kum/blocksim/internal/signal"
)

// Model is the contract every simulation block implements.
//
// Lifecycle: Initialize, then NextState once per tick, then Finalize.
// Initialize after Finalize starts a fresh run and must give the same result
// as the first call.
type Model interface {
	// Initialize establishes initial outputs. t is at the start time.
	Initialize(t Time)
	// NextState advances by exactly one tick: read inputs, write outputs.
	NextState(t Time)
	Finalize()
	// InterfaceIn returns the input bus, or false for source-only models.
	InterfaceIn() (*signal.RefBus, bool)
	// InterfaceOut returns the output bus, or false for sink-only models.
	InterfaceOut() (*signal.Bus, bool)
}

// Named is implemented by models that carry a label for diagnostics.
type Named interface {
	Name() string
}

// Composite is implemented by models that schedule other models behind
// their own bus surface.
type Composite interface {
	Models() []Model
}

// DEModel is a model that owns an ODE state vector. Derive must be a pure
// function of its arguments; u is the input snapshot frozen for the tick.
type DEModel interface {
	Model
	System
	State() State
	SetState(x State)
	// Input snapshots the current input values.
	Input() Control
}

// Label returns the model's name when it has one, else its Go type.
func Label(m Model) string {
	if n, ok := m.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", m)
}

// Connect binds dstNames of dst's input bus to srcNames of src's output bus.
func Connect(src Model, srcNames []string, dst Model, dstNames []string) error {
	out, ok := src.InterfaceOut()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoOutputInterface, Label(src))
	}
	in, ok := dst.InterfaceIn()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoInputInterface, Label(dst))
	}
	if err := in.Connect(out, srcNames, dstNames); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", Label(src), Label(dst), err)
	}
	return nil
}
