package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
)

var (
	// ErrShape indicates a bus or matrix whose size does not fit the block.
	ErrShape = errors.New("models: shape mismatch")

	// ErrParam indicates a parameter outside its valid range.
	ErrParam = errors.New("models: invalid parameter")
)

func shapeErr(block, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", block, ErrShape, fmt.Sprintf(format, args...))
}

// dimErr reports a state or matrix whose dimensions disagree with the block's.
func dimErr(block, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %w: %s", block, ErrShape, dynamo.ErrDimensionMismatch, fmt.Sprintf(format, args...))
}

func paramErr(block, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", block, ErrParam, fmt.Sprintf(format, args...))
}

func inputBus(block string, defs []signal.Def, want int) (*signal.RefBus, error) {
	bus, err := signal.NewRefBus(defs...)
	if err != nil {
		return nil, fmt.Errorf("%s: input bus: %w", block, err)
	}
	if want > 0 && bus.Len() != want {
		return nil, shapeErr(block, "input bus needs %d signals, got %d", want, bus.Len())
	}
	if bus.Len() == 0 {
		return nil, shapeErr(block, "input bus is empty")
	}
	return bus, nil
}

func outputBus(block string, defs []signal.Def, want int) (*signal.Bus, error) {
	bus, err := signal.NewBus(defs...)
	if err != nil {
		return nil, fmt.Errorf("%s: output bus: %w", block, err)
	}
	if want > 0 && bus.Len() != want {
		return nil, shapeErr(block, "output bus needs %d signals, got %d", want, bus.Len())
	}
	if bus.Len() == 0 {
		return nil, shapeErr(block, "output bus is empty")
	}
	return bus, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// label carries an optional diagnostic name.
type label struct {
	name string
}

func (l *label) Name() string        { return l.name }
func (l *label) SetName(name string) { l.name = name }
