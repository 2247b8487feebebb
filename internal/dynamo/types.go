package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) String() string {
	return fmt.Sprintf("%v", []float64(s))
}

// Control is the input snapshot a derivative is evaluated against.
type Control []float64

// System is anything with a derivative dx/dt = f(x, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
}
