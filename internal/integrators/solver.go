package integrators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/blocksim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

var ErrUnknownSolver = errors.New("integrators: unknown solver")

// Integrator advances a state by one fixed step.
type Integrator interface {
	Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State
}

// Solver selects the integration method of a DE model.
type Solver int

const (
	SolverEuler Solver = iota
	SolverRK4
)

func ParseSolver(s string) (Solver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euler":
		return SolverEuler, nil
	case "rk4", "rungekutta", "runge-kutta":
		return SolverRK4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSolver, s)
}

func (s Solver) String() string {
	switch s {
	case SolverEuler:
		return "euler"
	case SolverRK4:
		return "rk4"
	}
	return fmt.Sprintf("Solver(%d)", int(s))
}

// New returns a fresh integrator for s. RK4 keeps scratch buffers, so each
// model holds its own instance.
func (s Solver) New() Integrator {
	if s == SolverRK4 {
		return NewRK4()
	}
	return NewEuler()
}

func (s Solver) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Solver) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseSolver(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Advance steps m by one tick. The input is sampled once and held for every
// stage; t is the clock at the end of the tick.
func Advance(m dynamo.DEModel, integ Integrator, t dynamo.Time) {
	u := m.Input()
	dt := t.DeltaT()
	m.SetState(integ.Step(m, m.State(), u, t.Time()-dt, dt))
}
