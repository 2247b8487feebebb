package models

import (
	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/signal"
)

// Integrator integrates each input into the output of the same index.
type Integrator struct {
	label
	in    *signal.RefBus
	out   *signal.Bus
	x, x0 dynamo.State
	integ integrators.Integrator
}

func NewIntegrator(in, out []signal.Def, solver integrators.Solver) (*Integrator, error) {
	inBus, err := inputBus("integrator", in, 0)
	if err != nil {
		return nil, err
	}
	outBus, err := outputBus("integrator", out, inBus.Len())
	if err != nil {
		return nil, err
	}
	n := inBus.Len()
	return &Integrator{
		in:    inBus,
		out:   outBus,
		x:     make(dynamo.State, n),
		x0:    make(dynamo.State, n),
		integ: solver.New(),
	}, nil
}

// Reset sets every state to v and publishes it.
func (m *Integrator) Reset(v float64) {
	for i := range m.x {
		m.x[i] = v
	}
	m.out.Import(m.x)
}

func (m *Integrator) SetInitState(x0 []float64) error {
	if len(x0) != len(m.x0) {
		return dimErr("integrator", "initial state needs %d values, got %d", len(m.x0), len(x0))
	}
	copy(m.x0, x0)
	return nil
}

func (m *Integrator) State() dynamo.State     { return m.x }
func (m *Integrator) SetState(x dynamo.State) { copy(m.x, x) }
func (m *Integrator) Input() dynamo.Control   { return m.in.Values() }

func (m *Integrator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State(u).Clone()
}

func (m *Integrator) Initialize(dynamo.Time) {
	copy(m.x, m.x0)
	m.out.Import(m.x)
}

func (m *Integrator) NextState(t dynamo.Time) {
	integrators.Advance(m, m.integ, t)
	m.out.Import(m.x)
}

func (m *Integrator) Finalize() {}

func (m *Integrator) InterfaceIn() (*signal.RefBus, bool) { return m.in, true }
func (m *Integrator) InterfaceOut() (*signal.Bus, bool)   { return m.out, true }
