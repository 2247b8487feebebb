package models

import (
	"fmt"
	"strings"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/signal"
	"gonum.org/v1/gonum/mat"
)

// StateSpace is the linear block dx/dt = Ax + Bu, y = Cx + Du.
type StateSpace struct {
	label
	in  *signal.RefBus
	out *signal.Bus

	n, nin, nout int
	a, b, c, d   *mat.Dense

	x, x0  dynamo.State
	solver integrators.Solver
	integ  integrators.Integrator
}

// NewStateSpace builds a block with all matrices zero and a zero initial state.
func NewStateSpace(in, out []signal.Def, stateDim int, solver integrators.Solver) (*StateSpace, error) {
	inBus, err := inputBus("state space", in, 0)
	if err != nil {
		return nil, err
	}
	outBus, err := outputBus("state space", out, 0)
	if err != nil {
		return nil, err
	}
	if stateDim < 1 {
		return nil, shapeErr("state space", "state dimension must be positive, got %d", stateDim)
	}

	nin, nout := inBus.Len(), outBus.Len()
	return &StateSpace{
		in:     inBus,
		out:    outBus,
		n:      stateDim,
		nin:    nin,
		nout:   nout,
		a:      mat.NewDense(stateDim, stateDim, nil),
		b:      mat.NewDense(stateDim, nin, nil),
		c:      mat.NewDense(nout, stateDim, nil),
		d:      mat.NewDense(nout, nin, nil),
		x:      make(dynamo.State, stateDim),
		x0:     make(dynamo.State, stateDim),
		solver: solver,
		integ:  solver.New(),
	}, nil
}

func setMatrix(dst *mat.Dense, name string, vals []float64) error {
	r, c := dst.Dims()
	if len(vals) != r*c {
		return dimErr("state space", "matrix %s is %dx%d and needs %d values, got %d", name, r, c, r*c, len(vals))
	}
	dst.Copy(mat.NewDense(r, c, append([]float64(nil), vals...)))
	return nil
}

// SetA sets A from row-major values.
func (m *StateSpace) SetA(vals []float64) error { return setMatrix(m.a, "A", vals) }
func (m *StateSpace) SetB(vals []float64) error { return setMatrix(m.b, "B", vals) }
func (m *StateSpace) SetC(vals []float64) error { return setMatrix(m.c, "C", vals) }
func (m *StateSpace) SetD(vals []float64) error { return setMatrix(m.d, "D", vals) }

// A returns a copy of the state matrix.
func (m *StateSpace) A() *mat.Dense { return mat.DenseCopyOf(m.a) }
func (m *StateSpace) B() *mat.Dense { return mat.DenseCopyOf(m.b) }
func (m *StateSpace) C() *mat.Dense { return mat.DenseCopyOf(m.c) }
func (m *StateSpace) D() *mat.Dense { return mat.DenseCopyOf(m.d) }

// SetInitState sets the state restored by Initialize.
func (m *StateSpace) SetInitState(x0 []float64) error {
	if len(x0) != m.n {
		return dimErr("state space", "initial state needs %d values, got %d", m.n, len(x0))
	}
	copy(m.x0, x0)
	return nil
}

// SetX overwrites the current state.
func (m *StateSpace) SetX(x []float64) error {
	if len(x) != m.n {
		return dimErr("state space", "state needs %d values, got %d", m.n, len(x))
	}
	copy(m.x, x)
	return nil
}

func (m *StateSpace) StateDim() int              { return m.n }
func (m *StateSpace) Solver() integrators.Solver { return m.solver }
func (m *StateSpace) State() dynamo.State        { return m.x }
func (m *StateSpace) SetState(x dynamo.State)    { copy(m.x, x) }
func (m *StateSpace) Input() dynamo.Control      { return m.in.Values() }

func (m *StateSpace) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	var ax, bu mat.VecDense
	ax.MulVec(m.a, mat.NewVecDense(m.n, x))
	bu.MulVec(m.b, mat.NewVecDense(m.nin, u))
	ax.AddVec(&ax, &bu)
	return dynamo.State(ax.RawVector().Data)
}

// Observation computes y = Cx + Du from the current state and inputs.
func (m *StateSpace) Observation() []float64 {
	var cx, du mat.VecDense
	cx.MulVec(m.c, mat.NewVecDense(m.n, m.x))
	du.MulVec(m.d, mat.NewVecDense(m.nin, m.in.Values()))
	cx.AddVec(&cx, &du)
	return cx.RawVector().Data
}

// Initialize restores the initial state and publishes Cx0. The feedthrough
// term waits for the first tick because inputs are not yet produced.
func (m *StateSpace) Initialize(dynamo.Time) {
	copy(m.x, m.x0)
	var cx mat.VecDense
	cx.MulVec(m.c, mat.NewVecDense(m.n, m.x))
	m.out.Import(cx.RawVector().Data)
}

func (m *StateSpace) NextState(t dynamo.Time) {
	integrators.Advance(m, m.integ, t)
	m.out.Import(m.Observation())
}

func (m *StateSpace) Finalize() {}

func (m *StateSpace) InterfaceIn() (*signal.RefBus, bool) { return m.in, true }
func (m *StateSpace) InterfaceOut() (*signal.Bus, bool)   { return m.out, true }

func (m *StateSpace) String() string {
	var b strings.Builder
	write := func(name string, d *mat.Dense) {
		r, c := d.Dims()
		fmt.Fprintf(&b, "Matrix %s (%d x %d):\n%v\n", name, r, c, mat.Formatted(d, mat.Squeeze()))
	}
	write("A", m.a)
	write("B", m.b)
	write("C", m.c)
	write("D", m.d)
	return b.String()
}
