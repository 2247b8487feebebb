package models

import (
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/signal"
)

type PendulumParams struct {
	Mass    float64 `yaml:"mass" json:"mass"`
	Length  float64 `yaml:"length" json:"length"`
	Damping float64 `yaml:"damping" json:"damping"`
	Gravity float64 `yaml:"gravity" json:"gravity"`
	Theta0  float64 `yaml:"theta0" json:"theta0"`
	Omega0  float64 `yaml:"omega0" json:"omega0"`
}

func DefaultPendulumParams() PendulumParams {
	return PendulumParams{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

// Pendulum is a damped rigid pendulum driven by a torque input. Outputs are
// (theta, omega).
type Pendulum struct {
	label
	in  *signal.RefBus
	out *signal.Bus

	PendulumParams
	x     dynamo.State
	integ integrators.Integrator
}

func NewPendulum(in, out []signal.Def, p PendulumParams, solver integrators.Solver) (*Pendulum, error) {
	inBus, err := inputBus("pendulum", in, 1)
	if err != nil {
		return nil, err
	}
	outBus, err := outputBus("pendulum", out, 2)
	if err != nil {
		return nil, err
	}
	if !(p.Mass > 0) || !(p.Length > 0) || p.Damping < 0 || !finite(p.Mass, p.Length, p.Damping, p.Gravity, p.Theta0, p.Omega0) {
		return nil, paramErr("pendulum", "need mass > 0, length > 0, damping >= 0")
	}
	return &Pendulum{
		in:             inBus,
		out:            outBus,
		PendulumParams: p,
		x:              make(dynamo.State, 2),
		integ:          solver.New(),
	}, nil
}

func (p *Pendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta := x[0]
	omega := x[1]
	torque := u[0]

	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + torque) / (p.Mass * p.Length * p.Length)
	return dynamo.State{omega, alpha}
}

// Energy is kinetic plus potential energy, zero at rest hanging down.
func (p *Pendulum) Energy() float64 {
	theta, omega := p.x[0], p.x[1]
	kinetic := 0.5 * p.Mass * p.Length * p.Length * omega * omega
	potential := p.Mass * p.Gravity * p.Length * (1 - math.Cos(theta))
	return kinetic + potential
}

func (p *Pendulum) State() dynamo.State     { return p.x }
func (p *Pendulum) SetState(x dynamo.State) { copy(p.x, x) }
func (p *Pendulum) Input() dynamo.Control   { return p.in.Values() }

func (p *Pendulum) Initialize(dynamo.Time) {
	p.x[0], p.x[1] = p.Theta0, p.Omega0
	p.out.Import(p.x)
}

func (p *Pendulum) NextState(t dynamo.Time) {
	integrators.Advance(p, p.integ, t)
	p.out.Import(p.x)
}

func (p *Pendulum) Finalize() {}

func (p *Pendulum) InterfaceIn() (*signal.RefBus, bool) { return p.in, true }
func (p *Pendulum) InterfaceOut() (*signal.Bus, bool)   { return p.out, true }
