package models

import (
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/signal"
)

type Gains struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Ki float64 `yaml:"ki" json:"ki"`
	Kd float64 `yaml:"kd" json:"kd"`
}

// Limits bounds the controller output.
type Limits struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// NoLimits leaves the output unsaturated.
var NoLimits = Limits{Min: math.Inf(-1), Max: math.Inf(1)}

func (l Limits) Clamp(v float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, v))
}

// PID reads (target, current) and outputs the saturated control value for
// e = target - current. The integral term runs through an Integrator fed by
// an internal error bus; the derivative is a backward difference.
type PID struct {
	label
	in  *signal.RefBus
	out *signal.Bus

	errBus *signal.Bus
	integ  *Integrator

	Gains  Gains
	Limits Limits
	prev   float64
}

func NewPID(in, out []signal.Def, gains Gains, limits Limits, solver integrators.Solver) (*PID, error) {
	inBus, err := inputBus("pid", in, 2)
	if err != nil {
		return nil, err
	}
	outBus, err := outputBus("pid", out, 1)
	if err != nil {
		return nil, err
	}
	if limits.Min > limits.Max || math.IsNaN(limits.Min) || math.IsNaN(limits.Max) {
		return nil, paramErr("pid", "limits [%g, %g] are not ordered", limits.Min, limits.Max)
	}
	if !finite(gains.Kp, gains.Ki, gains.Kd) {
		return nil, paramErr("pid", "gains must be finite")
	}

	errBus, _ := signal.NewBus(signal.D("error", "-"))
	integ, err := NewIntegrator([]signal.Def{signal.D("integ_in", "-")}, []signal.Def{signal.D("integ_out", "-")}, solver)
	if err != nil {
		return nil, err
	}
	if err := dynamo.Connect(&errorSource{errBus}, []string{"error"}, integ, []string{"integ_in"}); err != nil {
		return nil, err
	}

	return &PID{
		in:     inBus,
		out:    outBus,
		errBus: errBus,
		integ:  integ,
		Gains:  gains,
		Limits: limits,
	}, nil
}

// Reset clears the integral.
func (p *PID) Reset() {
	p.integ.Reset(0)
}

func (p *PID) Initialize(t dynamo.Time) {
	p.errBus.ZeroReset()
	p.integ.Initialize(t)
	p.prev = 0
	p.out.ZeroReset()
}

func (p *PID) NextState(t dynamo.Time) {
	e := p.in.At(0).Value() - p.in.At(1).Value()
	p.errBus.At(0).Set(e)

	p.integ.NextState(t)
	integral := p.integ.State()[0]
	diff := (e - p.prev) / t.DeltaT()

	o := p.Gains.Kp*e + p.Gains.Ki*integral + p.Gains.Kd*diff
	p.out.At(0).Set(p.Limits.Clamp(o))
	p.prev = e
}

func (p *PID) Finalize() { p.integ.Finalize() }

func (p *PID) InterfaceIn() (*signal.RefBus, bool) { return p.in, true }
func (p *PID) InterfaceOut() (*signal.Bus, bool)   { return p.out, true }

// errorSource exposes the PID's private error bus for wiring.
type errorSource struct {
	bus *signal.Bus
}

func (s *errorSource) Initialize(dynamo.Time)              {}
func (s *errorSource) NextState(dynamo.Time)               {}
func (s *errorSource) Finalize()                           {}
func (s *errorSource) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (s *errorSource) InterfaceOut() (*signal.Bus, bool)   { return s.bus, true }
