package models

import (
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/signal"
)

// Mass is a point mass. Inputs are forces (Fx, Fy, Fz); outputs are
// (x, y, z, vx, vy, vz).
type Mass struct {
	*StateSpace
	mass float64
}

func NewMass(in, out []signal.Def, mass float64, pos, vel [3]float64, solver integrators.Solver) (*Mass, error) {
	if len(in) != 3 {
		return nil, shapeErr("mass", "input bus needs 3 forces, got %d", len(in))
	}
	if len(out) != 6 {
		return nil, shapeErr("mass", "output bus needs 6 signals, got %d", len(out))
	}
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, paramErr("mass", "mass must be positive, got %g", mass)
	}

	ss, err := NewStateSpace(in, out, 6, solver)
	if err != nil {
		return nil, err
	}

	a := make([]float64, 36)
	b := make([]float64, 18)
	c := make([]float64, 36)
	for i := 0; i < 3; i++ {
		a[i*6+i+3] = 1
		b[(i+3)*3+i] = 1 / mass
	}
	for i := 0; i < 6; i++ {
		c[i*6+i] = 1
	}
	x0 := []float64{pos[0], pos[1], pos[2], vel[0], vel[1], vel[2]}

	for _, err := range []error{ss.SetA(a), ss.SetB(b), ss.SetC(c), ss.SetInitState(x0)} {
		if err != nil {
			return nil, err
		}
	}
	return &Mass{StateSpace: ss, mass: mass}, nil
}

func (m *Mass) Mass() float64 { return m.mass }

// twoEnds reads (x1, y1, z1, x2, y2, z2) and returns end1 - end2 and its length.
func twoEnds(in *signal.RefBus) (d [3]float64, dist float64) {
	for i := 0; i < 3; i++ {
		d[i] = in.At(i).Value() - in.At(i+3).Value()
	}
	return d, math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

// publishForce writes force along d on end 1 and the opposite force on end 2.
// Coincident ends have no direction, so no force is published.
func publishForce(out *signal.Bus, force float64, d [3]float64, dist float64) {
	if dist == 0 {
		out.ZeroReset()
		return
	}
	for i := 0; i < 3; i++ {
		f := force * d[i] / dist
		out.At(i).Set(f)
		out.At(i + 3).Set(-f)
	}
}

func linkBuses(block string, in, out []signal.Def) (*signal.RefBus, *signal.Bus, error) {
	inBus, err := inputBus(block, in, 6)
	if err != nil {
		return nil, nil, err
	}
	outBus, err := outputBus(block, out, 6)
	if err != nil {
		return nil, nil, err
	}
	return inBus, outBus, nil
}

// Spring is a massless linear spring between two points. Inputs are the end
// coordinates, outputs the forces on each end.
type Spring struct {
	label
	in  *signal.RefBus
	out *signal.Bus

	NaturalLength float64
	Stiffness     float64
}

func NewSpring(in, out []signal.Def, naturalLength, stiffness float64) (*Spring, error) {
	inBus, outBus, err := linkBuses("spring", in, out)
	if err != nil {
		return nil, err
	}
	if naturalLength < 0 || stiffness < 0 || !finite(naturalLength, stiffness) {
		return nil, paramErr("spring", "natural length and stiffness must be >= 0, got %g and %g", naturalLength, stiffness)
	}
	return &Spring{in: inBus, out: outBus, NaturalLength: naturalLength, Stiffness: stiffness}, nil
}

func (s *Spring) Initialize(dynamo.Time) { s.out.ZeroReset() }

func (s *Spring) NextState(dynamo.Time) {
	d, dist := twoEnds(s.in)
	publishForce(s.out, s.Stiffness*(s.NaturalLength-dist), d, dist)
}

func (s *Spring) Finalize() {}

func (s *Spring) InterfaceIn() (*signal.RefBus, bool) { return s.in, true }
func (s *Spring) InterfaceOut() (*signal.Bus, bool)   { return s.out, true }

// Damper resists change in the distance between two points.
type Damper struct {
	label
	in  *signal.RefBus
	out *signal.Bus

	Damping float64
	length  float64
}

func NewDamper(in, out []signal.Def, damping float64) (*Damper, error) {
	inBus, outBus, err := linkBuses("damper", in, out)
	if err != nil {
		return nil, err
	}
	if damping < 0 || !finite(damping) {
		return nil, paramErr("damper", "damping must be >= 0, got %g", damping)
	}
	return &Damper{in: inBus, out: outBus, Damping: damping}, nil
}

func (s *Damper) Initialize(dynamo.Time) {
	_, s.length = twoEnds(s.in)
	s.out.ZeroReset()
}

func (s *Damper) NextState(t dynamo.Time) {
	d, dist := twoEnds(s.in)
	force := s.Damping * (s.length - dist) / t.DeltaT()
	s.length = dist
	publishForce(s.out, force, d, dist)
}

func (s *Damper) Finalize() {}

func (s *Damper) InterfaceIn() (*signal.RefBus, bool) { return s.in, true }
func (s *Damper) InterfaceOut() (*signal.Bus, bool)   { return s.out, true }

// SpringDamper is a Spring and a Damper acting in parallel.
type SpringDamper struct {
	label
	in  *signal.RefBus
	out *signal.Bus

	NaturalLength float64
	Stiffness     float64
	Damping       float64
	length        float64
}

func NewSpringDamper(in, out []signal.Def, naturalLength, stiffness, damping float64) (*SpringDamper, error) {
	inBus, outBus, err := linkBuses("spring damper", in, out)
	if err != nil {
		return nil, err
	}
	if naturalLength < 0 || stiffness < 0 || damping < 0 || !finite(naturalLength, stiffness, damping) {
		return nil, paramErr("spring damper", "parameters must be >= 0, got L=%g k=%g c=%g", naturalLength, stiffness, damping)
	}
	return &SpringDamper{
		in:            inBus,
		out:           outBus,
		NaturalLength: naturalLength,
		Stiffness:     stiffness,
		Damping:       damping,
	}, nil
}

func (s *SpringDamper) Initialize(dynamo.Time) {
	_, s.length = twoEnds(s.in)
	s.out.ZeroReset()
}

func (s *SpringDamper) NextState(t dynamo.Time) {
	d, dist := twoEnds(s.in)
	force := s.Stiffness*(s.NaturalLength-dist) + s.Damping*(s.length-dist)/t.DeltaT()
	s.length = dist
	publishForce(s.out, force, d, dist)
}

func (s *SpringDamper) Finalize() {}

func (s *SpringDamper) InterfaceIn() (*signal.RefBus, bool) { return s.in, true }
func (s *SpringDamper) InterfaceOut() (*signal.Bus, bool)   { return s.out, true }
