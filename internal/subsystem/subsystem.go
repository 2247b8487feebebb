// Package subsystem provides a composite model: a private set of models
// scheduled behind a single bus surface.
package subsystem

import (
	"fmt"
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
	"github.com/sirupsen/logrus"
)

// Subsystem runs its registered models once per outer tick. Outer inputs are
// copied into a private buffer that internal models bind to, and internal
// outputs are copied out through a second buffer, so the outer wiring never
// points into the internal models.
type Subsystem struct {
	name string

	in  *signal.RefBus
	out *signal.Bus

	inBuf  *signal.Bus
	outBuf *signal.RefBus

	models   []dynamo.Model
	declared float64
	deltaT   float64
}

var _ dynamo.Composite = (*Subsystem)(nil)

func New(in, out []signal.Def, deltaT float64) (*Subsystem, error) {
	if !(deltaT > 0) {
		return nil, fmt.Errorf("subsystem: %w: delta t must be positive, got %g", dynamo.ErrInvalidClock, deltaT)
	}
	inBus, err := signal.NewRefBus(in...)
	if err != nil {
		return nil, fmt.Errorf("subsystem: input bus: %w", err)
	}
	outBus, err := signal.NewBus(out...)
	if err != nil {
		return nil, fmt.Errorf("subsystem: output bus: %w", err)
	}
	inBuf, _ := signal.NewBus(in...)
	outBuf, _ := signal.NewRefBus(out...)

	return &Subsystem{
		in:     inBus,
		out:    outBus,
		inBuf:  inBuf,
		outBuf:   outBuf,
		declared: deltaT,
		deltaT:   deltaT,
	}, nil
}

func (s *Subsystem) Name() string        { return s.name }
func (s *Subsystem) SetName(name string) { s.name = name }

// DeltaT is the effective internal step: the declared step clamped to the
// outer step at the last Initialize. Internal models currently step once per
// outer tick.
func (s *Subsystem) DeltaT() float64 { return s.deltaT }

// DeclaredDeltaT is the step passed to New.
func (s *Subsystem) DeclaredDeltaT() float64 { return s.declared }

// Register appends m to the internal execution order.
func (s *Subsystem) Register(m dynamo.Model) {
	s.models = append(s.models, m)
}

func (s *Subsystem) Models() []dynamo.Model { return s.models }

// ConnectInbus binds dstNames of dst's inputs to srcNames of the subsystem inputs.
func (s *Subsystem) ConnectInbus(dst dynamo.Model, srcNames, dstNames []string) error {
	in, ok := dst.InterfaceIn()
	if !ok {
		return fmt.Errorf("subsystem %s: %w: %s", s.label(), dynamo.ErrNoInputInterface, dynamo.Label(dst))
	}
	if err := in.Connect(s.inBuf, srcNames, dstNames); err != nil {
		return fmt.Errorf("subsystem %s: inbus -> %s: %w", s.label(), dynamo.Label(dst), err)
	}
	return nil
}

// ConnectOutbus binds dstNames of the subsystem outputs to srcNames of src's outputs.
func (s *Subsystem) ConnectOutbus(src dynamo.Model, srcNames, dstNames []string) error {
	out, ok := src.InterfaceOut()
	if !ok {
		return fmt.Errorf("subsystem %s: %w: %s", s.label(), dynamo.ErrNoOutputInterface, dynamo.Label(src))
	}
	if err := s.outBuf.Connect(out, srcNames, dstNames); err != nil {
		return fmt.Errorf("subsystem %s: %s -> outbus: %w", s.label(), dynamo.Label(src), err)
	}
	return nil
}

// UnboundOutputs lists subsystem outputs no internal model drives. They stay at zero.
func (s *Subsystem) UnboundOutputs() []string { return s.outBuf.Unbound() }

func (s *Subsystem) Initialize(t dynamo.Time) {
	s.deltaT = math.Min(s.declared, t.DeltaT())
	if unbound := s.outBuf.Unbound(); len(unbound) > 0 {
		logrus.WithField("subsystem", s.label()).Debugf("outputs not driven: %v", unbound)
	}

	s.out.ZeroReset()
	for _, m := range s.models {
		m.Initialize(t)
	}
	s.publish()
}

func (s *Subsystem) NextState(t dynamo.Time) {
	for i, r := range s.in.All() {
		s.inBuf.At(i).Set(r.Value())
	}
	for _, m := range s.models {
		m.NextState(t)
	}
	s.publish()
}

func (s *Subsystem) publish() {
	for i, r := range s.outBuf.All() {
		if r.Connected() {
			s.out.At(i).Set(r.Value())
		}
	}
}

func (s *Subsystem) Finalize() {
	for _, m := range s.models {
		m.Finalize()
	}
}

func (s *Subsystem) InterfaceIn() (*signal.RefBus, bool) { return s.in, true }
func (s *Subsystem) InterfaceOut() (*signal.Bus, bool)   { return s.out, true }

func (s *Subsystem) label() string {
	if s.name != "" {
		return s.name
	}
	return "<unnamed>"
}
