package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/sirupsen/logrus"
)

var ErrDuplicateRecorder = errors.New("sim: recorder name already registered")

type recorderEntry struct {
	name  string
	model dynamo.Model
}

// System owns the registered models and recorders and the clock that drives them.
type System struct {
	clock     *dynamo.Clock
	models    []dynamo.Model
	recorders []recorderEntry
	recIndex  map[string]int

	progressEvery int
	progress      ProgressFunc
	log           *logrus.Entry
}

func New(start, end, dt float64, opts ...Option) (*System, error) {
	clock, err := dynamo.NewClock(start, end, dt)
	if err != nil {
		return nil, err
	}
	s := &System{
		clock:    clock,
		recIndex: make(map[string]int),
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterModel appends m to the execution order.
func (s *System) RegisterModel(m dynamo.Model) {
	s.models = append(s.models, m)
}

// RegisterRecorder adds a sink stepped after every model on each tick.
func (s *System) RegisterRecorder(name string, r dynamo.Model) error {
	if _, ok := s.recIndex[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRecorder, name)
	}
	s.recIndex[name] = len(s.recorders)
	s.recorders = append(s.recorders, recorderEntry{name: name, model: r})
	return nil
}

func (s *System) Recorder(name string) (dynamo.Model, bool) {
	i, ok := s.recIndex[name]
	if !ok {
		return nil, false
	}
	return s.recorders[i].model, true
}

// RecorderNames lists recorders in registration order.
func (s *System) RecorderNames() []string {
	names := make([]string, len(s.recorders))
	for i, r := range s.recorders {
		names[i] = r.name
	}
	return names
}

func (s *System) NumModels() int { return len(s.models) }

func (s *System) Clock() dynamo.Time { return s.clock }

// ChangeDeltaT changes the step size of subsequent runs.
func (s *System) ChangeDeltaT(dt float64) error {
	return s.clock.ChangeDeltaT(dt)
}

// Run initializes every model and recorder, steps them once per tick and
// finalizes them. Cancellation is checked between ticks; models are still
// finalized. A NaN or Inf in any model state stops the run with
// ErrInvalidState. Reading an unbound input during a tick panics.
func (s *System) Run(ctx context.Context) error {
	s.clock.Reset()
	total := s.clock.StepNum()
	s.log.WithFields(logrus.Fields{
		"models":    len(s.models),
		"recorders": len(s.recorders),
		"steps":     total,
		"dt":        s.clock.DeltaT(),
	}).Info("simulation started")
	began := time.Now()

	for _, m := range s.models {
		m.Initialize(s.clock)
	}
	for _, r := range s.recorders {
		r.model.Initialize(s.clock)
	}
	defer s.finalize()

	stateful := deModels(s.models)
	for i, t := range s.clock.Ticks() {
		select {
		case <-ctx.Done():
			s.log.Warnf("simulation canceled at step %d (t=%g)", i, t)
			return &dynamo.SimulationError{
				Step:    i,
				Time:    t,
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		for _, m := range s.models {
			m.NextState(s.clock)
		}
		for _, r := range s.recorders {
			r.model.NextState(s.clock)
		}
		for _, m := range stateful {
			if !m.State().IsValid() {
				s.log.Errorf("state of %s diverged at step %d (t=%g)", dynamo.Label(m), i, t)
				return &dynamo.SimulationError{
					Step:    i,
					Time:    t,
					Wrapped: fmt.Errorf("%w: %s = %s", dynamo.ErrInvalidState, dynamo.Label(m), m.State()),
				}
			}
		}

		if s.progress != nil && (i%s.progressEvery == 0 || i == total) {
			s.progress(Progress{Step: i, Total: total, Time: t})
		}
	}

	s.log.WithField("elapsed", time.Since(began)).Info("simulation finished")
	return nil
}

// deModels collects the state-owning models, including those inside composites.
func deModels(models []dynamo.Model) []dynamo.DEModel {
	var out []dynamo.DEModel
	for _, m := range models {
		if de, ok := m.(dynamo.DEModel); ok {
			out = append(out, de)
		}
		if c, ok := m.(dynamo.Composite); ok {
			out = append(out, deModels(c.Models())...)
		}
	}
	return out
}

func (s *System) finalize() {
	for _, m := range s.models {
		m.Finalize()
	}
	for _, r := range s.recorders {
		r.model.Finalize()
	}
}
