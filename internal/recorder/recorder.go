package recorder

import (
	"fmt"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
)

// Recorder is an input-only model that samples its bus at Initialize and on
// every tick, so a finished run holds StepNum()+1 rows.
type Recorder struct {
	in    *signal.RefBus
	times []float64
	rows  [][]float64
}

func New(defs []signal.Def) (*Recorder, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("recorder: at least one signal is required")
	}
	in, err := signal.NewRefBus(defs...)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	return &Recorder{in: in}, nil
}

func (r *Recorder) Initialize(t dynamo.Time) {
	capacity := t.StepNum() + 1
	r.times = make([]float64, 0, capacity)
	r.rows = make([][]float64, 0, capacity)
	r.sample(t.Time())
}

func (r *Recorder) NextState(t dynamo.Time) {
	r.sample(t.Time())
}

func (r *Recorder) Finalize() {}

func (r *Recorder) InterfaceIn() (*signal.RefBus, bool) { return r.in, true }
func (r *Recorder) InterfaceOut() (*signal.Bus, bool)   { return nil, false }

func (r *Recorder) sample(t float64) {
	r.times = append(r.times, t)
	r.rows = append(r.rows, r.in.Values())
}

func (r *Recorder) Len() int { return len(r.times) }

func (r *Recorder) Defs() []signal.Def { return r.in.Defs() }

func (r *Recorder) Times() []float64 {
	out := make([]float64, len(r.times))
	copy(out, r.times)
	return out
}

// Rows returns one slice per sample in bus order. The slices are shared.
func (r *Recorder) Rows() [][]float64 { return r.rows }

// Series returns the recorded values of one signal.
func (r *Recorder) Series(name string) ([]float64, bool) {
	col, ok := r.in.Index(name)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(r.rows))
	for i, row := range r.rows {
		out[i] = row[col]
	}
	return out, true
}
