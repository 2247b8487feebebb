// Package metrics reduces a recorded signal to scalar figures of merit.
package metrics

import (
	"errors"
	"fmt"

	"github.com/san-kum/blocksim/internal/recorder"
)

var ErrUnknownMetric = errors.New("metrics: unknown metric")

// Metric observes one signal sample by sample.
type Metric interface {
	Name() string
	Observe(v, t float64)
	Value() float64
	Reset()
}

// Defaults returns a fresh set of the standard metrics. threshold bounds
// the Stability metric.
func Defaults(threshold float64) []Metric {
	return []Metric{
		NewPeak(),
		NewControlEffort(),
		NewEnergy(),
		NewDrift(),
		NewStability(threshold),
		NewFrequency(),
	}
}

// ByName returns a fresh metric of the given name.
func ByName(name string, threshold float64) (Metric, error) {
	for _, m := range Defaults(threshold) {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Evaluate resets ms, feeds them the samples and returns their values by name.
func Evaluate(times, values []float64, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, v := range values {
			m.Observe(v, times[i])
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Summarize evaluates the default metrics on every signal of rec.
func Summarize(rec *recorder.Recorder, threshold float64) map[string]map[string]float64 {
	times := rec.Times()
	out := make(map[string]map[string]float64)
	for _, d := range rec.Defs() {
		values, _ := rec.Series(d.Name)
		out[d.Name] = Evaluate(times, values, Defaults(threshold)...)
	}
	return out
}
