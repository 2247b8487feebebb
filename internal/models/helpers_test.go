package models

import (
	"testing"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
	"github.com/stretchr/testify/require"
)

func defs(names ...string) []signal.Def {
	out := make([]signal.Def, len(names))
	for i, n := range names {
		out[i] = signal.D(n, "-")
	}
	return out
}

func clock(t *testing.T, start, end, dt float64) *dynamo.Clock {
	t.Helper()
	c, err := dynamo.NewClock(start, end, dt)
	require.NoError(t, err)
	return c
}

// run initializes the models, steps them over every tick and returns the
// output values of the last model after each tick.
func run(c *dynamo.Clock, ms ...dynamo.Model) [][]float64 {
	for _, m := range ms {
		m.Initialize(c)
	}
	out, _ := ms[len(ms)-1].InterfaceOut()
	var rows [][]float64
	for range c.Ticks() {
		for _, m := range ms {
			m.NextState(c)
		}
		if out != nil {
			rows = append(rows, out.Values())
		}
	}
	for _, m := range ms {
		m.Finalize()
	}
	return rows
}

func outputs(m dynamo.Model) []float64 {
	out, _ := m.InterfaceOut()
	return out.Values()
}

func constant(t *testing.T, names []string, values ...float64) *Constant {
	t.Helper()
	c, err := NewConstant(defs(names...), values)
	require.NoError(t, err)
	return c
}
