package models

import (
	"testing"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrator(t *testing.T) {
	src := constant(t, []string{"a", "b"}, 2, -1)
	integ, err := NewIntegrator(defs("a", "b"), defs("ia", "ib"), integrators.SolverEuler)
	require.NoError(t, err)
	require.NoError(t, integ.SetInitState([]float64{0, 10}))
	require.NoError(t, dynamo.Connect(src, []string{"a", "b"}, integ, []string{"a", "b"}))

	rows := run(clock(t, 0, 1, 0.1), src, integ)
	assert.InDeltaSlice(t, []float64{2, 9}, rows[len(rows)-1], 1e-9)

	integ.Reset(4)
	assert.Equal(t, []float64{4, 4}, outputs(integ))

	integ.Initialize(clock(t, 0, 1, 0.1))
	assert.Equal(t, []float64{0, 10}, outputs(integ))
}

func TestIntegratorShape(t *testing.T) {
	_, err := NewIntegrator(defs("a", "b"), defs("ia"), integrators.SolverEuler)
	assert.ErrorIs(t, err, ErrShape)

	integ, err := NewIntegrator(defs("a"), defs("ia"), integrators.SolverEuler)
	require.NoError(t, err)
	assert.ErrorIs(t, integ.SetInitState([]float64{1, 2}), ErrShape)
	assert.ErrorIs(t, integ.SetInitState([]float64{1, 2}), dynamo.ErrDimensionMismatch)
}
