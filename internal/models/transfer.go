package models

import (
	"fmt"

	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/signal"
)

// TransferFunc is a SISO block num(s)/den(s). Coefficients are given highest
// power first. It is realised in controllable canonical form.
type TransferFunc struct {
	*StateSpace
	num, den []float64
}

func NewTransferFunc(in, out []signal.Def, num, den []float64, solver integrators.Solver) (*TransferFunc, error) {
	n := len(den) - 1
	switch {
	case n < 1:
		return nil, paramErr("transfer function", "denominator order must be at least 1, got %d coefficients", len(den))
	case len(num) == 0:
		return nil, paramErr("transfer function", "numerator is empty")
	case len(num) > len(den):
		return nil, paramErr("transfer function", "improper: numerator order %d exceeds denominator order %d", len(num)-1, n)
	case den[0] == 0:
		return nil, paramErr("transfer function", "leading denominator coefficient is zero")
	case len(in) != 1 || len(out) != 1:
		return nil, shapeErr("transfer function", "needs one input and one output, got %d and %d", len(in), len(out))
	}

	ss, err := NewStateSpace(in, out, n, solver)
	if err != nil {
		return nil, err
	}

	an := den[0]
	bn := 0.0
	if len(num)-1 == n {
		bn = num[0]
	}

	a := make([]float64, n*n)
	bvec := make([]float64, n)
	for r := 0; r < n; r++ {
		a[r*n+n-1] = -den[n-r] / an
		if r > 0 {
			a[r*n+r-1] = 1
		}
		coef := 0.0
		if r < len(num) {
			coef = num[len(num)-r-1]
		}
		bvec[r] = (coef - den[n-r]*bn) / an
	}
	c := make([]float64, n)
	c[n-1] = 1

	for _, set := range []struct {
		fn   func([]float64) error
		vals []float64
	}{
		{ss.SetA, a}, {ss.SetB, bvec}, {ss.SetC, c}, {ss.SetD, []float64{bn}},
	} {
		if err := set.fn(set.vals); err != nil {
			return nil, fmt.Errorf("transfer function: %w", err)
		}
	}

	return &TransferFunc{
		StateSpace: ss,
		num:        append([]float64(nil), num...),
		den:        append([]float64(nil), den...),
	}, nil
}

func (m *TransferFunc) String() string {
	return fmt.Sprintf("Transfer Function\n\tnum: %v\n\tden: %v\n", m.num, m.den)
}
