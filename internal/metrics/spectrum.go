package metrics

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-floats.Sum(data)/float64(len(data)), centered)

	coeff := fourier.NewFFT(len(data)).Coefficients(nil, centered)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// Frequency is the dominant frequency of a uniformly sampled signal, in
// cycles per time unit. A signal without oscillation reports 0.
type Frequency struct {
	values []float64
	first  float64
	last   float64
}

func NewFrequency() *Frequency { return &Frequency{} }

func (f *Frequency) Name() string { return "frequency" }

func (f *Frequency) Observe(v, t float64) {
	if len(f.values) == 0 {
		f.first = t
	}
	f.last = t
	f.values = append(f.values, v)
}

func (f *Frequency) Value() float64 {
	n := len(f.values)
	if n < 4 || f.last <= f.first {
		return 0
	}
	dt := (f.last - f.first) / float64(n-1)

	ps := PowerSpectrum(f.values)
	peak := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak == 0 || ps[peak] < 1e-9 {
		return 0
	}
	return float64(peak) / (float64(n) * dt)
}

func (f *Frequency) Reset() {
	f.values = f.values[:0]
	f.first, f.last = 0, 0
}
