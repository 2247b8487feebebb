package metrics

import "math"

// Energy is the integral of v² over time, by the trapezoidal rule.
type Energy struct {
	total   float64
	lastV   float64
	lastT   float64
	samples int
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(v, t float64) {
	if e.samples > 0 {
		e.total += 0.5 * (e.lastV*e.lastV + v*v) * (t - e.lastT)
	}
	e.lastV, e.lastT = v, t
	e.samples++
}

func (e *Energy) Value() float64 { return e.total }

func (e *Energy) Reset() {
	*e = Energy{}
}

// Drift is the largest deviation from the first sample, relative to it.
// A zero first sample gives the absolute deviation.
type Drift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift() *Drift { return &Drift{} }

func (d *Drift) Name() string { return "drift" }

func (d *Drift) Observe(v, t float64) {
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	drift := math.Abs(v - d.initial)
	if d.initial != 0 {
		drift /= math.Abs(d.initial)
	}
	d.maxDrift = math.Max(d.maxDrift, drift)
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	*d = Drift{}
}
