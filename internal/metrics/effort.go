package metrics

import "math"

// ControlEffort is the mean absolute value of a signal.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "effort" }

func (c *ControlEffort) Observe(v, t float64) {
	c.sum += math.Abs(v)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Peak is the largest absolute value seen.
type Peak struct {
	peak float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string         { return "peak" }
func (p *Peak) Observe(v, t float64) { p.peak = math.Max(p.peak, math.Abs(v)) }
func (p *Peak) Value() float64       { return p.peak }
func (p *Peak) Reset()               { p.peak = 0 }
