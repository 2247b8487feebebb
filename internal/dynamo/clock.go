package dynamo

import (
	"fmt"
	"iter"
	"math"
)

// stepTolerance absorbs float error in (end-start)/dt so that 10/0.01 is 1000
// ticks rather than 999.
const stepTolerance = 1e-9

// maxTicks bounds the tick count so it always fits an int.
const maxTicks = 1 << 40

// Time is the read-only view of the clock handed to models.
type Time interface {
	// Time is the simulated instant of the current tick.
	Time() float64
	DeltaT() float64
	// StepNum is the total number of ticks in the run.
	StepNum() int
	// Step is the index of the current tick, 0 during Initialize.
	Step() int
	StartTime() float64
	EndTime() float64
}

// Clock is the fixed-step time source. Only the scheduler mutates it.
type Clock struct {
	start, end, dt float64
	steps          int
	step           int
	now            float64
}

func NewClock(start, end, dt float64) (*Clock, error) {
	c := &Clock{start: start, end: end}
	if err := c.ChangeDeltaT(dt); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Clock) Time() float64      { return c.now }
func (c *Clock) DeltaT() float64    { return c.dt }
func (c *Clock) StepNum() int       { return c.steps }
func (c *Clock) Step() int          { return c.step }
func (c *Clock) StartTime() float64 { return c.start }
func (c *Clock) EndTime() float64   { return c.end }

// Reset rewinds the clock to the start time.
func (c *Clock) Reset() {
	c.step = 0
	c.now = c.start
}

// ChangeDeltaT sets a new step size, recomputes the tick count and resets.
func (c *Clock) ChangeDeltaT(dt float64) error {
	if !(dt > 0) || !(c.end > c.start) || math.IsInf(dt, 0) ||
		math.IsInf(c.start, 0) || math.IsInf(c.end, 0) {
		return fmt.Errorf("%w: start=%g end=%g dt=%g", ErrInvalidClock, c.start, c.end, dt)
	}
	if n := (c.end - c.start) / dt; !(n <= maxTicks) {
		return fmt.Errorf("%w: %g ticks from start=%g end=%g dt=%g", ErrInvalidClock, n, c.start, c.end, dt)
	}
	c.dt = dt
	c.steps = tickCount(c.start, c.end, dt)
	c.Reset()
	return nil
}

func tickCount(start, end, dt float64) int {
	n := (end - start) / dt
	if r := math.Round(n); math.Abs(n-r) < stepTolerance*math.Max(1, r) {
		return int(r)
	}
	return int(math.Floor(n))
}

// Ticks yields (index, time) for ticks 1..StepNum. Each call restarts from the
// start time. Times are computed as start + i*dt so no error accumulates.
func (c *Clock) Ticks() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		c.Reset()
		for i := 1; i <= c.steps; i++ {
			c.step = i
			c.now = c.start + float64(i)*c.dt
			if !yield(i, c.now) {
				return
			}
		}
	}
}

func (c *Clock) String() string {
	return fmt.Sprintf("Clock{t=%g step=%d/%d dt=%g [%g, %g]}", c.now, c.step, c.steps, c.dt, c.start, c.end)
}
