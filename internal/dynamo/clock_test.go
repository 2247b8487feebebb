package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestClockStepNum(t *testing.T) {
	tests := []struct {
		start, end, dt float64
		steps          int
	}{
		{0, 10, 0.01, 1000},
		{0, 1, 0.1, 10},
		{0, 1, 0.3, 3},
		{2, 3, 0.25, 4},
		{0, 0.3, 0.1, 3},
	}

	for _, tt := range tests {
		c, err := NewClock(tt.start, tt.end, tt.dt)
		if err != nil {
			t.Fatalf("NewClock(%g, %g, %g): %v", tt.start, tt.end, tt.dt, err)
		}
		if c.StepNum() != tt.steps {
			t.Errorf("NewClock(%g, %g, %g).StepNum() = %d, want %d", tt.start, tt.end, tt.dt, c.StepNum(), tt.steps)
		}
	}
}

func TestClockInvalid(t *testing.T) {
	tests := []struct {
		name           string
		start, end, dt float64
	}{
		{"zero dt", 0, 1, 0},
		{"negative dt", 0, 1, -0.1},
		{"NaN dt", 0, 1, math.NaN()},
		{"empty span", 1, 1, 0.1},
		{"reversed span", 2, 1, 0.1},
		{"infinite end", 0, math.Inf(1), 1},
		{"infinite start", math.Inf(-1), 0, 1},
		{"NaN end", 0, math.NaN(), 1},
		{"too many ticks", 0, 1e300, 1e-300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClock(tt.start, tt.end, tt.dt)
			if !errors.Is(err, ErrInvalidClock) {
				t.Errorf("expected ErrInvalidClock, got %v", err)
			}
		})
	}
}

func TestClockTicks(t *testing.T) {
	c, _ := NewClock(1, 2, 0.25)

	var times []float64
	for i, tm := range c.Ticks() {
		if c.Step() != i {
			t.Errorf("Step() = %d during tick %d", c.Step(), i)
		}
		if c.Time() != tm {
			t.Errorf("Time() = %g, yielded %g", c.Time(), tm)
		}
		times = append(times, tm)
	}

	want := []float64{1.25, 1.5, 1.75, 2}
	if len(times) != len(want) {
		t.Fatalf("expected %d ticks, got %d", len(want), len(times))
	}
	for i := range want {
		if math.Abs(times[i]-want[i]) > 1e-12 {
			t.Errorf("tick %d: expected %g, got %g", i+1, want[i], times[i])
		}
	}
}

func TestClockTicksRestart(t *testing.T) {
	c, _ := NewClock(0, 1, 0.1)

	for i := range c.Ticks() {
		if i == 4 {
			break
		}
	}
	if c.Step() != 4 {
		t.Errorf("expected to stop at step 4, got %d", c.Step())
	}

	n := 0
	for range c.Ticks() {
		n++
	}
	if n != 10 {
		t.Errorf("second pass yielded %d ticks, want 10", n)
	}
}

func TestClockNoDrift(t *testing.T) {
	c, _ := NewClock(0, 10, 0.01)

	var last float64
	for _, tm := range c.Ticks() {
		last = tm
	}
	if math.Abs(last-10) > 1e-12 {
		t.Errorf("final tick at %.15f, want 10", last)
	}
}

func TestClockChangeDeltaT(t *testing.T) {
	c, _ := NewClock(0, 1, 0.1)
	for range c.Ticks() {
	}

	if err := c.ChangeDeltaT(0.5); err != nil {
		t.Fatal(err)
	}
	if c.StepNum() != 2 || c.Step() != 0 || c.Time() != 0 {
		t.Errorf("unexpected clock after change: %v", c)
	}

	if err := c.ChangeDeltaT(0); err == nil {
		t.Error("expected error for zero dt")
	}
	if c.DeltaT() != 0.5 {
		t.Errorf("failed change should keep dt, got %g", c.DeltaT())
	}
}

func TestClockReset(t *testing.T) {
	c, _ := NewClock(3, 4, 0.5)
	for range c.Ticks() {
	}
	c.Reset()
	if c.Time() != c.StartTime() || c.Step() != 0 {
		t.Errorf("reset clock at t=%g step=%d", c.Time(), c.Step())
	}
	if c.EndTime() != 4 {
		t.Errorf("unexpected end time %g", c.EndTime())
	}
}
