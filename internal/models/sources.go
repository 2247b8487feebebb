package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
	"gopkg.in/yaml.v3"
)

// Constant holds fixed output values.
type Constant struct {
	label
	out    *signal.Bus
	values []float64
}

func NewConstant(out []signal.Def, values []float64) (*Constant, error) {
	bus, err := outputBus("constant", out, len(values))
	if err != nil {
		return nil, err
	}
	c := &Constant{out: bus, values: append([]float64(nil), values...)}
	bus.Import(c.values)
	return c, nil
}

func (c *Constant) Initialize(dynamo.Time) { c.out.Import(c.values) }
func (c *Constant) NextState(dynamo.Time)  {}
func (c *Constant) Finalize()              {}

func (c *Constant) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (c *Constant) InterfaceOut() (*signal.Bus, bool)   { return c.out, true }

type StepSetting struct {
	Init  float64 `yaml:"init" json:"init"`
	Final float64 `yaml:"final" json:"final"`
	Time  float64 `yaml:"time" json:"time"`
}

// Step outputs Init before Time and Final at or after it.
type Step struct {
	label
	out      *signal.Bus
	settings []StepSetting
}

func NewStep(out []signal.Def, settings []StepSetting) (*Step, error) {
	bus, err := outputBus("step", out, len(settings))
	if err != nil {
		return nil, err
	}
	return &Step{out: bus, settings: append([]StepSetting(nil), settings...)}, nil
}

func (s *Step) Initialize(t dynamo.Time) { s.update(t.Time()) }
func (s *Step) NextState(t dynamo.Time)  { s.update(t.Time()) }
func (s *Step) Finalize()                {}

func (s *Step) update(now float64) {
	for i, sig := range s.out.All() {
		set := s.settings[i]
		if now >= set.Time {
			sig.Set(set.Final)
		} else {
			sig.Set(set.Init)
		}
	}
}

func (s *Step) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (s *Step) InterfaceOut() (*signal.Bus, bool)   { return s.out, true }

type RampSetting struct {
	Init         float64 `yaml:"init" json:"init"`
	Limit        float64 `yaml:"limit" json:"limit"`
	LimitEnabled bool    `yaml:"limit_enabled" json:"limit_enabled"`
	Start        float64 `yaml:"start" json:"start"`
	Slope        float64 `yaml:"slope" json:"slope"`
}

// Ramp starts at Init and moves by Slope per second from Start, stopping at
// Limit when enabled.
type Ramp struct {
	label
	out      *signal.Bus
	settings []RampSetting
}

func NewRamp(out []signal.Def, settings []RampSetting) (*Ramp, error) {
	bus, err := outputBus("ramp", out, len(settings))
	if err != nil {
		return nil, err
	}
	return &Ramp{out: bus, settings: append([]RampSetting(nil), settings...)}, nil
}

func (r *Ramp) Initialize(dynamo.Time) {
	for i, sig := range r.out.All() {
		sig.Set(r.settings[i].Init)
	}
}

func (r *Ramp) NextState(t dynamo.Time) {
	for i, sig := range r.out.All() {
		set := r.settings[i]
		if t.Time() < set.Start {
			continue
		}
		delta := set.Slope * t.DeltaT()
		v := sig.Value() + delta
		if set.LimitEnabled {
			if delta >= 0 {
				v = math.Min(v, set.Limit)
			} else {
				v = math.Max(v, set.Limit)
			}
		}
		sig.Set(v)
	}
}

func (r *Ramp) Finalize() {}

func (r *Ramp) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (r *Ramp) InterfaceOut() (*signal.Bus, bool)   { return r.out, true }

type WaveKind int

const (
	WaveSin WaveKind = iota
	WaveTriangle
	WaveSquare
)

func ParseWaveKind(s string) (WaveKind, error) {
	switch strings.ToLower(s) {
	case "sin", "sine":
		return WaveSin, nil
	case "triangle":
		return WaveTriangle, nil
	case "square":
		return WaveSquare, nil
	}
	return 0, fmt.Errorf("%w: unknown wave kind %q", ErrParam, s)
}

func (k WaveKind) String() string {
	switch k {
	case WaveSin:
		return "sin"
	case WaveTriangle:
		return "triangle"
	case WaveSquare:
		return "square"
	}
	return fmt.Sprintf("WaveKind(%d)", int(k))
}

func (k *WaveKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseWaveKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type WaveSetting struct {
	Kind      WaveKind `yaml:"kind" json:"kind"`
	Amplitude float64  `yaml:"amplitude" json:"amplitude"`
	Phase     float64  `yaml:"phase" json:"phase"`
	Period    float64  `yaml:"period" json:"period"`
	Offset    float64  `yaml:"offset" json:"offset"`
}

// Value is Amplitude*f(2πt/Period + Phase) + Offset.
func (w WaveSetting) Value(t float64) float64 {
	return w.Amplitude*waveform(w.Kind, 2*math.Pi*t/w.Period+w.Phase) + w.Offset
}

// waveform is periodic in 2π. Triangle peaks at 1 a quarter period in;
// square is 0 for the first half period and 1 for the second.
func waveform(kind WaveKind, arg float64) float64 {
	if kind == WaveSin {
		return math.Sin(arg)
	}
	cycle := arg / (2 * math.Pi)
	frac := cycle - math.Floor(cycle)
	switch kind {
	case WaveTriangle:
		switch {
		case frac <= 0.25:
			return 4 * frac
		case frac <= 0.75:
			return 2 - 4*frac
		default:
			return 4*frac - 4
		}
	case WaveSquare:
		if frac < 0.5 {
			return 0
		}
		return 1
	}
	return 0
}

type Wave struct {
	label
	out      *signal.Bus
	settings []WaveSetting
}

func NewWave(out []signal.Def, settings []WaveSetting) (*Wave, error) {
	bus, err := outputBus("wave", out, len(settings))
	if err != nil {
		return nil, err
	}
	for i, set := range settings {
		if !(set.Period > 0) {
			return nil, paramErr("wave", "setting %d: period must be positive, got %g", i, set.Period)
		}
	}
	return &Wave{out: bus, settings: append([]WaveSetting(nil), settings...)}, nil
}

func (w *Wave) Initialize(t dynamo.Time) { w.update(t.Time()) }
func (w *Wave) NextState(t dynamo.Time)  { w.update(t.Time()) }
func (w *Wave) Finalize()                {}

func (w *Wave) update(now float64) {
	for i, sig := range w.out.All() {
		sig.Set(w.settings[i].Value(now))
	}
}

func (w *Wave) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (w *Wave) InterfaceOut() (*signal.Bus, bool)   { return w.out, true }
