package sim_test

import (
	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
)

// counter publishes the number of ticks it has seen.
type counter struct {
	name  string
	out   *signal.Bus
	log   *[]string
	inits int
	steps int
	fins  int
}

func newCounter(name string, log *[]string) *counter {
	out, _ := signal.NewBus(signal.D(name, "-"))
	return &counter{name: name, out: out, log: log}
}

func (c *counter) Initialize(dynamo.Time) {
	c.inits++
	c.steps = 0
	c.out.ZeroReset()
}

func (c *counter) NextState(dynamo.Time) {
	c.steps++
	c.out.At(0).Set(float64(c.steps))
	if c.log != nil {
		*c.log = append(*c.log, c.name)
	}
}

func (c *counter) Finalize()                           { c.fins++ }
func (c *counter) Name() string                        { return c.name }
func (c *counter) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (c *counter) InterfaceOut() (*signal.Bus, bool)   { return c.out, true }

// follower copies its input to its output each tick.
type follower struct {
	name string
	in   *signal.RefBus
	out  *signal.Bus
	log  *[]string
}

func newFollower(name string, log *[]string) *follower {
	in, _ := signal.NewRefBus(signal.D("in", "-"))
	out, _ := signal.NewBus(signal.D(name, "-"))
	return &follower{name: name, in: in, out: out, log: log}
}

func (f *follower) Initialize(dynamo.Time) { f.out.ZeroReset() }

func (f *follower) NextState(dynamo.Time) {
	f.out.At(0).Set(f.in.At(0).Value())
	if f.log != nil {
		*f.log = append(*f.log, f.name)
	}
}

func (f *follower) Finalize()                           {}
func (f *follower) Name() string                        { return f.name }
func (f *follower) InterfaceIn() (*signal.RefBus, bool) { return f.in, true }
func (f *follower) InterfaceOut() (*signal.Bus, bool)   { return f.out, true }

// sampler is an input-only sink that remembers every value it read.
type sampler struct {
	in      *signal.RefBus
	samples []float64
	times   []float64
}

func newSampler() *sampler {
	in, _ := signal.NewRefBus(signal.D("x", "-"))
	return &sampler{in: in}
}

func (p *sampler) Initialize(t dynamo.Time) {
	p.samples = p.samples[:0]
	p.times = p.times[:0]
}

func (p *sampler) NextState(t dynamo.Time) {
	p.samples = append(p.samples, p.in.At(0).Value())
	p.times = append(p.times, t.Time())
}

func (p *sampler) Finalize()                           {}
func (p *sampler) InterfaceIn() (*signal.RefBus, bool) { return p.in, true }
func (p *sampler) InterfaceOut() (*signal.Bus, bool)   { return nil, false }

// grower multiplies its state by factor every tick.
type grower struct {
	x      dynamo.State
	factor float64
	out    *signal.Bus
}

func newGrower(factor float64) *grower {
	out, _ := signal.NewBus(signal.D("x", "-"))
	return &grower{x: dynamo.State{1}, factor: factor, out: out}
}

func (g *grower) Initialize(dynamo.Time) {
	g.x[0] = 1
	g.out.At(0).Set(1)
}

func (g *grower) NextState(dynamo.Time) {
	g.x[0] *= g.factor
	g.out.At(0).Set(g.x[0])
}

func (g *grower) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	return dynamo.State{x[0] * g.factor}
}

func (g *grower) Finalize()                           {}
func (g *grower) Name() string                        { return "grower" }
func (g *grower) State() dynamo.State                 { return g.x }
func (g *grower) SetState(x dynamo.State)             { copy(g.x, x) }
func (g *grower) Input() dynamo.Control               { return nil }
func (g *grower) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (g *grower) InterfaceOut() (*signal.Bus, bool)   { return g.out, true }
