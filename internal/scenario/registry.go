package scenario

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/models"
	"github.com/san-kum/blocksim/internal/subsystem"
)

// Factory builds the model declared by b. r is passed so composite blocks
// can build their children.
type Factory func(r *Registry, b Block) (dynamo.Model, error)

type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with every built-in block type.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.factories["constant"] = buildConstant
	r.factories["step"] = buildStep
	r.factories["ramp"] = buildRamp
	r.factories["wave"] = buildWave
	r.factories["state_space"] = buildStateSpace
	r.factories["transfer_function"] = buildTransferFunc
	r.factories["integrator"] = buildIntegrator
	r.factories["pid"] = buildPID
	r.factories["mass"] = buildMass
	r.factories["spring"] = buildSpring
	r.factories["damper"] = buildDamper
	r.factories["spring_damper"] = buildSpringDamper
	r.factories["pendulum"] = buildPendulum
	r.factories["subsystem"] = buildSubsystem

	return r
}

// Register adds a block type. Existing types cannot be replaced.
func (r *Registry) Register(typ string, f Factory) error {
	if _, ok := r.factories[typ]; ok {
		return fmt.Errorf("scenario: block type %q already registered", typ)
	}
	r.factories[typ] = f
	return nil
}

func (r *Registry) Build(b Block) (dynamo.Model, error) {
	f, ok := r.factories[b.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q (block %q)", ErrUnknownType, b.Type, b.Name)
	}
	m, err := f(r, b)
	if err != nil {
		return nil, fmt.Errorf("block %q: %w", b.Name, err)
	}
	if n, ok := m.(interface{ SetName(string) }); ok {
		n.SetName(b.Name)
	}
	return m, nil
}

// Types lists the registered block types in sorted order.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func buildConstant(_ *Registry, b Block) (dynamo.Model, error) {
	var values []float64
	if err := b.Decode(&values); err != nil {
		return nil, err
	}
	return models.NewConstant(b.OutDefs(), values)
}

func buildStep(_ *Registry, b Block) (dynamo.Model, error) {
	var settings []models.StepSetting
	if err := b.Decode(&settings); err != nil {
		return nil, err
	}
	return models.NewStep(b.OutDefs(), settings)
}

func buildRamp(_ *Registry, b Block) (dynamo.Model, error) {
	var settings []models.RampSetting
	if err := b.Decode(&settings); err != nil {
		return nil, err
	}
	return models.NewRamp(b.OutDefs(), settings)
}

func buildWave(_ *Registry, b Block) (dynamo.Model, error) {
	var settings []models.WaveSetting
	if err := b.Decode(&settings); err != nil {
		return nil, err
	}
	return models.NewWave(b.OutDefs(), settings)
}

type stateSpaceParams struct {
	States int                `yaml:"states"`
	Solver integrators.Solver `yaml:"solver"`
	A      []float64          `yaml:"a"`
	B      []float64          `yaml:"b"`
	C      []float64          `yaml:"c"`
	D      []float64          `yaml:"d"`
	X0     []float64          `yaml:"x0"`
}

func buildStateSpace(_ *Registry, b Block) (dynamo.Model, error) {
	var p stateSpaceParams
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	ss, err := models.NewStateSpace(b.InDefs(), b.OutDefs(), p.States, p.Solver)
	if err != nil {
		return nil, err
	}
	for _, set := range []struct {
		fn   func([]float64) error
		vals []float64
	}{
		{ss.SetA, p.A}, {ss.SetB, p.B}, {ss.SetC, p.C}, {ss.SetD, p.D}, {ss.SetInitState, p.X0},
	} {
		if set.vals == nil {
			continue
		}
		if err := set.fn(set.vals); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

type transferParams struct {
	Num    []float64          `yaml:"num"`
	Den    []float64          `yaml:"den"`
	Solver integrators.Solver `yaml:"solver"`
}

func buildTransferFunc(_ *Registry, b Block) (dynamo.Model, error) {
	var p transferParams
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	return models.NewTransferFunc(b.InDefs(), b.OutDefs(), p.Num, p.Den, p.Solver)
}

type integratorParams struct {
	Solver integrators.Solver `yaml:"solver"`
	X0     []float64          `yaml:"x0"`
}

func buildIntegrator(_ *Registry, b Block) (dynamo.Model, error) {
	var p integratorParams
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	integ, err := models.NewIntegrator(b.InDefs(), b.OutDefs(), p.Solver)
	if err != nil {
		return nil, err
	}
	if p.X0 != nil {
		if err := integ.SetInitState(p.X0); err != nil {
			return nil, err
		}
	}
	return integ, nil
}

type pidParams struct {
	models.Gains `yaml:",inline"`
	Min          *float64           `yaml:"min"`
	Max          *float64           `yaml:"max"`
	Solver       integrators.Solver `yaml:"solver"`
}

func buildPID(_ *Registry, b Block) (dynamo.Model, error) {
	var p pidParams
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	limits := models.NoLimits
	if p.Min != nil {
		limits.Min = *p.Min
	}
	if p.Max != nil {
		limits.Max = *p.Max
	}
	return models.NewPID(b.InDefs(), b.OutDefs(), p.Gains, limits, p.Solver)
}

type massParams struct {
	Mass     float64            `yaml:"mass"`
	Position [3]float64         `yaml:"position"`
	Velocity [3]float64         `yaml:"velocity"`
	Solver   integrators.Solver `yaml:"solver"`
}

func buildMass(_ *Registry, b Block) (dynamo.Model, error) {
	p := massParams{Mass: 1}
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	return models.NewMass(b.InDefs(), b.OutDefs(), p.Mass, p.Position, p.Velocity, p.Solver)
}

type linkParams struct {
	NaturalLength float64 `yaml:"natural_length"`
	Stiffness     float64 `yaml:"stiffness"`
	Damping       float64 `yaml:"damping"`
}

func buildSpring(_ *Registry, b Block) (dynamo.Model, error) {
	var p linkParams
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	return models.NewSpring(b.InDefs(), b.OutDefs(), p.NaturalLength, p.Stiffness)
}

func buildDamper(_ *Registry, b Block) (dynamo.Model, error) {
	var p linkParams
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	return models.NewDamper(b.InDefs(), b.OutDefs(), p.Damping)
}

func buildSpringDamper(_ *Registry, b Block) (dynamo.Model, error) {
	var p linkParams
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	return models.NewSpringDamper(b.InDefs(), b.OutDefs(), p.NaturalLength, p.Stiffness, p.Damping)
}

type pendulumParams struct {
	models.PendulumParams `yaml:",inline"`
	Solver                integrators.Solver `yaml:"solver"`
}

func buildPendulum(_ *Registry, b Block) (dynamo.Model, error) {
	p := pendulumParams{PendulumParams: models.DefaultPendulumParams(), Solver: integrators.SolverRK4}
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	return models.NewPendulum(b.InDefs(), b.OutDefs(), p.PendulumParams, p.Solver)
}

// subsystemParams wires children to the subsystem surface through the
// reserved block names $in and $out.
type subsystemParams struct {
	DeltaT      float64      `yaml:"delta_t"`
	Blocks      []Block      `yaml:"blocks"`
	Connections []Connection `yaml:"connections"`
}

const (
	subsystemIn  = "$in"
	subsystemOut = "$out"
)

func buildSubsystem(r *Registry, b Block) (dynamo.Model, error) {
	p := subsystemParams{DeltaT: math.Inf(1)}
	if err := b.Decode(&p); err != nil {
		return nil, err
	}
	if err := validateBlocks(p.Blocks); err != nil {
		return nil, err
	}

	sub, err := subsystem.New(b.InDefs(), b.OutDefs(), p.DeltaT)
	if err != nil {
		return nil, err
	}
	children, order, err := buildBlocks(r, p.Blocks)
	if err != nil {
		return nil, err
	}

	for _, c := range p.Connections {
		src, dst := c.pairs()
		switch {
		case c.From == subsystemIn:
			to, ok := children[c.To]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, c.To)
			}
			err = sub.ConnectInbus(to, src, dst)
		case c.To == subsystemOut:
			from, ok := children[c.From]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, c.From)
			}
			err = sub.ConnectOutbus(from, src, dst)
		default:
			err = connect(children, c)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, name := range order {
		sub.Register(children[name])
	}
	return sub, nil
}
