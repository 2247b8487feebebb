package scenario

import (
	"fmt"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/recorder"
	"github.com/san-kum/blocksim/internal/signal"
	"github.com/san-kum/blocksim/internal/sim"
)

// Diagram is a built scenario ready to run.
type Diagram struct {
	Name      string
	System    *sim.System
	Blocks    map[string]dynamo.Model
	Order     []string
	Recorders map[string]*recorder.Recorder
}

// Build constructs every block through reg, wires the connections and
// registers the blocks in declaration order followed by the recorders.
func Build(sc *Scenario, reg *Registry, opts ...sim.Option) (*Diagram, error) {
	system, err := sim.New(sc.Start, sc.End, sc.Dt, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	blocks, order, err := buildBlocks(reg, sc.Blocks)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	for _, c := range sc.Connections {
		if err := connect(blocks, c); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	for _, name := range order {
		system.RegisterModel(blocks[name])
	}

	d := &Diagram{
		Name:      sc.Name,
		System:    system,
		Blocks:    blocks,
		Order:     order,
		Recorders: make(map[string]*recorder.Recorder, len(sc.Recorders)),
	}
	for _, spec := range sc.Recorders {
		rec, err := buildRecorder(blocks, spec)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: recorder %q: %w", sc.Name, spec.Name, err)
		}
		if err := system.RegisterRecorder(spec.Name, rec); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		d.Recorders[spec.Name] = rec
	}
	return d, nil
}

func buildBlocks(reg *Registry, specs []Block) (map[string]dynamo.Model, []string, error) {
	blocks := make(map[string]dynamo.Model, len(specs))
	order := make([]string, 0, len(specs))
	for _, b := range specs {
		m, err := reg.Build(b)
		if err != nil {
			return nil, nil, err
		}
		blocks[b.Name] = m
		order = append(order, b.Name)
	}
	return blocks, order, nil
}

func connect(blocks map[string]dynamo.Model, c Connection) error {
	from, ok := blocks[c.From]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlock, c.From)
	}
	to, ok := blocks[c.To]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlock, c.To)
	}
	src, dst := c.pairs()
	return dynamo.Connect(from, src, to, dst)
}

// buildRecorder names each column after its block.signal reference and
// copies the unit of the producing signal.
func buildRecorder(blocks map[string]dynamo.Model, spec RecorderSpec) (*recorder.Recorder, error) {
	type source struct {
		model dynamo.Model
		name  string
	}

	defs := make([]signal.Def, 0, len(spec.Signals))
	sources := make([]source, 0, len(spec.Signals))
	for _, ref := range spec.Signals {
		blockName, sigName, err := splitRef(ref)
		if err != nil {
			return nil, err
		}
		m, ok := blocks[blockName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, blockName)
		}
		out, ok := m.InterfaceOut()
		if !ok {
			return nil, fmt.Errorf("%w: %s", dynamo.ErrNoOutputInterface, blockName)
		}
		sig, ok := out.Get(sigName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", signal.ErrNotFound, ref)
		}
		defs = append(defs, signal.D(ref, sig.Unit()))
		sources = append(sources, source{model: m, name: sigName})
	}

	rec, err := recorder.New(defs)
	if err != nil {
		return nil, err
	}
	for i, src := range sources {
		if err := dynamo.Connect(src.model, []string{src.name}, rec, []string{defs[i].Name}); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
