// Package scenario loads block diagrams from YAML and builds them into a
// runnable system.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/blocksim/internal/signal"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidScenario = errors.New("scenario: invalid")
	ErrUnknownType     = errors.New("scenario: unknown block type")
	ErrUnknownBlock    = errors.New("scenario: unknown block")
)

// Scenario is a block diagram and the time span to simulate it over.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Start       float64        `yaml:"start"`
	End         float64        `yaml:"end"`
	Dt          float64        `yaml:"dt"`
	Blocks      []Block        `yaml:"blocks"`
	Connections []Connection   `yaml:"connections"`
	Recorders   []RecorderSpec `yaml:"recorders"`
}

// Block declares one model. In and Out list signals as "name[unit]" or a
// bare name. Params are decoded by the factory registered for Type.
type Block struct {
	Name   string    `yaml:"name"`
	Type   string    `yaml:"type"`
	In     []string  `yaml:"in"`
	Out    []string  `yaml:"out"`
	Params yaml.Node `yaml:"params"`
}

func (b Block) InDefs() []signal.Def  { return parseDefs(b.In) }
func (b Block) OutDefs() []signal.Def { return parseDefs(b.Out) }

// Decode decodes the block's params into v. Absent params leave v unchanged.
func (b Block) Decode(v any) error {
	if b.Params.Kind == 0 {
		return nil
	}
	if err := b.Params.Decode(v); err != nil {
		return fmt.Errorf("block %q params: %w", b.Name, err)
	}
	return nil
}

func parseDefs(list []string) []signal.Def {
	defs := make([]signal.Def, len(list))
	for i, s := range list {
		defs[i] = signal.ParseDef(strings.TrimSpace(s))
	}
	return defs
}

// Connection wires outputs Src of block From to inputs Dst of block To.
// An empty Dst reuses the Src names.
type Connection struct {
	From string   `yaml:"from"`
	To   string   `yaml:"to"`
	Src  []string `yaml:"src"`
	Dst  []string `yaml:"dst"`
}

func (c Connection) pairs() ([]string, []string) {
	if len(c.Dst) == 0 {
		return c.Src, c.Src
	}
	return c.Src, c.Dst
}

// RecorderSpec records the listed "block.signal" references. Each recorded
// column is named after its reference.
type RecorderSpec struct {
	Name    string   `yaml:"name"`
	Signals []string `yaml:"signals"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the structure of the scenario. Block parameters and
// wiring are checked by Build.
func (sc *Scenario) Validate() error {
	if sc.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidScenario, sc.Dt)
	}
	if sc.End < sc.Start {
		return fmt.Errorf("%w: end %g before start %g", ErrInvalidScenario, sc.End, sc.Start)
	}
	if err := validateBlocks(sc.Blocks); err != nil {
		return err
	}

	seen := make(map[string]bool, len(sc.Recorders))
	for i, r := range sc.Recorders {
		if r.Name == "" {
			return fmt.Errorf("%w: recorder %d has no name", ErrInvalidScenario, i)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate recorder %q", ErrInvalidScenario, r.Name)
		}
		seen[r.Name] = true
		if len(r.Signals) == 0 {
			return fmt.Errorf("%w: recorder %q has no signals", ErrInvalidScenario, r.Name)
		}
	}
	return nil
}

func validateBlocks(blocks []Block) error {
	names := make(map[string]bool, len(blocks))
	for i, b := range blocks {
		switch {
		case b.Name == "":
			return fmt.Errorf("%w: block %d has no name", ErrInvalidScenario, i)
		case strings.ContainsAny(b.Name, ".$"):
			return fmt.Errorf("%w: block name %q may not contain '.' or '$'", ErrInvalidScenario, b.Name)
		case names[b.Name]:
			return fmt.Errorf("%w: duplicate block %q", ErrInvalidScenario, b.Name)
		case b.Type == "":
			return fmt.Errorf("%w: block %q has no type", ErrInvalidScenario, b.Name)
		}
		names[b.Name] = true
	}
	return nil
}

// splitRef splits "block.signal".
func splitRef(ref string) (block, sig string, err error) {
	block, sig, ok := strings.Cut(ref, ".")
	if !ok || block == "" || sig == "" {
		return "", "", fmt.Errorf("%w: signal reference %q is not block.signal", ErrInvalidScenario, ref)
	}
	return block, sig, nil
}
