package scenario

import (
	"fmt"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// WithParams returns a copy of sc with scalar block parameters set. Keys are
// "block.param"; a parameter the block does not declare is added. sc is not
// modified.
func (sc *Scenario) WithParams(params map[string]float64) (*Scenario, error) {
	out := *sc
	out.Blocks = slices.Clone(sc.Blocks)

	index := make(map[string]int, len(out.Blocks))
	for i, b := range out.Blocks {
		index[b.Name] = i
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		block, param, err := splitRef(key)
		if err != nil {
			return nil, err
		}
		i, ok := index[block]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, block)
		}
		node, err := setScalar(out.Blocks[i].Params, param, params[key])
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block, err)
		}
		out.Blocks[i].Params = node
	}
	return &out, nil
}

// setScalar returns a copy of the mapping node with key bound to v.
func setScalar(n yaml.Node, key string, v float64) (yaml.Node, error) {
	switch n.Kind {
	case 0:
		n = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	case yaml.MappingNode:
	default:
		return n, fmt.Errorf("%w: params are not a mapping, cannot set %q", ErrInvalidScenario, key)
	}

	value := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!float",
		Value: strconv.FormatFloat(v, 'g', -1, 64),
	}

	content := slices.Clone(n.Content)
	for i := 0; i+1 < len(content); i += 2 {
		if content[i].Value == key {
			content[i+1] = value
			n.Content = content
			return n, nil
		}
	}
	n.Content = append(content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
	return n, nil
}
