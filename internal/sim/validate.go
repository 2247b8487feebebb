package sim

import (
	"fmt"
	"strings"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
)

// Node names one registered model or recorder in a Report.
type Node struct {
	Index    int
	Name     string
	Recorder bool
}

func (n Node) String() string {
	if n.Recorder {
		return fmt.Sprintf("recorder %q", n.Name)
	}
	return fmt.Sprintf("#%d %s", n.Index, n.Name)
}

// UnboundInput is an input slot that would panic when read.
type UnboundInput struct {
	Node  Node
	Slots []string
}

// OrderViolation is a consumer registered before its producer. The consumer
// sees the producer's value from the previous tick.
type OrderViolation struct {
	Producer Node
	Consumer Node
	Signal   string
}

// Report is the result of a wiring diagnostic. Cycles and order violations
// are legal (feedback loops rely on the one-tick lag); unbound inputs are not.
type Report struct {
	Unbound         []UnboundInput
	Cycles          [][]Node
	OrderViolations []OrderViolation
}

func (r Report) OK() bool {
	return len(r.Unbound) == 0
}

// Err returns a configuration error listing unbound inputs, or nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	parts := make([]string, len(r.Unbound))
	for i, u := range r.Unbound {
		parts[i] = fmt.Sprintf("%s: %s", u.Node, strings.Join(u.Slots, ", "))
	}
	return fmt.Errorf("sim: unbound inputs (%s)", strings.Join(parts, "; "))
}

func (r Report) String() string {
	var b strings.Builder
	if len(r.Unbound) == 0 && len(r.Cycles) == 0 && len(r.OrderViolations) == 0 {
		return "wiring ok"
	}
	for _, u := range r.Unbound {
		fmt.Fprintf(&b, "unbound: %s: %s\n", u.Node, strings.Join(u.Slots, ", "))
	}
	for _, c := range r.Cycles {
		names := make([]string, len(c))
		for i, n := range c {
			names[i] = n.String()
		}
		fmt.Fprintf(&b, "cycle: %s\n", strings.Join(names, " -> "))
	}
	for _, v := range r.OrderViolations {
		fmt.Fprintf(&b, "order: %s reads %q from %s registered after it\n", v.Consumer, v.Signal, v.Producer)
	}
	return b.String()
}

type edge struct {
	to     int
	signal string
}

// Validate inspects the current wiring. It never runs a model.
func (s *System) Validate() Report {
	var report Report

	nodes := make([]Node, 0, len(s.models)+len(s.recorders))
	all := make([]dynamo.Model, 0, cap(nodes))
	for i, m := range s.models {
		nodes = append(nodes, Node{Index: i, Name: dynamo.Label(m)})
		all = append(all, m)
	}
	for i, r := range s.recorders {
		nodes = append(nodes, Node{Index: len(s.models) + i, Name: r.name, Recorder: true})
		all = append(all, r.model)
	}

	producers := make(map[signal.Key]int)
	for i, m := range all {
		out, ok := m.InterfaceOut()
		if !ok {
			continue
		}
		for _, sig := range out.All() {
			producers[sig.Key()] = i
		}
	}

	deps := make([][]edge, len(all))
	for i, m := range all {
		in, ok := m.InterfaceIn()
		if !ok {
			continue
		}
		if unbound := in.Unbound(); len(unbound) > 0 {
			report.Unbound = append(report.Unbound, UnboundInput{Node: nodes[i], Slots: unbound})
		}
		for _, ref := range in.All() {
			key, bound := ref.Key()
			if !bound {
				continue
			}
			p, ok := producers[key]
			if !ok {
				continue
			}
			deps[p] = append(deps[p], edge{to: i, signal: ref.Name()})
			if p > i {
				report.OrderViolations = append(report.OrderViolations, OrderViolation{
					Producer: nodes[p],
					Consumer: nodes[i],
					Signal:   ref.Name(),
				})
			}
		}
	}

	for i, m := range all {
		report.Unbound = append(report.Unbound, nestedUnbound(nodes[i], m)...)
	}

	report.Cycles = findCycles(nodes, deps)
	return report
}

// nestedUnbound lists unbound inputs of models inside a composite, named
// parent/child and indexed like their outermost parent.
func nestedUnbound(parent Node, m dynamo.Model) []UnboundInput {
	c, ok := m.(dynamo.Composite)
	if !ok {
		return nil
	}
	var found []UnboundInput
	for _, child := range c.Models() {
		node := Node{Index: parent.Index, Name: parent.Name + "/" + dynamo.Label(child)}
		if in, ok := child.InterfaceIn(); ok {
			if unbound := in.Unbound(); len(unbound) > 0 {
				found = append(found, UnboundInput{Node: node, Slots: unbound})
			}
		}
		found = append(found, nestedUnbound(node, child)...)
	}
	return found
}

// findCycles walks producer -> consumer edges depth first and returns each
// back edge as the path that closes it.
func findCycles(nodes []Node, deps [][]edge) [][]Node {
	var cycles [][]Node
	permanent := make([]bool, len(nodes))
	temporary := make([]bool, len(nodes))
	var stack []int

	var visit func(n int)
	visit = func(n int) {
		if permanent[n] {
			return
		}
		temporary[n] = true
		stack = append(stack, n)

		seen := make(map[int]bool)
		for _, e := range deps[n] {
			if seen[e.to] {
				continue
			}
			seen[e.to] = true
			if temporary[e.to] {
				cycles = append(cycles, closeCycle(nodes, stack, e.to))
				continue
			}
			visit(e.to)
		}

		stack = stack[:len(stack)-1]
		temporary[n] = false
		permanent[n] = true
	}

	for n := range nodes {
		visit(n)
	}
	return cycles
}

func closeCycle(nodes []Node, stack []int, start int) []Node {
	var path []Node
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == start {
			for _, n := range stack[i:] {
				path = append(path, nodes[n])
			}
			break
		}
	}
	return append(path, nodes[start])
}
