package signal

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

type slot interface {
	Name() string
	Def() Def
	Value() float64
	String() string
}

// table is the ordered, name-indexed storage shared by Bus and RefBus.
type table[T slot] struct {
	items []T
	index map[string]int
}

// Push appends item. A name already present is rejected and the bus is left unchanged.
func (t *table[T]) Push(item T) error {
	name := item.Name()
	if _, ok := t.index[name]; ok {
		return &DuplicateNameError{Name: name}
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[name] = len(t.items)
	t.items = append(t.items, item)
	return nil
}

func (t *table[T]) Get(name string) (T, bool) {
	i, ok := t.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return t.items[i], true
}

func (t *table[T]) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

func (t *table[T]) At(i int) T { return t.items[i] }
func (t *table[T]) Len() int   { return len(t.items) }

// All iterates the entries in index order.
func (t *table[T]) All() iter.Seq2[int, T] {
	return slices.All(t.items)
}

// Defs returns the bus shape, used to declare a matching bus elsewhere.
func (t *table[T]) Defs() []Def {
	defs := make([]Def, len(t.items))
	for i, item := range t.items {
		defs[i] = item.Def()
	}
	return defs
}

// Values exports the current values in index order.
func (t *table[T]) Values() []float64 {
	vals := make([]float64, len(t.items))
	for i, item := range t.items {
		vals[i] = item.Value()
	}
	return vals
}

func (t *table[T]) render(kind string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: size = %d\nSignal List:\n", kind, len(t.items))
	for _, item := range t.items {
		b.WriteString("  ")
		b.WriteString(item.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Source is a bus whose entries can be bound to by a RefBus.
type Source interface {
	Len() int
	Defs() []Def
	lookup(name string) (c *cell, found, bound bool)
}

// Bus is the output surface of a model: an ordered list of value cells.
type Bus struct {
	table[*Signal]
}

func NewBus(defs ...Def) (*Bus, error) {
	b := &Bus{}
	for _, d := range defs {
		if err := b.Push(New(0, d.Name, d.Unit)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bus) lookup(name string) (*cell, bool, bool) {
	s, ok := b.Get(name)
	if !ok {
		return nil, false, false
	}
	return s.c, true, true
}

// Import writes values into the bus in index order. The length must match the
// bus; a mismatch is a programming error and panics.
func (b *Bus) Import(values []float64) {
	if len(values) != len(b.items) {
		panic(fmt.Sprintf("signal: importing %d values into a bus of %d", len(values), len(b.items)))
	}
	for i, v := range values {
		b.items[i].Set(v)
	}
}

func (b *Bus) ZeroReset() { b.SetAll(0) }

func (b *Bus) SetAll(v float64) {
	for _, s := range b.items {
		s.Set(v)
	}
}

func (b *Bus) String() string { return b.render("Bus") }

// RefBus is the input surface of a model: an ordered list of reference slots.
type RefBus struct {
	table[*RefSignal]
}

func NewRefBus(defs ...Def) (*RefBus, error) {
	b := &RefBus{}
	for _, d := range defs {
		if err := b.Push(NewRef(d.Name, d.Unit)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// lookup lets a RefBus act as a source; binding to one of its slots binds to
// the cell that slot already refers to.
func (b *RefBus) lookup(name string) (*cell, bool, bool) {
	r, ok := b.Get(name)
	if !ok {
		return nil, false, false
	}
	return r.c, true, r.c != nil
}

// Connect binds dstNames[i] of b to srcNames[i] of src. All pairs are resolved
// before any slot is bound; if any pair fails the call returns a *ConnectError
// naming every offending slot and b is left untouched.
func (b *RefBus) Connect(src Source, srcNames, dstNames []string) error {
	if len(srcNames) != len(dstNames) {
		return fmt.Errorf("%w: %d source, %d destination", ErrLengthMismatch, len(srcNames), len(dstNames))
	}

	type binding struct {
		slot *RefSignal
		c    *cell
	}

	cerr := &ConnectError{}
	pending := make([]binding, 0, len(srcNames))
	claimed := make(map[string]bool, len(dstNames))

	for i, srcName := range srcNames {
		dstName := dstNames[i]

		c, found, bound := src.lookup(srcName)
		if !found {
			cerr.MissingSrc = append(cerr.MissingSrc, srcName)
		} else if !bound {
			cerr.UnboundSrc = append(cerr.UnboundSrc, srcName)
		}

		dst, ok := b.Get(dstName)
		switch {
		case !ok:
			cerr.MissingDst = append(cerr.MissingDst, dstName)
		case dst.Connected() || claimed[dstName]:
			cerr.AlreadyBound = append(cerr.AlreadyBound, dstName)
			ok = false
		default:
			claimed[dstName] = true
		}

		if found && bound && ok {
			pending = append(pending, binding{slot: dst, c: c})
		}
	}

	if !cerr.empty() {
		return cerr
	}

	for _, p := range pending {
		p.slot.c = p.c
	}
	return nil
}

// Disconnect unbinds the named slot so it can be connected again.
func (b *RefBus) Disconnect(name string) error {
	r, ok := b.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	r.Disconnect()
	return nil
}

func (b *RefBus) DisconnectAll() {
	for _, r := range b.items {
		r.Disconnect()
	}
}

// Unbound lists the names of slots that are not connected.
func (b *RefBus) Unbound() []string {
	var names []string
	for _, r := range b.items {
		if !r.Connected() {
			names = append(names, r.Name())
		}
	}
	return names
}

func (b *RefBus) String() string { return b.render("RefBus") }
