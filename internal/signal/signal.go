package signal

import (
	"fmt"
	"strings"
)

// Def is the (name, unit) schema of a signal.
type Def struct {
	Name string `yaml:"name" json:"name"`
	Unit string `yaml:"unit" json:"unit"`
}

// D is shorthand for Def{Name: name, Unit: unit}.
func D(name, unit string) Def {
	return Def{Name: name, Unit: unit}
}

func (d Def) String() string {
	return fmt.Sprintf("%s[%s]", d.Name, d.Unit)
}

// ParseDef reverses Def.String. A string without a trailing [unit] is a bare name.
func ParseDef(s string) Def {
	if strings.HasSuffix(s, "]") {
		if i := strings.LastIndexByte(s, '['); i >= 0 {
			return Def{Name: s[:i], Unit: s[i+1 : len(s)-1]}
		}
	}
	return Def{Name: s}
}

type cell struct {
	value float64
	def   Def
}

// Key identifies a value cell. Two keys are equal when they refer to the same cell.
type Key struct {
	c *cell
}

// Signal is a value cell. Every RefSignal bound to it observes writes made through Set.
type Signal struct {
	c *cell
}

func New(init float64, name, unit string) *Signal {
	return &Signal{c: &cell{value: init, def: D(name, unit)}}
}

func (s *Signal) Name() string   { return s.c.def.Name }
func (s *Signal) Unit() string   { return s.c.def.Unit }
func (s *Signal) Def() Def       { return s.c.def }
func (s *Signal) Value() float64 { return s.c.value }
func (s *Signal) Set(v float64)  { s.c.value = v }
func (s *Signal) Key() Key       { return Key{c: s.c} }

func (s *Signal) String() string {
	return fmt.Sprintf("%s: %v[%s]", s.c.def.Name, s.c.value, s.c.def.Unit)
}

// RefSignal is a named slot that reads a cell owned elsewhere. It binds at most
// once; Disconnect must be called before it can be bound again.
type RefSignal struct {
	def Def
	c   *cell
}

func NewRef(name, unit string) *RefSignal {
	return &RefSignal{def: D(name, unit)}
}

func (r *RefSignal) Name() string    { return r.def.Name }
func (r *RefSignal) Unit() string    { return r.def.Unit }
func (r *RefSignal) Def() Def        { return r.def }
func (r *RefSignal) Connected() bool { return r.c != nil }
func (r *RefSignal) Disconnect()     { r.c = nil }

// Value reads the bound cell. Reading an unbound slot panics with *UnboundError.
func (r *RefSignal) Value() float64 {
	if r.c == nil {
		panic(&UnboundError{Name: r.def.Name})
	}
	return r.c.value
}

// Key returns the identity of the bound cell.
func (r *RefSignal) Key() (Key, bool) {
	if r.c == nil {
		return Key{}, false
	}
	return Key{c: r.c}, true
}

func (r *RefSignal) String() string {
	if r.c == nil {
		return fmt.Sprintf("%s [%s] Referrer: Not Connected!", r.def.Name, r.def.Unit)
	}
	return fmt.Sprintf("%s: %v [%s] Referrer: %s[%s]",
		r.def.Name, r.c.value, r.def.Unit, r.c.def.Name, r.c.def.Unit)
}
