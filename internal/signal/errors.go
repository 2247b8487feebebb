package signal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLengthMismatch indicates source and destination name lists of different length.
	ErrLengthMismatch = errors.New("signal: source and destination name lists differ in length")

	// ErrNotFound indicates a signal name missing from a bus.
	ErrNotFound = errors.New("signal: name not found")
)

// DuplicateNameError is returned when a name is pushed twice into one bus.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("signal: duplicate name %q", e.Name)
}

// ConnectError lists every slot a Connect call could not resolve. No binding
// from the failed call is retained.
type ConnectError struct {
	MissingSrc   []string
	MissingDst   []string
	AlreadyBound []string
	UnboundSrc   []string
}

func (e *ConnectError) empty() bool {
	return len(e.MissingSrc) == 0 && len(e.MissingDst) == 0 &&
		len(e.AlreadyBound) == 0 && len(e.UnboundSrc) == 0
}

func (e *ConnectError) Error() string {
	parts := make([]string, 0, 4)
	if len(e.MissingDst) > 0 {
		parts = append(parts, "dst not found: "+quoteAll(e.MissingDst))
	}
	if len(e.MissingSrc) > 0 {
		parts = append(parts, "src not found: "+quoteAll(e.MissingSrc))
	}
	if len(e.AlreadyBound) > 0 {
		parts = append(parts, "dst already bound: "+quoteAll(e.AlreadyBound))
	}
	if len(e.UnboundSrc) > 0 {
		parts = append(parts, "src not bound: "+quoteAll(e.UnboundSrc))
	}
	return "signal: connect failed (" + strings.Join(parts, "; ") + ")"
}

// UnboundError is the panic value raised when an unbound slot is read.
type UnboundError struct {
	Name string
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("signal: reference %q read before it was connected", e.Name)
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(q, ", ")
}
