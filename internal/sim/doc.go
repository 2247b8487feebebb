// Package sim drives a set of wired models over a fixed-step clock.
//
// Models run in registration order on every tick, then recorders. No
// dependency analysis happens inside [System.Run]: a consumer registered
// before its producer reads the previous tick's value. [System.Validate]
// reports such ordering, cycles and unbound inputs without running anything.
package sim
