// Package signal provides the wiring layer models use to exchange scalar values.
//
// A [Signal] is a value cell owned by the model that writes it. A [RefSignal]
// is a named slot that, once bound, reads a cell owned elsewhere. Both are
// collected into ordered, name-unique buses:
//
//   - [Bus]: a model's output surface, a list of cells
//   - [RefBus]: a model's input surface, a list of reference slots
//
// Wiring happens once, at setup, through [RefBus.Connect]. Every name pair is
// resolved before anything is bound, so a failed call leaves the bus exactly as
// it was. Reading an unbound slot during a tick is a wiring bug and panics.
//
// # Example
//
//	out, _ := signal.NewBus(signal.D("u", "N"))
//	in, _ := signal.NewRefBus(signal.D("force", "N"))
//	if err := in.Connect(out, []string{"u"}, []string{"force"}); err != nil {
//		return err
//	}
//	out.At(0).Set(2.5)
//	in.At(0).Value() // 2.5
//
// # Thread Safety
//
// Cells are shared by pointer without locking. Buses must only be touched from
// the goroutine driving the simulation.
package signal
