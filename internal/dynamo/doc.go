// Package dynamo defines the model contract shared by every block in a
// simulation and the fixed-step clock that drives it.
//
//   - [Model]: lifecycle hooks plus optional input/output buses
//   - [DEModel]: a model that owns an ODE state vector
//   - [Clock]: start/end/step bookkeeping and the tick sequence
//   - [Time]: the read-only clock view handed to models
//   - [State]: numeric state vector
//
// # Example
//
//	src, _ := models.NewConstant([]signal.Def{signal.D("u", "V")}, []float64{1})
//	plant, _ := models.NewIntegrator(in, out, integrators.SolverRK4)
//	if err := dynamo.Connect(src, []string{"u"}, plant, []string{"in"}); err != nil {
//		return err
//	}
//
// # Thread Safety
//
// Models share value cells by pointer without locking. A wired set of models
// must be driven from a single goroutine.
package dynamo
