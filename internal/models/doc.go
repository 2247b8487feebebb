// Package models provides ready-made blocks built on the dynamo contract.
//
// Sources:
//   - [Constant], [Step], [Ramp], [Wave]
//
// Linear DE blocks:
//   - [StateSpace]: dx/dt = Ax + Bu, y = Cx + Du
//   - [TransferFunc]: SISO num(s)/den(s), realised as a StateSpace
//   - [Integrator]: dx/dt = u
//
// Control and mechanics:
//   - [PID]: saturated PID on target - current
//   - [Mass], [Spring], [Damper], [SpringDamper], [Pendulum]
//
// Constructors validate bus shapes and parameters and return ErrShape or
// ErrParam. NextState never fails.
package models
