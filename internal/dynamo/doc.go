// Package dynamo provides the core primitives of the flock kinematics engine.
//
// The package defines the fixed-capacity particle storage and the parameters
// shared by every integrator:
//
//   - [Store]: fixed-capacity float32 position/velocity arrays with a LIFO population
//   - [Profile]: cyclic acceleration samples read one per sub-step
//   - [Params]: sub-step count, time scale and bounce behaviour
//   - [Integrator]: advances every live particle by one frame
//
// # Example
//
//	st, _ := dynamo.NewStore(1000, 1000)
//	st.Add(0, 5)
//	integ := integrators.NewScalar(dynamo.DefaultParams())
//	integ.Advance(st, 16.6)
//	y := st.PositionOf(0)
//
// # Thread Safety
//
// Store instances are NOT thread-safe. A flock is driven by exactly one tick
// at a time; see package sim for the runner that enforces this.
package dynamo
