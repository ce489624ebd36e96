// Package compute selects the data-parallel integrator backend.
//
// Backends, in order of preference:
//
//   - blas: gonum blas32 vector kernels (assembly on amd64)
//   - lanes: portable four-wide lane groups
//   - scalar: reference path, always available
//
// The choice is made once from a CPU capability probe:
//
//	caps := compute.Probe()
//	integ := compute.AutoSelect(params, caps)
//
// Every backend agrees with the scalar path within 1e-4 relative tolerance,
// so selection only affects speed.
package compute
