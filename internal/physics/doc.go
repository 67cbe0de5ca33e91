// Package physics provides the tearing lattice: particles, distance
// constraints, pulses and the relaxation solver.
//
// The pieces are plain data plus the operations that mutate them:
//
//   - [ParticleField]: point masses with implicit (Verlet) velocity
//   - [ConstraintGraph]: structural and shear links stored by particle index
//   - [PulseField]: decaying radial force sources with Gaussian falloff
//   - [Solver]: Gauss-Seidel relaxation with fracture and a per-pass break cap
//   - [Weakener]: pointer driven weakening and forced tearing
//
// # Building a lattice
//
//	lat, err := physics.BuildLattice(physics.SpecFromParams(p), physics.MaterialFromParams(p))
//	if err != nil {
//	    // err unwraps to dynamo.ErrInvalidConfig
//	}
//
// Constraints are relaxed in array order, so trajectories depend on that order;
// only the direction of convergence is stable across orderings.
package physics
