// Package dynamo provides the shared primitives of the tearing lattice
// simulator.
//
// The package defines the types that cross package boundaries:
//
//   - [Params]: the named numeric parameters a simulation is built from
//   - [Snapshot]: read-only copy of particle positions and live links
//   - [Stats]: per-frame summary used by readouts and run storage
//   - [Metric]: accumulates a scalar over observed snapshots
//   - [Result]: output of a headless scenario run
//
// # Example
//
//	p := dynamo.DefaultParams()
//	p.Cols, p.Rows = 24, 16
//	if err := p.Validate(); err != nil {
//	    // err unwraps to ErrInvalidConfig
//	}
//	s, _ := sim.New(p, 42)
//	s.Tick(16.7)
//	snap := s.Snapshot()
//
// # Thread Safety
//
// Snapshots are copies and may be read from any goroutine. Params are plain
// values. Nothing in this package mutates simulation state.
package dynamo
