// Package viz provides the live terminal viewer for a tearing lattice.
//
// The viewer is a Bubble Tea program:
//
//   - [Model]: steps a sim.Simulation from tick messages and draws it
//   - [Canvas]: Braille-based pixel canvas, links coloured by strain
//   - Theme selection with 4 built-in color schemes
//
// # Controls
//
//	Drag  - Pulse and tear under the mouse
//	Space - Pause/Resume simulation
//	R     - Rebuild the lattice
//	P     - Toggle pulses (tear only)
//	T     - Cycle color themes
//	Q     - Quit
package viz
