// Package viz renders a running simulation in the terminal.
//
// A [Plotter] is attached to the engine as a snapshot sink and keeps a
// bounded trail of positions per body. [Model] is a Bubble Tea program that
// steps the engine on every tick and draws the trails on a braille [Canvas]
// through a rotatable orthographic [Camera], next to a stats panel and an
// energy chart.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	+ / - - Zoom in/out
//	x y z - Rotate the view (shift reverses)
//	f     - Toggle auto-fit
//	> / < - More/fewer steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
