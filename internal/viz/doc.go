// Package viz renders a run in the terminal as it is integrated.
//
// [Model] is a Bubble Tea program that advances a [sim.Stepper] on every tick and
// draws the ensemble-mean storage with asciigraph, the fill of each member, and the
// solver work of the latest day.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Step one day while paused
//	+/-   - Days per tick
//	T     - Cycle colour themes
//	?     - Toggle help
//	Q     - Quit
package viz
