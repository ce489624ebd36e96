// Package viz is the terminal live view of a flock.
//
// [Model] is a Bubble Tea program that renders particles on a braille
// [surface.Canvas], driving the flock from its own tick message so the
// terminal refresh is the frame clock.
//
// # Key Bindings
//
//	Space - Start/stop the animation
//	+/-   - Add or remove particles by hand
//	R     - Reset to the initial population
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
