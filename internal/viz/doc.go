// Package viz renders sampled solutions in the terminal.
//
//   - [Plot]: asciigraph line chart of one or more state components
//   - [Canvas]: braille pixel canvas used for phase portraits
//   - [Watch]: Bubble Tea program that samples a solution progressively
//
// # Key Bindings
//
//	Space - Pause/Resume sampling
//	Tab   - Cycle the plotted component
//	T     - Cycle color themes
//	Q     - Quit
package viz
