// Package viz is the interactive terminal host for the particle effects.
//
// The package implements a TUI using the Bubble Tea framework:
//
//   - [App]: effect picker that opens the live view
//   - [Model]: live view drawing an effect onto a Braille canvas with a
//     stats panel beside it
//   - Dark and light themes that follow the particle palettes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the effect
//	T     - Toggle dark/light theme
//	E     - Next effect
//	C     - Cycle connection search (drift only)
//	+/-   - More or fewer particles
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// Recordings are saved to the configured GIF path when G is pressed a
// second time.
package viz
