// Package field implements the particle field simulator.
//
// Two variants share one contract, [Simulation]:
//
//   - [Field]: 2D drifting particles that bounce off the viewport edges and
//     are joined by fading lines when closer than the link distance
//   - [Starfield]: pseudo-3D points flying toward the viewer, recycled to
//     the far plane, drawn with perspective projection over a fading trail
//
// Both are seedable. Production use leaves [Options.Seed] at zero, which
// seeds from the clock.
//
// # Example
//
//	f := field.NewField(field.Options{Width: 800, Height: 600, Theme: field.Dark})
//	rec := surface.NewRecorder(800, 600)
//	f.Step()
//	f.Draw(rec)
//
// # Thread Safety
//
// Simulations are NOT thread-safe. A single frame chain owns each instance;
// see package frame.
package field
