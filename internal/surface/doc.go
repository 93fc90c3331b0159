// Package surface provides the drawing targets particle simulations render to.
//
//   - [Surface]: the minimal paint interface (clear, fade, circle, line)
//   - [Recorder]: keeps the draw calls of a frame; used for SVG export and tests
//   - [Raster]: RGBA image drawn through a software HTML5-style canvas
//   - [Canvas]: Braille 2x4 sub-pixel grid for terminals
//
// Frames captured from a [Raster] can be written as an animated GIF with
// [EncodeGIF], and a [Recorder] frame as SVG with [WriteSVG].
package surface
