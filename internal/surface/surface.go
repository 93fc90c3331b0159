package surface

import (
	"errors"
	"image/color"
)

// ErrNoSurface is returned when a host cannot acquire a drawing target.
// Callers treat it as "render nothing", never as a user-facing failure.
var ErrNoSurface = errors.New("surface: drawing surface unavailable")

// Surface is a raster target a simulation paints onto once per frame.
// Coordinates are in surface units; (0,0) is the top-left corner.
type Surface interface {
	Size() (w, h int)
	Clear()
	// Fade composites the background over the previous frame at the given
	// alpha instead of erasing it, leaving motion trails.
	Fade(alpha float64)
	FillCircle(x, y, r float64, c color.NRGBA)
	Line(x0, y0, x1, y1, width float64, c color.NRGBA)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
