package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/tfriedel6/canvas"
	"github.com/tfriedel6/canvas/backend/softwarebackend"
)

// Raster paints onto an RGBA image through a software 2D canvas.
type Raster struct {
	backend    *softwarebackend.SoftwareBackend
	cv         *canvas.Canvas
	w, h       int
	Background color.NRGBA
}

func NewRaster(w, h int) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrNoSurface
	}
	backend := softwarebackend.New(w, h)
	r := &Raster{
		backend:    backend,
		cv:         canvas.New(backend),
		w:          w,
		h:          h,
		Background: color.NRGBA{A: 255},
	}
	r.Clear()
	return r, nil
}

func (r *Raster) Size() (int, int) { return r.w, r.h }

// Image returns the live backing image.
func (r *Raster) Image() *image.RGBA { return r.backend.Image }

// Snapshot returns a copy of the current frame.
func (r *Raster) Snapshot() *image.RGBA {
	src := r.backend.Image
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

func (r *Raster) Clear() {
	r.cv.ClearRect(0, 0, float64(r.w), float64(r.h))
	r.cv.SetGlobalAlpha(1)
	r.cv.SetFillStyle(r.Background)
	r.cv.FillRect(0, 0, float64(r.w), float64(r.h))
}

func (r *Raster) Fade(alpha float64) {
	a := clamp01(alpha)
	if a == 0 {
		return
	}
	r.cv.SetGlobalAlpha(a)
	r.cv.SetFillStyle(r.Background)
	r.cv.FillRect(0, 0, float64(r.w), float64(r.h))
	r.cv.SetGlobalAlpha(1)
}

func (r *Raster) FillCircle(cx, cy, rad float64, c color.NRGBA) {
	if rad <= 0 || c.A == 0 {
		return
	}
	if rad < 0.5 {
		// sub-pixel dot: spread the area over one pixel
		r.cv.SetGlobalAlpha(clamp01(math.Pi * rad * rad))
		r.cv.SetFillStyle(c)
		r.cv.FillRect(math.Floor(cx), math.Floor(cy), 1, 1)
		r.cv.SetGlobalAlpha(1)
		return
	}
	r.cv.SetFillStyle(c)
	r.cv.BeginPath()
	r.cv.Arc(cx, cy, rad, 0, 2*math.Pi, false)
	r.cv.Fill()
}

// Line strokes a segment. Widths below one pixel are drawn one pixel wide
// with proportionally lower alpha.
func (r *Raster) Line(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	alpha := 1.0
	switch {
	case width <= 0:
		width = 1
	case width < 1:
		alpha, width = width, 1
	}
	r.cv.SetGlobalAlpha(alpha)
	r.cv.SetStrokeStyle(c)
	r.cv.SetLineWidth(width)
	r.cv.BeginPath()
	r.cv.MoveTo(x0, y0)
	r.cv.LineTo(x1, y1)
	r.cv.Stroke()
	r.cv.SetGlobalAlpha(1)
}
