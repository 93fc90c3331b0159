package surface

import (
	"image/color"
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// DefaultThreshold is the dot intensity below which a Braille dot is off.
const DefaultThreshold = 0.05

// CanvasScale maps lengths given in browser pixels onto Braille
// sub-pixels. A terminal canvas is a few hundred sub-pixels wide, so the
// browser link radius of 100 would join almost every pair.
const CanvasScale = 0.24

// Canvas is a Braille terminal surface. Width and Height are in cells; the
// drawable area is (Width*2) x (Height*4) sub-pixels. Each sub-pixel keeps
// an intensity so that Fade leaves decaying trails.
type Canvas struct {
	Width, Height int
	Threshold     float64

	level []float64
	tint  []color.NRGBA // per cell, strongest color painted into it
	peak  []float64     // per cell, alpha of tint
}

func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Canvas{
		Width:     w,
		Height:    h,
		Threshold: DefaultThreshold,
		level:     make([]float64, w*2*h*4),
		tint:      make([]color.NRGBA, w*h),
		peak:      make([]float64, w*h),
	}
}

// Size reports the sub-pixel dimensions.
func (c *Canvas) Size() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights a sub-pixel at full intensity.
func (c *Canvas) Set(x, y int) { c.paint(x, y, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255}) }

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if i, ok := c.index(x, y); ok {
		c.level[i] = 0
	}
}

// Lit reports whether the sub-pixel at (x, y) is drawn.
func (c *Canvas) Lit(x, y int) bool {
	i, ok := c.index(x, y)
	return ok && c.level[i] >= c.Threshold
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.level {
		c.level[i] = 0
	}
	for i := range c.peak {
		c.peak[i] = 0
		c.tint[i] = color.NRGBA{}
	}
}

func (c *Canvas) Fade(alpha float64) {
	keep := 1 - clamp01(alpha)
	for i := range c.level {
		c.level[i] *= keep
	}
	for i := range c.peak {
		c.peak[i] *= keep
	}
}

func (c *Canvas) FillCircle(cx, cy, r float64, col color.NRGBA) {
	a := float64(col.A) / 255
	if r < 0.5 {
		c.paint(int(math.Floor(cx)), int(math.Floor(cy)), a, col)
		return
	}
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	r2 := r * r
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				c.paint(x, y, a, col)
			}
		}
	}
}

func (c *Canvas) Line(x0, y0, x1, y1, _ float64, col color.NRGBA) {
	c.drawLine(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)), float64(col.A)/255, col)
}

// DrawLine draws a full-intensity line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.drawLine(x0, y0, x1, y1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
}

func (c *Canvas) drawLine(x0, y0, x1, y1 int, a float64, col color.NRGBA) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.paint(x0, y0, a, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Rows returns the Braille runes for each cell row.
func (c *Canvas) Rows() [][]rune {
	rows := make([][]rune, c.Height)
	for row := 0; row < c.Height; row++ {
		rows[row] = make([]rune, c.Width)
		for col := 0; col < c.Width; col++ {
			rows[row][col] = c.Cell(col, row)
		}
	}
	return rows
}

// Cell returns the Braille rune for one character cell.
func (c *Canvas) Cell(col, row int) rune {
	r := rune(brailleBlank)
	for dy := 0; dy < 4; dy++ {
		for dx := 0; dx < 2; dx++ {
			if c.Lit(col*2+dx, row*4+dy) {
				r |= rune(pixelMap[dy][dx])
			}
		}
	}
	return r
}

// Tint returns the dominant color painted into a cell and whether any
// color is present.
func (c *Canvas) Tint(col, row int) (color.NRGBA, bool) {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return color.NRGBA{}, false
	}
	i := row*c.Width + col
	return c.tint[i], c.peak[i] >= c.Threshold
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Rows() {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func (c *Canvas) index(x, y int) (int, bool) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return 0, false
	}
	w, h := c.Size()
	if x >= w || y >= h {
		return 0, false
	}
	return y*w + x, true
}

func (c *Canvas) paint(x, y int, a float64, col color.NRGBA) {
	i, ok := c.index(x, y)
	if !ok || a <= 0 {
		return
	}
	if a > c.level[i] {
		c.level[i] = a
	}
	cell := (y/4)*c.Width + x/2
	if a >= c.peak[cell] {
		c.peak[cell] = a
		c.tint[cell] = col
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
