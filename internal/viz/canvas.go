package viz

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/driftfield/internal/surface"
)

// renderCanvas writes the Braille rows of c, coloring runs of cells that
// share a tint with a single style.
func renderCanvas(c *surface.Canvas) string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		var run strings.Builder
		var runTint string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runTint == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runTint)).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.Width; col++ {
			tint := ""
			if t, ok := c.Tint(col, row); ok {
				tint = fmt.Sprintf("#%02x%02x%02x", t.R, t.G, t.B)
			}
			if tint != runTint {
				flush()
				runTint = tint
			}
			run.WriteRune(c.Cell(col, row))
		}
		flush()
		if row < c.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const (
	cellW = 8
	cellH = 16
)

// captureCanvas rasterizes the lit Braille dots of c, each dot a block of
// the cell's tint, for GIF recording.
func captureCanvas(c *surface.Canvas, bg color.NRGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width*cellW, c.Height*cellH))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, 255
	}

	dotW, dotH := cellW/2, cellH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			tint, ok := c.Tint(col, row)
			if !ok {
				continue
			}
			fg := color.RGBA{R: tint.R, G: tint.G, B: tint.B, A: 255}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if !c.Lit(col*2+dx, row*4+dy) {
						continue
					}
					baseX, baseY := col*cellW+dx*dotW, row*cellH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetRGBA(baseX+px, baseY+py, fg)
						}
					}
				}
			}
		}
	}
	return img
}
