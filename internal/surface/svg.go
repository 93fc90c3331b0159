package surface

import (
	"fmt"
	"image/color"
	"io"
	"strings"
)

// RecorderToSVG renders the ops of a recorded frame as an SVG document.
// A clear op restarts the document body; fade ops become translucent
// background rects.
func RecorderToSVG(rec *Recorder, background color.NRGBA) string {
	if rec == nil {
		return ""
	}

	var sb strings.Builder

	// SVG header
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, rec.W, rec.H, rec.W, rec.H, hexRGB(background)))

	start := 0
	for i, op := range rec.Ops {
		if op.Kind == OpClear {
			start = i + 1
		}
	}

	for _, op := range rec.Ops[start:] {
		switch op.Kind {
		case OpFade:
			sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s" fill-opacity="%.3f"/>
`, hexRGB(background), op.Alpha))
		case OpCircle:
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, op.X0, op.Y0, op.R, hexRGB(op.Color), float64(op.Color.A)/255))
		case OpLine:
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-opacity="%.3f" stroke-width="%.2f"/>
`, op.X0, op.Y0, op.X1, op.Y1, hexRGB(op.Color), float64(op.Color.A)/255, op.Width))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteSVG writes RecorderToSVG output to w.
func WriteSVG(w io.Writer, rec *Recorder, background color.NRGBA) error {
	_, err := io.WriteString(w, RecorderToSVG(rec, background))
	return err
}

func hexRGB(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
