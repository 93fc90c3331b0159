package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/surface"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	resetColor  = "\033[0m"
)

// LiveRenderer prints canvas frames to a plain ANSI terminal, for hosts
// where a full-screen program is not wanted.
type LiveRenderer struct {
	out       io.Writer
	name      string
	frameRate int
	lastFrame time.Time
	now       func() time.Time
	frame     frame.Stats
	b         strings.Builder
}

func NewLiveRenderer(out io.Writer, name string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		name:      name,
		frameRate: frameRate,
		now:       time.Now,
	}
}

// OnFrame keeps the stats shown in the footer.
func (r *LiveRenderer) OnFrame(st frame.Stats) { r.frame = st }

// Present writes the canvas when at least one frame interval has passed
// since the last write. Other surfaces are ignored.
func (r *LiveRenderer) Present(s surface.Surface) {
	c, ok := s.(*surface.Canvas)
	if !ok {
		return
	}
	now := r.now()
	if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now
	r.render(c)
}

func (r *LiveRenderer) render(c *surface.Canvas) {
	b := &r.b
	b.Reset()
	b.WriteString(clearScreen)
	for row := 0; row < c.Height; row++ {
		var current string
		for col := 0; col < c.Width; col++ {
			code := ""
			if tint, ok := c.Tint(col, row); ok {
				code = fmt.Sprintf("\033[38;2;%d;%d;%dm", tint.R, tint.G, tint.B)
			}
			if code != current {
				if code == "" {
					b.WriteString(resetColor)
				} else {
					b.WriteString(code)
				}
				current = code
			}
			b.WriteRune(c.Cell(col, row))
		}
		if current != "" {
			b.WriteString(resetColor)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(b, "  %s  frame=%d particles=%d links=%d\n", r.name, r.frame.Frame, r.frame.Particles, r.frame.Links)
	io.WriteString(r.out, b.String())
}

func (r *LiveRenderer) Start() { io.WriteString(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { io.WriteString(r.out, showCursor) }
