// Package platform answers, once at startup, what the host can do: draw to
// a terminal, how large the viewport is, and whether sound is wanted.
// Hosts receive the result by injection instead of probing on their own.
package platform

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

const (
	fallbackCols = 80
	fallbackRows = 24
)

type Platform struct {
	Terminal bool
	Width    int // columns
	Height   int // rows
	Audio    bool
}

// Detect inspects stdout. COLUMNS and LINES are honoured when the size
// cannot be read from the terminal. Audio is on unless DRIFTFIELD_MUTE is
// set or there is no terminal to interact with.
func Detect() Platform {
	fd := int(os.Stdout.Fd())
	p := Platform{Terminal: term.IsTerminal(fd)}

	if p.Terminal {
		if w, h, err := term.GetSize(fd); err == nil {
			p.Width, p.Height = w, h
		}
	}
	if p.Width <= 0 {
		p.Width = envInt("COLUMNS", fallbackCols)
	}
	if p.Height <= 0 {
		p.Height = envInt("LINES", fallbackRows)
	}

	p.Audio = p.Terminal && os.Getenv("DRIFTFIELD_MUTE") == ""
	return p
}

// Headless describes a host with no terminal and no sound, such as the
// HTTP server or a test.
func Headless(w, h int) Platform {
	return Platform{Width: w, Height: h}
}

// CanDraw reports whether an interactive surface can be acquired.
func (p Platform) CanDraw() bool {
	return p.Terminal && p.Width > 0 && p.Height > 0
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
