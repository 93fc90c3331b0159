package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/san-kum/driftfield/internal/audio"
	"github.com/san-kum/driftfield/internal/effect"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/surface"
)

// Config selects the effect a terminal host runs.
type Config struct {
	Registry *effect.Registry
	Effect   string
	Options  field.Options
	Cues     audio.Cues
	Logger   *slog.Logger
	FPS      int
}

func (c *Config) defaults() {
	if c.Registry == nil {
		c.Registry = effect.NewRegistry()
	}
	if c.Effect == "" {
		c.Effect = "drift"
	}
	if c.Cues == nil {
		c.Cues = audio.Nop{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.FPS <= 0 {
		c.FPS = 60
	}
	if c.Options.Count == 0 {
		c.Options.Count = c.Registry.DefaultCount(c.Effect)
	}
	if c.Options.LinkDistance <= 0 {
		c.Options.LinkDistance = field.DefaultLinkDistance
	}
	c.Options.LinkDistance *= surface.CanvasScale
}

// Screen runs an effect full-screen on a tcell screen. The bottom row is a
// status line; everything above it is canvas.
type Screen struct {
	screen tcell.Screen
	cfg    Config
	clock  *frame.Manual
	anim   *frame.Animator
	canvas *surface.Canvas

	width, height int
}

// Open initializes the terminal and returns a host for cfg.
func Open(cfg Config) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return openScreen(s, cfg)
}

// openScreen initializes s and restores the terminal if the effect fails
// to start.
func openScreen(s tcell.Screen, cfg Config) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	g, err := NewScreen(s, cfg)
	if err != nil {
		s.Fini()
		return nil, err
	}
	return g, nil
}

// NewScreen wraps an initialized tcell screen and starts the effect.
func NewScreen(s tcell.Screen, cfg Config) (*Screen, error) {
	cfg.defaults()
	factory, err := cfg.Registry.Factory(cfg.Effect)
	if err != nil {
		return nil, err
	}

	g := &Screen{
		screen: s,
		cfg:    cfg,
		clock:  frame.NewManual(time.Now(), time.Second/time.Duration(cfg.FPS)),
	}
	g.width, g.height = s.Size()

	opts := cfg.Options
	opts.Width, opts.Height = float64(g.width*2), float64((g.height-1)*4)
	g.anim = frame.New(g.clock, g.acquire, factory, opts,
		frame.WithPresenter(g.blit),
		frame.WithLogger(cfg.Logger))
	g.anim.AddObserver(frame.ObserverFunc(g.show))
	if err := g.anim.Start(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Screen) acquire(w, h int) (surface.Surface, error) {
	if w < 2 || h < 4 {
		return nil, surface.ErrNoSurface
	}
	g.canvas = surface.NewCanvas(w/2, h/4)
	return g.canvas, nil
}

func (g *Screen) Animator() *frame.Animator { return g.anim }

// Frame advances the animation by one paint.
func (g *Screen) Frame() { g.clock.Advance() }

// blit copies the canvas into the cell buffer. It runs inside the frame,
// so it must not call back into the animator.
func (g *Screen) blit(surface.Surface) {
	g.screen.Clear()
	c := g.canvas
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r := c.Cell(col, row)
			if r == 0x2800 {
				continue
			}
			style := tcell.StyleDefault
			if tint, ok := c.Tint(col, row); ok {
				style = style.Foreground(tcell.NewRGBColor(int32(tint.R), int32(tint.G), int32(tint.B)))
			}
			g.screen.SetContent(col, row, r, nil, style)
		}
	}
}

// show writes the status line for a finished frame and flushes.
func (g *Screen) show(st frame.Stats) {
	state := "running"
	if g.anim.Paused() {
		state = "paused"
	}
	line := fmt.Sprintf(" %s  %s  frame %d  particles %d  links %d   space:pause t:theme q:quit",
		g.cfg.Effect, state, st.Frame, st.Particles, st.Links)
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, r := range []rune(line) {
		if i >= g.width {
			break
		}
		g.screen.SetContent(i, g.height-1, r, nil, style)
	}
	g.screen.Show()
}

// HandleEvent applies one terminal event and reports whether the loop
// should keep going.
func (g *Screen) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			g.anim.SetPaused(!g.anim.Paused())
			g.cfg.Cues.Click()
		case 't':
			if err := g.anim.SetTheme(g.anim.Options().Theme.Toggle()); err != nil {
				g.cfg.Logger.Error("theme switch failed", "err", err)
			}
			g.cfg.Cues.Theme()
		}

	case *tcell.EventResize:
		g.handleResize()
	}
	return true
}

func (g *Screen) handleResize() {
	w, h := g.screen.Size()
	if w == g.width && h == g.height {
		return
	}
	g.width, g.height = w, h
	g.screen.Sync()
	if err := g.anim.Resize(w*2, (h-1)*4); err != nil {
		g.cfg.Logger.Error("resize failed", "err", err)
	}
}

// Run polls terminal events and paints at the configured rate until ctx is
// done or the user quits.
func (g *Screen) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(g.cfg.FPS))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !g.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			g.Frame()
		}
	}
}

// Close stops the effect and restores the terminal.
func (g *Screen) Close() {
	g.anim.Stop()
	g.screen.Fini()
}
