package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/san-kum/driftfield/internal/audio"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/surface"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func rowText(s tcell.Screen, row, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := s.GetContent(x, row)
		b.WriteRune(r)
	}
	return b.String()
}

func TestScreenDrawsCanvasAndStatus(t *testing.T) {
	s := newSimScreen(t, 40, 13)
	g, err := NewScreen(s, Config{Options: field.Options{Count: 30, Seed: 1}})
	if err != nil {
		t.Fatal(err)
	}

	if o := g.Animator().Options(); o.Width != 80 || o.Height != 48 {
		t.Fatalf("expected 80x48 sub-pixels, got %gx%g", o.Width, o.Height)
	}
	for i := 0; i < 3; i++ {
		g.Frame()
	}

	braille := 0
	for y := 0; y < 12; y++ {
		for x := 0; x < 40; x++ {
			r, _, _, _ := s.GetContent(x, y)
			if r > 0x2800 && r <= 0x28FF {
				braille++
			}
		}
	}
	if braille == 0 {
		t.Error("expected particles on screen")
	}
	status := rowText(s, 12, 40)
	if !strings.Contains(status, "drift") || !strings.Contains(status, "frame 3") {
		t.Errorf("unexpected status line %q", status)
	}
}

func TestScreenKeys(t *testing.T) {
	s := newSimScreen(t, 40, 13)
	rec := &audio.Recorder{}
	g, err := NewScreen(s, Config{Options: field.Options{Count: 5, Seed: 1}, Cues: rec})
	if err != nil {
		t.Fatal(err)
	}

	if !g.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) {
		t.Fatal("space must not quit")
	}
	if !g.Animator().Paused() {
		t.Error("space should pause")
	}
	g.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone))
	if g.Animator().Options().Theme != field.Light {
		t.Error("t should switch to the light theme")
	}
	if got := rec.Played(); len(got) != 2 || got[0] != "click" || got[1] != "theme" {
		t.Errorf("unexpected cues %v", got)
	}

	if g.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q should quit")
	}
	if g.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should quit")
	}
}

func TestScreenResize(t *testing.T) {
	s := newSimScreen(t, 40, 13)
	g, err := NewScreen(s, Config{Effect: "starfield", Options: field.Options{Seed: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Animator().Options().Count != field.DefaultStarCount {
		t.Errorf("expected the starfield default count, got %d", g.Animator().Options().Count)
	}

	s.SetSize(60, 21)
	g.HandleEvent(tcell.NewEventResize(60, 21))
	if o := g.Animator().Options(); o.Width != 120 || o.Height != 80 {
		t.Errorf("expected 120x80 after resize, got %gx%g", o.Width, o.Height)
	}
	if g.canvas.Width != 60 || g.canvas.Height != 20 {
		t.Errorf("canvas not rebuilt: %dx%d", g.canvas.Width, g.canvas.Height)
	}
}

func TestScreenRunQuitsOnKey(t *testing.T) {
	s := newSimScreen(t, 30, 10)
	g, err := NewScreen(s, Config{Options: field.Options{Count: 10, Seed: 1}, FPS: 200})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for g.Animator().Frames() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
	if g.Animator().Frames() < 2 {
		t.Error("expected frames while running")
	}
}

func TestScreenRunStopsOnCancel(t *testing.T) {
	s := newSimScreen(t, 30, 10)
	g, err := NewScreen(s, Config{Options: field.Options{Count: 10, Seed: 1}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestScreenUnknownEffect(t *testing.T) {
	s := newSimScreen(t, 30, 10)
	if _, err := NewScreen(s, Config{Effect: "fireworks"}); err == nil {
		t.Error("expected an error for an unknown effect")
	}
}

type finiCounter struct {
	tcell.SimulationScreen
	finis int
}

func (f *finiCounter) Fini() {
	f.finis++
	f.SimulationScreen.Fini()
}

func TestOpenRestoresTerminalOnError(t *testing.T) {
	s := &finiCounter{SimulationScreen: tcell.NewSimulationScreen("UTF-8")}
	if _, err := openScreen(s, Config{Effect: "fireworks"}); err == nil {
		t.Fatal("expected an error for an unknown effect")
	}
	if s.finis != 1 {
		t.Errorf("expected the screen to be finalized once, got %d", s.finis)
	}
}

func TestLiveRendererThrottles(t *testing.T) {
	var out bytes.Buffer
	r := NewLiveRenderer(&out, "drift", 30)
	base := time.Unix(100, 0)
	clock := base
	r.now = func() time.Time { return clock }

	c := surface.NewCanvas(4, 2)
	c.Set(0, 0)

	r.OnFrame(frame.Stats{Frame: 7, Stats: field.Stats{Particles: 3, Links: 1}})
	r.Present(c)
	first := out.String()
	if !strings.HasPrefix(first, clearScreen) {
		t.Error("each frame should start by clearing the screen")
	}
	if !strings.Contains(first, "\033[38;2;255;255;255m⠁") {
		t.Errorf("expected a white dot, got %q", first)
	}
	if !strings.Contains(first, "frame=7 particles=3 links=1") {
		t.Errorf("missing footer in %q", first)
	}

	clock = base.Add(time.Millisecond)
	r.Present(c)
	if out.Len() != len(first) {
		t.Error("frame inside the interval should be skipped")
	}

	clock = base.Add(50 * time.Millisecond)
	r.Present(c)
	if out.Len() <= len(first) {
		t.Error("frame after the interval should be written")
	}

	before := out.Len()
	r.Present(surface.NewRecorder(10, 10))
	if out.Len() != before {
		t.Error("non-canvas surfaces are ignored")
	}
}

func TestLiveRendererCursor(t *testing.T) {
	var out bytes.Buffer
	r := NewLiveRenderer(&out, "drift", 0)
	r.Start()
	r.Stop()
	if out.String() != hideCursor+showCursor {
		t.Errorf("unexpected cursor sequences %q", out.String())
	}
	if r.frameRate != 30 {
		t.Errorf("expected default frame rate 30, got %d", r.frameRate)
	}
}

func TestLiveRendererWithAnimator(t *testing.T) {
	var out bytes.Buffer
	r := NewLiveRenderer(&out, "starfield", 1000)
	tick := time.Unix(0, 0)
	r.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	m := frame.NewManual(time.Unix(0, 0), time.Millisecond)
	acquire := func(w, h int) (surface.Surface, error) { return surface.NewCanvas(w/2, h/4), nil }
	anim := frame.New(m, acquire, func(o field.Options) (field.Simulation, error) {
		return field.NewStarfield(o), nil
	}, field.Options{Width: 40, Height: 40, Count: 20, Seed: 2}, frame.WithPresenter(r.Present))
	anim.AddObserver(r)

	if err := anim.Start(); err != nil {
		t.Fatal(err)
	}
	m.AdvanceN(2)
	if strings.Count(out.String(), clearScreen) != 2 {
		t.Errorf("expected 2 frames written")
	}
	if !strings.Contains(out.String(), "frame=1") {
		t.Error("footer should carry the previous frame stats")
	}
}
