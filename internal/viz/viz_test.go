package viz

import (
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/driftfield/internal/audio"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/surface"
)

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, cues audio.Cues) Model {
	t.Helper()
	m, err := NewModel(Config{
		Effect:  "drift",
		Options: field.Options{Count: 20, Seed: 1},
		Cues:    cues,
		GIFPath: filepath.Join(t.TempDir(), "out.gif"),
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTicksDraw(t *testing.T) {
	m := newTestModel(t, nil)
	if m.Init() == nil {
		t.Fatal("Init should schedule the first tick")
	}
	for i := 0; i < 3; i++ {
		next, cmd := m.Update(TickMsg(time.Now()))
		m = next.(Model)
		if cmd == nil {
			t.Fatal("tick must schedule the next tick")
		}
	}
	if m.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", m.Frames())
	}
	lit := 0
	c := m.screen.canvas
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if c.Cell(col, row) != '\u2800' {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("canvas should show particles after a few ticks")
	}
	if !strings.Contains(m.View(), "RUNNING") {
		t.Error("view should report the running state")
	}
}

func TestModelFailedSwitchKeepsAnimating(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(m, TickMsg(time.Now()))
	canvas := m.screen.canvas

	bad := m.Options()
	bad.Theme = "neon"
	if err := m.build("starfield", bad); err == nil {
		t.Fatal("expected an error for an unknown theme")
	}
	if m.Effect() != "drift" {
		t.Errorf("effect should be unchanged, got %s", m.Effect())
	}
	if m.screen.canvas != canvas {
		t.Error("failed switch replaced the visible canvas")
	}

	m = update(m, TickMsg(time.Now()))
	if m.Frames() != 2 {
		t.Errorf("old animation should keep drawing, frames=%d", m.Frames())
	}
}

func TestModelLinkDistanceScaled(t *testing.T) {
	m := newTestModel(t, nil)
	if got := m.Options().LinkDistance; got != field.DefaultLinkDistance*surface.CanvasScale {
		t.Errorf("expected scaled link distance, got %g", got)
	}
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	o := m.Options()
	wantCols, wantRows := 100-panelWidth-6, 28
	if o.Width != float64(wantCols*2) || o.Height != float64(wantRows*4) {
		t.Errorf("expected %dx%d sub-pixels, got %gx%g", wantCols*2, wantRows*4, o.Width, o.Height)
	}
	if m.screen.canvas.Width != wantCols || m.screen.canvas.Height != wantRows {
		t.Errorf("canvas not resized: %dx%d", m.screen.canvas.Width, m.screen.canvas.Height)
	}
}

func TestModelTinyWindow(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(m, tea.WindowSizeMsg{Width: 1, Height: 1})
	if m.screen.canvas.Width < 10 || m.screen.canvas.Height < 4 {
		t.Errorf("canvas should keep a minimum size, got %dx%d", m.screen.canvas.Width, m.screen.canvas.Height)
	}
}

func TestModelKeys(t *testing.T) {
	rec := &audio.Recorder{}
	m := newTestModel(t, rec)

	m = update(m, key(" "))
	if !m.Paused() {
		t.Error("space should pause")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should report the pause")
	}

	m = update(m, key("t"))
	if m.Options().Theme != field.Light {
		t.Errorf("expected light theme, got %s", m.Options().Theme)
	}

	m = update(m, key("+"))
	if m.Options().Count != 30 {
		t.Errorf("expected 30 particles, got %d", m.Options().Count)
	}
	m = update(m, key("-"))
	m = update(m, key("-"))
	m = update(m, key("-"))
	m = update(m, key("-"))
	if m.Options().Count != 0 {
		t.Errorf("count must not go negative, got %d", m.Options().Count)
	}

	m = update(m, key("c"))
	if m.Options().Connections != field.Pairwise {
		t.Errorf("expected pairwise search, got %s", m.Options().Connections)
	}

	m = update(m, key("?"))
	if !m.showHelp {
		t.Error("? should open the help overlay")
	}

	want := []string{"click", "theme", "hover", "hover", "hover", "hover", "hover", "hover", "nav"}
	if got := rec.Played(); !reflect.DeepEqual(got, want) {
		t.Errorf("cues = %v, want %v", got, want)
	}
}

func TestModelNextEffect(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(m, key("e"))
	if m.Effect() != "starfield" {
		t.Fatalf("expected starfield, got %s", m.Effect())
	}
	if m.Options().Count != field.DefaultStarCount {
		t.Errorf("switching effect should use its default count, got %d", m.Options().Count)
	}
	m = update(m, TickMsg(time.Now()))
	if m.Frames() != 1 {
		t.Errorf("new effect should draw on the next tick, frames=%d", m.Frames())
	}
	if !strings.Contains(m.View(), "Recycled") {
		t.Error("starfield panel should show recycled stars")
	}

	m = update(m, key("c"))
	if m.Options().Connections != field.Auto {
		t.Error("connection search only applies to drift")
	}

	m = update(m, key("e"))
	if m.Effect() != "drift" {
		t.Errorf("effects should wrap around, got %s", m.Effect())
	}
}

func TestModelRecordGIF(t *testing.T) {
	rec := &audio.Recorder{}
	m := newTestModel(t, rec)

	m = update(m, key("g"))
	for i := 0; i < 3; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	if on, n := m.Recording(); !on || n != 3 {
		t.Fatalf("expected 3 recorded frames, got on=%v n=%d", on, n)
	}
	if !strings.Contains(m.View(), "REC") {
		t.Error("view should show the recording state")
	}

	m = update(m, key("g"))
	if on, _ := m.Recording(); on {
		t.Error("second g should stop recording")
	}
	info, err := os.Stat(m.gifPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("gif is empty")
	}
	if !strings.Contains(m.Notice(), "3 frames") {
		t.Errorf("unexpected notice %q", m.Notice())
	}
	if got := rec.Played(); len(got) != 1 || got[0] != "success" {
		t.Errorf("expected success cue, got %v", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, nil)
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected a quit message")
	}
	if next.(Model).anim.Running() {
		t.Error("animator should stop on quit")
	}
}

func TestNewModelUnknownEffect(t *testing.T) {
	if _, err := NewModel(Config{Effect: "fireworks"}); err == nil {
		t.Error("expected an error for an unknown effect")
	}
}

func TestRenderCanvas(t *testing.T) {
	c := surface.NewCanvas(3, 2)
	c.Set(0, 0)
	c.Set(5, 7)

	out := renderCanvas(c)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if !strings.ContainsRune(lines[0], '⠁') {
		t.Errorf("top-left dot missing in %q", lines[0])
	}
	if !strings.ContainsRune(lines[1], '⢀') {
		t.Errorf("bottom-right dot missing in %q", lines[1])
	}
	if renderCanvas(nil) != "" {
		t.Error("nil canvas renders nothing")
	}
}

func TestCaptureCanvas(t *testing.T) {
	c := surface.NewCanvas(2, 1)
	c.FillCircle(0.5, 0.5, 0.1, color.NRGBA{R: 200, G: 10, B: 20, A: 255})
	bg := color.NRGBA{R: 1, G: 2, B: 3, A: 255}

	img := captureCanvas(c, bg)
	if b := img.Bounds(); b.Dx() != 2*cellW || b.Dy() != cellH {
		t.Fatalf("unexpected bounds %v", b)
	}
	if got := img.RGBAAt(1, 1); got.R != 200 || got.G != 10 {
		t.Errorf("lit dot should carry the tint, got %+v", got)
	}
	if got := img.RGBAAt(cellW+1, 1); got.R != 1 || got.B != 3 {
		t.Errorf("empty cell should be background, got %+v", got)
	}
}

func TestGradientText(t *testing.T) {
	if GradientText("", ThemeDark.Primary, ThemeDark.Secondary) != "" {
		t.Error("empty text stays empty")
	}
	if got := GradientText("abc", "nope", ThemeDark.Secondary); got != "abc" {
		t.Errorf("bad colors should return the text, got %q", got)
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme(field.Light).Name != field.Light {
		t.Error("expected light panel theme")
	}
	if GetTheme("sepia").Name != field.Dark {
		t.Error("unknown themes fall back to dark")
	}
}

func TestAppPicksEffectAndPreset(t *testing.T) {
	base := config.DefaultConfig()
	base.Seed = 3
	app := NewApp(base, Config{GIFPath: filepath.Join(t.TempDir(), "x.gif")})

	var m tea.Model = *app
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(key("j"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	a := m.(App)
	if a.chosen != "starfield" || a.state != statePreset {
		t.Fatalf("expected starfield preset menu, got %q state %d", a.chosen, a.state)
	}
	if !strings.Contains(a.View(), "warp") {
		t.Error("preset menu should list the starfield presets")
	}

	// default, cruise, sparse, warp
	for i := 0; i < 3; i++ {
		m, _ = m.Update(key("j"))
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("starting the live view should schedule a tick")
	}
	live, ok := m.(App).Live()
	if !ok {
		t.Fatal("expected the live view")
	}
	if live.Effect() != "starfield" || live.Options().Count != 300 {
		t.Errorf("warp preset not applied: %s %d", live.Effect(), live.Options().Count)
	}
	if live.Options().Width != float64((120-panelWidth-6)*2) {
		t.Errorf("live view should use the window size, got width %g", live.Options().Width)
	}

	m, _ = m.Update(TickMsg(time.Now()))
	live, _ = m.(App).Live()
	if live.Frames() != 1 {
		t.Errorf("ticks should reach the live view, frames=%d", live.Frames())
	}
}

func TestAppBackAndQuit(t *testing.T) {
	var m tea.Model = *NewApp(nil, Config{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).state != stateMenu {
		t.Error("esc should return to the effect menu")
	}
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit from the menu")
	}
}
