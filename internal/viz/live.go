package viz

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/driftfield/internal/audio"
	"github.com/san-kum/driftfield/internal/effect"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/surface"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	historyCapacity = 120
	countStep       = 10
	maxGIFFrames    = 600

	DefaultGIFPath = "driftfield.gif"
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Config is everything the live view needs to start.
type Config struct {
	Registry *effect.Registry
	Effect   string
	Options  field.Options
	Cues     audio.Cues
	GIFPath  string
	Logger   *slog.Logger
}

// screen owns the canvas the animator draws into. The model is copied by
// value on every update, so the canvas lives behind a pointer.
type screen struct {
	canvas *surface.Canvas
}

func (s *screen) acquire(w, h int) (surface.Surface, error) {
	cols, rows := w/2, h/4
	if cols <= 0 || rows <= 0 {
		return nil, surface.ErrNoSurface
	}
	s.canvas = surface.NewCanvas(cols, rows)
	return s.canvas, nil
}

// Model is the live view of one effect.
type Model struct {
	reg     *effect.Registry
	effect  string
	cues    audio.Cues
	log     *slog.Logger
	gifPath string

	clock   *frame.Manual
	anim    *frame.Animator
	screen  *screen
	metrics *metrics.Set
	history *metrics.Series

	cols, rows int
	showHelp   bool
	recording  bool
	frames     []*image.RGBA
	notice     string
	styles     styles
}

// NewModel builds the live view and starts its animator. Frames advance on
// each TickMsg.
func NewModel(cfg Config) (Model, error) {
	if cfg.Registry == nil {
		cfg.Registry = effect.NewRegistry()
	}
	if cfg.Effect == "" {
		cfg.Effect = "drift"
	}
	if cfg.Cues == nil {
		cfg.Cues = audio.Nop{}
	}
	if cfg.GIFPath == "" {
		cfg.GIFPath = DefaultGIFPath
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	opts := cfg.Options
	if opts.Theme == "" {
		opts.Theme = field.Dark
	}
	if opts.LinkDistance <= 0 {
		opts.LinkDistance = field.DefaultLinkDistance
	}
	opts.LinkDistance *= surface.CanvasScale

	m := Model{
		reg:     cfg.Registry,
		effect:  cfg.Effect,
		cues:    cfg.Cues,
		log:     cfg.Logger,
		gifPath: cfg.GIFPath,
		clock:   frame.NewManual(time.Now(), time.Second/60),
		screen:  &screen{},
		history: metrics.NewSeries(historyCapacity),
		cols:    defaultCols,
		rows:    defaultRows,
		styles:  newStyles(GetTheme(opts.Theme)),
	}
	opts.Width, opts.Height = float64(m.cols*2), float64(m.rows*4)
	if err := m.build(cfg.Effect, opts); err != nil {
		return Model{}, err
	}
	return m, nil
}

// build replaces the animator with one running name.
func (m *Model) build(name string, opts field.Options) error {
	factory, err := m.reg.Factory(name)
	if err != nil {
		return err
	}
	if opts.Count == 0 {
		opts.Count = m.reg.DefaultCount(name)
	}

	set := metrics.Default()
	set.Add(metrics.NewRecycles())
	history := metrics.NewSeries(historyCapacity)

	// the old animator keeps running until the new one is up
	prev := m.screen.canvas
	anim := frame.New(m.clock, m.screen.acquire, factory, opts, frame.WithLogger(m.log))
	anim.AddObserver(set)
	anim.AddObserver(frame.ObserverFunc(history.Observe))
	if err := anim.Start(); err != nil {
		m.screen.canvas = prev
		return err
	}
	if m.anim != nil {
		m.anim.Stop()
	}
	m.effect = name
	m.anim = anim
	m.metrics = set
	m.history = history
	return nil
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input and advances the animation on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.clock.Advance()
		if m.recording && m.screen.canvas != nil {
			m.frames = append(m.frames, captureCanvas(m.screen.canvas, field.Background(m.anim.Options().Theme)))
			if len(m.frames) >= maxGIFFrames {
				m.stopRecording()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cols := max(w-panelWidth-6, 10)
	rows := max(h-2, 4)
	if cols == m.cols && rows == m.rows {
		return
	}
	m.cols, m.rows = cols, rows
	if err := m.anim.Resize(cols*2, rows*4); err != nil {
		m.notice = err.Error()
		m.log.Error("resize failed", "err", err)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.recording {
			m.stopRecording()
		}
		m.anim.Stop()
		return m, tea.Quit
	case " ":
		m.anim.SetPaused(!m.anim.Paused())
		m.cues.Click()
	case "r":
		m.reconfigure(func(o *field.Options) {})
		m.cues.Click()
	case "t":
		next := m.anim.Options().Theme.Toggle()
		if err := m.anim.SetTheme(next); err != nil {
			m.notice = err.Error()
			break
		}
		m.styles = newStyles(GetTheme(next))
		m.cues.Theme()
	case "e", "tab":
		names := m.reg.List()
		next := names[0]
		for i, name := range names {
			if name == m.effect {
				next = names[(i+1)%len(names)]
				break
			}
		}
		opts := m.anim.Options()
		opts.Count = 0
		if err := m.build(next, opts); err != nil {
			m.notice = err.Error()
			break
		}
		m.notice = "effect: " + next
		m.cues.Nav()
	case "c":
		if m.effect != "drift" {
			break
		}
		m.reconfigure(func(o *field.Options) { o.Connections = (o.Connections + 1) % (field.NoLinks + 1) })
		m.notice = "links: " + m.anim.Options().Connections.String()
		m.cues.Hover()
	case "+", "=":
		m.reconfigure(func(o *field.Options) { o.Count += countStep })
		m.cues.Hover()
	case "-", "_":
		m.reconfigure(func(o *field.Options) { o.Count = max(o.Count-countStep, 0) })
		m.cues.Hover()
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recording = true
			m.frames = make([]*image.RGBA, 0, historyCapacity)
			m.notice = ""
		}
	case "?":
		m.showHelp = !m.showHelp
		m.cues.Nav()
	}
	return m, nil
}

func (m *Model) reconfigure(fn func(o *field.Options)) {
	opts := m.anim.Options()
	fn(&opts)
	m.history.Reset()
	if err := m.anim.Reconfigure(opts); err != nil {
		m.notice = err.Error()
	}
}

func (m *Model) stopRecording() {
	m.recording = false
	frames := m.frames
	m.frames = nil
	if len(frames) == 0 {
		return
	}
	if err := m.saveGIF(frames); err != nil {
		m.notice = "gif: " + err.Error()
		m.log.Error("save gif failed", "path", m.gifPath, "err", err)
		return
	}
	m.notice = fmt.Sprintf("saved %s (%d frames)", m.gifPath, len(frames))
	m.cues.Success()
}

func (m *Model) saveGIF(frames []*image.RGBA) error {
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return surface.EncodeGIF(f, frames, 2)
}

// Paused reports whether the simulation is frozen.
func (m Model) Paused() bool { return m.anim.Paused() }

// Effect is the name of the running effect.
func (m Model) Effect() string { return m.effect }

func (m Model) Options() field.Options { return m.anim.Options() }

func (m Model) Frames() uint64 { return m.anim.Frames() }

// Recording reports whether GIF capture is on and how many frames it holds.
func (m Model) Recording() (bool, int) { return m.recording, len(m.frames) }

func (m Model) Notice() string { return m.notice }

// View renders the canvas with the stats panel on its right.
func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(renderCanvas(m.screen.canvas))

	var s strings.Builder
	th := GetTheme(m.anim.Options().Theme)
	s.WriteString(st.header.Render(GradientText(strings.ToUpper(m.effect), th.Primary, th.Secondary)) + "\n")

	switch {
	case m.recording:
		s.WriteString(st.recording.Render(fmt.Sprintf("● REC %d", len(m.frames))) + "\n\n")
	case m.anim.Paused():
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	default:
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	}

	hist := m.history.Data()
	if len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Frame ms"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	last := m.anim.Last()
	vals := m.metrics.Values()
	opts := m.anim.Options()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Particles", fmt.Sprintf("%d", last.Particles))
	if m.effect == "drift" {
		row("Links", fmt.Sprintf("%d", last.Links))
		row("Search", opts.Connections.String())
	} else {
		row("Recycled", fmt.Sprintf("%.0f", vals["recycled"]))
	}
	row("Speed", fmt.Sprintf("%.2f", last.MeanSpeed))
	row("Frame", fmt.Sprintf("%.3f ms", vals["frame_ms"]))
	row("Frames", fmt.Sprintf("%d", last.Frame))
	row("Theme", string(opts.Theme))
	s.WriteString(st.label.Render("Budget") + st.ProgressBar(1-vals["within_budget"], 12) + "\n")
	s.WriteString(st.label.Render("Trend") + st.Sparkline(hist, 20) + "\n")

	if m.notice != "" {
		s.WriteString("\n" + st.notice.Render(m.notice) + "\n")
	}
	s.WriteString(st.help.Render(st.Separator(30) + "\nSP:Pause R:Restart Q:Quit\nT:Theme  E:Effect  G:Record\n+/-:Count C:Links ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return st.overlay.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

const helpText = `KEYBOARD SHORTCUTS

Space    Pause/Resume
R        Restart the effect
T        Toggle dark/light theme
E, Tab   Next effect
C        Cycle connection search
+ / -    More or fewer particles
G        Toggle GIF recording
?        Toggle this help
Q, Esc   Quit`
