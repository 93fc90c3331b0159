package gui

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/driftfield/internal/audio"
	"github.com/san-kum/driftfield/internal/effect"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/surface"
)

var (
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(90, 90, 90, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
)

// Config selects what the window shows.
type Config struct {
	Registry *effect.Registry
	Effect   string
	Options  field.Options
	Cues     audio.Cues
	Logger   *slog.Logger
	FPS      int
}

// App is a raylib window running one effect at a time.
type App struct {
	cfg   Config
	clock *frame.Manual
	anim  *frame.Animator
	tex   *texture
	theme field.Theme
	quit  bool
}

func initWindow(w, h, fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(w), int32(h), "driftfield")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// Run opens a window sized from cfg.Options and blocks until it is closed.
func Run(cfg Config) error {
	if cfg.Registry == nil {
		cfg.Registry = effect.NewRegistry()
	}
	if cfg.Effect == "" {
		cfg.Effect = "drift"
	}
	if cfg.Cues == nil {
		cfg.Cues = audio.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.Options.Theme == "" {
		cfg.Options.Theme = field.Dark
	}

	initWindow(int(cfg.Options.Width), int(cfg.Options.Height), cfg.FPS)
	defer rl.CloseWindow()

	a := &App{
		cfg:   cfg,
		clock: frame.NewManual(time.Now(), time.Second/time.Duration(cfg.FPS)),
		theme: cfg.Options.Theme,
	}
	if err := a.load(cfg.Effect, cfg.Options); err != nil {
		return err
	}
	defer a.anim.Stop()

	a.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

// load replaces the animator with one running name.
func (a *App) load(name string, opts field.Options) error {
	factory, err := a.cfg.Registry.Factory(name)
	if err != nil {
		return err
	}
	if opts.Count == 0 {
		opts.Count = a.cfg.Registry.DefaultCount(name)
	}
	// the old animator keeps its texture until the new one is up
	prev := a.tex
	anim := frame.New(a.clock, a.acquire, factory, opts,
		frame.WithRelease(a.release),
		frame.WithLogger(a.cfg.Logger))
	if err := anim.Start(); err != nil {
		a.tex = prev
		return err
	}
	if a.anim != nil {
		a.anim.Stop()
	}
	a.cfg.Effect = name
	a.anim = anim
	return nil
}

// acquire runs under the animator lock, so the theme comes from the app.
func (a *App) acquire(w, h int) (surface.Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, surface.ErrNoSurface
	}
	a.tex = newTexture(w, h, field.Background(a.theme))
	return a.tex, nil
}

func (a *App) release(s surface.Surface) {
	if t, ok := s.(*texture); ok {
		t.unload()
		if a.tex == t {
			a.tex = nil
		}
	}
}

func (a *App) Update() {
	if rl.IsWindowResized() {
		if err := a.anim.Resize(rl.GetScreenWidth(), rl.GetScreenHeight()); err != nil {
			a.cfg.Logger.Error("resize failed", "err", err)
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeyQ), rl.IsKeyPressed(rl.KeyEscape):
		a.quit = true
	case rl.IsKeyPressed(rl.KeySpace):
		a.anim.SetPaused(!a.anim.Paused())
		a.cfg.Cues.Click()
	case rl.IsKeyPressed(rl.KeyT):
		a.theme = a.theme.Toggle()
		if err := a.anim.SetTheme(a.theme); err != nil {
			a.cfg.Logger.Error("theme switch failed", "err", err)
		}
		a.cfg.Cues.Theme()
	case rl.IsKeyPressed(rl.KeyR):
		if err := a.anim.Reconfigure(a.anim.Options()); err != nil {
			a.cfg.Logger.Error("restart failed", "err", err)
		}
		a.cfg.Cues.Click()
	case rl.IsKeyPressed(rl.KeyE):
		names := a.cfg.Registry.List()
		next := names[0]
		for i, n := range names {
			if n == a.cfg.Effect {
				next = names[(i+1)%len(names)]
				break
			}
		}
		opts := a.anim.Options()
		opts.Count = 0
		if err := a.load(next, opts); err != nil {
			a.cfg.Logger.Error("effect switch failed", "effect", next, "err", err)
			return
		}
		a.cfg.Cues.Nav()
	}
}

// Draw runs one animation frame into the texture, then shows it with the
// HUD on top.
func (a *App) Draw() {
	if a.tex != nil {
		a.tex.begin()
		a.clock.Advance()
		a.tex.end()
	}

	rl.BeginDrawing()
	rl.ClearBackground(toColor(field.Background(a.theme)))
	if a.tex != nil {
		a.tex.blit()
	}
	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	last := a.anim.Last()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	rl.DrawText("driftfield", 30, 30, 24, ColSelect)
	rl.DrawText(fmt.Sprintf(":: %s", a.cfg.Effect), 170, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	if a.anim.Paused() {
		status, col = "PAUSED", ColTextDim
	}
	rl.DrawText(status, w-130, 30, 16, col)

	info := fmt.Sprintf("%d particles", last.Particles)
	if a.cfg.Effect == "drift" {
		info += fmt.Sprintf("  %d links", last.Links)
	}
	rl.DrawText(info, 30, 60, 14, ColText)

	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, h-40, 14, ColTextDim)
	rl.DrawText("[SPACE] PAUSE  [T] THEME  [E] EFFECT  [R] RESTART  [Q] QUIT", w-560, h-40, 14, ColTextDim)
}
