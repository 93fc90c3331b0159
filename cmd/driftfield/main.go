package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/driftfield/internal/audio"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/effect"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/gui"
	"github.com/san-kum/driftfield/internal/platform"
	"github.com/san-kum/driftfield/internal/surface"
	"github.com/san-kum/driftfield/internal/tui"
	"github.com/san-kum/driftfield/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	width       int
	height      int
	count       int
	theme       string
	seed        int64
	fps         int
	sound       bool
	connections string
	verbose     bool

	plain bool

	recordOut    string
	recordFrames int
	recordTicks  int
	svgOut       string
	svgTicks     int
	traceTicks   int
	benchFrames  int
)

var registry = effect.NewRegistry()

func main() {
	rootCmd := &cobra.Command{
		Use:           "driftfield",
		Short:         "animated particle backgrounds for the terminal, a window or the web",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".driftfield", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.IntVar(&width, "width", config.DefaultWidth, "viewport width in pixels")
	pf.IntVar(&height, "height", config.DefaultHeight, "viewport height in pixels")
	pf.IntVar(&count, "count", 0, "particle count (0 uses the effect default)")
	pf.StringVar(&theme, "theme", config.DefaultTheme, "dark or light")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 seeds from the clock)")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	pf.BoolVar(&sound, "sound", false, "play interface sounds")
	pf.StringVar(&connections, "connections", "auto", "link pass: auto, pairwise, kdtree or none")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [effect]",
		Short: "run an effect in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	runCmd.Flags().BoolVar(&plain, "plain", false, "print frames without taking over the screen")

	tcellCmd := &cobra.Command{
		Use:   "tcell [effect]",
		Short: "run an effect full-screen with tcell",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTcell,
	}

	windowCmd := &cobra.Command{
		Use:   "window [effect]",
		Short: "run an effect in a desktop window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWindow,
	}

	recordCmd := &cobra.Command{
		Use:   "record [effect]",
		Short: "render an animated GIF",
		Args:  cobra.MaximumNArgs(1),
		RunE:  recordGIF,
	}
	recordCmd.Flags().StringVarP(&recordOut, "output", "o", "driftfield.gif", "output file")
	recordCmd.Flags().IntVar(&recordFrames, "frames", config.DefaultFrames, "frames to record")
	recordCmd.Flags().IntVar(&recordTicks, "ticks", 0, "ticks to run before recording")

	svgCmd := &cobra.Command{
		Use:   "svg [effect]",
		Short: "render one frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().StringVarP(&svgOut, "output", "o", "driftfield.svg", "output file")
	svgCmd.Flags().IntVar(&svgTicks, "ticks", 60, "ticks to run before the snapshot")

	traceCmd := &cobra.Command{
		Use:   "trace [effect]",
		Short: "run headless and save particle trajectories",
		Args:  cobra.MaximumNArgs(1),
		RunE:  traceRun,
	}
	traceCmd.Flags().IntVar(&traceTicks, "ticks", config.DefaultTicks, "ticks to simulate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved traces",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [effect]",
		Short: "time frames across particle counts and link modes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchEffect,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 200, "frames per case")

	presetsCmd := &cobra.Command{
		Use:   "presets [effect]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	effectsCmd := &cobra.Command{
		Use:   "effects",
		Short: "list available effects",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range registry.List() {
				fmt.Printf("  %-10s %s (default %d particles)\n", name, registry.Describe(name), registry.DefaultCount(name))
			}
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve frames and the contact form over HTTP",
		RunE:  serve,
	}

	contactCmd := &cobra.Command{
		Use:   "contact",
		Short: "send one contact form submission",
		RunE:  sendContact,
	}
	contactCmd.Flags().StringVar(&contactName, "name", "", "sender name")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "sender email")
	contactCmd.Flags().StringVar(&contactSubject, "subject", "", "subject")
	contactCmd.Flags().StringVar(&contactMessage, "message", "", "message body")
	contactCmd.Flags().BoolVar(&contactDry, "dry-run", false, "log the submission instead of sending it")

	cuesCmd := &cobra.Command{
		Use:   "cues",
		Short: "list interface sounds, or play them with --sound",
		RunE:  listCues,
	}

	rootCmd.AddCommand(runCmd, tcellCmd, windowCmd, recordCmd, svgCmd, traceCmd, listCmd, plotCmd,
		exportJSONCmd, benchCmd, presetsCmd, effectsCmd, serveCmd, contactCmd, cuesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the preset and finally any
// flag the user set. args[0], when present, names the effect.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Effect = args[0]
	}
	if preset != "" {
		p := config.GetPreset(cfg.Effect, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Effect))
		}
		cfg.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("sound") {
		cfg.Sound = sound
	}
	if flags.Changed("connections") {
		cfg.Connections = connections
	}
	if _, err := registry.Factory(cfg.Effect); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadOptions is loadConfig plus the conversion to simulator options.
func loadOptions(cmd *cobra.Command, args []string) (*config.Config, field.Options, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, field.Options{}, err
	}
	opts, err := cfg.Options(registry.DefaultCount(cfg.Effect))
	if err != nil {
		return nil, field.Options{}, err
	}
	return cfg, opts, nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// screenLogger sends logs to a file under the data directory, since
// full-screen hosts own stderr's terminal.
func screenLogger() (*slog.Logger, func(), error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "driftfield.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return newLogger(f), func() { f.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func requireTerminal(p platform.Platform) error {
	if !p.CanDraw() {
		return fmt.Errorf("stdout is not a terminal; try record, svg or serve instead")
	}
	return nil
}

// runInteractive is the default command: an effect and preset picker
// leading into the live view.
func runInteractive(cmd *cobra.Command, args []string) error {
	plat := platform.Detect()
	if err := requireTerminal(plat); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log, closeLog, err := screenLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cues, stop := audio.Open(cfg.Sound && plat.Audio, log)
	defer stop()

	app := viz.NewApp(cfg, viz.Config{
		Registry: registry,
		Cues:     cues,
		GIFPath:  filepath.Join(dataDir, viz.DefaultGIFPath),
		Logger:   log,
	})
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	plat := platform.Detect()
	if err := requireTerminal(plat); err != nil {
		return err
	}
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}
	if plain {
		return runPlain(cfg, opts, plat)
	}

	log, closeLog, err := screenLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	cues, stop := audio.Open(cfg.Sound && plat.Audio, log)
	defer stop()

	m, err := viz.NewModel(viz.Config{
		Registry: registry,
		Effect:   cfg.Effect,
		Options:  opts,
		Cues:     cues,
		GIFPath:  filepath.Join(dataDir, viz.DefaultGIFPath),
		Logger:   log,
	})
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// runPlain drives the animator from a real ticker and prints each canvas
// with ANSI escapes until interrupted.
func runPlain(cfg *config.Config, opts field.Options, plat platform.Platform) error {
	factory, err := registry.Factory(cfg.Effect)
	if err != nil {
		return err
	}
	cols, rows := plat.Width, plat.Height-2
	opts.Width, opts.Height = float64(cols*2), float64(rows*4)
	if opts.LinkDistance <= 0 {
		opts.LinkDistance = field.DefaultLinkDistance
	}
	opts.LinkDistance *= surface.CanvasScale

	r := tui.NewLiveRenderer(os.Stdout, cfg.Effect, cfg.FPS)
	ticker := frame.NewTicker(cfg.FPS)
	defer ticker.Close()

	acquire := func(w, h int) (surface.Surface, error) {
		if w < 2 || h < 4 {
			return nil, surface.ErrNoSurface
		}
		return surface.NewCanvas(w/2, h/4), nil
	}
	anim := frame.New(ticker, acquire, factory, opts,
		frame.WithPresenter(r.Present),
		frame.WithLogger(newLogger(os.Stderr)))
	anim.AddObserver(r)

	ctx, cancel := signalContext()
	defer cancel()

	r.Start()
	defer r.Stop()
	return anim.Run(ctx)
}

func runTcell(cmd *cobra.Command, args []string) error {
	plat := platform.Detect()
	if err := requireTerminal(plat); err != nil {
		return err
	}
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}
	log, closeLog, err := screenLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	cues, stop := audio.Open(cfg.Sound && plat.Audio, log)
	defer stop()

	s, err := tui.Open(tui.Config{
		Registry: registry,
		Effect:   cfg.Effect,
		Options:  opts,
		Cues:     cues,
		Logger:   log,
		FPS:      cfg.FPS,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return s.Run(ctx)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger(os.Stderr)
	cues, stop := audio.Open(cfg.Sound, log)
	defer stop()

	return gui.Run(gui.Config{
		Registry: registry,
		Effect:   cfg.Effect,
		Options:  opts,
		Cues:     cues,
		Logger:   log,
		FPS:      cfg.FPS,
	})
}
