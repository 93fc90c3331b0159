package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/san-kum/driftfield/internal/audio"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/contact"
	"github.com/san-kum/driftfield/internal/effect"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/server"
	"github.com/san-kum/driftfield/internal/storage"
	"github.com/san-kum/driftfield/internal/surface"
)

var (
	contactName    string
	contactEmail   string
	contactSubject string
	contactMessage string
	contactDry     bool
)

func newRaster(opts field.Options) (*surface.Raster, error) {
	r, err := surface.NewRaster(int(opts.Width), int(opts.Height))
	if err != nil {
		return nil, err
	}
	r.Background = field.Background(opts.Theme)
	r.Clear()
	return r, nil
}

func recordGIF(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}
	if recordFrames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", recordFrames)
	}
	sim, err := registry.Get(cfg.Effect, opts)
	if err != nil {
		return err
	}
	r, err := newRaster(opts)
	if err != nil {
		return err
	}

	for i := 0; i < recordTicks; i++ {
		sim.Step()
		sim.Draw(r)
	}
	shots := make([]*image.RGBA, 0, recordFrames)
	for i := 0; i < recordFrames; i++ {
		sim.Step()
		sim.Draw(r)
		shots = append(shots, r.Snapshot())
	}

	f, err := os.Create(recordOut)
	if err != nil {
		return err
	}
	defer f.Close()
	delay := 100 / max(cfg.FPS, 1)
	if err := surface.EncodeGIF(f, shots, delay); err != nil {
		return err
	}
	fmt.Printf("wrote %d frames of %s to %s\n", len(shots), cfg.Effect, recordOut)
	return nil
}

func renderSVG(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}
	sim, err := registry.Get(cfg.Effect, opts)
	if err != nil {
		return err
	}
	for i := 0; i < svgTicks; i++ {
		sim.Step()
	}
	rec := surface.NewRecorder(int(opts.Width), int(opts.Height))
	sim.Draw(rec)

	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := surface.WriteSVG(f, rec, field.Background(opts.Theme)); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d circles, %d lines)\n", svgOut,
		rec.Count(surface.OpCircle), rec.Count(surface.OpLine))
	return nil
}

// traceRun drives an animator off a manual clock, capturing every particle
// after each frame and folding frame stats into the default metrics.
func traceRun(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}
	factory, err := registry.Factory(cfg.Effect)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	clock := frame.NewManual(time.Now(), time.Second/time.Duration(max(cfg.FPS, 1)))
	acquire := func(w, h int) (surface.Surface, error) {
		if w <= 0 || h <= 0 {
			return nil, surface.ErrNoSurface
		}
		return surface.NewRecorder(w, h), nil
	}
	anim := frame.New(clock, acquire, factory, opts, frame.WithLogger(newLogger(os.Stderr)))

	set := metrics.Default()
	set.Add(metrics.NewRecycles())
	trace := &storage.Trace{}
	anim.AddObserver(set)
	anim.AddObserver(frame.ObserverFunc(func(s frame.Stats) {
		anim.Inspect(func(sim field.Simulation, surf surface.Surface) {
			trace.Capture(sim, int(s.Frame))
			if rec, ok := surf.(*surface.Recorder); ok {
				rec.Reset()
			}
		})
	}))

	if err := anim.Start(); err != nil {
		return err
	}
	anim.Inspect(func(sim field.Simulation, _ surface.Surface) { trace.Capture(sim, 0) })

	fmt.Printf("tracing %s for %d ticks...\n", cfg.Effect, traceTicks)
	start := time.Now()
	clock.AdvanceN(traceTicks)
	anim.Stop()
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Effect:  cfg.Effect,
		Theme:   string(opts.Theme),
		Seed:    opts.Seed,
		Width:   opts.Width,
		Height:  opts.Height,
		Count:   opts.Count,
		Metrics: set.Values(),
	}, trace)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(trace.Samples))
	fmt.Println("\nmetrics:")
	for _, name := range set.Names() {
		fmt.Printf("  %s: %.4f\n", name, set.Values()[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEFFECT\tTIME\tSIZE\tCOUNT\tTICKS\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fx%.0f\t%d\t%d\t%d\n",
			run.ID,
			run.Effect,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Count,
			run.Ticks,
			run.Seed,
		)
	}
	return w.Flush()
}

// resolveRun returns args[0] or, without one, the newest run.
func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if trace.Ticks() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("effect: %s\n", meta.Effect)
	fmt.Printf("ticks: %d\n\n", trace.Ticks())

	series := []struct {
		caption string
		fn      func([]storage.Sample) float64
	}{
		{"mean x", storage.MeanX},
		{"spread (rms from centroid)", storage.Spread},
	}
	if meta.Effect == "starfield" {
		series = append(series, struct {
			caption string
			fn      func([]storage.Sample) float64
		}{"mean depth", storage.MeanDepth})
	}

	for _, s := range series {
		graph := asciigraph.Plot(trace.Series(s.fn),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(*meta, trace)
}

func benchEffect(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}

	modes := []field.ConnectionMode{field.Pairwise, field.KDTree}
	if cfg.Effect != "drift" {
		modes = []field.ConnectionMode{field.NoLinks}
	}
	var cases []effect.BenchCase
	for _, n := range []int{50, 100, 200, 400, 800} {
		for _, m := range modes {
			cases = append(cases, effect.BenchCase{Effect: cfg.Effect, Count: n, Mode: m})
		}
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}

	fmt.Printf("benchmarking %s (%d frames per case)\n\n", cfg.Effect, benchFrames)
	results, err := registry.Bench(context.Background(), cases, opts, benchFrames)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tMODE\tFRAMES\tMS/FRAME\tLINKS\tFPS")
	var slowest effect.BenchResult
	for _, r := range results {
		ms := float64(r.PerFrame.Microseconds()) / 1000
		rate := 0.0
		if r.PerFrame > 0 {
			rate = float64(time.Second) / float64(r.PerFrame)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3f\t%.1f\t%.0f\n",
			r.Case.Count, r.Case.Mode, r.Frames, ms, r.MeanLinks, rate)
		if r.PerFrame > slowest.PerFrame {
			slowest = r
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(slowest.FrameTimes) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(slowest.FrameTimes,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("frame ms, %d particles, %s", slowest.Case.Count, slowest.Case.Mode)),
		))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	effects := registry.List()
	if len(args) > 0 {
		effects = args
	}
	for _, e := range effects {
		presets := config.ListPresets(e)
		if len(presets) == 0 {
			fmt.Printf("no presets for effect: %s\n", e)
			continue
		}
		fmt.Printf("presets for %s:\n", e)
		for _, p := range presets {
			c := config.GetPreset(e, p)
			fmt.Printf("  %-8s theme=%s count=%d\n", p, c.Theme, c.Count)
		}
	}
	return nil
}

// contactService builds the sender from the environment: SMTP when
// SMTP_USER is set, otherwise the form relay at RELAY_URL. The log lives
// at CONTACT_DB, falling back to the config.
func contactService(cfg *config.Config, dry bool) (*contact.Service, func(), error) {
	dbPath := os.Getenv("CONTACT_DB")
	if dbPath == "" {
		dbPath = cfg.Contact.DB
	}
	log, err := contact.OpenLog(dbPath)
	if err != nil {
		return nil, nil, err
	}

	var sender contact.Sender
	switch {
	case dry:
		sender = &contact.Stub{Logger: newLogger(os.Stderr)}
	case os.Getenv("SMTP_USER") != "":
		sender = contact.NewMailer(contact.MailConfigFromEnv())
	default:
		relay := os.Getenv("RELAY_URL")
		if relay == "" {
			relay = cfg.Contact.RelayURL
		}
		sender = contact.NewClient(relay)
	}
	return &contact.Service{Sender: sender, Log: log}, func() { log.Close() }, nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd, args)
	if err != nil {
		return err
	}
	svc, closeLog, err := contactService(cfg, os.Getenv("CONTACT_DRY_RUN") != "")
	if err != nil {
		return err
	}
	defer closeLog()

	addr := cfg.Server.Addr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	srv := server.New(server.Config{
		Registry: registry,
		Contact:    svc,
		Logger:     newLogger(os.Stderr),
		Defaults:   opts,
		AdminToken: os.Getenv("ADMIN_TOKEN"),
	})
	return srv.Run(addr)
}

func sendContact(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	svc, closeLog, err := contactService(cfg, contactDry)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	res, err := svc.Submit(ctx, contact.Submission{
		Name:    contactName,
		Email:   contactEmail,
		Subject: contactSubject,
		Message: contactMessage,
	})
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(res); encErr != nil {
		return encErr
	}
	return err
}

// listCues prints every cue with the dominant frequency of its rendered
// samples. With --sound each cue is also played.
func listCues(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	var player *audio.Player
	if cfg.Sound {
		player = audio.NewPlayer()
		if err := player.Start(); err != nil {
			return err
		}
		defer player.Stop()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTONES\tLENGTH\tPEAK HZ\tPEAK AMP")
	for _, c := range audio.AllCues() {
		samples := audio.Render(c, audio.SampleRate)
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.3f\n",
			c.Name, len(c.Tones), c.Length(),
			audio.PeakFrequency(samples, int(audio.SampleRate)), audio.Peak(samples))
		if player != nil {
			player.Play(c)
			time.Sleep(c.Length() + 50*time.Millisecond)
		}
	}
	return w.Flush()
}
