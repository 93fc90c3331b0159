package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/surface"
)

// Factory builds a simulation for the given options.
type Factory func(opts field.Options) (field.Simulation, error)

// AcquireFunc obtains a drawing surface for a viewport of w by h. Returning
// surface.ErrNoSurface makes the animator a silent no-op.
type AcquireFunc func(w, h int) (surface.Surface, error)

// Stats describes one completed frame.
type Stats struct {
	Frame   uint64
	At      time.Time
	Elapsed time.Duration
	field.Stats
}

// Observer is notified after every frame, outside the animator lock.
type Observer interface {
	OnFrame(s Stats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Stats)

func (f ObserverFunc) OnFrame(s Stats) { f(s) }

// Option configures an Animator.
type Option func(*Animator)

// WithPresenter sets the function called after each draw to push the
// surface to its output (terminal, window, frame buffer).
func WithPresenter(fn func(surface.Surface)) Option {
	return func(a *Animator) { a.present = fn }
}

// WithRelease sets the function called when the animator lets go of a
// surface.
func WithRelease(fn func(surface.Surface)) Option {
	return func(a *Animator) { a.release = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Animator) { a.log = l }
}

// Animator owns one simulation and its frame chain.
type Animator struct {
	sched   Scheduler
	acquire AcquireFunc
	factory Factory
	present func(surface.Surface)
	release func(surface.Surface)
	log     *slog.Logger

	mu        sync.Mutex
	opts      field.Options
	sim       field.Simulation
	surf      surface.Surface
	handle    Handle
	gen       uint64
	running   bool
	paused    bool
	frames    uint64
	last      Stats
	observers []Observer
}

// New returns a stopped animator. opts.Width and opts.Height give the
// viewport handed to acquire.
func New(sched Scheduler, acquire AcquireFunc, factory Factory, opts field.Options, options ...Option) *Animator {
	a := &Animator{
		sched:     sched,
		acquire:   acquire,
		factory:   factory,
		opts:      opts,
		log:       slog.Default(),
		observers: make([]Observer, 0),
	}
	for _, o := range options {
		o(a)
	}
	return a
}

func (a *Animator) AddObserver(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

// Start acquires a surface, builds the simulation and requests the first
// frame. Starting a running animator does nothing. A missing surface is
// not an error: the animator stays stopped.
func (a *Animator) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startLocked()
}

func (a *Animator) startLocked() error {
	if a.running {
		return nil
	}

	surf, err := a.acquire(int(a.opts.Width), int(a.opts.Height))
	if errors.Is(err, surface.ErrNoSurface) || (err == nil && surf == nil) {
		a.log.Debug("no drawing surface, animation disabled",
			"width", a.opts.Width, "height", a.opts.Height)
		return nil
	}
	if err != nil {
		return fmt.Errorf("acquire surface: %w", err)
	}

	opts := a.opts
	w, h := surf.Size()
	opts.Width, opts.Height = float64(w), float64(h)

	sim, err := a.factory(opts)
	if err != nil {
		a.releaseLocked(surf)
		return fmt.Errorf("build simulation: %w", err)
	}

	a.surf = surf
	a.sim = sim
	a.running = true
	a.gen++
	a.handle = a.sched.Request(a.frameFn(a.gen))
	a.log.Debug("animation started", "particles", sim.Len(), "width", w, "height", h)
	return nil
}

// Stop cancels the pending frame, then drops the simulation and releases
// the surface. Stop is idempotent.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Animator) stopLocked() {
	if !a.running {
		return
	}
	a.running = false
	a.gen++
	a.sched.Cancel(a.handle)
	a.handle = 0

	surf := a.surf
	a.sim = nil
	a.surf = nil
	a.releaseLocked(surf)
	a.log.Debug("animation stopped", "frames", a.frames)
}

func (a *Animator) releaseLocked(s surface.Surface) {
	if a.release != nil && s != nil {
		a.release(s)
	}
}

// Resize rebuilds the simulation for a new viewport. A stopped animator
// only records the size.
func (a *Animator) Resize(w, h int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opts.Width, a.opts.Height = float64(w), float64(h)
	return a.restartLocked()
}

// SetTheme rebuilds the simulation with the palette of t.
func (a *Animator) SetTheme(t field.Theme) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opts.Theme = t
	return a.restartLocked()
}

// Reconfigure replaces the options wholesale and rebuilds.
func (a *Animator) Reconfigure(opts field.Options) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opts = opts
	return a.restartLocked()
}

func (a *Animator) restartLocked() error {
	if !a.running {
		return nil
	}
	a.stopLocked()
	return a.startLocked()
}

// SetPaused freezes the simulation while the frame chain keeps presenting
// the last picture.
func (a *Animator) SetPaused(p bool) {
	a.mu.Lock()
	a.paused = p
	a.mu.Unlock()
}

func (a *Animator) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// Run starts the animator and blocks until ctx is done, then stops it.
func (a *Animator) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	a.Stop()
	return nil
}

func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *Animator) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

func (a *Animator) Options() field.Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opts
}

// Last returns the stats of the most recent frame.
func (a *Animator) Last() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Inspect calls fn with the live simulation and surface under the lock.
// fn is not called when the animator is stopped.
func (a *Animator) Inspect(fn func(sim field.Simulation, s surface.Surface)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return false
	}
	fn(a.sim, a.surf)
	return true
}

// frameFn returns the callback for one frame of generation gen. A callback
// from an older generation finds gen changed and returns without drawing.
func (a *Animator) frameFn(gen uint64) func(time.Time) {
	return func(now time.Time) {
		a.mu.Lock()
		if !a.running || gen != a.gen {
			a.mu.Unlock()
			return
		}

		start := time.Now()
		if !a.paused {
			a.sim.Step()
		}
		a.sim.Draw(a.surf)
		if a.present != nil {
			a.present(a.surf)
		}
		a.frames++

		st := Stats{
			Frame:   a.frames,
			At:      now,
			Elapsed: time.Since(start),
			Stats:   a.sim.Stats(),
		}
		a.last = st
		a.handle = a.sched.Request(a.frameFn(gen))

		obs := make([]Observer, len(a.observers))
		copy(obs, a.observers)
		a.mu.Unlock()

		for _, o := range obs {
			o.OnFrame(st)
		}
	}
}
