package field

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/driftfield/internal/surface"
)

const (
	DefaultCount        = 50
	DefaultStarCount    = 100
	DefaultLinkDistance = 100.0
	DefaultMaxDepth     = 1000.0
	DefaultFocalLength  = 200.0
	DefaultTrailFade    = 0.05

	// MaxDrift bounds |vx| and |vy| of a 2D particle.
	MaxDrift = 0.25
	// LinkAlpha is the stroke alpha (out of 255) of a zero-length link.
	LinkAlpha = 50
	LinkWidth = 0.5

	// KDTreeThreshold is the particle count above which the connection
	// pass switches to the kd-tree in Auto mode.
	KDTreeThreshold = 100
)

// Particle is one 2D point mass.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Size    float64
	Opacity float64
	Color   string
}

// FillStyle returns the particle color with its opacity appended as a hex
// alpha channel.
func (p Particle) FillStyle() string { return WithAlpha(p.Color, p.Opacity) }

// Star is one pseudo-3D point mass.
type Star struct {
	X, Y, Z    float64
	VX, VY, VZ float64
	Size       float64
	Color      string
}

// Simulation is the contract both field variants satisfy.
type Simulation interface {
	// Step advances every particle by one tick.
	Step()
	// Draw renders the current state onto s.
	Draw(s surface.Surface)
	Len() int
	Stats() Stats
}

// Stats describes the most recent frame.
type Stats struct {
	Particles int
	Links     int
	Recycled  int
	MeanSpeed float64
}

// Options configures construction. Zero values select defaults, except
// Count: a count of zero or less builds an empty field whose frames are
// no-ops. Callers wanting the default density pass DefaultCount.
type Options struct {
	Width, Height float64
	Count         int
	Theme         Theme
	Seed          int64
	Connections   ConnectionMode
	LinkDistance  float64

	// starfield only
	MaxDepth    float64
	FocalLength float64
	TrailFade   float64
}

// Validate reports viewport and theme problems.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidViewport, o.Width, o.Height)
	}
	if o.Theme != "" {
		if _, err := ParseTheme(string(o.Theme)); err != nil {
			return err
		}
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Theme == "" {
		o.Theme = Dark
	}
	if o.LinkDistance <= 0 {
		o.LinkDistance = DefaultLinkDistance
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.FocalLength <= 0 {
		o.FocalLength = DefaultFocalLength
	}
	if o.TrailFade <= 0 {
		o.TrailFade = DefaultTrailFade
	}
	return o
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
