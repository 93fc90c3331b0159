package field

import (
	"image/color"
	"math"

	"github.com/san-kum/driftfield/internal/surface"
)

// Field is the 2D drifting constellation.
type Field struct {
	width, height float64
	particles     []Particle
	colors        map[string]color.RGBA
	mode          ConnectionMode
	linkDist      float64
	links         []Link
}

// NewField allocates opts.Count particles with uniform random position,
// drift velocity in [-MaxDrift, MaxDrift], size in [1,4], opacity in
// [0.1,0.6] and a palette color of the theme.
func NewField(opts Options) *Field {
	opts = opts.withDefaults()
	rng := newRand(opts.Seed)
	palette := Palette(opts.Theme)

	n := opts.Count
	if n < 0 {
		n = 0
	}
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{
			X:       rng.Float64() * opts.Width,
			Y:       rng.Float64() * opts.Height,
			VX:      uniform(rng, -MaxDrift, MaxDrift),
			VY:      uniform(rng, -MaxDrift, MaxDrift),
			Size:    uniform(rng, 1, 4),
			Opacity: uniform(rng, 0.1, 0.6),
			Color:   palette[rng.Intn(len(palette))],
		}
	}
	return newField(opts, ps)
}

// NewFieldFromParticles builds a field around explicit particles. The
// slice is copied.
func NewFieldFromParticles(opts Options, ps []Particle) *Field {
	opts = opts.withDefaults()
	cp := make([]Particle, len(ps))
	copy(cp, ps)
	return newField(opts, cp)
}

func newField(opts Options, ps []Particle) *Field {
	f := &Field{
		width:     opts.Width,
		height:    opts.Height,
		particles: ps,
		colors:    make(map[string]color.RGBA),
		mode:      opts.Connections,
		linkDist:  opts.LinkDistance,
	}
	for _, p := range ps {
		if _, ok := f.colors[p.Color]; !ok {
			c := rgba(p.Color, 1)
			f.colors[p.Color] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
		}
	}
	return f
}

func (f *Field) Len() int { return len(f.particles) }

func (f *Field) Bounds() (w, h float64) { return f.width, f.height }

// Particles returns a copy of the current particle state.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Step moves every particle by its velocity and reflects the velocity of
// any particle past an edge. Positions are not clamped: a particle may sit
// outside by at most one tick of travel until the next Step brings it back.
func (f *Field) Step() {
	for i := range f.particles {
		p := &f.particles[i]
		p.X += p.VX
		p.Y += p.VY

		if p.X < 0 || p.X > f.width {
			p.VX = -p.VX
		}
		if p.Y < 0 || p.Y > f.height {
			p.VY = -p.VY
		}
	}
}

// Draw clears s, paints each particle at its own opacity, then the links.
func (f *Field) Draw(s surface.Surface) {
	s.Clear()
	for _, p := range f.particles {
		s.FillCircle(p.X, p.Y, p.Size, f.color(p.Color, p.Opacity))
	}

	f.links = findLinks(f.particles, f.linkDist, f.mode)
	for _, l := range f.links {
		a, b := f.particles[l.I], f.particles[l.J]
		s.Line(a.X, a.Y, b.X, b.Y, LinkWidth, f.linkColor(a.Color, l.Dist))
	}
}

// Links returns the pairs joined in the most recent Draw.
func (f *Field) Links() []Link {
	out := make([]Link, len(f.links))
	copy(out, f.links)
	return out
}

func (f *Field) Stats() Stats {
	st := Stats{Particles: len(f.particles), Links: len(f.links)}
	if len(f.particles) == 0 {
		return st
	}
	sum := 0.0
	for _, p := range f.particles {
		sum += math.Hypot(p.VX, p.VY)
	}
	st.MeanSpeed = sum / float64(len(f.particles))
	return st
}

func (f *Field) color(hex string, opacity float64) color.NRGBA {
	base := f.colors[hex]
	return color.NRGBA{R: base.R, G: base.G, B: base.B, A: alphaByte(opacity)}
}

// linkColor fades from LinkAlpha at distance 0 to nothing at linkDist.
func (f *Field) linkColor(hex string, dist float64) color.NRGBA {
	base := f.colors[hex]
	a := int((1 - dist/f.linkDist) * LinkAlpha)
	if a < 0 {
		a = 0
	}
	return color.NRGBA{R: base.R, G: base.G, B: base.B, A: uint8(a)}
}

// alphaByte truncates like the hex alpha suffix does.
func alphaByte(a float64) uint8 {
	v := int(a * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
