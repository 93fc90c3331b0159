package field

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/san-kum/driftfield/internal/surface"
)

// Starfield is the pseudo-3D variant: points approach the viewer along z
// and are recycled to the far plane once they pass it.
type Starfield struct {
	width, height float64
	maxDepth      float64
	focal         float64
	fade          float64
	stars         []Star
	colors        map[string]color.RGBA
	rng           *rand.Rand
	recycled      int
}

// NewStarfield scatters opts.Count stars over the viewport with depth in
// (0, MaxDepth], lateral drift in [-1, 1], approach speed in [1, 3] and
// size in [1, 4].
func NewStarfield(opts Options) *Starfield {
	opts = opts.withDefaults()
	rng := newRand(opts.Seed)

	n := opts.Count
	if n < 0 {
		n = 0
	}
	stars := make([]Star, n)
	for i := range stars {
		stars[i] = Star{
			X:     rng.Float64() * opts.Width,
			Y:     rng.Float64() * opts.Height,
			Z:     opts.MaxDepth * (1 - rng.Float64()),
			VX:    uniform(rng, -1, 1),
			VY:    uniform(rng, -1, 1),
			VZ:    uniform(rng, 1, 3),
			Size:  uniform(rng, 1, 4),
			Color: starColor(uniform(rng, 240, 300)),
		}
	}
	return newStarfield(opts, stars, rng)
}

// NewStarfieldFromStars builds a starfield around explicit stars. The
// slice is copied; opts.Seed drives the recycle positions.
func NewStarfieldFromStars(opts Options, stars []Star) *Starfield {
	opts = opts.withDefaults()
	cp := make([]Star, len(stars))
	copy(cp, stars)
	return newStarfield(opts, cp, newRand(opts.Seed))
}

func newStarfield(opts Options, stars []Star, rng *rand.Rand) *Starfield {
	s := &Starfield{
		width:    opts.Width,
		height:   opts.Height,
		maxDepth: opts.MaxDepth,
		focal:    opts.FocalLength,
		fade:     opts.TrailFade,
		stars:    stars,
		colors:   make(map[string]color.RGBA),
		rng:      rng,
	}
	for _, st := range stars {
		if _, ok := s.colors[st.Color]; !ok {
			c := rgba(st.Color, 1)
			s.colors[st.Color] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
		}
	}
	return s
}

func (s *Starfield) Len() int { return len(s.stars) }

func (s *Starfield) MaxDepth() float64 { return s.maxDepth }

// Stars returns a copy of the current star state.
func (s *Starfield) Stars() []Star {
	out := make([]Star, len(s.stars))
	copy(out, s.stars)
	return out
}

// Step moves every star and sends any star at or behind the viewer back to
// the far plane at a fresh lateral position.
func (s *Starfield) Step() {
	s.recycled = 0
	for i := range s.stars {
		st := &s.stars[i]
		st.X += st.VX
		st.Y += st.VY
		st.Z -= st.VZ

		if st.Z <= 0 {
			st.Z = s.maxDepth
			st.X = s.rng.Float64() * s.width
			st.Y = s.rng.Float64() * s.height
			s.recycled++
		}
	}
}

// Project maps a star to screen space with a perspective divide.
func (s *Starfield) Project(st Star) (x, y, r float64) {
	scale := s.focal / st.Z
	return st.X*scale + s.width/2, st.Y*scale + s.height/2, st.Size * scale
}

// Draw fades the previous frame rather than clearing it, then paints each
// star with nearer stars more opaque.
func (s *Starfield) Draw(sf surface.Surface) {
	sf.Fade(s.fade)
	for _, st := range s.stars {
		x, y, r := s.Project(st)
		base := s.colors[st.Color]
		c := color.NRGBA{R: base.R, G: base.G, B: base.B, A: alphaByte(1 - st.Z/s.maxDepth)}
		sf.FillCircle(x, y, r, c)
	}
}

func (s *Starfield) Stats() Stats {
	st := Stats{Particles: len(s.stars), Recycled: s.recycled}
	if len(s.stars) == 0 {
		return st
	}
	sum := 0.0
	for _, p := range s.stars {
		sum += math.Sqrt(p.VX*p.VX + p.VY*p.VY + p.VZ*p.VZ)
	}
	st.MeanSpeed = sum / float64(len(s.stars))
	return st
}
