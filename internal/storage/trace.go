package storage

import (
	"math"

	"github.com/san-kum/driftfield/internal/field"
)

// Sample is one particle at one tick. Z and VZ are zero for the 2D field.
type Sample struct {
	Tick       int
	Index      int
	X, Y, Z    float64
	VX, VY, VZ float64
}

// Trace is the recorded motion of a run, ordered by tick then index.
type Trace struct {
	Samples []Sample
}

// Capture appends the current state of sim as tick. Simulations other
// than the built-in field and starfield are ignored.
func (t *Trace) Capture(sim field.Simulation, tick int) {
	switch s := sim.(type) {
	case *field.Field:
		for i, p := range s.Particles() {
			t.Samples = append(t.Samples, Sample{Tick: tick, Index: i, X: p.X, Y: p.Y, VX: p.VX, VY: p.VY})
		}
	case *field.Starfield:
		for i, st := range s.Stars() {
			t.Samples = append(t.Samples, Sample{Tick: tick, Index: i, X: st.X, Y: st.Y, Z: st.Z, VX: st.VX, VY: st.VY, VZ: st.VZ})
		}
	}
}

// Ticks is the number of distinct ticks recorded.
func (t *Trace) Ticks() int {
	if t == nil || len(t.Samples) == 0 {
		return 0
	}
	n, last := 0, -1
	for _, s := range t.Samples {
		if s.Tick != last {
			n++
			last = s.Tick
		}
	}
	return n
}

// Series returns one value per tick computed by fn over that tick's
// samples.
func (t *Trace) Series(fn func([]Sample) float64) []float64 {
	out := make([]float64, 0)
	start := 0
	for i := 1; i <= len(t.Samples); i++ {
		if i == len(t.Samples) || t.Samples[i].Tick != t.Samples[start].Tick {
			out = append(out, fn(t.Samples[start:i]))
			start = i
		}
	}
	return out
}

// MeanX is the mean horizontal position of a tick.
func MeanX(ss []Sample) float64 {
	if len(ss) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range ss {
		sum += s.X
	}
	return sum / float64(len(ss))
}

// MeanDepth is the mean z of a tick.
func MeanDepth(ss []Sample) float64 {
	if len(ss) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range ss {
		sum += s.Z
	}
	return sum / float64(len(ss))
}

// Spread is the RMS distance from the tick's centroid.
func Spread(ss []Sample) float64 {
	if len(ss) == 0 {
		return 0
	}
	cx, cy := 0.0, 0.0
	for _, s := range ss {
		cx += s.X
		cy += s.Y
	}
	cx /= float64(len(ss))
	cy /= float64(len(ss))
	sum := 0.0
	for _, s := range ss {
		sum += (s.X-cx)*(s.X-cx) + (s.Y-cy)*(s.Y-cy)
	}
	return math.Sqrt(sum / float64(len(ss)))
}
