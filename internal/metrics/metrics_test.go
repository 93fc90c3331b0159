package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/surface"
)

func stats(elapsed time.Duration, links int, speed float64) frame.Stats {
	return frame.Stats{Elapsed: elapsed, Stats: field.Stats{Links: links, MeanSpeed: speed}}
}

func TestFrameTime(t *testing.T) {
	m := NewFrameTime()
	m.Observe(stats(2*time.Millisecond, 0, 0))
	m.Observe(stats(4*time.Millisecond, 0, 0))

	if math.Abs(m.Value()-3) > 1e-9 {
		t.Errorf("expected 3ms, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestBudget(t *testing.T) {
	b := NewBudget(10 * time.Millisecond)
	if b.Value() != 1 {
		t.Error("no frames means fully within budget")
	}
	b.Observe(stats(5*time.Millisecond, 0, 0))
	b.Observe(stats(20*time.Millisecond, 0, 0))
	if b.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", b.Value())
	}
}

func TestConnectionsAndSpeed(t *testing.T) {
	c := NewConnections()
	s := NewMeanSpeed()
	for _, st := range []frame.Stats{stats(0, 4, 0.1), stats(0, 6, 0.3)} {
		c.Observe(st)
		s.Observe(st)
	}
	if c.Value() != 5 {
		t.Errorf("expected 5 connections, got %f", c.Value())
	}
	if math.Abs(s.Value()-0.2) > 1e-9 {
		t.Errorf("expected 0.2 speed, got %f", s.Value())
	}
}

func TestSeriesWindow(t *testing.T) {
	s := NewSeries(3)
	for i := 1; i <= 5; i++ {
		s.Observe(stats(time.Duration(i)*time.Millisecond, 0, 0))
	}
	data := s.Data()
	if len(data) != 3 || data[0] != 3 || data[2] != 5 {
		t.Errorf("unexpected window %v", data)
	}
	if s.Value() != 5 {
		t.Errorf("expected newest sample 5, got %f", s.Value())
	}
}

func TestSetObservesAnimator(t *testing.T) {
	m := frame.NewManual(time.Unix(0, 0), time.Millisecond)
	anim := frame.New(m,
		func(w, h int) (surface.Surface, error) { return surface.NewRecorder(w, h), nil },
		func(o field.Options) (field.Simulation, error) { return field.NewField(o), nil },
		field.Options{Width: 100, Height: 100, Count: 20, Seed: 3},
	)
	set := Default()
	set.Add(NewRecycles())
	anim.AddObserver(set)

	if err := anim.Start(); err != nil {
		t.Fatal(err)
	}
	m.AdvanceN(10)

	vals := set.Values()
	for _, name := range []string{"frame_ms", "connections", "mean_speed", "within_budget", "recycled"} {
		if _, ok := vals[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if vals["mean_speed"] <= 0 || vals["mean_speed"] > field.MaxDrift*math.Sqrt2 {
		t.Errorf("implausible mean speed %f", vals["mean_speed"])
	}
	if vals["recycled"] != 0 {
		t.Error("a 2D field never recycles")
	}

	set.Reset()
	if set.Values()["connections"] != 0 {
		t.Error("expected reset")
	}
	if len(set.Names()) != 5 {
		t.Errorf("unexpected names %v", set.Names())
	}
}
