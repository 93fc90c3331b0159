package metrics

import (
	"time"

	"github.com/san-kum/driftfield/internal/frame"
)

// FrameBudget60 is the time one frame may take at 60fps.
const FrameBudget60 = time.Second / 60

// FrameTime is the mean time spent in step and draw, in milliseconds.
type FrameTime struct {
	name    string
	sum     time.Duration
	samples int
}

func NewFrameTime() *FrameTime {
	return &FrameTime{name: "frame_ms"}
}

func (f *FrameTime) Name() string { return f.name }

func (f *FrameTime) Observe(s frame.Stats) {
	f.sum += s.Elapsed
	f.samples++
}

func (f *FrameTime) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return float64(f.sum) / float64(f.samples) / float64(time.Millisecond)
}

func (f *FrameTime) Reset() {
	f.sum = 0
	f.samples = 0
}

// Budget is the fraction of frames that finished within the budget.
type Budget struct {
	name       string
	budget     time.Duration
	violations int
	samples    int
}

func NewBudget(budget time.Duration) *Budget {
	return &Budget{
		name:   "within_budget",
		budget: budget,
	}
}

func (b *Budget) Name() string { return b.name }

func (b *Budget) Observe(s frame.Stats) {
	b.samples++
	if s.Elapsed > b.budget {
		b.violations++
	}
}

func (b *Budget) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Budget) Reset() {
	b.violations = 0
	b.samples = 0
}

// Series keeps the most recent frame times for charting.
type Series struct {
	name string
	size int
	data []float64
}

func NewSeries(size int) *Series {
	return &Series{name: "frame_ms_series", size: size, data: make([]float64, 0, size)}
}

func (s *Series) Name() string { return s.name }

func (s *Series) Observe(st frame.Stats) {
	if len(s.data) >= s.size {
		s.data = s.data[1:]
	}
	s.data = append(s.data, float64(st.Elapsed)/float64(time.Millisecond))
}

// Value is the newest sample.
func (s *Series) Value() float64 {
	if len(s.data) == 0 {
		return 0
	}
	return s.data[len(s.data)-1]
}

func (s *Series) Reset() { s.data = s.data[:0] }

// Data returns a copy of the window, oldest first.
func (s *Series) Data() []float64 {
	out := make([]float64, len(s.data))
	copy(out, s.data)
	return out
}
