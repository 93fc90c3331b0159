package metrics

import (
	"sync"

	"github.com/san-kum/driftfield/internal/frame"
)

// Metric folds frame stats into one number.
type Metric interface {
	Name() string
	Observe(s frame.Stats)
	Value() float64
	Reset()
}

// Set feeds every frame to a group of metrics. It is a frame.Observer and
// safe to read while frames are arriving.
type Set struct {
	mu      sync.Mutex
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

// Default is frame time, connections, speed and the 60fps budget.
func Default() *Set {
	return NewSet(NewFrameTime(), NewConnections(), NewMeanSpeed(), NewBudget(FrameBudget60))
}

func (s *Set) Add(m Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
}

func (s *Set) OnFrame(st frame.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Observe(st)
	}
}

// Values returns name to value for every metric.
func (s *Set) Values() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns metric names in registration order.
func (s *Set) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	return names
}

func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Reset()
	}
}
