package metrics

import "github.com/san-kum/driftfield/internal/frame"

// Connections is the mean number of link lines per frame.
type Connections struct {
	name    string
	sum     int
	samples int
}

func NewConnections() *Connections {
	return &Connections{name: "connections"}
}

func (c *Connections) Name() string { return c.name }

func (c *Connections) Observe(s frame.Stats) {
	c.sum += s.Links
	c.samples++
}

func (c *Connections) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Connections) Reset() {
	c.sum = 0
	c.samples = 0
}

// MeanSpeed averages the per-frame mean particle speed.
type MeanSpeed struct {
	name    string
	sum     float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(s frame.Stats) {
	m.sum += s.MeanSpeed
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}

// Recycles counts stars sent back to the far plane.
type Recycles struct {
	name  string
	total int
}

func NewRecycles() *Recycles {
	return &Recycles{name: "recycled"}
}

func (r *Recycles) Name() string { return r.name }

func (r *Recycles) Observe(s frame.Stats) { r.total += s.Recycled }

func (r *Recycles) Value() float64 { return float64(r.total) }

func (r *Recycles) Reset() { r.total = 0 }
