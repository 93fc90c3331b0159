package surface

import "image/color"

type OpKind int

const (
	OpClear OpKind = iota
	OpFade
	OpCircle
	OpLine
)

func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpFade:
		return "fade"
	case OpCircle:
		return "circle"
	case OpLine:
		return "line"
	}
	return "unknown"
}

// Op is one recorded draw call. Unused fields are zero.
type Op struct {
	Kind           OpKind
	X0, Y0, X1, Y1 float64
	R, Width       float64
	Alpha          float64
	Color          color.NRGBA
}

// Recorder is a Surface that remembers the calls made on it.
type Recorder struct {
	W, H int
	Ops  []Op
}

func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h, Ops: make([]Op, 0, 64)}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

// Clear drops every op recorded so far; the frame starts over.
func (r *Recorder) Clear() {
	r.Ops = r.Ops[:0]
	r.Ops = append(r.Ops, Op{Kind: OpClear})
}

func (r *Recorder) Fade(alpha float64) {
	r.Ops = append(r.Ops, Op{Kind: OpFade, Alpha: clamp01(alpha)})
}

func (r *Recorder) FillCircle(x, y, rad float64, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, X0: x, Y0: y, R: rad, Color: c})
}

func (r *Recorder) Line(x0, y0, x1, y1, width float64, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Width: width, Color: c})
}

// Count returns how many ops of the given kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the recorded ops of one kind, in call order.
func (r *Recorder) Filter(kind OpKind) []Op {
	out := make([]Op, 0)
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Reset forgets everything without recording a clear.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
