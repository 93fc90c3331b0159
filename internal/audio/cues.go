package audio

import (
	"sync"
	"time"
)

// Cues is the set of interface sounds a host can trigger. Implementations
// must be safe to call from any goroutine and must never block on output.
type Cues interface {
	Hover()
	Click()
	Theme()
	Success()
	Nav()
	CardHover()
}

type Wave int

const (
	Sine Wave = iota
	Square
	Triangle
	Sawtooth
)

func (w Wave) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	}
	return "unknown"
}

// Tone is one enveloped oscillator note. Delay offsets it from the start
// of its cue.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Wave     Wave
	Volume   float64
	Delay    time.Duration
}

// Cue is a named group of tones played together.
type Cue struct {
	Name  string
	Tones []Tone
}

var (
	HoverCue = Cue{"hover", []Tone{{Freq: 800, Duration: 100 * time.Millisecond, Wave: Sine, Volume: 0.05}}}
	ClickCue = Cue{"click", []Tone{{Freq: 1000, Duration: 150 * time.Millisecond, Wave: Square, Volume: 0.08}}}
	ThemeCue = Cue{"theme", []Tone{{Freq: 600, Duration: 200 * time.Millisecond, Wave: Triangle, Volume: 0.06}}}
	// C5, E5, G5 arpeggio
	SuccessCue = Cue{"success", []Tone{
		{Freq: 523, Duration: 100 * time.Millisecond, Wave: Sine, Volume: 0.04},
		{Freq: 659, Duration: 100 * time.Millisecond, Wave: Sine, Volume: 0.04, Delay: 100 * time.Millisecond},
		{Freq: 784, Duration: 200 * time.Millisecond, Wave: Sine, Volume: 0.04, Delay: 200 * time.Millisecond},
	}}
	NavCue       = Cue{"nav", []Tone{{Freq: 440, Duration: 80 * time.Millisecond, Wave: Sine, Volume: 0.03}}}
	CardHoverCue = Cue{"card-hover", []Tone{{Freq: 660, Duration: 60 * time.Millisecond, Wave: Sine, Volume: 0.02}}}
)

// AllCues lists every cue in a stable order.
func AllCues() []Cue {
	return []Cue{HoverCue, ClickCue, ThemeCue, SuccessCue, NavCue, CardHoverCue}
}

// Length is the time from the start of the cue to the end of its last tone.
func (c Cue) Length() time.Duration {
	var end time.Duration
	for _, t := range c.Tones {
		if d := t.Delay + t.Duration; d > end {
			end = d
		}
	}
	return end
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Hover()     {}
func (Nop) Click()     {}
func (Nop) Theme()     {}
func (Nop) Success()   {}
func (Nop) Nav()       {}
func (Nop) CardHover() {}

// Recorder remembers which cues were triggered. Tests use it in place of
// a sound device.
type Recorder struct {
	mu     sync.Mutex
	played []string
}

func (r *Recorder) add(name string) {
	r.mu.Lock()
	r.played = append(r.played, name)
	r.mu.Unlock()
}

// Played returns the cue names in trigger order.
func (r *Recorder) Played() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.played))
	copy(out, r.played)
	return out
}

func (r *Recorder) Hover()     { r.add(HoverCue.Name) }
func (r *Recorder) Click()     { r.add(ClickCue.Name) }
func (r *Recorder) Theme()     { r.add(ThemeCue.Name) }
func (r *Recorder) Success()   { r.add(SuccessCue.Name) }
func (r *Recorder) Nav()       { r.add(NavCue.Name) }
func (r *Recorder) CardHover() { r.add(CardHoverCue.Name) }
