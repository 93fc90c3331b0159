package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

const (
	attack = 10 * time.Millisecond
	// floor is the gain the exponential decay reaches at the end of a tone.
	floor = 0.001
)

// voice renders one Tone: oscillator and envelope in a single streamer.
type voice struct {
	tone  Tone
	rate  beep.SampleRate
	phase float64
	pos   int
	total int
	att   int
}

// NewVoice returns a streamer for t at rate, without its delay.
func NewVoice(t Tone, rate beep.SampleRate) beep.Streamer {
	return &voice{
		tone:  t,
		rate:  rate,
		total: rate.N(t.Duration),
		att:   rate.N(attack),
	}
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if v.pos >= v.total {
			return i, i > 0
		}
		s := oscillate(v.tone.Wave, v.phase) * v.gain()
		samples[i][0] = s
		samples[i][1] = s

		v.phase += v.tone.Freq / float64(v.rate)
		v.phase -= math.Floor(v.phase)
		v.pos++
	}
	return len(samples), true
}

func (v *voice) Err() error { return nil }

// gain ramps linearly to Volume over the attack, then decays exponentially
// to floor at the end of the tone.
func (v *voice) gain() float64 {
	vol := v.tone.Volume
	if v.pos < v.att {
		return vol * float64(v.pos) / float64(v.att)
	}
	span := v.total - v.att
	if span <= 0 || vol <= floor {
		return vol
	}
	frac := float64(v.pos-v.att) / float64(span)
	return vol * math.Pow(floor/vol, frac)
}

func oscillate(w Wave, phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		return triangle(phase)
	case Sawtooth:
		return 2 * (phase - 0.5)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// triangle maps phase in [0,1) to a triangle wave in [-1,1].
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// NewCue mixes the tones of c, each shifted by its delay.
func NewCue(c Cue, rate beep.SampleRate) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(c.Tones))
	for _, t := range c.Tones {
		s := NewVoice(t, rate)
		if t.Delay > 0 {
			s = beep.Seq(beep.Silence(rate.N(t.Delay)), s)
		}
		parts = append(parts, s)
	}
	return beep.Mix(parts...)
}

// Render streams c to completion and returns the left channel.
func Render(c Cue, rate beep.SampleRate) []float64 {
	n := rate.N(c.Length())
	s := beep.Take(n, NewCue(c, rate))

	out := make([]float64, 0, n)
	buf := make([][2]float64, 512)
	for {
		k, ok := s.Stream(buf)
		for i := 0; i < k; i++ {
			out = append(out, buf[i][0])
		}
		if !ok || len(out) >= n {
			break
		}
	}
	return out
}
