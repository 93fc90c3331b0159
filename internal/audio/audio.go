package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = beep.SampleRate(44100)
	BufferSize = 1024
)

// Player sends cues to the default output device. Cues are mixed with a
// beep.Mixer that the portaudio callback drains.
type Player struct {
	Stream *portaudio.Stream

	mu     sync.Mutex
	mixer  *beep.Mixer
	buf    [][2]float64
	active bool
}

func NewPlayer() *Player {
	return &Player{
		mixer: &beep.Mixer{},
		buf:   make([][2]float64, BufferSize),
	}
}

// Start opens a stereo output-only stream.
func (p *Player) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(SampleRate), BufferSize, p.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start output stream: %w", err)
	}

	p.mu.Lock()
	p.Stream = stream
	p.active = true
	p.mu.Unlock()
	return nil
}

// Stop closes the stream. Stop is safe to call more than once.
func (p *Player) Stop() {
	p.mu.Lock()
	stream := p.Stream
	wasActive := p.active
	p.Stream = nil
	p.active = false
	p.mu.Unlock()

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
	if wasActive {
		portaudio.Terminate()
	}
}

func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Player) process(out [][]float32) {
	n := len(out[0])
	if n > len(p.buf) {
		p.buf = make([][2]float64, n)
	}
	buf := p.buf[:n]
	for i := range buf {
		buf[i] = [2]float64{}
	}

	p.mu.Lock()
	p.mixer.Stream(buf)
	p.mu.Unlock()

	for i := 0; i < n; i++ {
		out[0][i] = float32(buf[i][0])
		out[1][i] = float32(buf[i][1])
	}
}

// Play queues c on the mixer. Without an open stream it does nothing.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	p.mixer.Add(NewCue(c, SampleRate))
}

// Queued reports how many cues are still sounding.
func (p *Player) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

func (p *Player) Hover()     { p.Play(HoverCue) }
func (p *Player) Click()     { p.Play(ClickCue) }
func (p *Player) Theme()     { p.Play(ThemeCue) }
func (p *Player) Success()   { p.Play(SuccessCue) }
func (p *Player) Nav()       { p.Play(NavCue) }
func (p *Player) CardHover() { p.Play(CardHoverCue) }

// Open returns a started Player when enabled, or Nop when sound is off or
// the device cannot be opened. The returned stop func is always safe to
// call.
func Open(enabled bool, log *slog.Logger) (Cues, func()) {
	if !enabled {
		return Nop{}, func() {}
	}
	p := NewPlayer()
	if err := p.Start(); err != nil {
		log.Warn("sound disabled", "err", err)
		return Nop{}, func() {}
	}
	return p, p.Stop
}
