package loopbuf

import (
	"errors"
	"sync"
)

var errSeekRange = errors.New("loopbuf: seek position out of range")

// Player renders a Buffer as an endless stereo loop. Mono buffers feed both
// sides; channels beyond the second are ignored. A Player without a buffer
// emits silence.
//
// Player is safe for one rendering goroutine plus control-side calls to
// Swap, Seek and Position.
type Player struct {
	mu  sync.Mutex
	buf *Buffer
	pos int
}

// NewPlayer returns a Player positioned at frame 0 of buf.
func NewPlayer(buf *Buffer) *Player {
	return &Player{buf: buf}
}

// Stream fills samples with the loop contents and always reports ok.
func (p *Player) Stream(samples [][2]float64) (n int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b := p.buf
	if b == nil || b.frames == 0 || len(b.channels) == 0 {
		clear(samples)
		return len(samples), true
	}

	left := b.channels[0]
	right := left

	if len(b.channels) > 1 {
		right = b.channels[1]
	}

	for i := range samples {
		samples[i][0] = left[p.pos]
		samples[i][1] = right[p.pos]

		p.pos++
		if p.pos >= b.frames {
			p.pos = 0
		}
	}

	return len(samples), true
}

// Err implements beep.Streamer.
func (p *Player) Err() error { return nil }

// Len returns the loop length in frames.
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buf == nil {
		return 0
	}

	return p.buf.frames
}

// Position returns the next frame to be rendered.
func (p *Player) Position() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pos
}

// Seek moves the playhead to frame pos.
func (p *Player) Seek(pos int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	frames := 0
	if p.buf != nil {
		frames = p.buf.frames
	}

	if pos < 0 || (pos >= frames && pos != 0) {
		return errSeekRange
	}

	p.pos = pos

	return nil
}

// Swap replaces the rendered buffer while keeping the playhead, wrapped
// into the new length.
func (p *Player) Swap(buf *Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = buf
	if buf == nil || buf.frames == 0 {
		p.pos = 0
		return
	}

	p.pos %= buf.frames
}

// Buffer returns the buffer currently rendered.
func (p *Player) Buffer() *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.buf
}
