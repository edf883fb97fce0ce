package bus

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/cwbudde/algo-looper/looper/loopbuf"
)

// ErrNoRecording is returned by Export when the tap holds nothing.
var ErrNoRecording = errors.New("bus: no recording")

// exportPrecision is the WAV sample width in bytes.
const exportPrecision = 2

type tap struct {
	active bool
	left   []float64
	right  []float64
	last   *loopbuf.Buffer
}

func (t *tap) record(samples [][2]float64) {
	if !t.active {
		return
	}

	for _, s := range samples {
		t.left = append(t.left, s[0])
		t.right = append(t.right, s[1])
	}
}

// StartTap begins recording the master output. It reports false if a
// recording is already running.
func (b *Bus) StartTap() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tap.active {
		return false
	}

	b.tap.active = true
	b.tap.left = nil
	b.tap.right = nil

	b.log.Info("recording tap started")

	return true
}

// Tapping reports whether the tap is recording.
func (b *Bus) Tapping() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.tap.active
}

// StopTap ends the recording and returns it. The result is also kept for
// Export. It returns nil if no recording was running.
func (b *Bus) StopTap() *loopbuf.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.tap.active {
		return nil
	}

	buf := loopbuf.New([][]float64{b.tap.left, b.tap.right}, b.sampleRate)
	b.tap = tap{last: buf}

	b.log.WithField("duration", buf.Duration()).Info("recording tap stopped")

	return buf
}

// Recording returns the last stopped recording, nil if there is none.
func (b *Bus) Recording() *loopbuf.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.tap.last
}

// Export writes the last stopped recording to w as 16-bit stereo WAV.
func (b *Bus) Export(w io.WriteSeeker) error {
	buf := b.Recording()
	if buf == nil || buf.Frames() == 0 {
		return ErrNoRecording
	}

	return Encode(w, buf)
}

// Encode writes buf to w as 16-bit stereo WAV.
func Encode(w io.WriteSeeker, buf *loopbuf.Buffer) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(math.Round(buf.SampleRate())),
		NumChannels: 2,
		Precision:   exportPrecision,
	}

	err := wav.Encode(w, beep.Take(buf.Frames(), loopbuf.NewPlayer(buf)), format)
	if err != nil {
		return fmt.Errorf("bus: encode wav: %w", err)
	}

	return nil
}
