package loopbuf

import (
	"errors"
	"math"
)

// ErrLengthMismatch describes a take whose frame count differs from its
// target length. Commits recover from it by truncating or zero-padding, so
// it only ever appears in log fields.
var ErrLengthMismatch = errors.New("commit length mismatch")

// Buffer is an immutable multi-channel block of samples.
type Buffer struct {
	channels   [][]float64
	frames     int
	sampleRate float64
}

// New wraps channels without copying; the caller hands over ownership.
// Channels shorter than the longest one are zero-padded.
func New(channels [][]float64, sampleRate float64) *Buffer {
	frames := 0
	for _, ch := range channels {
		frames = max(frames, len(ch))
	}

	out := make([][]float64, len(channels))
	for i, ch := range channels {
		out[i] = resize(ch, frames)
	}

	return &Buffer{channels: out, frames: frames, sampleRate: sampleRate}
}

// Silence returns a zero-filled buffer.
func Silence(channels, frames int, sampleRate float64) *Buffer {
	chans := make([][]float64, max(channels, 0))
	for i := range chans {
		chans[i] = make([]float64, max(frames, 0))
	}

	return New(chans, sampleRate)
}

// Frames returns the length in frames.
func (b *Buffer) Frames() int { return b.frames }

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() float64 { return b.sampleRate }

// Duration returns the length in seconds.
func (b *Buffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}

	return float64(b.frames) / b.sampleRate
}

// Channel returns the samples of channel i. The slice must not be modified.
func (b *Buffer) Channel(i int) []float64 {
	if i < 0 || i >= len(b.channels) {
		return nil
	}

	return b.channels[i]
}

// Frame returns the sample of channel ch at frame i, or 0 outside the buffer.
func (b *Buffer) Frame(ch, i int) float64 {
	if ch < 0 || ch >= len(b.channels) || i < 0 || i >= b.frames {
		return 0
	}

	return b.channels[ch][i]
}

// Fit returns a buffer of exactly frames frames, truncating or zero-padding
// every channel. It returns b itself when the length already matches.
func (b *Buffer) Fit(frames int) *Buffer {
	frames = max(frames, 0)
	if frames == b.frames {
		return b
	}

	out := make([][]float64, len(b.channels))
	for i, ch := range b.channels {
		out[i] = resize(ch, frames)
	}

	return &Buffer{channels: out, frames: frames, sampleRate: b.sampleRate}
}

// Overdub returns b with take summed in sample by sample. The result keeps
// b's length; take is fit to it first. The channel count is the larger of
// the two, with missing channels contributing silence.
func (b *Buffer) Overdub(take *Buffer) *Buffer {
	if take == nil {
		return b
	}

	take = take.Fit(b.frames)
	n := max(len(b.channels), len(take.channels))

	out := make([][]float64, n)
	for ch := range out {
		mixed := make([]float64, b.frames)

		if ch < len(b.channels) {
			copy(mixed, b.channels[ch])
		}

		if ch < len(take.channels) {
			for i, v := range take.channels[ch] {
				mixed[i] += v
			}
		}

		out[ch] = mixed
	}

	return &Buffer{channels: out, frames: b.frames, sampleRate: b.sampleRate}
}

// FramesFor converts seconds to the nearest whole number of frames.
func FramesFor(seconds, sampleRate float64) int {
	if seconds <= 0 || sampleRate <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}

	return int(math.Round(seconds * sampleRate))
}

// resize returns a copy of s with length n; new elements are zero.
func resize(s []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, s)

	return out
}
