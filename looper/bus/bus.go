// Package bus sums track outputs, the live monitor and auxiliary inputs
// into the master output, and records that output on request.
package bus

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/sirupsen/logrus"
)

// Bus is the master bus. It is a beep.Streamer that never drains; the audio
// output pulls it while the control loop adds inputs, changes the level and
// drives the tap.
type Bus struct {
	mu    sync.Mutex
	mixer beep.Mixer
	out   effects.Gain
	level float64

	sampleRate float64
	tap        tap

	log logrus.FieldLogger
}

// New returns an empty bus rendering at sampleRate with the given linear
// master level.
func New(sampleRate, level float64, log logrus.FieldLogger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}

	b := &Bus{sampleRate: sampleRate, log: log.WithField("component", "bus")}
	b.out.Streamer = &b.mixer
	b.setLevel(level)

	return b
}

// SampleRate returns the render rate.
func (b *Bus) SampleRate() float64 { return b.sampleRate }

// Add mixes more inputs into the bus: track outputs, the monitor, or dry and
// processed auxiliary feeds.
func (b *Bus) Add(inputs ...beep.Streamer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mixer.Add(inputs...)
}

// Inputs returns how many inputs are mixed.
func (b *Bus) Inputs() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.mixer.Len()
}

// Level returns the linear master level.
func (b *Bus) Level() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.level
}

// SetLevel sets the linear master level; negative values mute.
func (b *Bus) SetLevel(level float64) {
	b.mu.Lock()
	b.setLevel(level)
	b.mu.Unlock()
}

func (b *Bus) setLevel(level float64) {
	b.level = max(level, 0)
	b.out.Gain = b.level - 1
}

// Stream implements beep.Streamer.
func (b *Bus) Stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, _ := b.out.Stream(samples)
	n = max(n, 0)
	clear(samples[n:])

	b.tap.record(samples)

	return len(samples), true
}

// Err implements beep.Streamer.
func (b *Bus) Err() error {
	return nil
}
