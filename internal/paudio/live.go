//go:build portaudio

package paudio

import (
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
)

// Live is a continuously running input stream exposed as a beep.Streamer
// for the monitor path. Underruns stream silence; overruns drop the oldest
// frames.
type Live struct {
	stream *pa.Stream

	mu   sync.Mutex
	ring [][2]float64
	head int
	size int
}

// OpenLive starts an input stream buffering up to capacity frames.
func OpenLive(sampleRate float64, channels, framesPerBuffer, capacity int) (*Live, error) {
	l := &Live{ring: make([][2]float64, max(capacity, framesPerBuffer, 1))}

	stream, err := pa.OpenDefaultStream(channels, 0, sampleRate, framesPerBuffer, l.process)
	if err != nil {
		return nil, fmt.Errorf("paudio: open live input: %w", err)
	}

	err = stream.Start()
	if err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("paudio: start live input: %w", err)
	}

	l.stream = stream

	return l, nil
}

func (l *Live) process(in [][]float32) {
	if len(in) == 0 {
		return
	}

	right := in[len(in)-1]

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, v := range in[0] {
		tail := (l.head + l.size) % len(l.ring)
		l.ring[tail] = [2]float64{float64(v), float64(right[i])}

		if l.size < len(l.ring) {
			l.size++
		} else {
			l.head = (l.head + 1) % len(l.ring)
		}
	}
}

// Stream implements beep.Streamer.
func (l *Live) Stream(samples [][2]float64) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range samples {
		if l.size == 0 {
			clear(samples[i:])
			break
		}

		samples[i] = l.ring[l.head]
		l.head = (l.head + 1) % len(l.ring)
		l.size--
	}

	return len(samples), true
}

// Err implements beep.Streamer.
func (l *Live) Err() error { return nil }

// Close stops the input stream.
func (l *Live) Close() error {
	err := l.stream.Close()
	if err != nil {
		return fmt.Errorf("paudio: close live input: %w", err)
	}

	return nil
}
