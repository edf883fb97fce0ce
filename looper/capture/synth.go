package capture

import (
	"fmt"
	"math"
	"sync"

	"github.com/gopxl/beep"
)

// Signal returns the sample value of channel ch at absolute frame index.
type Signal func(ch, frame int) float64

// Sine returns a Signal producing a sine at freqHz with the given amplitude
// on every channel.
func Sine(freqHz, sampleRate, amplitude float64) Signal {
	step := 2 * math.Pi * freqHz / sampleRate

	return func(_, frame int) float64 {
		return amplitude * math.Sin(step*float64(frame))
	}
}

// Constant returns a Signal holding value on every channel.
func Constant(value float64) Signal {
	return func(int, int) float64 { return value }
}

// Synth is a Device that renders a deterministic signal instead of reading
// hardware. The captured length is derived from a seconds clock, so takes
// are frame-accurate against the scheduler driving the looper.
type Synth struct {
	Now        func() float64
	SampleRate float64
	Channels   int
	Signal     Signal
	// Jitter is added to the measured frame count of every take, to model
	// capture-timing imprecision.
	Jitter int

	mu     sync.Mutex
	opened int
	closed int
}

// NewSynth returns a Synth with a constant-zero signal.
func NewSynth(now func() float64, sampleRate float64, channels int) *Synth {
	return &Synth{
		Now:        now,
		SampleRate: sampleRate,
		Channels:   channels,
		Signal:     Constant(0),
	}
}

// Open implements Device.
func (s *Synth) Open() (Source, error) {
	if s.Now == nil || s.SampleRate <= 0 || s.Channels <= 0 {
		return nil, fmt.Errorf("%w: synth misconfigured", ErrUnavailable)
	}

	s.mu.Lock()
	s.opened++
	s.mu.Unlock()

	return &synthSource{synth: s, start: -1}, nil
}

// OpenSources returns how many sources are open and not yet closed.
func (s *Synth) OpenSources() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.opened - s.closed
}

type synthSource struct {
	synth  *Synth
	start  float64
	closed bool
}

func (src *synthSource) Start() error {
	if src.closed {
		return fmt.Errorf("%w: source closed", ErrUnavailable)
	}

	src.start = src.synth.Now()

	return nil
}

func (src *synthSource) Stop() (Take, error) {
	s := src.synth
	if src.start < 0 {
		return Take{SampleRate: s.SampleRate}, nil
	}

	elapsed := s.Now() - src.start
	src.start = -1

	frames := max(int(math.Round(elapsed*s.SampleRate))+s.Jitter, 0)

	chans := make([][]float64, s.Channels)
	for ch := range chans {
		data := make([]float64, frames)
		for i := range data {
			data[i] = s.Signal(ch, i)
		}

		chans[ch] = data
	}

	return Take{Channels: chans, SampleRate: s.SampleRate, Frames: frames}, nil
}

func (src *synthSource) Close() error {
	if src.closed {
		return nil
	}

	src.closed = true
	src.synth.mu.Lock()
	src.synth.closed++
	src.synth.mu.Unlock()

	return nil
}

// Live returns an endless stream of the synth signal, standing in for the
// live input on the monitor path. Mono signals are copied to both sides.
func (s *Synth) Live() beep.Streamer {
	return &liveStream{synth: s}
}

type liveStream struct {
	synth *Synth
	frame int
}

func (l *liveStream) Stream(samples [][2]float64) (int, bool) {
	sig := l.synth.Signal
	right := min(1, max(l.synth.Channels-1, 0))

	for i := range samples {
		if sig == nil {
			samples[i] = [2]float64{}
		} else {
			samples[i] = [2]float64{sig(0, l.frame), sig(right, l.frame)}
		}

		l.frame++
	}

	return len(samples), true
}

func (l *liveStream) Err() error { return nil }
