//go:build portaudio

package paudio

import (
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/looper/capture"
)

// Init initializes PortAudio. Pair it with Terminate.
func Init() error {
	err := pa.Initialize()
	if err != nil {
		return fmt.Errorf("paudio: initialize: %w", err)
	}

	return nil
}

// Terminate releases PortAudio.
func Terminate() error {
	err := pa.Terminate()
	if err != nil {
		return fmt.Errorf("paudio: terminate: %w", err)
	}

	return nil
}

// Device opens capture sessions on the default input device.
type Device struct {
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	Logger          logrus.FieldLogger
}

// Open implements capture.Device. Each source owns its own input stream.
func (d *Device) Open() (capture.Source, error) {
	if d.Channels < 1 || d.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: paudio: bad device settings", capture.ErrUnavailable)
	}

	src := &source{
		sampleRate: d.SampleRate,
		chans:      make([][]float64, d.Channels),
	}

	stream, err := pa.OpenDefaultStream(d.Channels, 0, d.SampleRate, d.FramesPerBuffer, src.process)
	if err != nil {
		return nil, fmt.Errorf("%w: paudio: open input: %w", capture.ErrUnavailable, err)
	}

	src.stream = stream

	if d.Logger != nil {
		info := stream.Info()
		d.Logger.WithFields(logrus.Fields{
			"rate":    info.SampleRate,
			"latency": info.InputLatency.Seconds(),
		}).Debug("capture stream opened")
	}

	return src, nil
}

type source struct {
	stream     *pa.Stream
	sampleRate float64

	mu        sync.Mutex
	recording bool
	chans     [][]float64
	closed    bool
}

// process runs on the PortAudio callback thread.
func (s *source) process(in [][]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return
	}

	for ch := range s.chans {
		if ch >= len(in) {
			break
		}

		for _, v := range in[ch] {
			s.chans[ch] = append(s.chans[ch], float64(v))
		}
	}
}

func (s *source) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: paudio: source closed", capture.ErrUnavailable)
	}

	s.recording = true
	s.mu.Unlock()

	err := s.stream.Start()
	if err != nil {
		return fmt.Errorf("%w: paudio: start: %w", capture.ErrUnavailable, err)
	}

	return nil
}

func (s *source) Stop() (capture.Take, error) {
	err := s.stream.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recording = false
	chans := s.chans
	s.chans = make([][]float64, len(chans))

	frames := len(chans[0])
	for _, ch := range chans[1:] {
		frames = min(frames, len(ch))
	}

	for i := range chans {
		chans[i] = chans[i][:frames]
	}

	take := capture.Take{Channels: chans, SampleRate: s.sampleRate, Frames: frames}
	if err != nil {
		return take, fmt.Errorf("paudio: stop: %w", err)
	}

	return take, nil
}

func (s *source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	s.recording = false
	s.mu.Unlock()

	err := s.stream.Close()
	if err != nil {
		return fmt.Errorf("paudio: close: %w", err)
	}

	return nil
}
