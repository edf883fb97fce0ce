package effect

import (
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/gopxl/beep"
)

// blockStage adapts per-channel in-place block processors to the stereo
// beep streaming interface. The input is split into left and right blocks,
// processed, and interleaved back.
type blockStage struct {
	in      beep.Streamer
	process func(left, right []float64)

	left  []float64
	right []float64
}

func (s *blockStage) Connect(in beep.Streamer) beep.Streamer {
	s.in = in

	return s
}

func (s *blockStage) Stream(samples [][2]float64) (int, bool) {
	if s.in == nil {
		clear(samples)
		return len(samples), true
	}

	n, ok := s.in.Stream(samples)
	if n <= 0 || s.process == nil {
		return n, ok
	}

	s.left = core.EnsureLen(s.left, n)
	s.right = core.EnsureLen(s.right, n)

	for i := range samples[:n] {
		s.left[i] = samples[i][0]
		s.right[i] = samples[i][1]
	}

	s.process(s.left, s.right)

	for i := range samples[:n] {
		samples[i][0] = s.left[i]
		samples[i][1] = s.right[i]
	}

	return n, ok
}

func (s *blockStage) Err() error {
	if s.in == nil {
		return nil
	}

	return s.in.Err()
}

func (s *blockStage) release() {
	s.in = nil
	s.process = nil
	s.left = nil
	s.right = nil
}
