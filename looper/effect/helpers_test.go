package effect

import (
	"github.com/gopxl/beep"
)

const testSampleRate = 8000.0

func testCtx() Context {
	return Context{SampleRate: testSampleRate}
}

// sliceStreamer streams a fixed stereo signal, then silence.
type sliceStreamer struct {
	data [][2]float64
	pos  int
}

func newMonoStreamer(samples []float64) *sliceStreamer {
	data := make([][2]float64, len(samples))
	for i, v := range samples {
		data[i] = [2]float64{v, v}
	}

	return &sliceStreamer{data: data}
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.pos < len(s.data) {
			samples[i] = s.data[s.pos]
			s.pos++

			continue
		}

		samples[i] = [2]float64{}
	}

	return len(samples), true
}

func (s *sliceStreamer) Err() error { return nil }

func render(s beep.Streamer, n int) [][2]float64 {
	out := make([][2]float64, n)
	s.Stream(out)

	return out
}
