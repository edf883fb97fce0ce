package main

import (
	"github.com/gopxl/beep"

	"github.com/cwbudde/algo-looper/internal/config"
	"github.com/cwbudde/algo-looper/looper/capture"
)

// synthFrequency is the pitch of the synthetic input, A3.
const synthFrequency = 220

func synthInput(cfg config.Config, now func() float64) (capture.Device, beep.Streamer, func(), error) {
	s := capture.NewSynth(now, cfg.SampleRate, cfg.Channels)
	s.Signal = capture.Sine(synthFrequency, cfg.SampleRate, 0.2)

	return s, s.Live(), func() {}, nil
}
