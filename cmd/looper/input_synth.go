//go:build !portaudio

package main

import (
	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/internal/config"
	"github.com/cwbudde/algo-looper/looper/capture"
)

func openInput(a args, cfg config.Config, now func() float64, log logrus.FieldLogger) (capture.Device, beep.Streamer, func(), error) {
	if !a.Synth {
		log.Warn("built without the portaudio tag, recording the synthetic input")
	}

	return synthInput(cfg, now)
}
