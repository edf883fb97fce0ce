//go:build portaudio

package main

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/internal/config"
	"github.com/cwbudde/algo-looper/internal/paudio"
	"github.com/cwbudde/algo-looper/looper/capture"
)

func openInput(a args, cfg config.Config, now func() float64, log logrus.FieldLogger) (capture.Device, beep.Streamer, func(), error) {
	if a.Synth {
		return synthInput(cfg, now)
	}

	err := paudio.Init()
	if err != nil {
		return nil, nil, nil, err
	}

	frames := int(math.Round(cfg.Latency * cfg.SampleRate / 4))

	dev := &paudio.Device{
		SampleRate:      cfg.SampleRate,
		Channels:        cfg.Channels,
		FramesPerBuffer: frames,
		Logger:          log,
	}

	var (
		live  beep.Streamer
		input *paudio.Live
	)

	if cfg.Monitor.Enabled {
		input, err = paudio.OpenLive(cfg.SampleRate, cfg.Channels, frames, 8*frames)
		if err != nil {
			log.WithError(err).Warn("live monitor input unavailable")
		} else {
			live = input
		}
	}

	cleanup := func() {
		if input != nil {
			_ = input.Close()
		}

		if err := paudio.Terminate(); err != nil {
			log.WithError(err).Warn("portaudio shutdown")
		}
	}

	return dev, live, cleanup, nil
}
