// Command looper runs a multi-track, tempo-synced audio looper controlled by
// lines on standard input.
//
// Usage:
//
//	looper [--config session.yaml] [--synth] [--log-level debug] [--export mix.wav]
//
// Type help at the prompt for the command list. Track 1 is the master: its
// first recording sets the tempo, and every other track records in phase
// with it.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/internal/config"
	"github.com/cwbudde/algo-looper/looper/bus"
	"github.com/cwbudde/algo-looper/looper/schedule"
	"github.com/cwbudde/algo-looper/looper/transport"
)

type args struct {
	Config     string `arg:"-c,--config" help:"session YAML file"`
	Synth      bool   `arg:"--synth" help:"record a synthetic sine instead of the sound card"`
	LogLevel   string `arg:"--log-level" help:"override the session log level"`
	Export     string `arg:"--export" help:"default WAV path for the export command"`
	DumpConfig bool   `arg:"--dump-config" help:"print the effective session as YAML and exit"`
}

func (args) Description() string {
	return "looper: multi-track tempo-synchronized audio looper"
}

func main() {
	var a args
	arg.MustParse(&a)

	err := run(a, os.Stdin, os.Stdout)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(a args) (config.Config, error) {
	cfg := config.Default()

	if a.Config != "" {
		var err error

		cfg, err = config.Load(a.Config)
		if err != nil {
			return config.Config{}, err
		}
	}

	if a.LogLevel != "" {
		cfg.LogLevel = a.LogLevel
	}

	if a.Export != "" {
		cfg.Export = a.Export
	}

	return cfg, cfg.Validate()
}

func run(a args, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(a)
	if err != nil {
		return err
	}

	if a.DumpConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}

		_, err = out.Write(data)

		return err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := schedule.NewLoop()
	go loop.Run(ctx)

	dev, live, closeInput, err := openInput(a, cfg, loop.Now, log)
	if err != nil {
		return err
	}
	defer closeInput()

	m, err := transport.New(transport.Config{
		Tracks:     cfg.TrackSpecs(),
		SampleRate: cfg.SampleRate,
		MaxRecord:  cfg.MaxRecord,
		Scheduler:  loop,
		Device:     dev,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	defer func() {
		if loop.Call(m.Close) != nil {
			m.Close()
		}
	}()

	err = loop.Call(func() {
		if err := cfg.ApplyEffects(m); err != nil {
			log.WithError(err).Warn("initial effect chains incomplete")
		}
	})
	if err != nil {
		return err
	}

	master := bus.New(cfg.SampleRate, cfg.MasterLevel, log)
	for _, tr := range m.Tracks() {
		master.Add(tr.Output())
	}

	if cfg.Monitor.Enabled && live != nil {
		mon, err := bus.NewMonitor(live, cfg.SampleRate, m.Clock(), cfg.MonitorConfig(), log)
		if err != nil {
			return err
		}
		defer mon.Close()

		master.Add(mon)
	}

	sr := beep.SampleRate(math.Round(cfg.SampleRate))

	err = speaker.Init(sr, sr.N(time.Duration(cfg.Latency*float64(time.Second))))
	if err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	defer speaker.Close()

	speaker.Play(master)

	log.WithFields(logrus.Fields{"rate": cfg.SampleRate, "tracks": len(cfg.Tracks)}).Info("looper running")

	s := &session{m: m, bus: master, export: cfg.Export}

	return repl(ctx, loop.Call, s, in, out)
}

// repl reads command lines from in until EOF, quit or ctx ends. Commands run
// through call on the control loop.
func repl(ctx context.Context, call func(func()) error, s *session, in io.Reader, out io.Writer) error {
	lines := make(chan string)

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	prompt := func() { _, _ = fmt.Fprint(out, "> ") }
	prompt()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			c, err := parseCommand(line)
			if err != nil {
				_, _ = fmt.Fprintln(out, err)

				prompt()

				continue
			}

			var msg string

			callErr := call(func() { msg, err = s.exec(c) })
			if callErr != nil {
				return nil
			}

			if errors.Is(err, errQuit) {
				return nil
			}

			if err != nil {
				msg = err.Error()
			}

			if msg = strings.TrimSpace(msg); msg != "" {
				_, _ = fmt.Fprintln(out, msg)
			}

			prompt()
		}
	}
}
