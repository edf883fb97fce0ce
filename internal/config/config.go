// Package config loads the YAML session file of the looper host.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-looper/looper/bus"
	"github.com/cwbudde/algo-looper/looper/effect"
	"github.com/cwbudde/algo-looper/looper/track"
	"github.com/cwbudde/algo-looper/looper/transport"
)

// Config is one looper session.
type Config struct {
	SampleRate float64 `yaml:"sample_rate"`
	// Latency is the audio output buffer length in seconds.
	Latency float64 `yaml:"latency"`
	// Channels is the number of capture channels.
	Channels int `yaml:"channels"`
	// MaxRecord auto-stops master recordings, in seconds. Zero disables it.
	MaxRecord   float64 `yaml:"max_record"`
	LogLevel    string  `yaml:"log_level"`
	MasterLevel float64 `yaml:"master_level"`
	Tracks      []Track `yaml:"tracks"`
	Monitor     Monitor `yaml:"monitor"`
	// Export is the default WAV path of the recording tap.
	Export string `yaml:"export,omitempty"`
}

// Track configures one track; the first entry is the master. An omitted
// divider or level means unity.
type Track struct {
	Divider track.Divider `yaml:"divider"`
	Level   float64       `yaml:"level"`
	Effects []Effect      `yaml:"effects,omitempty"`
}

// Effect is one initial effect chain entry.
type Effect struct {
	Type   string             `yaml:"type"`
	Bypass bool               `yaml:"bypass,omitempty"`
	Params map[string]float64 `yaml:"params,omitempty,flow"`
}

// Monitor configures the live monitor path.
type Monitor struct {
	Enabled  bool    `yaml:"enabled"`
	Level    float64 `yaml:"level"`
	Delay    float64 `yaml:"delay"`
	Feedback float64 `yaml:"feedback"`
	Mix      float64 `yaml:"mix"`
}

// Default returns a four-track session: master, one track at the master
// length, one at twice and one at four times the master length.
func Default() Config {
	mon := bus.DefaultMonitorConfig()

	return Config{
		SampleRate:  44100,
		Latency:     0.1,
		Channels:    2,
		MaxRecord:   60,
		LogLevel:    "info",
		MasterLevel: 1,
		Tracks: []Track{
			{Divider: track.Unity, Level: 1},
			{Divider: track.Unity, Level: 1},
			{Divider: track.Divider{Num: 2, Den: 1}, Level: 1},
			{Divider: track.Divider{Num: 4, Den: 1}, Level: 1},
		},
		Monitor: Monitor{
			Level:    mon.Level,
			Delay:    mon.DefaultDelay,
			Feedback: mon.Feedback,
			Mix:      mon.Mix,
		},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Keys missing
// from data keep their defaults; a tracks list replaces the default one.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}

	return out, nil
}

// Validate reports every problem in c.
func (c Config) Validate() error {
	var errs []error

	if !positive(c.SampleRate) {
		errs = append(errs, fmt.Errorf("sample_rate must be > 0, got %v", c.SampleRate))
	}

	if !positive(c.Latency) {
		errs = append(errs, fmt.Errorf("latency must be > 0, got %v", c.Latency))
	}

	if c.Channels < 1 || c.Channels > 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", c.Channels))
	}

	if c.MaxRecord < 0 || math.IsNaN(c.MaxRecord) {
		errs = append(errs, fmt.Errorf("max_record must be >= 0, got %v", c.MaxRecord))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if c.MasterLevel < 0 {
		errs = append(errs, fmt.Errorf("master_level must be >= 0, got %v", c.MasterLevel))
	}

	if len(c.Tracks) == 0 {
		errs = append(errs, errors.New("at least one track is required"))
	}

	for i, tr := range c.Tracks {
		if tr.Divider != (track.Divider{}) && !tr.Divider.Valid() {
			errs = append(errs, fmt.Errorf("tracks[%d]: %w: %s", i, track.ErrInvalidDivider, tr.Divider))
		}

		if tr.Level < 0 {
			errs = append(errs, fmt.Errorf("tracks[%d]: level must be >= 0, got %v", i, tr.Level))
		}

		for j, fx := range tr.Effects {
			err := fx.validate()
			if err != nil {
				errs = append(errs, fmt.Errorf("tracks[%d].effects[%d]: %w", i, j, err))
			}
		}
	}

	if c.Monitor.Level < 0 {
		errs = append(errs, fmt.Errorf("monitor.level must be >= 0, got %v", c.Monitor.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}

	return nil
}

func (e Effect) validate() error {
	t, err := effect.ParseType(e.Type)
	if err != nil {
		return err
	}

	spec, _ := effect.Lookup(t)

	for name := range e.Params {
		if _, ok := spec.Param(name); !ok {
			return fmt.Errorf("%w: %s has no %q", effect.ErrUnknownParam, spec.Name, name)
		}
	}

	return nil
}

// Level returns the parsed log level, info if it does not parse.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}

	return lvl
}

// TrackSpecs returns the transport track list.
func (c Config) TrackSpecs() []transport.TrackSpec {
	out := make([]transport.TrackSpec, len(c.Tracks))
	for i, tr := range c.Tracks {
		out[i] = transport.TrackSpec{Divider: tr.Divider, Level: tr.Level}
	}

	return out
}

// MonitorConfig returns the bus monitor settings.
func (c Config) MonitorConfig() bus.MonitorConfig {
	return bus.MonitorConfig{
		Level:        c.Monitor.Level,
		DefaultDelay: c.Monitor.Delay,
		Feedback:     c.Monitor.Feedback,
		Mix:          c.Monitor.Mix,
	}
}

// ApplyEffects builds the configured initial chains on m. Entries that fail
// to apply are skipped and reported together.
func (c Config) ApplyEffects(m *transport.Manager) error {
	var errs []error

	for i, tr := range c.Tracks {
		for j, fx := range tr.Effects {
			t, err := effect.ParseType(fx.Type)
			if err != nil {
				errs = append(errs, fmt.Errorf("tracks[%d].effects[%d]: %w", i, j, err))
				continue
			}

			id, ok := m.AddEffect(i+1, t)
			if !ok {
				errs = append(errs, fmt.Errorf("tracks[%d].effects[%d]: %s not added", i, j, t))
				continue
			}

			for name, v := range fx.Params {
				m.SetParam(i+1, id, name, v)
			}

			if fx.Bypass {
				m.ToggleBypass(i+1, id)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: apply effects: %w", errors.Join(errs...))
	}

	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
