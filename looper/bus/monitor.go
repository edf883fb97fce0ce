package bus

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/looper/clock"
	"github.com/cwbudde/algo-looper/looper/effect"
)

// MonitorConfig configures the live monitor path.
type MonitorConfig struct {
	// Level is the linear monitor gain.
	Level float64
	// DefaultDelay is the echo time used while no master loop exists.
	DefaultDelay float64
	Feedback     float64
	Mix          float64
}

// DefaultMonitorConfig returns a monitor with a quiet quarter-second echo.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{Level: 1, DefaultDelay: 0.25, Feedback: 0.3, Mix: 0.2}
}

// Monitor routes live input through a delay synced to one beat of the master
// loop. While no master loop exists the delay falls back to DefaultDelay.
type Monitor struct {
	mu     sync.Mutex
	stage  effect.Stage
	params effect.Params
	ctx    effect.Context
	out    beep.Streamer
	level  float64
	dflt   float64

	unsubscribe func()
	log         logrus.FieldLogger
}

// NewMonitor builds the monitor path for in and subscribes it to clk.
func NewMonitor(in beep.Streamer, sampleRate float64, clk *clock.Clock, cfg MonitorConfig, log logrus.FieldLogger) (*Monitor, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	factory := effect.DefaultRegistry().Lookup(effect.TypeDelay)
	ctx := effect.Context{SampleRate: sampleRate}

	stage, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("bus: monitor delay: %w", err)
	}

	params, err := effect.Defaults(effect.TypeDelay)
	if err != nil {
		return nil, fmt.Errorf("bus: monitor delay: %w", err)
	}

	for _, kv := range []struct {
		name  string
		value float64
	}{
		{"time", cfg.DefaultDelay},
		{"feedback", cfg.Feedback},
		{"mix", cfg.Mix},
	} {
		params, err = params.With(kv.name, kv.value)
		if err != nil {
			return nil, fmt.Errorf("bus: monitor delay: %w", err)
		}
	}

	err = stage.Configure(ctx, params)
	if err != nil {
		stage.Dispose()
		return nil, fmt.Errorf("bus: monitor delay: %w", err)
	}

	m := &Monitor{
		stage:  stage,
		params: params,
		ctx:    ctx,
		level:  max(cfg.Level, 0),
		dflt:   cfg.DefaultDelay,
		log:    log.WithField("component", "monitor"),
	}
	m.out = stage.Connect(in)

	if clk != nil {
		m.unsubscribe = clk.Subscribe(m.clockChanged)
		m.clockChanged(clk.Snapshot())
	}

	return m, nil
}

// DelayTime returns the current echo time in seconds.
func (m *Monitor) DelayTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, _ := m.params.Get("time")

	return v
}

// SetLevel sets the linear monitor gain.
func (m *Monitor) SetLevel(level float64) {
	m.mu.Lock()
	m.level = max(level, 0)
	m.mu.Unlock()
}

// Stream implements beep.Streamer.
func (m *Monitor) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.out == nil {
		clear(samples)
		return len(samples), true
	}

	n, _ := m.out.Stream(samples)
	n = max(n, 0)
	clear(samples[n:])

	for i := range samples[:n] {
		samples[i][0] *= m.level
		samples[i][1] *= m.level
	}

	return len(samples), true
}

// Err implements beep.Streamer.
func (m *Monitor) Err() error {
	return nil
}

// Close unsubscribes from the clock and releases the delay. The monitor
// streams silence afterwards.
func (m *Monitor) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stage != nil {
		m.stage.Dispose()
		m.stage = nil
	}

	m.out = nil
}

func (m *Monitor) clockChanged(snap clock.Snapshot) {
	beat := m.dflt
	if snap.Valid {
		beat = snap.Duration / clock.BeatsPerLoop
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stage == nil {
		return
	}

	params, err := m.params.With("time", beat)
	if err == nil {
		err = m.stage.Configure(m.ctx, params)
	}

	if err != nil {
		m.log.WithError(err).Warn("monitor delay not resynced")
		return
	}

	m.params = params
	v, _ := params.Get("time")
	m.log.WithFields(logrus.Fields{"time": v, "tempo": snap.Tempo}).Debug("monitor delay resynced")
}
