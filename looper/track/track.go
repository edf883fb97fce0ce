package track

import (
	"fmt"
	"math"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/looper/capture"
	"github.com/cwbudde/algo-looper/looper/chain"
	"github.com/cwbudde/algo-looper/looper/effect"
	"github.com/cwbudde/algo-looper/looper/loopbuf"
	"github.com/cwbudde/algo-looper/looper/schedule"
)

// MasterIndex is the index of the master track.
const MasterIndex = 1

// resampleQuality is used when a committed take was captured at a rate
// other than the render rate.
const resampleQuality = 4

// Config configures a Track.
type Config struct {
	Index int
	// Divider is ignored for the master track. Zero means Unity.
	Divider Divider
	// Level is the linear output gain. Zero means 1.
	Level float64
	// SampleRate is the render rate of the track output and effects.
	SampleRate float64

	Scheduler schedule.Scheduler
	// Device defaults to capture.Unavailable.
	Device capture.Device
	// Registry defaults to effect.DefaultRegistry.
	Registry *effect.Registry
	// Logger defaults to logrus.StandardLogger.
	Logger logrus.FieldLogger
}

// Commit describes a buffer committed by a recording or an overdub.
type Commit struct {
	Track    int
	Duration float64
	Frames   int
	Channels int
	Overdub  bool
}

// Track is one loop track. It is not safe for concurrent use: every method
// must run on the scheduler's control loop. Its Output may be streamed from
// the audio goroutine.
type Track struct {
	index      int
	divider    Divider
	sampleRate float64

	sched schedule.Scheduler
	dev   capture.Device
	log   logrus.FieldLogger

	state     State
	buf       *loopbuf.Buffer
	loopStart float64
	player    *loopbuf.Player

	chain *chain.Chain
	gain  *chain.Gain

	src    capture.Source
	target float64 // length of the running capture; 0 commits the raw take
	start  schedule.Task
	end    schedule.Task

	onCommit func(Commit)
}

// New returns a track in the ready state.
func New(cfg Config) (*Track, error) {
	if cfg.Index < MasterIndex {
		return nil, fmt.Errorf("track: index must be >= %d, got %d", MasterIndex, cfg.Index)
	}

	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("track %d: scheduler is required", cfg.Index)
	}

	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("track %d: sample rate must be > 0 and finite: %f", cfg.Index, cfg.SampleRate)
	}

	div := cfg.Divider
	if div == (Divider{}) {
		div = Unity
	}

	if !div.Valid() {
		return nil, fmt.Errorf("track %d: %w: %s", cfg.Index, ErrInvalidDivider, div)
	}

	dev := cfg.Device
	if dev == nil {
		dev = capture.Unavailable
	}

	var log logrus.FieldLogger = logrus.StandardLogger()
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	log = log.WithField("track", cfg.Index)

	level := cfg.Level
	if level == 0 {
		level = 1
	}

	return &Track{
		index:      cfg.Index,
		divider:    div,
		sampleRate: cfg.SampleRate,
		sched:      cfg.Scheduler,
		dev:        dev,
		log:        log,
		chain:      chain.New(cfg.Registry, effect.Context{SampleRate: cfg.SampleRate}, log),
		gain:       chain.NewGain(level),
	}, nil
}

// Index returns the track number; 1 is the master.
func (t *Track) Index() int { return t.index }

// IsMaster reports whether t is the master track.
func (t *Track) IsMaster() bool { return t.index == MasterIndex }

// State returns the current state.
func (t *Track) State() State { return t.state }

// Divider returns the loop length ratio relative to the master loop.
func (t *Track) Divider() Divider { return t.divider }

// Buffer returns the committed loop, nil unless the state holds one.
func (t *Track) Buffer() *loopbuf.Buffer { return t.buf }

// Duration returns the committed loop length in seconds, 0 without one.
func (t *Track) Duration() float64 {
	if t.buf == nil {
		return 0
	}

	return t.buf.Duration()
}

// LoopStart returns the scheduler time at which the current playback cycle
// had phase 0.
func (t *Track) LoopStart() float64 { return t.loopStart }

// Chain returns the track's effect chain. Edits on it rewire the output
// while the track is audible.
func (t *Track) Chain() *chain.Chain { return t.chain }

// Output returns the track's output stream for the master bus.
func (t *Track) Output() beep.Streamer { return t.gain }

// Level returns the linear output gain.
func (t *Track) Level() float64 { return t.gain.Level() }

// SetLevel sets the linear output gain.
func (t *Track) SetLevel(level float64) { t.gain.SetLevel(level) }

// OnCommit registers fn to run after every committed recording or overdub.
func (t *Track) OnCommit(fn func(Commit)) { t.onCommit = fn }

// SetDivider changes the loop length ratio. Only a ready track accepts it.
func (t *Track) SetDivider(d Divider) bool {
	if !d.Valid() {
		t.log.WithError(ErrInvalidDivider).WithField("divider", d.String()).Debug("divider ignored")
		return false
	}

	if t.state != Ready {
		return t.reject("divider")
	}

	t.divider = d
	t.log.WithField("divider", d.String()).Debug("divider set")

	return true
}

// Status is a snapshot of a track.
type Status struct {
	Index     int
	State     State
	Divider   Divider
	Duration  float64
	Frames    int
	Channels  int
	LoopStart float64
	Level     float64
	Rate      float64
	Effects   []effect.Info
}

// Status returns a snapshot of t.
func (t *Track) Status() Status {
	st := Status{
		Index:     t.index,
		State:     t.state,
		Divider:   t.divider,
		LoopStart: t.loopStart,
		Level:     t.gain.Level(),
		Rate:      t.chain.PlaybackRate(),
		Effects:   t.chain.Nodes(),
	}

	if t.buf != nil {
		st.Duration = t.buf.Duration()
		st.Frames = t.buf.Frames()
		st.Channels = t.buf.NumChannels()
	}

	return st
}

func (t *Track) setState(s State) {
	if t.state == s {
		return
	}

	t.log.WithFields(logrus.Fields{"from": t.state.String(), "state": s.String()}).Info("track state")
	t.state = s
}

func (t *Track) reject(op string) bool {
	t.log.WithError(ErrInvalidTransition).
		WithFields(logrus.Fields{"op": op, "state": t.state.String()}).
		Debug("transition ignored")

	return false
}
