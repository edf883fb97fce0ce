package transport

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/looper/capture"
	"github.com/cwbudde/algo-looper/looper/chain"
	"github.com/cwbudde/algo-looper/looper/clock"
	"github.com/cwbudde/algo-looper/looper/effect"
	"github.com/cwbudde/algo-looper/looper/schedule"
	"github.com/cwbudde/algo-looper/looper/track"
)

// ErrNoTrack reports a request naming a track index that does not exist.
var ErrNoTrack = errors.New("no such track")

// TrackSpec configures one track.
type TrackSpec struct {
	Divider track.Divider
	Level   float64
}

// Config configures a Manager.
type Config struct {
	// Tracks lists the tracks in index order; the first is the master.
	Tracks     []TrackSpec
	SampleRate float64
	// MaxRecord stops a master recording automatically after that many
	// seconds. Zero records until stopped.
	MaxRecord float64

	Scheduler schedule.Scheduler
	Device    capture.Device
	Registry  *effect.Registry
	// Clock defaults to a new clock.
	Clock  *clock.Clock
	Logger logrus.FieldLogger
}

// Manager owns the tracks and the clock. Like the tracks it drives, it must
// only be used from the scheduler's control loop.
type Manager struct {
	clock     *clock.Clock
	sched     schedule.Scheduler
	tracks    []*track.Track
	maxRecord float64
	log       logrus.FieldLogger

	// subordinates waiting for the master loop
	gated []int
}

// New builds a manager and its tracks.
func New(cfg Config) (*Manager, error) {
	if len(cfg.Tracks) == 0 {
		return nil, errors.New("transport: at least one track is required")
	}

	if cfg.MaxRecord < 0 {
		return nil, fmt.Errorf("transport: max record must be >= 0: %f", cfg.MaxRecord)
	}

	var log logrus.FieldLogger = logrus.StandardLogger()
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	reg := cfg.Registry
	if reg == nil {
		reg = effect.DefaultRegistry()
	}

	m := &Manager{
		clock:     clk,
		sched:     cfg.Scheduler,
		maxRecord: cfg.MaxRecord,
		log:       log,
	}

	for i, spec := range cfg.Tracks {
		tr, err := track.New(track.Config{
			Index:      i + 1,
			Divider:    spec.Divider,
			Level:      spec.Level,
			SampleRate: cfg.SampleRate,
			Scheduler:  cfg.Scheduler,
			Device:     cfg.Device,
			Registry:   reg,
			Logger:     log,
		})
		if err != nil {
			return nil, fmt.Errorf("transport: %w", err)
		}

		m.tracks = append(m.tracks, tr)
	}

	m.Master().OnCommit(m.masterCommitted)

	return m, nil
}

// Clock returns the shared clock.
func (m *Manager) Clock() *clock.Clock { return m.clock }

// Master returns track 1.
func (m *Manager) Master() *track.Track { return m.tracks[0] }

// Tracks returns all tracks in index order.
func (m *Manager) Tracks() []*track.Track { return slices.Clone(m.tracks) }

// Track returns the track with the given 1-based index.
func (m *Manager) Track(index int) (*track.Track, bool) {
	if index < 1 || index > len(m.tracks) {
		return nil, false
	}

	return m.tracks[index-1], true
}

// Record starts a recording on track index. The master records at once;
// a subordinate waits for the master loop if there is none yet, and
// otherwise starts at the next master loop boundary.
func (m *Manager) Record(index int) bool {
	tr, ok := m.lookup(index, "record")
	if !ok {
		return false
	}

	if tr.IsMaster() {
		return tr.Record(m.maxRecord)
	}

	if _, ok := m.clock.MasterDuration(); !ok {
		if !tr.Wait() {
			return false
		}

		m.gate(index)
		m.log.WithField("track", index).Info("waiting for master loop")

		return true
	}

	return m.recordPhaseLocked(tr)
}

// Stop commits a running recording, cancels a pending one, or stops
// playback.
func (m *Manager) Stop(index int) bool {
	tr, ok := m.lookup(index, "stop")
	if !ok {
		return false
	}

	switch tr.State() {
	case track.Recording:
		return tr.StopRecording()
	case track.Waiting:
		m.ungate(index)
		return tr.Abort()
	default:
		return tr.Stop()
	}
}

// Overdub arms an overdub on track index.
func (m *Manager) Overdub(index int) bool {
	tr, ok := m.lookup(index, "overdub")
	if !ok {
		return false
	}

	return tr.ArmOverdub()
}

// Abort cancels a pending or running recording or an armed overdub.
func (m *Manager) Abort(index int) bool {
	tr, ok := m.lookup(index, "abort")
	if !ok {
		return false
	}

	m.ungate(index)

	return tr.Abort()
}

// Resume restarts a stopped track. The master restarts at phase 0; a
// subordinate restarts in phase with its own cycle, anchored on the master
// boundary closest to where that cycle started.
func (m *Manager) Resume(index int) bool {
	tr, ok := m.lookup(index, "resume")
	if !ok {
		return false
	}

	if tr.IsMaster() || tr.State() != track.Stopped {
		return tr.Resume(0)
	}

	return tr.Resume(clock.PhaseOffset(m.sched.Now(), m.cycleStart(tr), tr.Duration()))
}

// cycleStart returns the start of a subordinate's loop cycle snapped to the
// master grid. A cycle spanning several master loops keeps its parity even
// after the master was restarted.
func (m *Manager) cycleStart(tr *track.Track) float64 {
	start := tr.LoopStart()

	master := m.Master()
	d, ok := m.clock.MasterDuration()

	if !ok || master.Buffer() == nil {
		return start
	}

	loops := math.Round((start - master.LoopStart()) / d)

	return master.LoopStart() + loops*d
}

// Clear resets track index. Clearing the master also clears the clock and
// every subordinate.
func (m *Manager) Clear(index int) bool {
	tr, ok := m.lookup(index, "clear")
	if !ok {
		return false
	}

	m.ungate(index)

	if !tr.IsMaster() {
		return tr.Clear()
	}

	changed := tr.Clear()

	if _, ok := m.clock.MasterDuration(); ok {
		m.clock.ClearMaster()

		changed = true
	}

	for _, sub := range m.tracks[1:] {
		if sub.Clear() {
			changed = true
		}
	}

	m.gated = nil
	m.log.Info("master cleared, all tracks reset")

	return changed
}

// SetDivider changes the loop length ratio of a ready subordinate track.
func (m *Manager) SetDivider(index int, d track.Divider) bool {
	tr, ok := m.lookup(index, "divider")
	if !ok {
		return false
	}

	if tr.IsMaster() {
		m.log.WithError(track.ErrInvalidTransition).WithField("track", index).Debug("master has no divider")
		return false
	}

	return tr.SetDivider(d)
}

// SetLevel sets the output gain of track index.
func (m *Manager) SetLevel(index int, level float64) bool {
	tr, ok := m.lookup(index, "level")
	if !ok {
		return false
	}

	tr.SetLevel(level)

	return true
}

// AddEffect appends an effect to the chain of track index.
func (m *Manager) AddEffect(index int, t effect.Type) (int, bool) {
	tr, ok := m.lookup(index, "fx-add")
	if !ok {
		return 0, false
	}

	return tr.Chain().Add(t)
}

// RemoveEffect removes node id from the chain of track index.
func (m *Manager) RemoveEffect(index, id int) bool {
	tr, ok := m.lookup(index, "fx-remove")
	if !ok {
		return false
	}

	return tr.Chain().Remove(id)
}

// MoveEffect moves node id one step in dir.
func (m *Manager) MoveEffect(index, id int, dir chain.Direction) bool {
	tr, ok := m.lookup(index, "fx-move")
	if !ok {
		return false
	}

	return tr.Chain().Move(id, dir)
}

// ToggleBypass flips the bypass flag of node id.
func (m *Manager) ToggleBypass(index, id int) bool {
	tr, ok := m.lookup(index, "fx-bypass")
	if !ok {
		return false
	}

	return tr.Chain().ToggleBypass(id)
}

// SetParam sets one parameter of node id.
func (m *Manager) SetParam(index, id int, name string, value float64) bool {
	tr, ok := m.lookup(index, "fx-set")
	if !ok {
		return false
	}

	return tr.Chain().SetParam(id, name, value)
}

// Close releases every track's capture, pending work and effect stages and
// clears the clock. It must run on the control loop, or after it stopped.
func (m *Manager) Close() {
	m.gated = nil

	for _, tr := range m.tracks {
		tr.Close()
	}

	m.clock.ClearMaster()
	m.log.Info("transport closed")
}

// Status is a snapshot of the transport.
type Status struct {
	Clock  clock.Snapshot
	Now    float64
	Tracks []track.Status
}

// Status returns a snapshot of the clock and every track.
func (m *Manager) Status() Status {
	st := Status{Clock: m.clock.Snapshot(), Now: m.sched.Now()}
	for _, tr := range m.tracks {
		st.Tracks = append(st.Tracks, tr.Status())
	}

	return st
}

func (m *Manager) masterCommitted(c track.Commit) {
	if c.Overdub {
		return
	}

	m.clock.SetMasterDuration(c.Duration)

	tempo, _ := m.clock.Tempo()
	m.log.WithFields(logrus.Fields{"duration": c.Duration, "tempo": tempo}).Info("master loop set")

	gated := m.gated
	m.gated = nil

	for _, index := range gated {
		tr := m.tracks[index-1]
		if tr.State() == track.Waiting {
			m.recordPhaseLocked(tr)
		}
	}
}

// recordPhaseLocked schedules tr to record from the next master boundary
// for its divider's share of the master loop.
func (m *Manager) recordPhaseLocked(tr *track.Track) bool {
	d, ok := m.clock.MasterDuration()
	if !ok {
		return false
	}

	master := m.Master()

	elapsed := clock.PhaseOffset(m.sched.Now(), master.LoopStart(), d)

	delay := 0.0
	if elapsed > 0 {
		delay = d - elapsed
	}

	length := tr.Divider().Length(d)

	m.log.WithFields(logrus.Fields{
		"track":  tr.Index(),
		"delay":  delay,
		"length": length,
	}).Debug("phase-locked record")

	return tr.RecordAt(delay, length)
}

func (m *Manager) gate(index int) {
	if !slices.Contains(m.gated, index) {
		m.gated = append(m.gated, index)
	}
}

func (m *Manager) ungate(index int) {
	m.gated = slices.DeleteFunc(m.gated, func(i int) bool { return i == index })
}

func (m *Manager) lookup(index int, op string) (*track.Track, bool) {
	tr, ok := m.Track(index)
	if !ok {
		m.log.WithError(ErrNoTrack).WithFields(logrus.Fields{"track": index, "op": op}).Debug("request ignored")
	}

	return tr, ok
}
