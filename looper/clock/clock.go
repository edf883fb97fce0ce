package clock

import (
	"math"
	"slices"
	"sync"
)

// BeatsPerLoop is the number of beats one master loop spans.
const BeatsPerLoop = 4

// Snapshot is the clock state delivered to listeners.
type Snapshot struct {
	Duration float64 // master loop duration in seconds, 0 when unset
	Tempo    int     // beats per minute, 0 when unset
	Valid    bool
}

// Listener receives a Snapshot after every master duration change.
type Listener func(Snapshot)

// Clock holds the master loop duration and the tempo derived from it.
type Clock struct {
	mu        sync.Mutex
	duration  float64
	tempo     int
	valid     bool
	nextID    int
	listeners map[int]Listener
}

// New returns a Clock with no master duration.
func New() *Clock {
	return &Clock{listeners: make(map[int]Listener)}
}

// SetMasterDuration sets the master loop duration and recomputes the tempo.
// Non-positive or non-finite values are ignored.
func (c *Clock) SetMasterDuration(seconds float64) {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}

	c.mu.Lock()
	c.duration = seconds
	c.tempo = TempoFor(seconds)
	c.valid = true
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(listeners, snap)
}

// ClearMaster unsets the master duration and tempo.
func (c *Clock) ClearMaster() {
	c.mu.Lock()
	c.duration = 0
	c.tempo = 0
	c.valid = false
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(listeners, snap)
}

// MasterDuration returns the master loop duration and whether it is set.
func (c *Clock) MasterDuration() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.duration, c.valid
}

// Tempo returns the master tempo in BPM and whether it is set.
func (c *Clock) Tempo() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tempo, c.valid
}

// Snapshot returns the current state.
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// BeatSeconds returns the length of one beat, or fallback while no master
// duration is set.
func (c *Clock) BeatSeconds(fallback float64) float64 {
	d, ok := c.MasterDuration()
	if !ok {
		return fallback
	}

	return d / BeatsPerLoop
}

// Subscribe registers l and returns a function removing it again.
// The listener is not called for the current state.
func (c *Clock) Subscribe(l Listener) (cancel func()) {
	if l == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Clock) snapshotLocked() Snapshot {
	return Snapshot{Duration: c.duration, Tempo: c.tempo, Valid: c.valid}
}

// listenersLocked copies the listeners in subscription order.
func (c *Clock) listenersLocked() []Listener {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.listeners[id])
	}

	return out
}

func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		l(snap)
	}
}

// TempoFor returns round(240 / seconds), the tempo of a four-beat loop.
func TempoFor(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}

	return int(math.Round(60 * BeatsPerLoop / seconds))
}
