package track

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition reports a request that is not valid in the current
// state. Such requests are ignored.
var ErrInvalidTransition = errors.New("invalid track transition")

// State is the transport state of a track.
type State int

const (
	// Ready holds no buffer and accepts a record request.
	Ready State = iota
	// Waiting is gated on the master or on a scheduled record start.
	Waiting
	// Recording is capturing the first take.
	Recording
	// Playing loops the committed buffer.
	Playing
	// Overdub plays while capturing one loop to sum in.
	Overdub
	// Stopped holds a buffer without playing it.
	Stopped
)

var stateNames = [...]string{"ready", "waiting", "recording", "playing", "overdub", "stopped"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// HasBuffer reports whether a track in state s holds a committed buffer.
func (s State) HasBuffer() bool {
	return s == Playing || s == Overdub || s == Stopped
}

// Audible reports whether the track feeds its output in state s.
func (s State) Audible() bool {
	return s == Playing || s == Overdub
}
