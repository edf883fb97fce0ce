// Package capture defines the contract of the live audio capture source the
// looper records from, plus a synthetic source for tests and offline use.
package capture

import "errors"

// ErrUnavailable reports that a capture source could not be created or
// started (device missing, permission denied, driver failure).
var ErrUnavailable = errors.New("capture unavailable")

// Take is the material captured between Start and Stop.
type Take struct {
	// Channels holds one slice per input channel, each Frames long.
	Channels   [][]float64
	SampleRate float64
	// Frames is the true number of captured frames.
	Frames int
}

// Empty reports whether the take holds no frames.
func (t Take) Empty() bool {
	return t.Frames <= 0 || len(t.Channels) == 0
}

// Source is one open capture session.
type Source interface {
	// Start begins capturing.
	Start() error
	// Stop ends capturing and returns everything captured since Start.
	Stop() (Take, error)
	// Close releases the underlying resources. It is safe to call more
	// than once and after Stop.
	Close() error
}

// Device opens capture sources.
type Device interface {
	Open() (Source, error)
}

// DeviceFunc adapts a function to the Device interface.
type DeviceFunc func() (Source, error)

// Open implements Device.
func (f DeviceFunc) Open() (Source, error) {
	return f()
}

// Unavailable is a Device whose Open always fails with ErrUnavailable.
var Unavailable Device = DeviceFunc(func() (Source, error) {
	return nil, ErrUnavailable
})
