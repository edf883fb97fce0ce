package chain

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Gain is a track's output level control and the sink of its effect chain.
// A disconnected Gain streams silence and never drains, so a mixer holding it
// keeps it across reconnects.
type Gain struct {
	mu    sync.Mutex
	fx    effects.Gain
	level float64
}

// NewGain returns a disconnected gain at the given linear level.
func NewGain(level float64) *Gain {
	g := &Gain{}
	g.setLevel(level)

	return g
}

// Stream implements beep.Streamer.
func (g *Gain) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fx.Streamer == nil {
		clear(samples)
		return len(samples), true
	}

	n, _ := g.fx.Stream(samples)
	if n < 0 {
		n = 0
	}

	clear(samples[n:])

	return len(samples), true
}

// Err implements beep.Streamer.
func (g *Gain) Err() error {
	return nil
}

// Level returns the linear output level.
func (g *Gain) Level() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.level
}

// SetLevel sets the linear output level; negative values mute.
func (g *Gain) SetLevel(level float64) {
	g.mu.Lock()
	g.setLevel(level)
	g.mu.Unlock()
}

func (g *Gain) setLevel(level float64) {
	level = max(level, 0)
	g.level = level
	// effects.Gain scales by 1+Gain.
	g.fx.Gain = level - 1
}

// Connected reports whether an input is attached.
func (g *Gain) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.fx.Streamer != nil
}

// Replace disconnects the current input, runs build and connects whatever it
// returns, all without letting a render pass in between. A nil result leaves
// the gain disconnected.
func (g *Gain) Replace(build func() beep.Streamer) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fx.Streamer = nil
	if build != nil {
		g.fx.Streamer = build()
	}
}

// Locked runs fn while the render path is held off.
func (g *Gain) Locked(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fn()
}
