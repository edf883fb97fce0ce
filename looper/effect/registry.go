package effect

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep"
)

// Context provides environmental information that stages need.
type Context struct {
	SampleRate float64
}

// Stage is the realized processing sub-graph of a node. It has exactly one
// audio input and one audio output.
type Stage interface {
	// Configure applies p, which always matches the stage's effect type.
	Configure(ctx Context, p Params) error
	// Connect feeds in into the stage and returns the stage output.
	Connect(in beep.Streamer) beep.Streamer
	// Dispose disconnects the stage and releases its processors.
	Dispose()
}

// Factory builds one Stage instance.
type Factory func(ctx Context) (Stage, error)

// Registry maps effect types to stage factories.
type Registry struct {
	factories map[Type]Factory
}

var errDuplicateType = errors.New("duplicate effect type")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Type]Factory)}
}

// Register adds a factory for t.
func (r *Registry) Register(t Type, factory Factory) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownType, t)
	}

	if t == TypePitch {
		return errors.New("pitch has no stage")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[t]; exists {
		return fmt.Errorf("%w: %s", errDuplicateType, t)
	}

	r.factories[t] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t Type, factory Factory) {
	err := r.Register(t, factory)
	if err != nil {
		panic("effect registry: " + err.Error())
	}
}

// Lookup returns the factory for t, or nil.
func (r *Registry) Lookup(t Type) Factory {
	if r == nil {
		return nil
	}

	return r.factories[t]
}

// DefaultRegistry returns a Registry realizing every wired catalog type.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(TypeLowPass, func(_ Context) (Stage, error) {
		return newFilterStage(TypeLowPass), nil
	})
	r.MustRegister(TypeHighPass, func(_ Context) (Stage, error) {
		return newFilterStage(TypeHighPass), nil
	})
	r.MustRegister(TypePan, func(_ Context) (Stage, error) {
		return &panStage{}, nil
	})
	r.MustRegister(TypeDelay, newDelayStage)
	r.MustRegister(TypeCompressor, newCompressorStage)

	return r
}
