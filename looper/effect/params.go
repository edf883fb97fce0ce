package effect

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

// Params is the parameter set of one effect type. Each catalog type has its
// own struct; the concrete type always matches Type().
type Params interface {
	Type() Type
	// Get returns the named parameter.
	Get(name string) (float64, bool)
	// With returns a copy with the named parameter set, clamped into the
	// catalog range.
	With(name string, value float64) (Params, error)
}

// PitchParams shifts the track's playback rate.
type PitchParams struct {
	Semitones float64
}

// FilterParams configures a resonant low- or high-pass biquad.
type FilterParams struct {
	Cutoff float64
	Q      float64
}

// LowPassParams configures the LowPass type.
type LowPassParams struct{ FilterParams }

// HighPassParams configures the HighPass type.
type HighPassParams struct{ FilterParams }

// PanParams positions the signal in the stereo field, -1 left to 1 right.
type PanParams struct {
	Pan float64
}

// DelayParams configures a feedback delay with dry/wet mix.
type DelayParams struct {
	Time     float64 // seconds
	Feedback float64
	Mix      float64
}

// CompressorParams configures a soft-knee compressor. Times are seconds.
type CompressorParams struct {
	Threshold float64
	Knee      float64
	Ratio     float64
	Attack    float64
	Release   float64
}

// Defaults returns the catalog defaults of t.
func Defaults(t Type) (Params, error) {
	switch t {
	case TypePitch:
		return PitchParams{}, nil
	case TypeLowPass:
		return LowPassParams{FilterParams{Cutoff: 2000, Q: 0.707}}, nil
	case TypeHighPass:
		return HighPassParams{FilterParams{Cutoff: 200, Q: 0.707}}, nil
	case TypePan:
		return PanParams{}, nil
	case TypeDelay:
		return DelayParams{Time: 0.25, Feedback: 0.35, Mix: 0.25}, nil
	case TypeCompressor:
		return CompressorParams{Threshold: -20, Knee: 6, Ratio: 4, Attack: 0.01, Release: 0.1}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
}

// clampParam clamps value into the catalog range of t's parameter name.
func clampParam(t Type, name string, value float64) (float64, error) {
	spec, _ := Lookup(t)

	p, ok := spec.Param(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no %q", ErrUnknownParam, t, name)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return p.Default, nil
	}

	return core.Clamp(value, p.Min, p.Max), nil
}

func (PitchParams) Type() Type { return TypePitch }

func (p PitchParams) Get(name string) (float64, bool) {
	if name == "semitones" {
		return p.Semitones, true
	}

	return 0, false
}

func (p PitchParams) With(name string, value float64) (Params, error) {
	v, err := clampParam(TypePitch, name, value)
	if err != nil {
		return p, err
	}

	p.Semitones = v

	return p, nil
}

// Rate returns the playback-rate multiplier 2^(semitones/12).
func (p PitchParams) Rate() float64 {
	return math.Exp2(p.Semitones / 12)
}

func (p FilterParams) get(name string) (float64, bool) {
	switch name {
	case "cutoff":
		return p.Cutoff, true
	case "q":
		return p.Q, true
	}

	return 0, false
}

func (p FilterParams) with(t Type, name string, value float64) (FilterParams, error) {
	v, err := clampParam(t, name, value)
	if err != nil {
		return p, err
	}

	if name == "cutoff" {
		p.Cutoff = v
	} else {
		p.Q = v
	}

	return p, nil
}

func (LowPassParams) Type() Type { return TypeLowPass }

func (p LowPassParams) Get(name string) (float64, bool) { return p.get(name) }

func (p LowPassParams) With(name string, value float64) (Params, error) {
	f, err := p.with(TypeLowPass, name, value)
	return LowPassParams{f}, err
}

func (HighPassParams) Type() Type { return TypeHighPass }

func (p HighPassParams) Get(name string) (float64, bool) { return p.get(name) }

func (p HighPassParams) With(name string, value float64) (Params, error) {
	f, err := p.with(TypeHighPass, name, value)
	return HighPassParams{f}, err
}

func (PanParams) Type() Type { return TypePan }

func (p PanParams) Get(name string) (float64, bool) {
	if name == "pan" {
		return p.Pan, true
	}

	return 0, false
}

func (p PanParams) With(name string, value float64) (Params, error) {
	v, err := clampParam(TypePan, name, value)
	if err != nil {
		return p, err
	}

	p.Pan = v

	return p, nil
}

func (DelayParams) Type() Type { return TypeDelay }

func (p DelayParams) Get(name string) (float64, bool) {
	switch name {
	case "time":
		return p.Time, true
	case "feedback":
		return p.Feedback, true
	case "mix":
		return p.Mix, true
	}

	return 0, false
}

func (p DelayParams) With(name string, value float64) (Params, error) {
	v, err := clampParam(TypeDelay, name, value)
	if err != nil {
		return p, err
	}

	switch name {
	case "time":
		p.Time = v
	case "feedback":
		p.Feedback = v
	case "mix":
		p.Mix = v
	}

	return p, nil
}

func (CompressorParams) Type() Type { return TypeCompressor }

func (p CompressorParams) Get(name string) (float64, bool) {
	switch name {
	case "threshold":
		return p.Threshold, true
	case "knee":
		return p.Knee, true
	case "ratio":
		return p.Ratio, true
	case "attack":
		return p.Attack, true
	case "release":
		return p.Release, true
	}

	return 0, false
}

func (p CompressorParams) With(name string, value float64) (Params, error) {
	v, err := clampParam(TypeCompressor, name, value)
	if err != nil {
		return p, err
	}

	switch name {
	case "threshold":
		p.Threshold = v
	case "knee":
		p.Knee = v
	case "ratio":
		p.Ratio = v
	case "attack":
		p.Attack = v
	case "release":
		p.Release = v
	}

	return p, nil
}
