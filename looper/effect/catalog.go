package effect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned for effect type names outside the catalog.
var ErrUnknownType = errors.New("unknown effect type")

// ErrUnknownParam is returned for parameter names a type does not define.
var ErrUnknownParam = errors.New("unknown effect parameter")

// Type tags one entry of the fixed effect catalog.
type Type int

const (
	TypePitch Type = iota + 1
	TypeLowPass
	TypeHighPass
	TypePan
	TypeDelay
	TypeCompressor
)

// ParamSpec describes one numeric parameter of an effect type.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	Unit    string
}

// Spec is the catalog entry of one effect type.
type Spec struct {
	Type   Type
	Name   string
	Params []ParamSpec
}

// Param returns the parameter spec called name.
func (s Spec) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}

	return ParamSpec{}, false
}

var catalog = []Spec{
	{TypePitch, "pitch", []ParamSpec{
		{Name: "semitones", Min: -12, Max: 12, Default: 0, Unit: "st"},
	}},
	{TypeLowPass, "lowpass", []ParamSpec{
		{Name: "cutoff", Min: 200, Max: 12000, Default: 2000, Unit: "Hz"},
		{Name: "q", Min: 0.3, Max: 12, Default: 0.707},
	}},
	{TypeHighPass, "highpass", []ParamSpec{
		{Name: "cutoff", Min: 20, Max: 2000, Default: 200, Unit: "Hz"},
		{Name: "q", Min: 0.3, Max: 12, Default: 0.707},
	}},
	{TypePan, "pan", []ParamSpec{
		{Name: "pan", Min: -1, Max: 1, Default: 0},
	}},
	{TypeDelay, "delay", []ParamSpec{
		{Name: "time", Min: 0.001, Max: 2, Default: 0.25, Unit: "s"},
		{Name: "feedback", Min: 0, Max: 0.95, Default: 0.35},
		{Name: "mix", Min: 0, Max: 1, Default: 0.25},
	}},
	{TypeCompressor, "compressor", []ParamSpec{
		{Name: "threshold", Min: -60, Max: 0, Default: -20, Unit: "dB"},
		// scaled onto the compressor's 0-24 dB knee when realized
		{Name: "knee", Min: 0, Max: 40, Default: 6, Unit: "dB"},
		{Name: "ratio", Min: 1, Max: 20, Default: 4},
		{Name: "attack", Min: 0, Max: 0.1, Default: 0.01, Unit: "s"},
		{Name: "release", Min: 0.01, Max: 2, Default: 0.1, Unit: "s"},
	}},
}

// Catalog returns the fixed table of effect types in display order.
func Catalog() []Spec {
	out := make([]Spec, len(catalog))
	copy(out, catalog)

	return out
}

// Lookup returns the catalog entry of t.
func Lookup(t Type) (Spec, bool) {
	for _, s := range catalog {
		if s.Type == t {
			return s, true
		}
	}

	return Spec{}, false
}

// Valid reports whether t is in the catalog.
func (t Type) Valid() bool {
	_, ok := Lookup(t)
	return ok
}

func (t Type) String() string {
	if s, ok := Lookup(t); ok {
		return s.Name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a catalog name (case-insensitive, "low-pass" and
// "low_pass" spellings accepted).
func ParseType(name string) (Type, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))

	for _, s := range catalog {
		if s.Name == key {
			return s.Type, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}
