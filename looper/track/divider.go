package track

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidDivider reports a divider that is not a positive ratio.
var ErrInvalidDivider = errors.New("invalid divider")

// Divider is the loop length of a subordinate track as a fraction of the
// master loop.
type Divider struct {
	Num int
	Den int
}

// Unity is the divider of a track as long as the master loop.
var Unity = Divider{Num: 1, Den: 1}

// Valid reports whether d is a positive ratio.
func (d Divider) Valid() bool {
	return d.Num > 0 && d.Den > 0
}

// Ratio returns d as a float.
func (d Divider) Ratio() float64 {
	if !d.Valid() {
		return 0
	}

	return float64(d.Num) / float64(d.Den)
}

// Length returns the loop length for a master loop of master seconds.
func (d Divider) Length(master float64) float64 {
	return master * float64(d.Num) / float64(d.Den)
}

func (d Divider) String() string {
	if d.Den == 1 {
		return fmt.Sprint(d.Num)
	}

	return fmt.Sprintf("%d/%d", d.Num, d.Den)
}

// MarshalText implements encoding.TextMarshaler.
func (d Divider) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Divider) UnmarshalText(text []byte) error {
	v, err := ParseDivider(string(text))
	if err != nil {
		return err
	}

	*d = v

	return nil
}

// ParseDivider parses "2", "1/2" or "0.5" into a reduced Divider.
func ParseDivider(s string) (Divider, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok || r.Sign() <= 0 {
		return Divider{}, fmt.Errorf("%w: %q", ErrInvalidDivider, s)
	}

	if !r.Num().IsInt64() || !r.Denom().IsInt64() || r.Num().Int64() > 64 || r.Denom().Int64() > 64 {
		return Divider{}, fmt.Errorf("%w: %q out of range", ErrInvalidDivider, s)
	}

	return Divider{Num: int(r.Num().Int64()), Den: int(r.Denom().Int64())}, nil
}
