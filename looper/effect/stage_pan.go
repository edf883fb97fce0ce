package effect

import (
	"fmt"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// panStage wraps beep's stereo balance control.
type panStage struct {
	fx  effects.Pan
	pan float64
}

func (s *panStage) Configure(_ Context, p Params) error {
	pp, ok := p.(PanParams)
	if !ok {
		return fmt.Errorf("effect: configure pan: unexpected params %T", p)
	}

	s.pan = pp.Pan
	s.fx.Pan = pp.Pan

	return nil
}

func (s *panStage) Connect(in beep.Streamer) beep.Streamer {
	s.fx = effects.Pan{Streamer: in, Pan: s.pan}

	return s
}

func (s *panStage) Stream(samples [][2]float64) (int, bool) {
	if s.fx.Streamer == nil {
		clear(samples)
		return len(samples), true
	}

	return s.fx.Stream(samples)
}

func (s *panStage) Err() error {
	if s.fx.Streamer == nil {
		return nil
	}

	return s.fx.Err()
}

func (s *panStage) Dispose() {
	s.fx.Streamer = nil
}
