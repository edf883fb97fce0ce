package effect

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// filterStage is a resonant RBJ low- or high-pass, one biquad per channel.
type filterStage struct {
	blockStage

	kind     Type
	sections [2]*biquad.Section
}

func newFilterStage(kind Type) *filterStage {
	s := &filterStage{kind: kind}
	s.process = s.run

	return s
}

func (s *filterStage) Configure(ctx Context, p Params) error {
	var fp FilterParams

	switch v := p.(type) {
	case LowPassParams:
		fp = v.FilterParams
	case HighPassParams:
		fp = v.FilterParams
	default:
		return fmt.Errorf("effect: configure %s: unexpected params %T", s.kind, p)
	}

	if ctx.SampleRate <= 0 {
		return fmt.Errorf("effect: configure %s: sample rate must be > 0", s.kind)
	}

	freq := core.Clamp(fp.Cutoff, 20, ctx.SampleRate*0.49)

	var coeffs biquad.Coefficients
	if s.kind == TypeLowPass {
		coeffs = design.Lowpass(freq, fp.Q, ctx.SampleRate)
	} else {
		coeffs = design.Highpass(freq, fp.Q, ctx.SampleRate)
	}

	// Keep the filter state across parameter changes to avoid clicks.
	for i := range s.sections {
		if s.sections[i] == nil {
			s.sections[i] = biquad.NewSection(coeffs)
			continue
		}

		s.sections[i].Coefficients = coeffs
	}

	return nil
}

func (s *filterStage) run(left, right []float64) {
	s.sections[0].ProcessBlock(left)
	s.sections[1].ProcessBlock(right)
}

func (s *filterStage) Dispose() {
	s.release()
	s.sections = [2]*biquad.Section{}
}
