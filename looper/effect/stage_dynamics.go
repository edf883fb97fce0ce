package effect

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
)

// compressorStage runs one unlinked soft-knee compressor per channel.
type compressorStage struct {
	blockStage

	fx [2]*dynamics.Compressor
}

func newCompressorStage(ctx Context) (Stage, error) {
	s := &compressorStage{}

	for i := range s.fx {
		fx, err := dynamics.NewCompressor(ctx.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("effect: create compressor: %w", err)
		}

		s.fx[i] = fx
	}

	s.process = s.run

	return s, nil
}

func (s *compressorStage) Configure(ctx Context, p Params) error {
	cp, ok := p.(CompressorParams)
	if !ok {
		return fmt.Errorf("effect: configure compressor: unexpected params %T", p)
	}

	for _, fx := range s.fx {
		if fx == nil {
			return fmt.Errorf("effect: configure compressor: stage disposed")
		}

		err := configureCompressor(fx, ctx.SampleRate, cp)
		if err != nil {
			return err
		}
	}

	return nil
}

// maxProcessorKnee is the widest knee the algo-dsp compressor accepts.
const maxProcessorKnee = 24.0

// processorKnee scales the catalog knee range linearly onto the
// processor's [0, maxProcessorKnee] dB, so every catalog value stays
// distinct instead of saturating above 24 dB.
func processorKnee(knee float64) float64 {
	spec, _ := Lookup(TypeCompressor)
	p, _ := spec.Param("knee")

	return (core.Clamp(knee, p.Min, p.Max) - p.Min) / (p.Max - p.Min) * maxProcessorKnee
}

// configureCompressor maps catalog units (seconds, knee up to 40 dB) onto
// the processor's accepted ranges.
func configureCompressor(fx *dynamics.Compressor, sampleRate float64, p CompressorParams) error {
	err := fx.SetSampleRate(sampleRate)
	if err != nil {
		return fmt.Errorf("effect: configure compressor sample rate: %w", err)
	}

	err = fx.SetThreshold(p.Threshold)
	if err != nil {
		return fmt.Errorf("effect: configure compressor threshold: %w", err)
	}

	err = fx.SetRatio(core.Clamp(p.Ratio, 1, 100))
	if err != nil {
		return fmt.Errorf("effect: configure compressor ratio: %w", err)
	}

	err = fx.SetKnee(processorKnee(p.Knee))
	if err != nil {
		return fmt.Errorf("effect: configure compressor knee: %w", err)
	}

	err = fx.SetAttack(core.Clamp(p.Attack*1000, 0.1, 1000))
	if err != nil {
		return fmt.Errorf("effect: configure compressor attack: %w", err)
	}

	err = fx.SetRelease(core.Clamp(p.Release*1000, 1, 5000))
	if err != nil {
		return fmt.Errorf("effect: configure compressor release: %w", err)
	}

	err = fx.SetAutoMakeup(false)
	if err != nil {
		return fmt.Errorf("effect: configure compressor auto makeup: %w", err)
	}

	return nil
}

func (s *compressorStage) run(left, right []float64) {
	s.fx[0].ProcessInPlace(left)
	s.fx[1].ProcessInPlace(right)
}

func (s *compressorStage) Dispose() {
	s.release()
	s.fx = [2]*dynamics.Compressor{}
}
