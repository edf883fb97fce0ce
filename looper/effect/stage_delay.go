package effect

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/effects"
)

// delayStage is a feedback delay with dry/wet mix, one line per channel.
// The dry path is scaled by 1-mix.
type delayStage struct {
	blockStage

	fx         [2]*effects.Delay
	sampleRate float64
}

func newDelayStage(ctx Context) (Stage, error) {
	s := &delayStage{sampleRate: ctx.SampleRate}

	for i := range s.fx {
		fx, err := effects.NewDelay(ctx.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("effect: create delay: %w", err)
		}

		s.fx[i] = fx
	}

	s.process = s.run

	return s, nil
}

func (s *delayStage) Configure(ctx Context, p Params) error {
	dp, ok := p.(DelayParams)
	if !ok {
		return fmt.Errorf("effect: configure delay: unexpected params %T", p)
	}

	for _, fx := range s.fx {
		if fx == nil {
			return fmt.Errorf("effect: configure delay: stage disposed")
		}

		if ctx.SampleRate != s.sampleRate {
			err := fx.SetSampleRate(ctx.SampleRate)
			if err != nil {
				return fmt.Errorf("effect: configure delay sample rate: %w", err)
			}
		}

		err := fx.SetTime(dp.Time)
		if err != nil {
			return fmt.Errorf("effect: configure delay time: %w", err)
		}

		err = fx.SetFeedback(dp.Feedback)
		if err != nil {
			return fmt.Errorf("effect: configure delay feedback: %w", err)
		}

		err = fx.SetMix(dp.Mix)
		if err != nil {
			return fmt.Errorf("effect: configure delay mix: %w", err)
		}
	}

	s.sampleRate = ctx.SampleRate

	return nil
}

func (s *delayStage) run(left, right []float64) {
	s.fx[0].ProcessInPlace(left)
	s.fx[1].ProcessInPlace(right)
}

func (s *delayStage) Dispose() {
	s.release()
	s.fx = [2]*effects.Delay{}
}
