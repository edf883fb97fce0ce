// Package testutil holds signal generators and tolerance checks shared by the
// looper tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of a sine at freqHz.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise returns seeded white noise in [-amplitude, amplitude).
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// DC returns a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Ramp returns 0, step, 2*step, ... Useful for checking loop positions.
func Ramp(step float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = step * float64(i)
	}

	return out
}

// Stereo interleaves two channels into frames. The shorter channel is
// zero-padded.
func Stereo(left, right []float64) [][2]float64 {
	n := max(len(left), len(right))
	out := make([][2]float64, n)

	for i := range out {
		if i < len(left) {
			out[i][0] = left[i]
		}

		if i < len(right) {
			out[i][1] = right[i]
		}
	}

	return out
}

// Mono copies one channel to both sides of each frame.
func Mono(samples []float64) [][2]float64 {
	return Stereo(samples, samples)
}

// Channel extracts side ch (0 left, 1 right) from frames.
func Channel(frames [][2]float64, ch int) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f[ch]
	}

	return out
}

// RMS returns the root mean square of x, 0 when empty.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum float64
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}
