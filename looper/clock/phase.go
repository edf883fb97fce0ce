package clock

import "math"

// PhaseOffset returns (now - loopStart) mod duration, clamped into
// [0, duration). A zero, negative or non-finite duration yields 0.
func PhaseOffset(now, loopStart, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0
	}

	elapsed := now - loopStart
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		return 0
	}

	phase := math.Mod(elapsed, duration)
	if phase < 0 {
		phase += duration
	}

	// Mod of a tiny negative value can round up to exactly duration.
	if phase >= duration {
		phase = 0
	}

	return phase
}

// UntilBoundary returns the time from now until the next loop boundary.
// Exactly on a boundary it returns 0.
func UntilBoundary(now, loopStart, duration float64) float64 {
	phase := PhaseOffset(now, loopStart, duration)
	if phase == 0 {
		return 0
	}

	return duration - phase
}
