package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSineReproducible(t *testing.T) {
	t.Parallel()

	a := DeterministicSine(440, 48000, 0.5, 128)
	b := DeterministicSine(440, 48000, 0.5, 128)

	RequireSliceNearlyEqual(t, a, b, 0)

	if a[0] != 0 {
		t.Fatalf("sine[0] = %v, want 0", a[0])
	}
}

func TestDeterministicNoiseSeeds(t *testing.T) {
	t.Parallel()

	a := DeterministicNoise(1, 1, 64)
	b := DeterministicNoise(2, 1, 64)

	if d, _ := MaxAbsDiff(a, b); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}

	for i, v := range a {
		if v < -1 || v >= 1 {
			t.Fatalf("noise[%d] = %v out of range", i, v)
		}
	}
}

func TestStereoPadsShorterChannel(t *testing.T) {
	t.Parallel()

	f := Stereo([]float64{1, 2, 3}, []float64{4})
	want := [][2]float64{{1, 4}, {2, 0}, {3, 0}}

	RequireFramesNearlyEqual(t, f, want, 0)
	RequireSliceNearlyEqual(t, Channel(f, 0), []float64{1, 2, 3}, 0)
}

func TestRMS(t *testing.T) {
	t.Parallel()

	if got := RMS(DC(-0.5, 10)); math.Abs(got-0.5) > 1e-15 {
		t.Fatalf("RMS(DC) = %v, want 0.5", got)
	}

	if RMS(nil) != 0 {
		t.Fatal("RMS(nil) should be 0")
	}

	if got := RMS(Ramp(1, 3)); math.Abs(got-math.Sqrt(5.0/3)) > 1e-15 {
		t.Fatalf("RMS(ramp) = %v", got)
	}
}
