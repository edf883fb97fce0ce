package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or any
// element pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFramesNearlyEqual is RequireSliceNearlyEqual for stereo frames.
func RequireFramesNearlyEqual(t *testing.T, got, want [][2]float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d frames, want %d", len(got), len(want))
	}

	for i := range got {
		for ch := range 2 {
			if diff := math.Abs(got[i][ch] - want[i][ch]); diff > eps {
				t.Fatalf("frame %d ch %d: got %v, want %v (diff %v > eps %v)",
					i, ch, got[i][ch], want[i][ch], diff, eps)
			}
		}
	}
}

// RequireFramesFinite fails t if any sample is NaN or Inf.
func RequireFramesFinite(t *testing.T, frames [][2]float64) {
	t.Helper()

	for i, f := range frames {
		for ch, v := range f {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("frame %d ch %d: non-finite value %v", i, ch, v)
			}
		}
	}
}

// RequireSilent fails t if any sample magnitude exceeds eps.
func RequireSilent(t *testing.T, frames [][2]float64, eps float64) {
	t.Helper()

	for i, f := range frames {
		if math.Abs(f[0]) > eps || math.Abs(f[1]) > eps {
			t.Fatalf("frame %d: %v, want silence", i, f)
		}
	}
}

// MaxAbsDiff returns the largest absolute element difference of a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	maxDiff := 0.0
	for i := range a {
		maxDiff = max(maxDiff, math.Abs(a[i]-b[i]))
	}

	return maxDiff, nil
}
