package loopbuf

import (
	"testing"
)

func TestNewPadsShortChannels(t *testing.T) {
	t.Parallel()

	b := New([][]float64{{1, 2, 3}, {4}}, 10)

	if b.Frames() != 3 || b.NumChannels() != 2 {
		t.Fatalf("got %d frames, %d channels", b.Frames(), b.NumChannels())
	}

	if got := b.Channel(1); got[0] != 4 || got[1] != 0 || got[2] != 0 {
		t.Fatalf("channel 1 = %v, want [4 0 0]", got)
	}

	if b.Duration() != 0.3 {
		t.Fatalf("Duration() = %v, want 0.3", b.Duration())
	}
}

func TestFitTruncatesAndPads(t *testing.T) {
	t.Parallel()

	b := New([][]float64{{1, 2, 3, 4}}, 4)

	short := b.Fit(2)
	if short.Frames() != 2 || short.Channel(0)[1] != 2 {
		t.Fatalf("truncated = %v", short.Channel(0))
	}

	long := b.Fit(6)
	want := []float64{1, 2, 3, 4, 0, 0}

	for i, v := range want {
		if long.Channel(0)[i] != v {
			t.Fatalf("padded = %v, want %v", long.Channel(0), want)
		}
	}

	if b.Fit(4) != b {
		t.Fatal("Fit to current length should return the same buffer")
	}

	if b.Frames() != 4 || b.Channel(0)[3] != 4 {
		t.Fatal("Fit mutated the original buffer")
	}
}

func TestOverdubMonoIntoStereoKeepsSecondChannel(t *testing.T) {
	t.Parallel()

	base := New([][]float64{{1, 1, 1}, {2, 2, 2}}, 3)
	take := New([][]float64{{0.5, 0.5, 0.5}}, 3)

	merged := base.Overdub(take)

	if merged.NumChannels() != 2 {
		t.Fatalf("channels = %d, want 2", merged.NumChannels())
	}

	for i := range 3 {
		if merged.Frame(0, i) != 1.5 {
			t.Fatalf("left[%d] = %v, want 1.5", i, merged.Frame(0, i))
		}

		if merged.Frame(1, i) != 2 {
			t.Fatalf("right[%d] = %v, want 2", i, merged.Frame(1, i))
		}
	}

	if base.Frame(0, 0) != 1 {
		t.Fatal("Overdub mutated the base buffer")
	}
}

func TestOverdubStereoIntoMonoWidens(t *testing.T) {
	t.Parallel()

	base := New([][]float64{{1, 1}}, 2)
	take := New([][]float64{{1, 1, 9}, {3, 3, 9}}, 2)

	merged := base.Overdub(take)

	if merged.NumChannels() != 2 || merged.Frames() != 2 {
		t.Fatalf("got %d channels, %d frames", merged.NumChannels(), merged.Frames())
	}

	if merged.Frame(0, 1) != 2 || merged.Frame(1, 1) != 3 {
		t.Fatalf("merged frame 1 = (%v, %v), want (2, 3)", merged.Frame(0, 1), merged.Frame(1, 1))
	}
}

func TestFramesFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds, rate float64
		want          int
	}{
		{8, 48000, 384000},
		{0.5, 44100, 22050},
		{1.0 / 3, 3, 1},
		{0, 48000, 0},
		{-1, 48000, 0},
		{1, 0, 0},
	}

	for _, tt := range tests {
		if got := FramesFor(tt.seconds, tt.rate); got != tt.want {
			t.Errorf("FramesFor(%v, %v) = %d, want %d", tt.seconds, tt.rate, got, tt.want)
		}
	}
}
