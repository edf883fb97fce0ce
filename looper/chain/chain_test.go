package chain

import (
	"math"
	"testing"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-looper/internal/testutil"
	"github.com/cwbudde/algo-looper/looper/effect"
	"github.com/cwbudde/algo-looper/looper/loopbuf"
)

const sampleRate = 8000.0

func newTestChain(t *testing.T) (*Chain, *test.Hook) {
	t.Helper()

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	return New(nil, effect.Context{SampleRate: sampleRate}, log), hook
}

func ids(c *Chain) []int {
	out := make([]int, 0, c.Len())
	for _, n := range c.Nodes() {
		out = append(out, n.ID)
	}

	return out
}

func types(c *Chain) []effect.Type {
	out := make([]effect.Type, 0, c.Len())
	for _, n := range c.Nodes() {
		out = append(out, n.Type)
	}

	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func render(s beep.Streamer, n int) [][2]float64 {
	out := make([][2]float64, n)
	s.Stream(out)

	return out
}

func TestAddAssignsFreshIDsInOrder(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)

	lp, ok := c.Add(effect.TypeLowPass)
	if !ok {
		t.Fatal("Add(LowPass) rejected")
	}

	dl, _ := c.Add(effect.TypeDelay)

	got := types(c)
	if len(got) != 2 || got[0] != effect.TypeLowPass || got[1] != effect.TypeDelay {
		t.Fatalf("order = %v, want [lowpass delay]", got)
	}

	if c.Move(lp, Up) {
		t.Fatal("moving the first node up should be a no-op")
	}

	if !equalInts(ids(c), []int{lp, dl}) {
		t.Fatalf("ids = %v after no-op move", ids(c))
	}

	c.Remove(dl)

	again, _ := c.Add(effect.TypeDelay)
	if again == dl || again == lp {
		t.Fatalf("id %d reused", again)
	}
}

func TestAddUnknownTypeIgnored(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)

	if _, ok := c.Add(effect.Type(77)); ok {
		t.Fatal("unknown type accepted")
	}

	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestMoveRoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	c.Add(effect.TypeLowPass)
	mid, _ := c.Add(effect.TypePan)
	c.Add(effect.TypeDelay)

	before := ids(c)

	if !c.Move(mid, Up) {
		t.Fatal("Move up rejected")
	}

	if equalInts(ids(c), before) {
		t.Fatal("Move up did not change order")
	}

	if !c.Move(mid, Down) {
		t.Fatal("Move down rejected")
	}

	if !equalInts(ids(c), before) {
		t.Fatalf("order = %v, want %v", ids(c), before)
	}

	last := before[len(before)-1]
	if c.Move(last, Down) {
		t.Fatal("moving the last node down should be a no-op")
	}
}

func TestBypassKeepsOrderAndParams(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	c.Add(effect.TypeHighPass)
	dl, _ := c.Add(effect.TypeDelay)
	c.SetParam(dl, "feedback", 0.5)

	before := c.Nodes()

	if !c.ToggleBypass(dl) {
		t.Fatal("ToggleBypass rejected")
	}

	after := c.Nodes()
	for i := range before {
		if before[i].ID != after[i].ID || before[i].Params != after[i].Params {
			t.Fatalf("node %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}

	if !after[1].Bypass {
		t.Fatal("delay not bypassed")
	}

	c.ToggleBypass(dl)

	if n, _ := c.Node(dl); n.Bypass {
		t.Fatal("second toggle did not restore")
	}
}

func TestMissingNodeEditsAreNoOps(t *testing.T) {
	t.Parallel()

	c, hook := newTestChain(t)
	c.Add(effect.TypePan)

	before := c.Nodes()

	if c.Remove(42) || c.Move(42, Up) || c.ToggleBypass(42) || c.SetParam(42, "pan", 1) {
		t.Fatal("edit on missing node reported a change")
	}

	after := c.Nodes()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("chain changed: %+v -> %+v", before, after)
	}

	last := hook.LastEntry()
	if last == nil || last.Data[logrus.ErrorKey] != ErrMissingNode {
		t.Fatalf("last log entry = %+v, want ErrMissingNode", last)
	}
}

func TestEmptyChainPassesSourceThrough(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	dry := testutil.DeterministicSine(220, sampleRate, 0.5, 400)
	sink := NewGain(1)

	c.Rewire(loopbuf.NewPlayer(loopbuf.New([][]float64{dry}, sampleRate)), sink)

	testutil.RequireFramesNearlyEqual(t, render(sink, len(dry)), testutil.Mono(dry), 0)
}

func TestBypassDelayRewiresToDryPath(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	dl, _ := c.Add(effect.TypeDelay)

	dry := testutil.DeterministicNoise(3, 0.5, 1000)
	player := loopbuf.NewPlayer(loopbuf.New([][]float64{dry}, sampleRate))
	sink := NewGain(1)

	c.Rewire(player, sink)

	// The echo arrives after 0.25 s (2000 frames); before that only the dry
	// path sounds, scaled by 1-mix.
	n, _ := c.Node(dl)
	mix := n.Params.(effect.DelayParams).Mix

	wet := render(sink, 500)
	for i := range wet {
		want := dry[i] * (1 - mix)
		if math.Abs(wet[i][0]-want) > 1e-12 {
			t.Fatalf("frame %d = %v, want %v", i, wet[i][0], want)
		}
	}

	c.ToggleBypass(dl)

	got := render(sink, 500)
	testutil.RequireFramesNearlyEqual(t, got, testutil.Mono(dry[500:1000]), 0)

	if n, _ := c.Node(dl); !n.Realized {
		t.Fatal("bypassed node should keep its stage")
	}
}

func TestRemoveWhileAttachedRestoresDryPath(t *testing.T) {
	t.Parallel()

	for _, typ := range []effect.Type{effect.TypeDelay, effect.TypeLowPass, effect.TypePan, effect.TypeCompressor} {
		t.Run(typ.String(), func(t *testing.T) {
			t.Parallel()

			c, _ := newTestChain(t)
			id, _ := c.Add(typ)

			dry := testutil.DeterministicNoise(5, 0.5, 1000)
			sink := NewGain(1)
			c.Rewire(loopbuf.NewPlayer(loopbuf.New([][]float64{dry}, sampleRate)), sink)

			render(sink, 500)

			if !c.Remove(id) {
				t.Fatalf("Remove(%d) rejected", id)
			}

			if c.Len() != 0 || !c.Attached() {
				t.Fatalf("Len = %d, Attached = %v after Remove", c.Len(), c.Attached())
			}

			got := render(sink, 500)
			testutil.RequireFramesNearlyEqual(t, got, testutil.Mono(dry[500:1000]), 0)
		})
	}
}

func TestRemoveMiddleNodeKeepsNeighboursWired(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	dl, _ := c.Add(effect.TypeDelay)
	pan, _ := c.Add(effect.TypePan)
	c.SetParam(pan, "pan", 1)

	sink := NewGain(1)
	c.Rewire(loopbuf.NewPlayer(loopbuf.New([][]float64{testutil.DC(0.5, 256)}, sampleRate)), sink)

	render(sink, 64)
	c.Remove(dl)

	out := render(sink, 64)
	for i := range out {
		if out[i][0] != 0 || out[i][1] != 0.5 {
			t.Fatalf("frame %d = %v, want hard right dry signal", i, out[i])
		}
	}
}

func TestRewireOrderIsProcessingOrder(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	pan, _ := c.Add(effect.TypePan)
	c.SetParam(pan, "pan", 1)

	dry := testutil.DC(0.5, 64)
	sink := NewGain(1)
	c.Rewire(loopbuf.NewPlayer(loopbuf.New([][]float64{dry}, sampleRate)), sink)

	out := render(sink, 64)
	for i := range out {
		if out[i][0] != 0 || out[i][1] != 0.5 {
			t.Fatalf("frame %d = %v, want hard right", i, out[i])
		}
	}
}

func TestPitchIsLogicalOnly(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	p, _ := c.Add(effect.TypePitch)
	c.SetParam(p, "semitones", 12)

	if rate := c.PlaybackRate(); math.Abs(rate-2) > 1e-12 {
		t.Fatalf("PlaybackRate = %v, want 2", rate)
	}

	q, _ := c.Add(effect.TypePitch)
	c.SetParam(q, "semitones", -12)

	if rate := c.PlaybackRate(); math.Abs(rate-1) > 1e-12 {
		t.Fatalf("PlaybackRate = %v, want 1", rate)
	}

	c.ToggleBypass(q)

	if rate := c.PlaybackRate(); math.Abs(rate-2) > 1e-12 {
		t.Fatalf("PlaybackRate with bypass = %v, want 2", rate)
	}

	c.Rewire(loopbuf.NewPlayer(loopbuf.New([][]float64{testutil.DC(0.1, 64)}, sampleRate)), NewGain(1))

	for _, n := range c.Nodes() {
		if n.Realized {
			t.Fatalf("pitch node %d realized", n.ID)
		}
	}
}

func TestPitchOctaveSpeedsUpPlayback(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	p, _ := c.Add(effect.TypePitch)
	c.SetParam(p, "semitones", 12)

	player := loopbuf.NewPlayer(loopbuf.New([][]float64{testutil.Ramp(1, 4000)}, sampleRate))
	sink := NewGain(1)
	c.Rewire(player, sink)

	render(sink, 1000)

	// The resampler pulls its source in blocks, so allow one block of
	// read-ahead.
	if pos := player.Position(); pos < 2000 || pos > 2600 {
		t.Fatalf("player position = %d after 1000 output frames, want ~2000", pos)
	}
}

func TestDetachSilencesSinkAndTeardownDisposes(t *testing.T) {
	t.Parallel()

	c, _ := newTestChain(t)
	c.Add(effect.TypeCompressor)
	c.Add(effect.TypeLowPass)

	sink := NewGain(1)
	c.Rewire(loopbuf.NewPlayer(loopbuf.New([][]float64{testutil.DC(0.5, 128)}, sampleRate)), sink)

	for _, n := range c.Nodes() {
		if !n.Realized {
			t.Fatalf("node %d not realized after rewire", n.ID)
		}
	}

	c.Detach()

	if c.Attached() || sink.Connected() {
		t.Fatal("chain still attached")
	}

	testutil.RequireSilent(t, render(sink, 64), 0)

	c.Teardown()

	for _, n := range c.Nodes() {
		if n.Realized {
			t.Fatalf("node %d still realized after teardown", n.ID)
		}
	}

	if c.Len() != 2 {
		t.Fatalf("Teardown removed nodes: Len = %d", c.Len())
	}
}

func TestFailingStageIsSkipped(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	reg := effect.NewRegistry()
	c := New(reg, effect.Context{SampleRate: sampleRate}, log)
	c.Add(effect.TypeDelay)

	dry := testutil.DC(0.25, 32)
	sink := NewGain(1)
	c.Rewire(loopbuf.NewPlayer(loopbuf.New([][]float64{dry}, sampleRate)), sink)

	testutil.RequireFramesNearlyEqual(t, render(sink, 32), testutil.Mono(dry), 0)

	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %+v", e)
	}
}

func TestGainLevel(t *testing.T) {
	t.Parallel()

	g := NewGain(0.5)
	g.Replace(func() beep.Streamer {
		return loopbuf.NewPlayer(loopbuf.New([][]float64{testutil.DC(1, 16)}, sampleRate))
	})

	out := render(g, 16)
	if out[0][0] != 0.5 || out[0][1] != 0.5 {
		t.Fatalf("frame = %v, want 0.5", out[0])
	}

	g.SetLevel(-1)

	if g.Level() != 0 {
		t.Fatalf("Level = %v, want clamp to 0", g.Level())
	}

	testutil.RequireSilent(t, render(g, 16), 0)
}
