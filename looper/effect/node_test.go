package effect

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-looper/internal/testutil"
)

func TestNodeRealizeLifecycle(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	for _, typ := range []Type{TypeLowPass, TypeHighPass, TypePan, TypeDelay, TypeCompressor} {
		n, err := NewNode(1, typ)
		if err != nil {
			t.Fatalf("NewNode(%s): %v", typ, err)
		}

		if n.Realized() {
			t.Fatalf("%s realized before wiring", typ)
		}

		if err := n.Realize(reg, testCtx()); err != nil {
			t.Fatalf("Realize(%s): %v", typ, err)
		}

		if !n.Realized() || !n.Info().Realized {
			t.Fatalf("%s not realized", typ)
		}

		out := n.Connect(newMonoStreamer(testutil.DC(0.1, 64)))
		testutil.RequireFramesFinite(t, render(out, 64))

		n.Dispose()

		if n.Realized() {
			t.Fatalf("%s still realized after Dispose", typ)
		}

		// a disposed stage that is still referenced streams silence
		testutil.RequireSilent(t, render(out, 64), 0)
	}
}

func TestPitchNeverRealizes(t *testing.T) {
	t.Parallel()

	n, _ := NewNode(3, TypePitch)

	if n.Wired() {
		t.Fatal("pitch node must not be wired")
	}

	if err := n.Realize(DefaultRegistry(), testCtx()); err != nil {
		t.Fatalf("Realize: %v", err)
	}

	if n.Realized() {
		t.Fatal("pitch node realized a stage")
	}

	if err := n.Set(testCtx(), "semitones", 12); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if math.Abs(n.Rate()-2) > 1e-12 {
		t.Fatalf("Rate() = %v, want 2", n.Rate())
	}
}

func TestRealizeWithoutFactory(t *testing.T) {
	t.Parallel()

	n, _ := NewNode(1, TypeDelay)

	err := n.Realize(NewRegistry(), testCtx())
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}

	if n.Realized() {
		t.Fatal("node realized without factory")
	}
}

func TestRealizeFactoryFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("dsp init failed")
	reg := NewRegistry()
	reg.MustRegister(TypeDelay, func(Context) (Stage, error) { return nil, boom })

	n, _ := NewNode(1, TypeDelay)

	if err := n.Realize(reg, testCtx()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped factory error", err)
	}
}

func TestDelayDryPath(t *testing.T) {
	t.Parallel()

	n, _ := NewNode(1, TypeDelay)
	if err := n.Realize(DefaultRegistry(), testCtx()); err != nil {
		t.Fatalf("Realize: %v", err)
	}

	in := testutil.DeterministicSine(440, testSampleRate, 0.5, 256)
	out := render(n.Connect(newMonoStreamer(in)), 256)

	// 0.25 s at 8 kHz is far beyond the block, so only the dry path sounds.
	mix := n.Params.(DelayParams).Mix
	for i, v := range in {
		want := v * (1 - mix)
		if math.Abs(out[i][0]-want) > 1e-12 || math.Abs(out[i][1]-want) > 1e-12 {
			t.Fatalf("frame %d = %v, want %v", i, out[i], want)
		}
	}
}

func TestLowPassAttenuatesNyquist(t *testing.T) {
	t.Parallel()

	n, _ := NewNode(1, TypeLowPass)
	if err := n.Set(testCtx(), "cutoff", 200); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := n.Realize(DefaultRegistry(), testCtx()); err != nil {
		t.Fatalf("Realize: %v", err)
	}

	in := make([]float64, 2048)
	for i := range in {
		in[i] = 1
		if i%2 == 1 {
			in[i] = -1
		}
	}

	out := render(n.Connect(newMonoStreamer(in)), len(in))

	tail := make([]float64, 1024)
	for i := range tail {
		tail[i] = out[1024+i][0]
	}

	if rms := testutil.RMS(tail); rms > 0.05 {
		t.Fatalf("lowpass RMS at Nyquist = %v, want < 0.05", rms)
	}
}

func TestSetReconfiguresRealizedStage(t *testing.T) {
	t.Parallel()

	n, _ := NewNode(1, TypeDelay)
	if err := n.Realize(DefaultRegistry(), testCtx()); err != nil {
		t.Fatalf("Realize: %v", err)
	}

	if err := n.Set(testCtx(), "mix", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	in := testutil.DC(0.3, 32)
	out := render(n.Connect(newMonoStreamer(in)), 32)

	for i := range out {
		if math.Abs(out[i][0]-0.3) > 1e-12 {
			t.Fatalf("frame %d = %v, want dry 0.3", i, out[i][0])
		}
	}
}

func TestPanCenterPassesThrough(t *testing.T) {
	t.Parallel()

	n, _ := NewNode(1, TypePan)
	if err := n.Realize(DefaultRegistry(), testCtx()); err != nil {
		t.Fatalf("Realize: %v", err)
	}

	in := testutil.DeterministicNoise(7, 0.5, 64)
	out := render(n.Connect(newMonoStreamer(in)), 64)

	for i, v := range in {
		if out[i][0] != v || out[i][1] != v {
			t.Fatalf("frame %d = %v, want %v", i, out[i], v)
		}
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	f := func(Context) (Stage, error) { return &panStage{}, nil }

	if err := r.Register(TypePan, f); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := r.Register(TypePan, f); err == nil {
		t.Fatal("duplicate Register should fail")
	}

	if err := r.Register(TypePitch, f); err == nil {
		t.Fatal("registering pitch should fail")
	}

	if err := r.Register(Type(42), f); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type err = %v", err)
	}

	if err := r.Register(TypeDelay, nil); err == nil {
		t.Fatal("nil factory should fail")
	}

	if r.Lookup(TypePan) == nil || r.Lookup(TypeDelay) != nil {
		t.Fatal("Lookup mismatch")
	}

	var nilReg *Registry
	if nilReg.Lookup(TypePan) != nil {
		t.Fatal("nil registry lookup should be nil")
	}
}
