package frame

import (
	"testing"
	"time"
)

func loudFrame(n int, dur time.Duration) Frame {
	pcm := make([]int16, n)
	for i := range pcm {
		if i%2 == 0 {
			pcm[i] = 20000
		} else {
			pcm[i] = -20000
		}
	}
	return Frame{PCM: pcm, SampleRate: 16000, Channels: 1, Duration: dur}
}

func quietFrame(n int, dur time.Duration) Frame {
	return Frame{PCM: make([]int16, n), SampleRate: 16000, Channels: 1, Duration: dur}
}

func TestAggregatorBuffersUntilTarget(t *testing.T) {
	a := New(Config{TargetMs: 40, OverlapMs: 10, VADThreshold: 800}, 16000, 1)

	if w := a.Push(loudFrame(320, 20*time.Millisecond), false); w != nil {
		t.Fatalf("expected no window before target duration reached")
	}
	w := a.Push(loudFrame(320, 20*time.Millisecond), false)
	if w == nil {
		t.Fatalf("expected window once target duration reached")
	}
	if w.RMS < 800 {
		t.Fatalf("expected window to pass VAD, got rms=%v", w.RMS)
	}
}

func TestAggregatorDropsBelowVADThreshold(t *testing.T) {
	a := New(Config{TargetMs: 20, OverlapMs: 10, VADThreshold: 800}, 16000, 1)
	if w := a.Push(quietFrame(320, 20*time.Millisecond), false); w != nil {
		t.Fatalf("expected silence to be dropped, got window")
	}
}

func TestAggregatorEntireStreamBelowThresholdEmitsNothing(t *testing.T) {
	a := New(Config{TargetMs: 20, OverlapMs: 10, VADThreshold: 800}, 16000, 1)
	for i := 0; i < 10; i++ {
		if w := a.Push(quietFrame(320, 20*time.Millisecond), false); w != nil {
			t.Fatalf("expected no windows for an entirely silent stream")
		}
	}
}

func TestAggregatorMutedDiscardsAccumulation(t *testing.T) {
	a := New(Config{TargetMs: 40, OverlapMs: 10, VADThreshold: 800}, 16000, 1)
	a.Push(loudFrame(320, 20*time.Millisecond), false)
	a.Push(loudFrame(320, 20*time.Millisecond), true) // muted: discards accumulation

	if w := a.Push(loudFrame(320, 20*time.Millisecond), false); w != nil {
		t.Fatalf("expected mute to have discarded prior accumulation, got window immediately")
	}
}

func TestAggregatorPrependsTailOverlap(t *testing.T) {
	a := New(Config{TargetMs: 20, OverlapMs: 10, VADThreshold: 0}, 16000, 1)

	w1 := a.Push(loudFrame(320, 20*time.Millisecond), false)
	if w1 == nil {
		t.Fatalf("expected first window")
	}

	w2 := a.Push(loudFrame(320, 20*time.Millisecond), false)
	if w2 == nil {
		t.Fatalf("expected second window")
	}

	overlapSamples := 10 * 16000 / 1000
	if len(w2.PCM) != overlapSamples+320 {
		t.Fatalf("expected second window to include prepended tail, got len=%d want=%d", len(w2.PCM), overlapSamples+320)
	}
}
