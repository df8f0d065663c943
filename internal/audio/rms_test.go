package audio

import "testing"

func TestRMSEmpty(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}

func TestRMSConstant(t *testing.T) {
	pcm := []int16{1000, 1000, 1000, 1000}
	if got := RMS(pcm); got != 1000 {
		t.Fatalf("expected 1000, got %v", got)
	}
}

func TestRMSMixedSign(t *testing.T) {
	pcm := []int16{1000, -1000, 1000, -1000}
	if got := RMS(pcm); got != 1000 {
		t.Fatalf("expected 1000, got %v", got)
	}
}

func TestRMSZeroSilence(t *testing.T) {
	pcm := make([]int16, 100)
	if got := RMS(pcm); got != 0 {
		t.Fatalf("expected 0 for silence, got %v", got)
	}
}
