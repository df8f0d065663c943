package filter

import (
	"testing"
	"time"
)

func TestGateRejectsBlocklistedPhrase(t *testing.T) {
	g := New(Config{BlocklistPhrases: []string{"Thanks for watching"}, RepeatWindow: 7 * time.Second, ShortHighRMS: 1200})
	if g.Accept("p1", "thanks for watching", 2000, time.Now()) {
		t.Fatalf("expected blocklisted phrase to be rejected")
	}
}

func TestGateRejectsPunctuationOnly(t *testing.T) {
	g := New(DefaultConfig())
	if g.Accept("p1", ".", 2000, time.Now()) {
		t.Fatalf("expected punctuation-only text to be rejected")
	}
}

func TestGateRejectsShortLowEnergyRepeat(t *testing.T) {
	g := New(Config{ShortHighRMS: 1200, RepeatWindow: 7 * time.Second})
	now := time.Now()

	if !g.Accept("p1", "uh", 500, now) {
		t.Fatalf("expected first occurrence to be accepted")
	}
	if g.Accept("p1", "uh", 500, now.Add(1*time.Second)) {
		t.Fatalf("expected repeat within window below threshold to be rejected")
	}
}

func TestGateAcceptsRepeatAfterWindowExpires(t *testing.T) {
	g := New(Config{ShortHighRMS: 1200, RepeatWindow: 7 * time.Second})
	now := time.Now()

	g.Accept("p1", "uh", 500, now)
	if !g.Accept("p1", "uh", 500, now.Add(8*time.Second)) {
		t.Fatalf("expected repeat after window to be accepted")
	}
}

func TestGateAcceptsLoudShortRepeat(t *testing.T) {
	g := New(Config{ShortHighRMS: 1200, RepeatWindow: 7 * time.Second})
	now := time.Now()

	g.Accept("p1", "yes", 2000, now)
	if !g.Accept("p1", "yes", 2000, now.Add(1*time.Second)) {
		t.Fatalf("expected loud short repeat to be accepted (threshold only gates low-energy repeats)")
	}
}

func TestGateAcceptsNormalSentence(t *testing.T) {
	g := New(DefaultConfig())
	if !g.Accept("p1", "Hello there, how are you today?", 900, time.Now()) {
		t.Fatalf("expected ordinary sentence to be accepted")
	}
}
