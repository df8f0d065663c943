package frame

import (
	"time"

	"github.com/livekit-captions/caption-agent/internal/audio"
)

// Config holds the tunables for an Aggregator.
type Config struct {
	TargetMs     int
	OverlapMs    int
	VADThreshold float64
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{TargetMs: 1800, OverlapMs: 300, VADThreshold: 800}
}

// Aggregator collects frames from one subscribed audio track into
// target-sized, overlap-prepended windows, dropping muted or
// sub-threshold-energy spans. Not safe for concurrent use; one
// Aggregator belongs to exactly one track's pipeline goroutine.
type Aggregator struct {
	cfg Config

	sampleRate int
	channels   int

	accumulated    []int16
	accumulatedDur time.Duration
	prevTail       []int16
}

// New creates an Aggregator for a track with the given sample rate and
// channel count.
func New(cfg Config, sampleRate, channels int) *Aggregator {
	return &Aggregator{
		cfg:        cfg,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Push feeds one frame into the aggregator. It returns a non-nil Window
// when a target-sized window has just been assembled and passed the VAD
// gate; it returns nil while still buffering, when muted, or when the
// assembled window's RMS falls below the VAD threshold.
func (a *Aggregator) Push(f Frame, muted bool) *Window {
	if muted {
		a.accumulated = a.accumulated[:0]
		a.accumulatedDur = 0
		a.prevTail = nil
		return nil
	}

	a.accumulated = append(a.accumulated, f.PCM...)
	a.accumulatedDur += f.Duration

	if a.accumulatedDur < time.Duration(a.cfg.TargetMs)*time.Millisecond {
		return nil
	}

	combined := make([]int16, 0, len(a.prevTail)+len(a.accumulated))
	combined = append(combined, a.prevTail...)
	combined = append(combined, a.accumulated...)

	a.accumulated = a.accumulated[:0]
	a.accumulatedDur = 0

	tailSamples := a.samplesForMs(a.cfg.OverlapMs)
	if tailSamples > len(combined) {
		tailSamples = len(combined)
	}
	a.prevTail = append([]int16(nil), combined[len(combined)-tailSamples:]...)

	rms := audio.RMS(combined)
	if rms < a.cfg.VADThreshold {
		return nil
	}

	return &Window{
		PCM:        combined,
		SampleRate: a.sampleRate,
		Channels:   a.channels,
		EmittedAt:  time.Now(),
		RMS:        rms,
	}
}

func (a *Aggregator) samplesForMs(ms int) int {
	return ms * a.sampleRate * a.channels / 1000
}
