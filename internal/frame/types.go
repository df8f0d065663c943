// Package frame aggregates fixed-duration audio frames from a single
// subscribed track into overlap-prepended windows for speech recognition.
package frame

import "time"

// Frame is a single fixed-duration slice of PCM16 audio as produced by
// the conferencing SDK at a fixed cadence (e.g. 20ms). Immutable once
// received.
type Frame struct {
	PCM        []int16
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// Window is the concatenation of consecutive frames plus a prepended
// tail from the previous window, ready for encoding and submission to
// speech recognition.
type Window struct {
	PCM        []int16
	SampleRate int
	Channels   int
	EmittedAt  time.Time
	RMS        float64
}
