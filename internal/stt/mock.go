package stt

import (
	"context"

	"github.com/livekit-captions/caption-agent/internal/frame"
)

// MockClient returns a scripted sequence of transcripts, one per call,
// for deterministic pipeline tests. It never errors.
type MockClient struct {
	Transcripts []string
	calls       int
}

// Transcribe returns the next scripted transcript, or "" once exhausted.
func (m *MockClient) Transcribe(_ context.Context, _ *frame.Window, _ string) (string, error) {
	if m.calls >= len(m.Transcripts) {
		m.calls++
		return "", nil
	}
	text := m.Transcripts[m.calls]
	m.calls++
	return text, nil
}
