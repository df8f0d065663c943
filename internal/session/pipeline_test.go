package session

import (
	"context"
	"testing"
	"time"

	"github.com/livekit-captions/caption-agent/internal/assembler"
	"github.com/livekit-captions/caption-agent/internal/filter"
	"github.com/livekit-captions/caption-agent/internal/frame"
	"github.com/livekit-captions/caption-agent/internal/stt"
)

type fakeCaptionPublisher struct {
	records []assembler.CaptionRecord
}

func (f *fakeCaptionPublisher) PublishCaption(record assembler.CaptionRecord) {
	f.records = append(f.records, record)
}

func TestPipelineProcessWindowAppendsAcceptedTranscript(t *testing.T) {
	pub := &fakeCaptionPublisher{}
	asm := assembler.NewManager(assembler.Config{PunctGraceMs: 20, PauseFinalMs: 5000, MinCharsForFinal: 1000}, pub, nil)

	sttClient := &stt.MockClient{Transcripts: []string{"hello there"}}

	p, err := newPipeline(
		"speaker-1",
		frame.DefaultConfig(),
		16000,
		sttClient,
		func() string { return "en" },
		filter.New(filter.DefaultConfig()),
		asm,
		func() bool { return false },
		context.Background(),
	)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	window := &frame.Window{PCM: make([]int16, 320), SampleRate: 16000, Channels: 1, RMS: 2000}
	p.processWindow(window)

	asm.Unsubscribe("speaker-1")

	if len(pub.records) != 1 {
		t.Fatalf("expected 1 published record, got %d", len(pub.records))
	}
	if pub.records[0].Text != "hello there" {
		t.Fatalf("expected transcript 'hello there', got %q", pub.records[0].Text)
	}
}

func TestPipelineProcessWindowDropsFilteredTranscript(t *testing.T) {
	pub := &fakeCaptionPublisher{}
	asm := assembler.NewManager(assembler.Config{PunctGraceMs: 20, PauseFinalMs: 50, MinCharsForFinal: 1000}, pub, nil)

	sttClient := &stt.MockClient{Transcripts: []string{"."}}

	p, err := newPipeline(
		"speaker-1",
		frame.DefaultConfig(),
		16000,
		sttClient,
		func() string { return "en" },
		filter.New(filter.DefaultConfig()),
		asm,
		func() bool { return false },
		context.Background(),
	)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	window := &frame.Window{PCM: make([]int16, 320), SampleRate: 16000, Channels: 1, RMS: 2000}
	p.processWindow(window)

	time.Sleep(100 * time.Millisecond)
	asm.Unsubscribe("speaker-1")

	if len(pub.records) != 0 {
		t.Fatalf("expected punctuation-only transcript to be filtered out, got %d records", len(pub.records))
	}
}
