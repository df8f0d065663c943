package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/livekit-captions/caption-agent/internal/assembler"
	"github.com/livekit-captions/caption-agent/internal/filter"
	"github.com/livekit-captions/caption-agent/internal/frame"
	"github.com/livekit-captions/caption-agent/internal/ingress"
	"github.com/livekit-captions/caption-agent/internal/logging"
	"github.com/livekit-captions/caption-agent/internal/stt"
)

// pipeline is one speaker's independent task: ingress decode → frame
// aggregation → speech-to-text → filter/dedup gate → sentence
// assembler append.
type pipeline struct {
	speakerID string

	track      *ingress.Track
	aggregator *frame.Aggregator
	filterGate *filter.Gate
	assembler  *assembler.Manager

	sttClient   stt.Client
	sttLanguage func() string
	framesCh    chan frame.Frame
	isMuted     func() bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPipeline(
	speakerID string,
	cfg frame.Config,
	sampleRate int,
	sttClient stt.Client,
	sttLanguage func() string,
	filterGate *filter.Gate,
	asm *assembler.Manager,
	isMuted func() bool,
	parentCtx context.Context,
) (*pipeline, error) {
	ctx, cancel := context.WithCancel(parentCtx)
	p := &pipeline{
		speakerID:   speakerID,
		aggregator:  frame.New(cfg, sampleRate, 1),
		filterGate:  filterGate,
		assembler:   asm,
		sttClient:   sttClient,
		sttLanguage: sttLanguage,
		framesCh:    make(chan frame.Frame, 64),
		isMuted:     isMuted,
		ctx:         ctx,
		cancel:      cancel,
	}

	track, err := ingress.NewTrack(sampleRate, p.onFrame)
	if err != nil {
		cancel()
		return nil, err
	}
	p.track = track
	return p, nil
}

func (p *pipeline) onFrame(f frame.Frame) {
	select {
	case p.framesCh <- f:
	case <-p.ctx.Done():
	}
}

// start begins reading RTP from remote and running the aggregation/STT
// loop in a background goroutine.
func (p *pipeline) start(remote *webrtc.TrackRemote) {
	p.track.Start(remote)
	p.wg.Add(1)
	go p.run()
}

// stop tears down the pipeline and flushes the speaker's in-progress
// sentence.
func (p *pipeline) stop(asm *assembler.Manager) {
	p.cancel()
	p.track.Stop()
	p.wg.Wait()
	asm.Unsubscribe(p.speakerID)
}

func (p *pipeline) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case f, ok := <-p.framesCh:
			if !ok {
				return
			}
			window := p.aggregator.Push(f, p.isMuted())
			if window == nil {
				continue
			}
			p.processWindow(window)
		}
	}
}

func (p *pipeline) processWindow(window *frame.Window) {
	ctx, cancel := context.WithTimeout(p.ctx, 30*time.Second)
	defer cancel()

	text, err := p.sttClient.Transcribe(ctx, window, p.sttLanguage())
	if err != nil {
		logging.Error(logging.CategorySTT, "transcription failed speaker=%s: %v", p.speakerID, err)
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !p.filterGate.Accept(p.speakerID, text, window.RMS, time.Now()) {
		return
	}
	p.assembler.Append(p.speakerID, text)
}
