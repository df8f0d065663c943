// Package ingress decodes the Opus/RTP audio carried on one subscribed
// LiveKit track into fixed-duration PCM16 frames, ready for the frame
// aggregator, delivering them to a callback instead of forwarding them
// onward unmodified.
package ingress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	soxr "github.com/zaf/resample"
	opus "gopkg.in/hraban/opus.v2"

	"github.com/livekit-captions/caption-agent/internal/frame"
	"github.com/livekit-captions/caption-agent/internal/logging"
)

const (
	opusSampleRate = 48000
	frameMs        = 20
	maxOpusSamples = opusSampleRate / 1000 * 120 // RFC 6716 allows up to 120ms frames
)

// Track reads RTP packets off one remote audio track, decodes the Opus
// payload, resamples to the configured output rate, and delivers
// fixed-size 20ms frames to onFrame. Not safe for concurrent Start
// calls; one Track belongs to one subscribed track.
type Track struct {
	outputSampleRate int
	onFrame          func(frame.Frame)

	decoder     *opus.Decoder
	resampler   *soxr.Resampler
	resampleBuf *bytes.Buffer
	resampleMu  sync.Mutex

	remaining []int16

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewTrack creates a Track that emits PCM16 frames at outputSampleRate.
func NewTrack(outputSampleRate int, onFrame func(frame.Frame)) (*Track, error) {
	decoder, err := opus.NewDecoder(opusSampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}

	t := &Track{
		outputSampleRate: outputSampleRate,
		onFrame:          onFrame,
		decoder:          decoder,
		remaining:        make([]int16, 0, outputSampleRate*frameMs/1000),
		stopCh:           make(chan struct{}),
	}

	if outputSampleRate != opusSampleRate {
		t.resampleBuf = &bytes.Buffer{}
		resampler, err := soxr.New(t.resampleBuf, float64(opusSampleRate), float64(outputSampleRate), 1, soxr.I16, soxr.HighQ)
		if err != nil {
			return nil, fmt.Errorf("create resampler: %w", err)
		}
		t.resampler = resampler
	}

	return t, nil
}

// Start begins reading RTP packets from remote in a background goroutine.
func (t *Track) Start(remote *webrtc.TrackRemote) {
	t.wg.Add(1)
	go t.run(remote)
}

// Stop halts RTP reading and closes the resampler, if one was created.
func (t *Track) Stop() {
	close(t.stopCh)
	t.wg.Wait()
	if t.resampler != nil {
		t.resampler.Close()
	}
}

func (t *Track) run(remote *webrtc.TrackRemote) {
	defer t.wg.Done()

	buf := make([]byte, 1500)
	pkt := &rtp.Packet{}
	pcm48k := make([]int16, maxOpusSamples)
	frameSamples := t.outputSampleRate * frameMs / 1000

	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, _, err := remote.Read(buf)
		if err != nil {
			select {
			case <-t.stopCh:
			default:
				logging.Warning(logging.CategoryIngress, "rtp read error: %v", err)
			}
			return
		}

		if err := pkt.Unmarshal(buf[:n]); err != nil {
			logging.Warning(logging.CategoryIngress, "rtp unmarshal error: %v", err)
			continue
		}
		if len(pkt.Payload) == 0 {
			continue // DTX packet
		}

		count, err := t.decoder.Decode(pkt.Payload, pcm48k)
		if err != nil {
			logging.Warning(logging.CategoryIngress, "opus decode error: %v", err)
			continue
		}
		if count == 0 {
			continue
		}

		resampled, err := t.resample(pcm48k[:count])
		if err != nil {
			logging.Warning(logging.CategoryIngress, "resample error: %v", err)
			continue
		}
		if len(resampled) == 0 {
			continue
		}

		combined := append(t.remaining, resampled...)
		for len(combined) >= frameSamples {
			chunk := make([]int16, frameSamples)
			copy(chunk, combined[:frameSamples])
			combined = combined[frameSamples:]
			t.onFrame(frame.Frame{
				PCM:        chunk,
				SampleRate: t.outputSampleRate,
				Channels:   1,
				Duration:   frameMs * time.Millisecond,
			})
		}
		t.remaining = append(t.remaining[:0], combined...)
	}
}

func (t *Track) resample(samples []int16) ([]int16, error) {
	if t.resampler == nil {
		out := make([]int16, len(samples))
		copy(out, samples)
		return out, nil
	}

	t.resampleMu.Lock()
	defer t.resampleMu.Unlock()

	input := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(input[i*2:], uint16(s))
	}

	t.resampleBuf.Reset()
	if _, err := t.resampler.Write(input); err != nil {
		return nil, fmt.Errorf("resampler write: %w", err)
	}

	out := t.resampleBuf.Bytes()
	result := make([]int16, len(out)/2)
	for i := range result {
		result[i] = int16(binary.LittleEndian.Uint16(out[i*2:]))
	}
	return result, nil
}
