// Package session implements one Session per conference room, owning
// one pipeline per subscribed audio track, per-participant language
// preferences, and flush-on-shutdown.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4"

	"github.com/livekit-captions/caption-agent/internal/assembler"
	"github.com/livekit-captions/caption-agent/internal/filter"
	"github.com/livekit-captions/caption-agent/internal/logging"
	"github.com/livekit-captions/caption-agent/internal/publish"
	"github.com/livekit-captions/caption-agent/internal/roomauth"
	"github.com/livekit-captions/caption-agent/internal/stt"
	"github.com/livekit-captions/caption-agent/internal/translate"
)

// captionsTopic is the data-channel topic this agent listens/publishes on.
const captionsTopic = "captions"

// Session owns the connection to one room.
type Session struct {
	roomName string
	cfg      Config

	sttClient     stt.Client
	issuer        roomauth.Issuer
	assemblerMgr  *assembler.Manager
	publisher     *publish.Publisher
	prefs         *prefsStore
	defaultSTT    string
	defaultTarget string

	room *lksdk.Room

	mu        sync.Mutex
	pipelines map[string]*pipeline

	ctx    context.Context
	cancel context.CancelFunc
}

// Deps bundles the external collaborators a Session needs, shared
// across every room the process manages.
type Deps struct {
	STTClient stt.Client
	LLMClient translate.Client
	Issuer    roomauth.Issuer
	Hub       *publish.Hub
}

// New creates a Session for roomName. Translation dispatch and
// publication are wired per-session because each room resolves
// per-participant language preferences independently.
func New(roomName string, cfg Config, sttLanguage, targetLanguage string, deps Deps) *Session {
	defaultSTT := sttLanguage
	if defaultSTT == "" {
		defaultSTT = cfg.DefaultSTTLanguage
	}
	defaultTarget := targetLanguage
	if defaultTarget == "" {
		defaultTarget = cfg.DefaultTargetLanguage
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		roomName:      roomName,
		cfg:           cfg,
		sttClient:     deps.STTClient,
		issuer:        deps.Issuer,
		prefs:         newPrefsStore(),
		defaultSTT:    defaultSTT,
		defaultTarget: defaultTarget,
		pipelines:     make(map[string]*pipeline),
		ctx:           ctx,
		cancel:        cancel,
	}

	s.publisher = publish.New(s, s, cfg.AgentSendChat, deps.Hub)
	dispatcher := translate.NewDispatcher(deps.LLMClient, s.publisher, s, time.Duration(cfg.TranslateTimeout)*time.Millisecond)
	s.assemblerMgr = assembler.NewManager(cfg.Assembler, s.publisher, dispatcher)

	return s
}

// Start connects to the room as the agent's local participant and
// begins handling track subscriptions and data messages.
func (s *Session) Start(ctx context.Context) error {
	token, err := s.issuer.Token(s.roomName, "agent-captions-"+s.roomName, s.cfg.AgentName)
	if err != nil {
		return fmt.Errorf("mint room token: %w", err)
	}

	callback := &lksdk.RoomCallback{
		OnDisconnected: func() {
			logging.Info(logging.CategorySession, "disconnected from room room=%s", s.roomName)
		},
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: func(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if track.Kind() != webrtc.RTPCodecTypeAudio {
					return
				}
				s.attachTrack(rp, track, pub)
			},
			OnTrackUnsubscribed: func(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if track.Kind() != webrtc.RTPCodecTypeAudio {
					return
				}
				s.detachTrack(rp.Identity())
			},
			OnDataPacket: func(data lksdk.DataPacket, params lksdk.DataReceiveParams) {
				s.handleDataPacket(data, params)
			},
		},
	}

	room, err := lksdk.ConnectToRoomWithToken(s.cfg.LiveKitURL, token, callback)
	if err != nil {
		return fmt.Errorf("connect to room: %w", err)
	}
	s.room = room

	logging.Info(logging.CategorySession, "joined room room=%s identity=%s", s.roomName, room.LocalParticipant.Identity())

	for _, rp := range room.GetRemoteParticipants() {
		for _, p := range rp.TrackPublications() {
			if p.Kind() != lksdk.TrackKindAudio {
				continue
			}
			remotePub, ok := p.(*lksdk.RemoteTrackPublication)
			if !ok {
				continue
			}
			if !remotePub.IsSubscribed() {
				remotePub.SetSubscribed(true)
				continue
			}
			if track, ok := remotePub.Track().(*webrtc.TrackRemote); ok {
				s.attachTrack(rp, track, remotePub)
			}
		}
	}

	return nil
}

// Stop flushes every speaker's in-progress sentence and disconnects
// from the room.
func (s *Session) Stop() {
	s.cancel()

	s.mu.Lock()
	pipelines := make([]*pipeline, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		pipelines = append(pipelines, p)
	}
	s.pipelines = make(map[string]*pipeline)
	s.mu.Unlock()

	for _, p := range pipelines {
		p.stop(s.assemblerMgr)
	}
	s.assemblerMgr.FlushAll()

	if s.room != nil {
		s.room.Disconnect()
	}
	logging.Info(logging.CategorySession, "session stopped room=%s", s.roomName)
}

func (s *Session) attachTrack(rp *lksdk.RemoteParticipant, track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication) {
	speakerID := rp.Identity()

	s.mu.Lock()
	if _, exists := s.pipelines[speakerID]; exists {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	p, err := newPipeline(
		speakerID,
		s.cfg.Frame,
		s.cfg.SampleRate,
		s.sttClient,
		func() string { return s.prefs.sttLanguage(speakerID, s.defaultSTT) },
		filter.New(s.cfg.Filter),
		s.assemblerMgr,
		pub.IsMuted,
		s.ctx,
	)
	if err != nil {
		logging.Error(logging.CategorySession, "failed to create pipeline speaker=%s: %v", speakerID, err)
		return
	}

	s.mu.Lock()
	s.pipelines[speakerID] = p
	s.mu.Unlock()

	p.start(track)
	logging.Info(logging.CategorySession, "attached pipeline speaker=%s room=%s", speakerID, s.roomName)
}

func (s *Session) detachTrack(speakerID string) {
	s.mu.Lock()
	p, ok := s.pipelines[speakerID]
	if ok {
		delete(s.pipelines, speakerID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	p.stop(s.assemblerMgr)
	logging.Info(logging.CategorySession, "detached pipeline speaker=%s room=%s", speakerID, s.roomName)
}

type languagePrefsMessage struct {
	Type           string `json:"type"`
	ParticipantID  string `json:"participantId"`
	STTLanguage    string `json:"sttLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

func (s *Session) handleDataPacket(data lksdk.DataPacket, params lksdk.DataReceiveParams) {
	userPacket, ok := data.(*lksdk.UserDataPacket)
	if !ok || userPacket.Topic != captionsTopic {
		return // unknown topic, ignored
	}

	var msg languagePrefsMessage
	if err := json.Unmarshal(userPacket.Payload, &msg); err != nil {
		logging.Warning(logging.CategorySession, "failed to decode data message: %v", err)
		return
	}
	if msg.Type != "language_prefs" {
		return // unknown message type, ignored
	}

	participantID := msg.ParticipantID
	if participantID == "" {
		participantID = params.SenderIdentity
	}
	if participantID == "" {
		return
	}
	s.prefs.upsert(participantID, msg.STTLanguage, msg.TargetLanguage)
}

// TargetLanguage implements translate.LanguageResolver.
func (s *Session) TargetLanguage(speaker string) string {
	return s.prefs.targetLanguage(speaker, s.defaultTarget)
}

// RecognitionLanguage implements translate.LanguageResolver.
func (s *Session) RecognitionLanguage(speaker string) string {
	return s.prefs.sttLanguage(speaker, s.defaultSTT)
}

// SendData implements publish.DataSender by publishing a reliable data
// message on topic.
func (s *Session) SendData(payload []byte, topic string) error {
	if s.room == nil {
		return fmt.Errorf("session: room not connected")
	}
	return s.room.LocalParticipant.PublishDataPacket(
		&lksdk.UserDataPacket{Payload: payload, Topic: topic},
		lksdk.WithDataPublishReliable(true),
	)
}

// SendChat implements publish.ChatSender by publishing the debug chat
// mirror line on LiveKit's conventional chat topic.
func (s *Session) SendChat(line string) error {
	if s.room == nil {
		return fmt.Errorf("session: room not connected")
	}
	return s.room.LocalParticipant.PublishDataPacket(
		&lksdk.UserDataPacket{Payload: []byte(line), Topic: "lk-chat-topic"},
		lksdk.WithDataPublishReliable(true),
	)
}
