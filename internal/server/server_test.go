package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livekit-captions/caption-agent/internal/assembler"
	"github.com/livekit-captions/caption-agent/internal/publish"
	"github.com/livekit-captions/caption-agent/internal/session"
)

type noopDataSender struct{}

func (noopDataSender) SendData(_ []byte, _ string) error { return nil }

func captionFixture() assembler.CaptionRecord {
	return assembler.CaptionRecord{
		Type:       "transcription",
		Speaker:    "p1",
		Text:       "hello world",
		SentenceID: 1,
		Final:      true,
		Timestamp:  1700000000000,
	}
}

func newTestServer(t *testing.T) (*Server, *publish.Hub) {
	t.Helper()
	hub := publish.NewHub()
	manager := session.NewManager(session.Config{}, session.Deps{Hub: hub})
	return New(manager, hub), hub
}

func TestHealthReturnsOK(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("expected status 'ok', got %q", body.Status)
	}
}

func TestStartRejectsMissingRoomName(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStartRejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStopIsIdempotentForUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/stop", strings.NewReader(`{"roomName":"never-started"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionsListsActiveRooms(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body struct {
		ActiveRooms []string `json:"activeRooms"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.ActiveRooms) != 0 {
		t.Fatalf("expected no active rooms, got %v", body.ActiveRooms)
	}
}

func TestCaptionsWebsocketStreamsHubBroadcasts(t *testing.T) {
	srv, hub := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/captions"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// give the subscribe goroutine a moment to register before broadcasting
	time.Sleep(50 * time.Millisecond)
	hub.Subscribe(func([]byte) {})() // sanity: unsubscribe func is callable

	done := make(chan []byte, 1)
	go func() {
		_, payload, err := conn.ReadMessage()
		if err == nil {
			done <- payload
		}
	}()

	publisher := publish.New(noopDataSender{}, nil, false, hub)
	publisher.PublishCaption(captionFixture())

	select {
	case payload := <-done:
		if !strings.Contains(string(payload), "hello") {
			t.Fatalf("expected payload to contain caption text, got %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for websocket broadcast")
	}
}
