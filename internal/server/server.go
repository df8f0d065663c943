// Package server exposes the HTTP control surface for starting and
// stopping per-room captioning sessions, plus a debug websocket for
// watching outbound caption/translation traffic.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/livekit-captions/caption-agent/internal/logging"
	"github.com/livekit-captions/caption-agent/internal/publish"
	"github.com/livekit-captions/caption-agent/internal/session"
)

// Server wraps the chi router with its dependencies.
type Server struct {
	router  chi.Router
	manager *session.Manager
	hub     *publish.Hub
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// New builds the control-surface router.
func New(manager *session.Manager, hub *publish.Hub) *Server {
	s := &Server{manager: manager, hub: hub}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/start", s.handleStart)
	r.Post("/stop", s.handleStop)
	r.Get("/sessions", s.handleSessions)
	r.Get("/ws/captions", s.handleCaptionsWS)

	s.router = r
	return s
}

// Handler returns the http.Handler to mount on a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}

type startRequest struct {
	RoomName       string `json:"roomName"`
	STTLanguage    string `json:"sttLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RoomName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "roomName is required"})
		return
	}

	if err := s.manager.Start(r.Context(), req.RoomName, req.STTLanguage, req.TargetLanguage); err != nil {
		logging.Error(logging.CategoryServer, "failed to start session room=%s: %v", req.RoomName, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"roomName": req.RoomName, "status": "started"})
}

type stopRequest struct {
	RoomName string `json:"roomName"`
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RoomName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "roomName is required"})
		return
	}

	s.manager.Stop(req.RoomName)
	writeJSON(w, http.StatusOK, map[string]string{"roomName": req.RoomName, "status": "stopped"})
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"activeRooms": s.manager.ActiveRooms()})
}

// handleCaptionsWS streams every caption/translation record this
// process publishes, for local debugging only; it is ops tooling, not
// a production viewer UI.
func (s *Server) handleCaptionsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warning(logging.CategoryServer, "websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	payloads := make(chan []byte, 32)
	unsubscribe := s.hub.Subscribe(func(payload []byte) {
		select {
		case payloads <- payload:
		default:
		}
	})
	defer unsubscribe()

	go drainClientReads(conn)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case payload := <-payloads:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drainClientReads keeps the connection's read loop pumping so pongs
// and close frames are processed; this handler never accepts client
// input.
func drainClientReads(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
