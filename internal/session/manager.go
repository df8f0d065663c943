package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/livekit-captions/caption-agent/internal/logging"
)

// Manager maps room name to the Session handling it, for the HTTP
// control surface.
type Manager struct {
	cfg  Config
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager sharing cfg and deps across every room
// it starts.
func NewManager(cfg Config, deps Deps) *Manager {
	return &Manager{
		cfg:      cfg,
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Start begins captioning roomName. It is idempotent: starting an
// already-running room is a no-op. A failed Start never leaves a
// half-initialized session registered.
func (m *Manager) Start(ctx context.Context, roomName, sttLanguage, targetLanguage string) error {
	m.mu.Lock()
	if _, exists := m.sessions[roomName]; exists {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	s := New(roomName, m.cfg, sttLanguage, targetLanguage, m.deps)
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("start session room=%s: %w", roomName, err)
	}

	m.mu.Lock()
	if _, exists := m.sessions[roomName]; exists {
		m.mu.Unlock()
		s.Stop()
		return nil
	}
	m.sessions[roomName] = s
	m.mu.Unlock()

	logging.Info(logging.CategorySession, "session started room=%s", roomName)
	return nil
}

// Stop ends captioning for roomName. It is idempotent.
func (m *Manager) Stop(roomName string) {
	m.mu.Lock()
	s, ok := m.sessions[roomName]
	if ok {
		delete(m.sessions, roomName)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	s.Stop()
}

// ActiveRooms lists every room currently being captioned.
func (m *Manager) ActiveRooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		rooms = append(rooms, name)
	}
	return rooms
}

// StopAll stops every active session, used on process shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
}
