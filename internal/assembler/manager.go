package assembler

import "sync"

// Manager owns one speaker actor per speaker id, keyed in a map guarded
// by mu; each speaker's state is touched only by its own actor
// goroutine, so the map itself is the only thing that needs locking.
type Manager struct {
	cfg        Config
	publisher  Publisher
	translator Translator

	mu       sync.Mutex
	speakers map[string]*speaker
}

// NewManager creates a Manager bound to the given publisher and
// translator, shared across every speaker in a session.
func NewManager(cfg Config, publisher Publisher, translator Translator) *Manager {
	return &Manager{
		cfg:        cfg,
		publisher:  publisher,
		translator: translator,
		speakers:   make(map[string]*speaker),
	}
}

// Append routes an accepted transcript slice to the named speaker's
// actor, creating it lazily on first use.
func (m *Manager) Append(speakerID, text string) {
	m.getOrCreate(speakerID).Append(text)
}

func (m *Manager) getOrCreate(speakerID string) *speaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.speakers[speakerID]
	if !ok {
		sp = newSpeaker(speakerID, m.cfg, m.publisher, m.translator)
		m.speakers[speakerID] = sp
	}
	return sp
}

// Unsubscribe flushes and removes a single speaker's state, as required
// when that speaker's audio track is unsubscribed.
func (m *Manager) Unsubscribe(speakerID string) {
	m.mu.Lock()
	sp, ok := m.speakers[speakerID]
	if ok {
		delete(m.speakers, speakerID)
	}
	m.mu.Unlock()
	if ok {
		sp.Stop()
	}
}

// FlushAll stops every speaker actor, finalizing any in-progress
// sentence. Called once on session shutdown.
func (m *Manager) FlushAll() {
	m.mu.Lock()
	speakers := make([]*speaker, 0, len(m.speakers))
	for _, sp := range m.speakers {
		speakers = append(speakers, sp)
	}
	m.speakers = make(map[string]*speaker)
	m.mu.Unlock()

	for _, sp := range speakers {
		sp.Stop()
	}
}
