package session

import "sync"

// participantPrefs holds optional per-speaker language overrides
// received over the data channel. The zero value means "fall back to
// session defaults" for both fields.
type participantPrefs struct {
	sttLanguage    string
	targetLanguage string
}

// prefsStore is a single-writer-per-key map: the data-channel handler
// is the only writer, pipelines and the translation dispatcher only read.
type prefsStore struct {
	mu   sync.RWMutex
	byID map[string]participantPrefs
}

func newPrefsStore() *prefsStore {
	return &prefsStore{byID: make(map[string]participantPrefs)}
}

func (s *prefsStore) upsert(id string, sttLanguage, targetLanguage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byID[id]
	if sttLanguage != "" {
		p.sttLanguage = sttLanguage
	}
	if targetLanguage != "" {
		p.targetLanguage = targetLanguage
	}
	s.byID[id] = p
}

func (s *prefsStore) sttLanguage(id, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[id]; ok && p.sttLanguage != "" {
		return p.sttLanguage
	}
	return fallback
}

func (s *prefsStore) targetLanguage(id, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[id]; ok && p.targetLanguage != "" {
		return p.targetLanguage
	}
	return fallback
}
