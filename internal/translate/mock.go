package translate

import (
	"context"
	"sync"
)

// MockClient returns scripted translations keyed by input text, for
// deterministic pipeline tests. Unscripted inputs are echoed back.
type MockClient struct {
	mu           sync.Mutex
	Translations map[string]string
	Calls        []string
}

// Translate implements Client.
func (m *MockClient) Translate(_ context.Context, text, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, text)
	if translated, ok := m.Translations[text]; ok {
		return translated, nil
	}
	return text, nil
}
