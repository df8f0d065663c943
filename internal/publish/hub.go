package publish

import "sync"

// Hub fans out every published record, across every active session, to
// operator-facing subscribers (e.g. the debug websocket in
// internal/server). This is an ambient observability addition, not
// persistence: it holds no history, only live subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[int]func([]byte)
	next int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func([]byte))}
}

// Subscribe registers fn to receive every future published payload. The
// returned func unsubscribes.
func (h *Hub) Subscribe(fn func([]byte)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	subs := make([]func([]byte), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(payload)
	}
}
