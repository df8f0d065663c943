package roomauth

import "testing"

func TestTokenRequiresCredentials(t *testing.T) {
	li := NewLocalIssuer("", "")
	if _, err := li.Token("room-1", "agent-1", "agent"); err == nil {
		t.Fatal("expected error when api key/secret are empty")
	}
}

func TestTokenProducesJWT(t *testing.T) {
	li := NewLocalIssuer("test-key", "test-secret")
	token, err := li.Token("room-1", "agent-captions-room-1", "captions-agent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	parts := 0
	for _, c := range token {
		if c == '.' {
			parts++
		}
	}
	if parts != 2 {
		t.Fatalf("expected a JWT with 3 dot-separated segments, got %d dots", parts)
	}
}
