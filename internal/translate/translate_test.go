package translate

import (
	"sync"
	"testing"
	"time"
)

type fakeResolver struct {
	target      string
	recognition string
}

func (f fakeResolver) TargetLanguage(string) string      { return f.target }
func (f fakeResolver) RecognitionLanguage(string) string { return f.recognition }

type fakePublisher struct {
	mu      sync.Mutex
	records []TranslationRecord
	ch      chan TranslationRecord
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{ch: make(chan TranslationRecord, 8)}
}

func (f *fakePublisher) PublishTranslation(record TranslationRecord) {
	f.mu.Lock()
	f.records = append(f.records, record)
	f.mu.Unlock()
	f.ch <- record
}

// When the target language differs from recognition, a translation
// record with the resolved target is published.
func TestDispatcherTranslatesWhenTargetDiffers(t *testing.T) {
	pub := newFakePublisher()
	client := &MockClient{Translations: map[string]string{"Hello world.": "Hola mundo."}}
	d := NewDispatcher(client, pub, fakeResolver{target: "es", recognition: "en"}, time.Second)

	d.Translate("p1", "Hello world.", 1)

	select {
	case rec := <-pub.ch:
		if rec.TranslatedText != "Hola mundo." || rec.TargetLanguage != "es" || rec.SentenceID != 1 {
			t.Fatalf("unexpected record: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for translation")
	}
}

// Translation is skipped when the resolved target equals the
// recognition language, case-insensitively, not merely when
// target == "en".
func TestDispatcherSkipsWhenTargetMatchesRecognition(t *testing.T) {
	pub := newFakePublisher()
	client := &MockClient{}
	d := NewDispatcher(client, pub, fakeResolver{target: "FR", recognition: "fr"}, time.Second)

	d.Translate("p1", "Bonjour.", 1)

	select {
	case rec := <-pub.ch:
		t.Fatalf("expected translation to be skipped, got %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherSkipsWhenNoTargetConfigured(t *testing.T) {
	pub := newFakePublisher()
	client := &MockClient{}
	d := NewDispatcher(client, pub, fakeResolver{target: "", recognition: "en"}, time.Second)

	d.Translate("p1", "Hello.", 1)

	select {
	case rec := <-pub.ch:
		t.Fatalf("expected translation to be skipped, got %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}
}
