// Package translate dispatches finalized sentences to the external
// LLM endpoint for translation and publishes the resulting record.
package translate

import (
	"context"
	"strings"
	"time"

	"github.com/livekit-captions/caption-agent/internal/logging"
)

// TranslationRecord is the translation half of the outbound wire
// record pair published alongside a transcription record.
type TranslationRecord struct {
	Type           string `json:"type"`
	Speaker        string `json:"speaker"`
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	TargetLanguage string `json:"targetLanguage"`
	SentenceID     int    `json:"sentenceId"`
	Timestamp      int64  `json:"timestamp"`
}

// Publisher receives completed translation records for outbound
// publication.
type Publisher interface {
	PublishTranslation(record TranslationRecord)
}

// Client performs the LLM chat round trip that produces a translation.
type Client interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// LanguageResolver resolves the effective recognition and target
// languages for a given speaker, falling back to session defaults.
type LanguageResolver interface {
	TargetLanguage(speaker string) string
	RecognitionLanguage(speaker string) string
}

// Dispatcher implements assembler.Translator: invoked on every
// sentence finalization.
type Dispatcher struct {
	client    Client
	publisher Publisher
	resolver  LanguageResolver
	timeout   time.Duration
}

// NewDispatcher creates a Dispatcher bound to an LLM client, a record
// publisher, and a language resolver.
func NewDispatcher(client Client, publisher Publisher, resolver LanguageResolver, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{client: client, publisher: publisher, resolver: resolver, timeout: timeout}
}

// Translate skips the round trip entirely when the resolved target
// language matches the recognition language (comparing the two
// normalized language codes directly, not a hardcoded "en" sentinel),
// and otherwise performs the LLM round trip asynchronously so it never
// blocks the sentence assembler.
func (d *Dispatcher) Translate(speaker, text string, sentenceID int) {
	target := normalizeLang(d.resolver.TargetLanguage(speaker))
	recognition := normalizeLang(d.resolver.RecognitionLanguage(speaker))
	if target == "" || target == recognition {
		return
	}
	go d.run(speaker, text, sentenceID, target)
}

func (d *Dispatcher) run(speaker, text string, sentenceID int, target string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	translated, err := d.client.Translate(ctx, text, target)
	if err != nil {
		logging.Error(logging.CategoryTranslate, "translation failed speaker=%s sentenceId=%d: %v", speaker, sentenceID, err)
		return
	}

	d.publisher.PublishTranslation(TranslationRecord{
		Type:           "translation",
		Speaker:        speaker,
		OriginalText:   text,
		TranslatedText: translated,
		TargetLanguage: target,
		SentenceID:     sentenceID,
		Timestamp:      time.Now().UnixMilli(),
	})
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
