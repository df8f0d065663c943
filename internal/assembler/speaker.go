package assembler

import (
	"strings"
	"sync"
	"time"
)

var strongEnders = map[rune]struct{}{
	'.': {}, '!': {}, '?': {}, '…': {}, ')': {}, ']': {}, '"': {}, '。': {}, '！': {}, '？': {},
}

type eventKind int

const (
	eventPauseFired eventKind = iota
	eventFinalizeFired
)

type timerEvent struct {
	kind eventKind
	gen  int
}

// speaker is the per-speaker actor that owns one sentence's assembly
// state. All state is touched only from run(), so pause and finalize
// timers are delivered as messages on timerCh rather than as callbacks
// racing the pipeline.
type speaker struct {
	id         string
	cfg        Config
	weakEnds   map[string]struct{}
	publisher  Publisher
	translator Translator

	appendCh chan string
	timerCh  chan timerEvent
	stopCh   chan struct{}
	doneCh   chan struct{}

	buffer         string
	sentenceID     int
	nextSentenceID int

	pauseTimer      *time.Timer
	pauseGen        int
	finalizeTimer   *time.Timer
	finalizeGen     int
	finalizePending bool

	wg sync.WaitGroup
}

func newSpeaker(id string, cfg Config, pub Publisher, tr Translator) *speaker {
	s := &speaker{
		id:         id,
		cfg:        cfg,
		weakEnds:   cfg.weakEndSet(),
		publisher:  pub,
		translator: tr,
		appendCh:   make(chan string),
		timerCh:    make(chan timerEvent, 4),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Append feeds one accepted transcript slice into the speaker's sentence
// state.
func (s *speaker) Append(text string) {
	select {
	case s.appendCh <- text:
	case <-s.doneCh:
	}
}

// Stop flushes any in-progress sentence as final and terminates the
// actor.
func (s *speaker) Stop() {
	select {
	case <-s.doneCh:
		return
	default:
	}
	close(s.stopCh)
	s.wg.Wait()
}

func (s *speaker) run() {
	defer s.wg.Done()
	defer close(s.doneCh)
	for {
		select {
		case text := <-s.appendCh:
			s.doAppend(text)
		case ev := <-s.timerCh:
			s.handleTimerEvent(ev)
		case <-s.stopCh:
			s.doFlush(true)
			s.stopTimers()
			return
		}
	}
}

// doAppend merges a new slice into the buffer and re-evaluates both
// timers against the result.
func (s *speaker) doAppend(slice string) {
	s.buffer = strings.TrimSpace(mergeOverlap(s.buffer, slice))

	// Cancelling both timers on every append and re-evaluating the
	// strong-ending check below is what returns to plain accumulation
	// after an append arrives before the grace timer fires: a stale
	// finalize timer never fires against content that has since moved on.
	s.cancelPauseTimer()
	s.cancelFinalizeTimer()

	if s.qualifiesForFinalize() {
		s.scheduleFinalizeTimer()
	}
	s.schedulePauseTimer()
}

func (s *speaker) qualifiesForFinalize() bool {
	if len(s.buffer) < s.cfg.MinCharsForFinal {
		return false
	}
	if !endsWithStrongPunct(s.buffer) {
		return false
	}
	last := lastWordToken(s.buffer)
	if _, weak := s.weakEnds[last]; weak {
		return false
	}
	return true
}

func (s *speaker) handleTimerEvent(ev timerEvent) {
	switch ev.kind {
	case eventPauseFired:
		if ev.gen != s.pauseGen {
			return // stale: superseded by a later append or cancel
		}
		if s.finalizePending {
			// Pause wins over grace.
			s.finalizePending = false
			s.doFlush(true)
			return
		}
		s.doFlush(false) // interim: id and buffer are retained
	case eventFinalizeFired:
		if ev.gen != s.finalizeGen || !s.finalizePending {
			return
		}
		s.finalizePending = false
		s.doFlush(true)
	}
}

// doFlush publishes the current buffer as an interim or final record,
// allocating a sentence id lazily and clearing state on finalization.
func (s *speaker) doFlush(final bool) {
	if s.buffer == "" {
		return
	}
	s.cancelPauseTimer()
	if final {
		s.cancelFinalizeTimer()
	}

	if s.sentenceID == 0 {
		s.nextSentenceID++
		s.sentenceID = s.nextSentenceID
	}

	record := CaptionRecord{
		Type:       "transcription",
		Speaker:    s.id,
		Text:       s.buffer,
		SentenceID: s.sentenceID,
		Final:      final,
		Timestamp:  time.Now().UnixMilli(),
	}
	s.publisher.PublishCaption(record)

	if final {
		if s.translator != nil {
			s.translator.Translate(s.id, s.buffer, s.sentenceID)
		}
		s.buffer = ""
		s.sentenceID = 0
	}
}

func (s *speaker) schedulePauseTimer() {
	s.pauseGen++
	gen := s.pauseGen
	s.pauseTimer = time.AfterFunc(time.Duration(s.cfg.PauseFinalMs)*time.Millisecond, func() {
		s.sendTimerEvent(timerEvent{kind: eventPauseFired, gen: gen})
	})
}

func (s *speaker) cancelPauseTimer() {
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
		s.pauseTimer = nil
	}
	s.pauseGen++
}

func (s *speaker) scheduleFinalizeTimer() {
	s.finalizeGen++
	gen := s.finalizeGen
	s.finalizePending = true
	s.finalizeTimer = time.AfterFunc(time.Duration(s.cfg.PunctGraceMs)*time.Millisecond, func() {
		s.sendTimerEvent(timerEvent{kind: eventFinalizeFired, gen: gen})
	})
}

func (s *speaker) cancelFinalizeTimer() {
	if s.finalizeTimer != nil {
		s.finalizeTimer.Stop()
		s.finalizeTimer = nil
	}
	s.finalizeGen++
	s.finalizePending = false
}

func (s *speaker) stopTimers() {
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
	}
	if s.finalizeTimer != nil {
		s.finalizeTimer.Stop()
	}
}

func (s *speaker) sendTimerEvent(ev timerEvent) {
	select {
	case s.timerCh <- ev:
	case <-s.doneCh:
	}
}

func endsWithStrongPunct(buf string) bool {
	trimmed := strings.TrimRight(buf, " \t\n\r")
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	_, ok := strongEnders[runes[len(runes)-1]]
	return ok
}

func lastWordToken(buf string) string {
	fields := strings.Fields(buf)
	if len(fields) == 0 {
		return ""
	}
	return normalizeToken(fields[len(fields)-1])
}
