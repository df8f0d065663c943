package session

import (
	"github.com/livekit-captions/caption-agent/internal/assembler"
	"github.com/livekit-captions/caption-agent/internal/filter"
	"github.com/livekit-captions/caption-agent/internal/frame"
)

// Config holds every per-session tunable, sourced from internal/config
// and the per-room /start request.
type Config struct {
	LiveKitURL string
	AgentName  string

	SampleRate int
	Frame      frame.Config
	Filter     filter.Config
	Assembler  assembler.Config

	DefaultSTTLanguage    string
	DefaultTargetLanguage string

	AgentSendChat    bool
	TranslateTimeout int // milliseconds
}
