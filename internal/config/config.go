// Package config loads the agent's configuration from the environment,
// an optional .env file, and command-line flag overrides.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable for the captioning agent.
type Config struct {
	// LiveKit connection
	LiveKitURL       string
	LiveKitAPIKey    string
	LiveKitAPISecret string
	AgentName        string

	// HTTP control surface
	HTTPAddr string

	// Frame aggregation / VAD gating
	BufferTargetMs int
	OverlapMs      int
	VADThreshold   int
	SampleRate     int

	// Speech-to-text adapter
	OpenAISTTURL   string
	OpenAISTTModel string
	OpenAIAPIKey   string
	STTLanguage    string

	// Filter & dedup gate
	ShortHighRMS     int
	RepeatWindowMs   int
	BlocklistPhrases []string

	// Sentence assembler
	WeakEndWords     []string
	PunctGraceMs     int
	PauseFinalMs     int
	MinCharsForFinal int

	// Translation dispatcher
	LLMURL             string
	LLMModel           string
	LLMAPIKey          string
	DefaultTarget      string
	TranslateTimeoutMs int

	// Outbound publisher
	AgentSendChat bool
}

var defaultWeakEndWords = []string{
	"doing", "going", "is", "are", "was", "were", "about", "with", "to", "for", "like",
}

// Load loads configuration from environment variables and flags.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:           ":8080",
		BufferTargetMs:     1800,
		OverlapMs:          300,
		VADThreshold:       800,
		SampleRate:         16000,
		OpenAISTTModel:     "gpt-4o-transcribe",
		ShortHighRMS:       1200,
		RepeatWindowMs:     7000,
		WeakEndWords:       defaultWeakEndWords,
		PunctGraceMs:       900,
		PauseFinalMs:       2500,
		MinCharsForFinal:   24,
		LLMModel:           "gpt-4o-mini",
		DefaultTarget:      "en",
		AgentName:          "captions-agent",
		TranslateTimeoutMs: 10000,
	}

	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg.LiveKitURL = getEnv("LIVEKIT_URL", cfg.LiveKitURL)
	cfg.LiveKitAPIKey = getEnv("LIVEKIT_API_KEY", cfg.LiveKitAPIKey)
	cfg.LiveKitAPISecret = getEnv("LIVEKIT_API_SECRET", cfg.LiveKitAPISecret)
	cfg.AgentName = getEnv("AGENT_NAME", cfg.AgentName)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)

	cfg.BufferTargetMs = getEnvInt("BUFFER_TARGET_MS", cfg.BufferTargetMs)
	cfg.OverlapMs = getEnvInt("OVERLAP_MS", cfg.OverlapMs)
	cfg.VADThreshold = getEnvInt("VAD_THRESHOLD", cfg.VADThreshold)
	cfg.SampleRate = getEnvInt("INGRESS_SAMPLE_RATE", cfg.SampleRate)

	cfg.OpenAISTTURL = getEnv("OPENAI_STT_URL", cfg.OpenAISTTURL)
	cfg.OpenAISTTModel = getEnv("OPENAI_STT_MODEL", cfg.OpenAISTTModel)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.STTLanguage = getEnv("STT_LANGUAGE", cfg.STTLanguage)

	cfg.ShortHighRMS = getEnvInt("SHORT_HIGH_RMS", cfg.ShortHighRMS)
	cfg.RepeatWindowMs = getEnvInt("REPEAT_WINDOW_MS", cfg.RepeatWindowMs)
	if phrases := getEnv("BLOCKLIST_PHRASES", ""); phrases != "" {
		cfg.BlocklistPhrases = splitAndTrim(phrases)
	}

	if weak := getEnv("WEAK_END_WORDS", ""); weak != "" {
		cfg.WeakEndWords = splitAndTrim(weak)
	}
	cfg.PunctGraceMs = getEnvInt("PUNCT_GRACE_MS", cfg.PunctGraceMs)
	cfg.PauseFinalMs = getEnvInt("PAUSE_FINAL_MS", cfg.PauseFinalMs)
	cfg.MinCharsForFinal = getEnvInt("MIN_CHARS_FOR_FINAL", cfg.MinCharsForFinal)

	cfg.LLMURL = getEnv("LLM_URL", cfg.LLMURL)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.DefaultTarget = getEnv("DEFAULT_TARGET_LANGUAGE", cfg.DefaultTarget)
	cfg.TranslateTimeoutMs = getEnvInt("TRANSLATE_TIMEOUT_MS", cfg.TranslateTimeoutMs)

	cfg.AgentSendChat = getEnvBool("AGENT_SEND_CHAT", cfg.AgentSendChat)

	flag.StringVar(&cfg.LiveKitURL, "url", cfg.LiveKitURL, "LiveKit server URL")
	flag.StringVar(&cfg.LiveKitAPIKey, "api-key", cfg.LiveKitAPIKey, "LiveKit API key")
	flag.StringVar(&cfg.LiveKitAPISecret, "api-secret", cfg.LiveKitAPISecret, "LiveKit API secret")
	flag.StringVar(&cfg.AgentName, "agent-name", cfg.AgentName, "Agent participant name")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP control surface bind address")
	flag.Parse()

	if cfg.LiveKitURL == "" {
		return nil, fmt.Errorf("LIVEKIT_URL is required")
	}
	if cfg.LiveKitAPIKey == "" {
		return nil, fmt.Errorf("LIVEKIT_API_KEY is required")
	}
	if cfg.LiveKitAPISecret == "" {
		return nil, fmt.Errorf("LIVEKIT_API_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DurationMs converts a millisecond int config value to a time.Duration.
func DurationMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
