package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/livekit-captions/caption-agent/internal/assembler"
	"github.com/livekit-captions/caption-agent/internal/config"
	"github.com/livekit-captions/caption-agent/internal/filter"
	"github.com/livekit-captions/caption-agent/internal/frame"
	"github.com/livekit-captions/caption-agent/internal/logging"
	"github.com/livekit-captions/caption-agent/internal/publish"
	"github.com/livekit-captions/caption-agent/internal/roomauth"
	"github.com/livekit-captions/caption-agent/internal/server"
	"github.com/livekit-captions/caption-agent/internal/session"
	"github.com/livekit-captions/caption-agent/internal/stt"
	"github.com/livekit-captions/caption-agent/internal/translate"
	"github.com/livekit-captions/caption-agent/internal/version"
)

func main() {
	logging.Init()
	defer logging.Shutdown(context.Background())

	cfg, err := config.Load()
	if err != nil {
		logging.Fail(logging.CategoryApp, "failed to load configuration: %v", err)
		os.Exit(1)
	}

	logging.Info(logging.CategoryApp, "starting caption-agent version=%s", version.Version)

	sessionCfg := session.Config{
		LiveKitURL: cfg.LiveKitURL,
		AgentName:  cfg.AgentName,
		SampleRate: cfg.SampleRate,
		Frame: frame.Config{
			TargetMs:     cfg.BufferTargetMs,
			OverlapMs:    cfg.OverlapMs,
			VADThreshold: float64(cfg.VADThreshold),
		},
		Filter: filter.Config{
			ShortHighRMS:     float64(cfg.ShortHighRMS),
			RepeatWindow:     config.DurationMs(cfg.RepeatWindowMs),
			BlocklistPhrases: cfg.BlocklistPhrases,
		},
		Assembler: assembler.Config{
			PunctGraceMs:     cfg.PunctGraceMs,
			PauseFinalMs:     cfg.PauseFinalMs,
			MinCharsForFinal: cfg.MinCharsForFinal,
			WeakEndWords:     cfg.WeakEndWords,
		},
		DefaultSTTLanguage:    cfg.STTLanguage,
		DefaultTargetLanguage: cfg.DefaultTarget,
		AgentSendChat:         cfg.AgentSendChat,
		TranslateTimeout:      cfg.TranslateTimeoutMs,
	}

	deps := session.Deps{
		STTClient: stt.NewHTTPTranscriber(cfg.OpenAISTTURL, cfg.OpenAISTTModel, cfg.OpenAIAPIKey),
		LLMClient: translate.NewHTTPClient(cfg.LLMURL, cfg.LLMModel, cfg.LLMAPIKey),
		Issuer:    roomauth.NewLocalIssuer(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret),
		Hub:       publish.NewHub(),
	}

	manager := session.NewManager(sessionCfg, deps)
	srv := server.New(manager, deps.Hub)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	go func() {
		logging.Info(logging.CategoryApp, "http control surface listening addr=%s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fail(logging.CategoryApp, "http server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logging.Info(logging.CategoryApp, "shutdown signal received, draining sessions")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(logging.CategoryApp, "http server shutdown error: %v", err)
	}

	manager.StopAll()
	logging.Info(logging.CategoryApp, "caption-agent shutdown complete")
}
