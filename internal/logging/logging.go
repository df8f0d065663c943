// Package logging provides a category-tagged wrapper around zerolog.
// All logging in this module goes through this package so call sites
// stay decoupled from the backing logger implementation.
package logging

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Category constants for consistent logging categories.
const (
	CategoryApp       = "App"
	CategorySession   = "Session"
	CategoryIngress   = "Ingress"
	CategoryAssembler = "Assembler"
	CategoryFilter    = "Filter"
	CategorySTT       = "STT"
	CategoryTranslate = "Translate"
	CategoryPublish   = "Publish"
	CategoryServer    = "Server"
	CategoryLiveKit   = "LiveKit"
)

// Init initializes the global zerolog logger with console output.
func Init() {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// Shutdown flushes buffered logging state. zerolog writes synchronously
// so there's nothing to drain, but callers expect a symmetric shutdown hook.
func Shutdown(_ context.Context) {}

func logf(evt *zerolog.Event, category, msg string, params ...interface{}) {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	evt.Str("category", category).Msg(msg)
}

// Debug logs a debug-level message.
func Debug(category, msg string, params ...interface{}) {
	logf(log.Debug(), category, msg, params...)
}

// Info logs an info-level message.
func Info(category, msg string, params ...interface{}) {
	logf(log.Info(), category, msg, params...)
}

// Warning logs a warning-level message.
func Warning(category, msg string, params ...interface{}) {
	logf(log.Warn(), category, msg, params...)
}

// Error logs an error-level message.
func Error(category, msg string, params ...interface{}) {
	logf(log.Error(), category, msg, params...)
}

// Fail logs a fatal-severity message without terminating the process;
// callers decide whether to os.Exit.
func Fail(category, msg string, params ...interface{}) {
	logf(log.Error().Bool("fatal", true), category, msg, params...)
}
