// Package logging defines the structured-logging interface used across the
// gallery server and the admin console, with slog and zerolog backends.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "photo uploaded", "guest_id", guestID, "key", key)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported values for the log_format setting.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatConsole = "console"
)

// New builds a Logger writing to w. "console" selects a human-readable
// zerolog writer for local development; "text" a slog text handler; anything
// else falls back to slog JSON.
func New(format string, w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	switch format {
	case FormatConsole:
		zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
		return NewZerologLogger(zl)
	case FormatText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, nil)))
	default:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil)))
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
