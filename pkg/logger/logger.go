// Package logger builds the process-wide slog.Logger with configurable level,
// output format (text or JSON), and masking of credential attributes.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Masked replaces the value of any attribute whose key is sensitive.
const Masked = "[REDACTED]"

// sensitiveKeys are attribute keys that must never reach the log output
// verbatim. Matching is case-insensitive.
var sensitiveKeys = map[string]bool{
	"secret_key":    true,
	"secretkey":     true,
	"access_key":    true,
	"accesskey":     true,
	"authorization": true,
	"webhook_url":   true,
}

// New creates a *slog.Logger writing to stderr.
// Level: "debug", "info", "warn", "error" (default: "info").
// Format: "json" or "text" (default: "text").
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a *slog.Logger writing to w.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl == slog.LevelDebug,
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level string to slog.Level. Matching is
// case-insensitive and "warning" is accepted for warn. Everything else
// returns LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] && a.Value.String() != "" {
		return slog.String(a.Key, Masked)
	}
	return a
}
