package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EventKey replaces slog's "msg" key; messages are event names such as
// "saga_step_completed".
const EventKey = "event"

func NewJSONLogger(service, level string) *slog.Logger {
	return NewJSONLoggerTo(os.Stdout, service, level)
}

// NewJSONLoggerTo tags every record with the service name and, when
// EDUMATE_ENV is set, the deployment environment. Debug loggers also carry
// the source location.
func NewJSONLoggerTo(w io.Writer, service, level string) *slog.Logger {
	lvl := parseLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	})

	attrs := []any{"service", service}
	if env := strings.TrimSpace(os.Getenv("EDUMATE_ENV")); env != "" {
		attrs = append(attrs, "env", env)
	}
	return slog.New(handler).With(attrs...)
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = EventKey
	case slog.LevelKey:
		a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
	case slog.TimeKey:
		a.Value = slog.TimeValue(a.Value.Time().UTC())
	}
	return a
}

func parseLevel(level string) slog.Level {
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
