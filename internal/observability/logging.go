package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog logger. Unrecognized levels fall
// back to info; any format other than "text" produces JSON.
func NewLogger(level, format string) *slog.Logger {
	return newLogger(level, format, os.Stdout)
}

func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}
