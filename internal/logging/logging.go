// Package logging configures the process-wide slog logger that every
// component derives its child logger from.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds a text logger at the given level, installs it as the slog
// default, and returns it. Level is matched case-insensitively against
// "debug", "warn" and "error"; anything else means info.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
