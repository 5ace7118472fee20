package app

import (
	"log/slog"
	"os"
	"strings"

	"bookbridge-delivery/internal/logx"
)

// NewLogger builds the process-wide structured logger. LOG_LEVEL
// selects the minimum level, defaulting to info.
func NewLogger() logx.Logger {
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	return logx.NewSlogAdapter(base)
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
