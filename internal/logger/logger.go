package logger

import (
	"log/slog"
	"os"
	"strings"
)

// L is the package level logger used across the application. The level comes
// from FD_LOG_LEVEL (debug, info, warn, error); default is info.
var L = New(os.Getenv("FD_LOG_LEVEL"))

// New builds a text logger at the named level.
func New(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}

// Set replaces the default logger with the provided one.
func Set(l *slog.Logger) {
	if l != nil {
		L = l
	}
}
