package log

import (
	"io"
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// SetupWriter configures the package logger from the plugin verbosity (0-3).
// Callers pass stderr: stdout is reserved for the plugin status line.
func SetupWriter(w io.Writer, verbosity int) {
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelFor(verbosity),
	}))
}

func levelFor(verbosity int) slog.Level {
	switch {
	case verbosity >= 3:
		return slog.LevelDebug
	case verbosity == 2:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}
