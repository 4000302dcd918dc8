package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text on stdout keeps dev output readable;
// swap the handler for JSON when a collector is in front.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
