package logger

import (
	"log/slog"
	"os"
)

// New builds the process-wide structured logger. JSON output keeps log lines
// machine-parseable for the same pipelines that consume audit events.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
