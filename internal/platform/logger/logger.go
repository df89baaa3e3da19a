package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON output keeps log lines machine-parseable
// in deployment; handlers and services receive this via injection.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
