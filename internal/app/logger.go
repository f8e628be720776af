package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog logger for the journal service.
// JSON output is meant for deployed instances; text is the local default.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}
