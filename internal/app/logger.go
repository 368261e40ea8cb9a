package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the storefront's process logger: JSON when LOG_FORMAT=json
// (log shippers), plain text otherwise. Outside production the level drops to
// debug so cache and persistence warnings show up in full during local runs.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
