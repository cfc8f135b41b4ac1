package logging

import (
	"log/slog"
	"path/filepath"

	"cutroom/internal/config"
)

// NewFromConfig builds the process logger from configuration. Output goes to
// stderr and, when a log directory is configured, to cutroom.log inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	opts := Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	}
	if cfg.Paths.LogDir != "" {
		opts.OutputPaths = append(opts.OutputPaths, filepath.Join(cfg.Paths.LogDir, "cutroom.log"))
	}
	return New(opts)
}
