package lpack

import "log/slog"

// unpackConfig holds configuration for Unpack.
type unpackConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
	maxDepth int
}

// UnpackOption configures Unpack.
type UnpackOption func(*unpackConfig)

// UnpackWithLogger sets the logger for unpack operations.
// If not set, logging is disabled.
func UnpackWithLogger(logger *slog.Logger) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.logger = logger
	}
}

// UnpackWithProgress sets a callback invoked for every entry before it is
// created on disk.
func UnpackWithProgress(fn ProgressFunc) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.progress = fn
	}
}

// UnpackWithMaxDepth limits how deeply directories in the archive may
// nest. Zero or a negative n uses DefaultMaxDepth.
func UnpackWithMaxDepth(n int) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.maxDepth = n
	}
}
