package lpack

import "log/slog"

// DefaultMaxDepth is the nesting limit used when no max depth option is set.
const DefaultMaxDepth = 1024

// packConfig holds configuration for Pack.
type packConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
	sorted   bool
	maxDepth int
}

// PackOption configures Pack.
type PackOption func(*packConfig)

// PackWithLogger sets the logger for pack operations.
// Skipped entries are logged at warn level.
// If not set, logging is disabled.
func PackWithLogger(logger *slog.Logger) PackOption {
	return func(cfg *packConfig) {
		cfg.logger = logger
	}
}

// PackWithProgress sets a callback invoked for every packed or skipped entry.
func PackWithProgress(fn ProgressFunc) PackOption {
	return func(cfg *packConfig) {
		cfg.progress = fn
	}
}

// PackWithSortedEntries packs directory children in name order instead of
// the order the filesystem returns them, making archives reproducible.
func PackWithSortedEntries(sorted bool) PackOption {
	return func(cfg *packConfig) {
		cfg.sorted = sorted
	}
}

// PackWithMaxDepth limits how deeply directories may nest below a
// top-level entry. Zero or a negative n uses DefaultMaxDepth.
func PackWithMaxDepth(n int) PackOption {
	return func(cfg *packConfig) {
		cfg.maxDepth = n
	}
}
