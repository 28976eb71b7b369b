package lpack

import (
	"context"
	"fmt"
	"os"
)

// DefaultExt is the conventional extension for archive files.
const DefaultExt = ".lp"

// PackFiles creates or truncates the archive at archivePath and packs
// paths into it.
//
// On failure the partially written archive is left in place.
func PackFiles(ctx context.Context, archivePath string, paths []string, opts ...PackOption) (Stats, error) {
	f, err := os.Create(archivePath) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return Stats{}, fmt.Errorf("create archive: %w", err)
	}

	stats, err := Pack(ctx, f, paths, opts...)
	closeErr := f.Close()
	if err != nil {
		return stats, err
	}
	if closeErr != nil {
		return stats, fmt.Errorf("close archive: %w", closeErr)
	}
	return stats, nil
}

// UnpackFile opens the archive at archivePath and unpacks it into destDir.
func UnpackFile(ctx context.Context, archivePath, destDir string, opts ...UnpackOption) (Stats, error) {
	f, err := os.Open(archivePath) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return Stats{}, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	return Unpack(ctx, f, destDir, opts...)
}
