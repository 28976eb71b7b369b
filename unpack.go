package lpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meigma/lpack/internal/file"
	"github.com/meigma/lpack/internal/frame"
	"github.com/meigma/lpack/internal/pathutil"
)

// Permissions for extracted entries, subject to umask.
const (
	dirPerm  fs.FileMode = 0o700
	filePerm fs.FileMode = 0o644
)

// Unpack reads an archive from src and recreates its entries under
// destDir, which is created if missing.
//
// Directories are created together with any missing ancestors, and
// existing directories are reused. Existing files are truncated and
// overwritten. Every name is resolved inside destDir; names that are not
// safe relative paths fail with ErrBadName.
//
// Malformed framing fails with an error matching ErrCorruptArchive. Any
// failure stops unpacking immediately; entries already created are left
// in place. An empty src is a valid, empty archive.
func Unpack(ctx context.Context, src io.Reader, destDir string, opts ...UnpackOption) (Stats, error) {
	cfg := unpackConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxDepth <= 0 {
		cfg.maxDepth = DefaultMaxDepth
	}

	if err := os.MkdirAll(destDir, dirPerm); err != nil {
		return Stats{}, fmt.Errorf("create destination %s: %w", destDir, err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return Stats{}, fmt.Errorf("open destination %s: %w", destDir, err)
	}
	defer root.Close()

	u := &unpacker{
		cfg:    cfg,
		logger: cfg.logger,
		root:   root,
		fr:     frame.NewReader(src),
		buf:    make([]byte, copyBufferSize),
	}
	u.log().Info("unpacking archive", "dest", destDir)

	if err := u.run(ctx); err != nil {
		return u.stats, err
	}

	u.log().Info("archive unpacked",
		"files", u.stats.Files,
		"dirs", u.stats.Dirs,
		"bytes", u.stats.Bytes)
	return u.stats, nil
}

// unpacker holds state for one Unpack call.
//
// stack holds the archive paths of the open directories, innermost last.
// Its length is the depth of the next entry.
type unpacker struct {
	cfg    unpackConfig
	logger *slog.Logger
	root   *os.Root
	fr     *frame.Reader
	buf    []byte
	stack  []string
	stats  Stats
}

// log returns the logger, falling back to a discard logger if nil.
func (u *unpacker) log() *slog.Logger {
	if u.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return u.logger
}

// report sends a progress event if a callback is configured.
func (u *unpacker) report(entry Entry) {
	if u.cfg.progress == nil {
		return
	}
	u.cfg.progress(ProgressEvent{Stage: StageUnpacking, Entry: entry})
}

// run consumes frames until the source is exhausted.
func (u *unpacker) run(ctx context.Context) error {
	for {
		more, err := u.fr.More()
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		if !more {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := u.next(ctx); err != nil {
			return err
		}
	}
	if open := len(u.stack); open > 0 {
		return fmt.Errorf("%w: %d directories still open, innermost %s", ErrTruncated, open, u.prefix())
	}
	return nil
}

// next handles one name frame and, for files, its payload.
func (u *unpacker) next(ctx context.Context) error {
	name, err := u.fr.ReadName()
	if err != nil {
		if dir := u.prefix(); dir != "" {
			return fmt.Errorf("read entry in %s: %w", dir, err)
		}
		return fmt.Errorf("read entry: %w", err)
	}
	if name == "" {
		return u.ascend()
	}
	if dirName, ok := pathutil.CutDirMarker(name); ok {
		return u.createDir(dirName)
	}
	return u.createFile(ctx, name)
}

// prefix returns the archive path of the innermost open directory, or ""
// at the top level.
func (u *unpacker) prefix() string {
	if len(u.stack) == 0 {
		return ""
	}
	return u.stack[len(u.stack)-1]
}

// entry validates a decoded name and places it under the current prefix.
func (u *unpacker) entry(name string, kind EntryKind) (Entry, error) {
	if !pathutil.ValidName(name) {
		return Entry{}, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	depth := len(u.stack)
	if depth > u.cfg.maxDepth {
		return Entry{}, fmt.Errorf("%w: %q is at depth %d, limit %d", ErrTooDeep, name, depth, u.cfg.maxDepth)
	}
	return Entry{
		Name:  name,
		Path:  pathutil.Join(u.prefix(), name),
		Kind:  kind,
		Depth: depth,
	}, nil
}

// ascend closes the innermost open directory.
func (u *unpacker) ascend() error {
	if len(u.stack) == 0 {
		return ErrUnbalancedEnd
	}
	u.stack = u.stack[:len(u.stack)-1]
	return nil
}

// createDir creates a directory and makes it the current prefix.
func (u *unpacker) createDir(name string) error {
	entry, err := u.entry(name, KindDir)
	if err != nil {
		return err
	}
	u.report(entry)
	u.log().Debug("creating directory", "path", entry.Path)

	if err := u.root.MkdirAll(filepath.FromSlash(entry.Path), dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", entry.Path, err)
	}
	u.stack = append(u.stack, entry.Path)
	u.stats.Dirs++
	return nil
}

// createFile reads a file's length and payload and writes it under the
// current prefix.
func (u *unpacker) createFile(ctx context.Context, name string) error {
	entry, err := u.entry(name, KindFile)
	if err != nil {
		return err
	}
	size, err := u.fr.ReadSize()
	if err != nil {
		return fmt.Errorf("read %s: %w", entry.Path, err)
	}
	entry.Size = size
	u.report(entry)
	u.log().Debug("creating file", "path", entry.Path, "size", size)

	fsPath := filepath.FromSlash(entry.Path)
	if dir := filepath.Dir(fsPath); dir != "." {
		if err := u.root.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory for %s: %w", entry.Path, err)
		}
	}

	f, err := u.root.OpenFile(fsPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", entry.Path, err)
	}
	n, err := file.CopyN(ctx, f, u.fr, size, u.buf)
	closeErr := f.Close()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s has %d of %d payload bytes", ErrTruncated, entry.Path, n, size)
		}
		return fmt.Errorf("write %s: %w", entry.Path, err)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", entry.Path, closeErr)
	}

	u.stats.Files++
	u.stats.Bytes += n
	return nil
}
