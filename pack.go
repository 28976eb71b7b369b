package lpack

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/meigma/lpack/internal/file"
	"github.com/meigma/lpack/internal/frame"
	"github.com/meigma/lpack/internal/pathutil"
	"github.com/meigma/lpack/internal/platform"
)

const copyBufferSize = 32 * 1024

// Pack writes each of paths to dst as one top-level archive entry, in the
// order given. Directories are packed recursively.
//
// A local path is stored under its cleaned relative form ("a/b"); other
// paths are stored under their base name. Entries that are neither regular
// files nor directories are skipped and reported through the logger and
// progress callback. Any other failure stops packing immediately; bytes
// already written to dst are not retracted.
//
// If dst is an *os.File inside a packed tree, the archive itself is
// skipped.
func Pack(ctx context.Context, dst io.Writer, paths []string, opts ...PackOption) (Stats, error) {
	cfg := packConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxDepth <= 0 {
		cfg.maxDepth = DefaultMaxDepth
	}

	p := &packer{
		cfg:    cfg,
		logger: cfg.logger,
		fw:     frame.NewWriter(dst),
		buf:    make([]byte, copyBufferSize),
	}
	if f, ok := dst.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			p.self = info
		}
	}

	p.log().Info("packing archive", "paths", len(paths), "sorted", cfg.sorted)

	for _, path := range paths {
		if err := p.packRoot(ctx, path); err != nil {
			_ = p.fw.Flush() //nolint:errcheck // the packing error takes precedence
			return p.stats, err
		}
	}
	if err := p.fw.Flush(); err != nil {
		return p.stats, fmt.Errorf("flush archive: %w", err)
	}

	p.log().Info("archive packed",
		"files", p.stats.Files,
		"dirs", p.stats.Dirs,
		"skipped", p.stats.Skipped,
		"archive_bytes", p.fw.Written())
	return p.stats, nil
}

// packer holds state for one Pack call.
type packer struct {
	cfg    packConfig
	logger *slog.Logger
	fw     *frame.Writer
	buf    []byte
	self   fs.FileInfo
	stats  Stats
}

// log returns the logger, falling back to a discard logger if nil.
func (p *packer) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// report sends a progress event if a callback is configured.
func (p *packer) report(stage ProgressStage, entry Entry, reason string) {
	if p.cfg.progress == nil {
		return
	}
	p.cfg.progress(ProgressEvent{Stage: stage, Entry: entry, Reason: reason})
}

// packRoot packs one top-level path. The source is accessed through a
// root opened on its parent directory so nested entries are resolved
// relative to an explicit prefix.
func (p *packer) packRoot(ctx context.Context, path string) error {
	name, err := pathutil.ArchiveName(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	root, err := os.OpenRoot(filepath.Dir(abs))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer root.Close()

	return p.packEntry(ctx, root, filepath.Base(abs), Entry{Name: name, Path: name})
}

// packEntry packs the entry at fsPath inside root. entry carries the
// archive name, path and depth; Kind and Size are filled in here.
func (p *packer) packEntry(ctx context.Context, root *os.Root, fsPath string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.Depth > p.cfg.maxDepth {
		return fmt.Errorf("%w: %s is at depth %d, limit %d", ErrTooDeep, entry.Path, entry.Depth, p.cfg.maxDepth)
	}

	info, err := root.Lstat(fsPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", entry.Path, err)
	}

	switch platform.Classify(info) {
	case platform.KindDir:
		entry.Kind = KindDir
		return p.packDir(ctx, root, fsPath, entry)
	case platform.KindRegular:
		entry.Kind = KindFile
		return p.packFile(ctx, root, fsPath, entry)
	default:
		entry.Kind = KindOther
		p.skip(entry, platform.Describe(info.Mode()))
		return nil
	}
}

// packDir writes a directory frame, its children, and the end sentinel.
func (p *packer) packDir(ctx context.Context, root *os.Root, fsPath string, entry Entry) error {
	d, err := root.Open(fsPath)
	if err != nil {
		return fmt.Errorf("open directory %s: %w", entry.Path, err)
	}
	children, err := d.ReadDir(-1)
	_ = d.Close() //nolint:errcheck // read-only handle
	if err != nil {
		return fmt.Errorf("read directory %s: %w", entry.Path, err)
	}
	if p.cfg.sorted {
		slices.SortFunc(children, func(a, b fs.DirEntry) int {
			return cmp.Compare(a.Name(), b.Name())
		})
	}

	p.report(StagePacking, entry, "")
	p.log().Debug("packing directory", "path", entry.Path, "children", len(children))

	if err := p.fw.WriteDir(entry.Name); err != nil {
		return fmt.Errorf("write %s: %w", entry.Path, err)
	}
	p.stats.Dirs++

	for _, child := range children {
		name := child.Name()
		if name == "." || name == ".." {
			continue
		}
		next := Entry{
			Name:  name,
			Path:  pathutil.Join(entry.Path, name),
			Depth: entry.Depth + 1,
		}
		if err := p.packEntry(ctx, root, filepath.Join(fsPath, name), next); err != nil {
			return err
		}
	}

	if err := p.fw.WriteEnd(); err != nil {
		return fmt.Errorf("write %s: %w", entry.Path, err)
	}
	return nil
}

// packFile writes a file frame and copies exactly the size recorded in it.
func (p *packer) packFile(ctx context.Context, root *os.Root, fsPath string, entry Entry) error {
	f, err := platform.OpenFileNoFollow(root, fsPath)
	if err != nil {
		if errors.Is(err, platform.ErrSymlink) {
			entry.Kind = KindOther
			p.skip(entry, "symlink")
			return nil
		}
		return fmt.Errorf("open %s: %w", entry.Path, err)
	}
	defer f.Close()

	finfo, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", entry.Path, err)
	}
	if !finfo.Mode().IsRegular() {
		entry.Kind = KindOther
		p.skip(entry, platform.Describe(finfo.Mode()))
		return nil
	}
	if p.self != nil && os.SameFile(p.self, finfo) {
		entry.Kind = KindOther
		p.skip(entry, "archive file itself")
		return nil
	}

	entry.Size = finfo.Size()
	p.report(StagePacking, entry, "")
	p.log().Debug("packing file", "path", entry.Path, "size", entry.Size)

	if err := p.fw.WriteFile(entry.Name, entry.Size); err != nil {
		return fmt.Errorf("write %s: %w", entry.Path, err)
	}
	n, err := file.CopyN(ctx, p.fw, f, entry.Size, p.buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s: read %d of %d bytes", ErrFileChanged, entry.Path, n, entry.Size)
		}
		return fmt.Errorf("copy %s: %w", entry.Path, err)
	}

	p.stats.Files++
	p.stats.Bytes += n
	return nil
}

// skip records a source entry that is left out of the archive.
func (p *packer) skip(entry Entry, reason string) {
	p.stats.Skipped++
	p.log().Warn("skipping entry", "path", entry.Path, "reason", reason)
	p.report(StageSkipped, entry, reason)
}
