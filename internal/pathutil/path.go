// Package pathutil provides naming rules for archive entries.
//
// Archive names are slash-separated and relative. Top-level entries may
// span several elements ("a/b"); nested entries are single elements.
package pathutil

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// ErrNoName is returned when a source path has no usable archive name,
// such as the filesystem root.
var ErrNoName = errors.New("path has no archive name")

// ArchiveName returns the name a top-level source path is stored under.
//
// A local path keeps its cleaned slash form: "./a//b/" becomes "a/b".
// Any other path (absolute, or escaping with "..") is stored under its
// base name, and "." resolves to the base name of the working directory.
func ArchiveName(p string) (string, error) {
	clean := filepath.Clean(p)
	if clean != "." && filepath.IsLocal(clean) {
		return filepath.ToSlash(clean), nil
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return "", err
	}
	base := filepath.Base(abs)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", ErrNoName
	}
	return filepath.ToSlash(base), nil
}

// CutDirMarker strips one trailing directory marker from a decoded name.
// It reports whether the marker was present.
func CutDirMarker(name string) (string, bool) {
	return strings.CutSuffix(name, "/")
}

// ValidName reports whether a decoded name (without its directory marker)
// is safe to create under a destination root.
//
// The name must be a valid fs path other than ".", so empty, "." and ".."
// elements and leading or trailing slashes are rejected. Backslashes and
// NUL bytes are rejected so that names mean the same thing on every
// platform.
func ValidName(name string) bool {
	if name == "." || !fs.ValidPath(name) {
		return false
	}
	return !strings.ContainsAny(name, "\\\x00")
}

// Join appends an entry name to a slash-separated prefix.
// An empty prefix denotes the destination root.
func Join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

