// Package testutil provides helpers shared by lpack tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteTree creates files under dir. Keys are slash-separated paths; a key
// ending in "/" creates an empty directory and its value is ignored.
func WriteTree(t testing.TB, dir string, files map[string][]byte) {
	t.Helper()

	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(name, "/")))
		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(full, content, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// ReadTree returns the regular files and directories under dir in the
// form WriteTree accepts: directories map to nil under a key ending in
// "/", files map to their contents. Other entry types are reported under
// their path with the value "<other>".
func ReadTree(t testing.TB, dir string) map[string][]byte {
	t.Helper()

	tree := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.IsDir():
			tree[rel+"/"] = nil
		case d.Type().IsRegular():
			content, err := os.ReadFile(path) //nolint:gosec // test fixture path
			if err != nil {
				return err
			}
			tree[rel] = content
		default:
			tree[rel] = []byte("<other>")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read tree %s: %v", dir, err)
	}
	return tree
}

// Archive assembles archive bytes frame by frame for decoder tests.
type Archive struct {
	b strings.Builder
}

// Dir appends a directory frame for name.
func (a *Archive) Dir(name string) *Archive {
	a.b.WriteString(strconv.Itoa(len(name) + 1))
	a.b.WriteString(":")
	a.b.WriteString(name)
	a.b.WriteString("/")
	return a
}

// File appends a file frame with its payload.
func (a *Archive) File(name string, content []byte) *Archive {
	a.b.WriteString(strconv.Itoa(len(name)))
	a.b.WriteString(":")
	a.b.WriteString(name)
	a.b.WriteString(strconv.Itoa(len(content)))
	a.b.WriteString(":")
	a.b.Write(content)
	return a
}

// End appends the end-of-directory sentinel.
func (a *Archive) End() *Archive {
	a.b.WriteString("0:")
	return a
}

// Raw appends arbitrary bytes.
func (a *Archive) Raw(s string) *Archive {
	a.b.WriteString(s)
	return a
}

// Bytes returns the assembled archive.
func (a *Archive) Bytes() []byte {
	return []byte(a.b.String())
}
