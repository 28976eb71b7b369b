//go:build unix

package platform

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestOpenFileNoFollow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "target.txt"), []byte("data"), 0o644))
	require.NoError(t, os.Symlink("target.txt", filepath.Join(dir, "link.txt")))

	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	defer root.Close()

	f, err := OpenFileNoFollow(root, "target.txt")
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, []byte("data"), content)

	_, err = OpenFileNoFollow(root, "link.txt")
	require.ErrorIs(t, err, ErrSymlink)

	_, err = OpenFileNoFollow(root, "missing.txt")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Symlink("file", filepath.Join(dir, "link")))
	require.NoError(t, unix.Mkfifo(filepath.Join(dir, "fifo"), 0o644))

	tests := []struct {
		name string
		kind Kind
		desc string
	}{
		{"file", KindRegular, "regular file"},
		{"sub", KindDir, "directory"},
		{"link", KindOther, "symlink"},
		{"fifo", KindOther, "named pipe"},
	}

	for _, tt := range tests {
		info, err := os.Lstat(filepath.Join(dir, tt.name))
		require.NoError(t, err)
		assert.Equal(t, tt.kind, Classify(info), tt.name)
		assert.Equal(t, tt.desc, Describe(info.Mode()), tt.name)
	}
}
