package lpack

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/lpack/internal/frame"
	"github.com/meigma/lpack/internal/pathutil"
	"github.com/meigma/lpack/internal/testutil"
)

// randomTree returns a tree of files and directories with binary contents,
// including empty files, empty directories and payloads larger than the
// copy buffer.
func randomTree(seed uint64) map[string][]byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	tree := map[string][]byte{
		"empty.bin":       {},
		"empty-dir/":      nil,
		"nested/deeper/":  nil,
		"large.bin":       randomBytes(rng, 3*copyBufferSize+17),
		"colon:name.txt":  []byte("1:a0:"),
		"nested/0:":       []byte("0:"),
		"nested/deeper/z": randomBytes(rng, 1),
	}
	for i := range 20 {
		dir := []string{"", "a/", "a/b/", "c/", "nested/deeper/"}[rng.IntN(5)]
		name := dir + "f" + string(rune('a'+i))
		tree[name] = randomBytes(rng, rng.IntN(4096))
	}
	return tree
}

func randomBytes(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.Uint32())
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, sorted := range []bool{false, true} {
		t.Run(map[bool]string{false: "filesystem order", true: "sorted"}[sorted], func(t *testing.T) {
			t.Parallel()

			src := t.TempDir()
			root := filepath.Join(src, "root")
			testutil.WriteTree(t, root, randomTree(42))

			var buf bytes.Buffer
			packStats, err := Pack(context.Background(), &buf, []string{root}, PackWithSortedEntries(sorted))
			require.NoError(t, err)

			dest := t.TempDir()
			unpackStats, err := Unpack(context.Background(), &buf, dest)
			require.NoError(t, err)

			assert.Equal(t, testutil.ReadTree(t, src), testutil.ReadTree(t, dest))
			assert.Equal(t, packStats, unpackStats)
		})
	}
}

func TestRoundTripMultipleRoots(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string][]byte{
		"one/x.txt": []byte("x"),
		"two/y/z":   []byte("z"),
		"loose.txt": []byte("loose"),
	})

	var buf bytes.Buffer
	_, err := Pack(context.Background(), &buf, []string{
		filepath.Join(src, "one"),
		filepath.Join(src, "loose.txt"),
		filepath.Join(src, "two"),
	})
	require.NoError(t, err)

	dest := t.TempDir()
	_, err = Unpack(context.Background(), &buf, dest)
	require.NoError(t, err)
	assert.Equal(t, testutil.ReadTree(t, src), testutil.ReadTree(t, dest))
}

func TestRoundTripKeepsWorkingDirectory(t *testing.T) {
	t.Parallel()

	before, err := os.Getwd()
	require.NoError(t, err)

	data, _ := packTree(t, map[string][]byte{"a/b/c": []byte("c")})
	_, _, err = unpackBytes(t, data)
	require.NoError(t, err)

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestArchiveFraming decodes a packed archive frame by frame and checks
// that every length field matches what follows it and that every
// directory is closed by exactly one sentinel at its own depth.
func TestArchiveFraming(t *testing.T) {
	t.Parallel()

	tree := randomTree(7)
	data, stats := packTree(t, tree)

	r := frame.NewReader(bytes.NewReader(data))
	var (
		stack []string
		files int
		dirs  int
		ends  int
		total int64
	)
	for {
		more, err := r.More()
		require.NoError(t, err)
		if !more {
			break
		}
		name, err := r.ReadName()
		require.NoError(t, err)
		switch dirName, isDir := pathutil.CutDirMarker(name); {
		case name == "":
			require.NotEmpty(t, stack, "sentinel without open directory")
			stack = stack[:len(stack)-1]
			ends++
		case isDir:
			stack = append(stack, pathutil.Join(stackTop(stack), dirName))
			dirs++
		default:
			size, err := r.ReadSize()
			require.NoError(t, err)
			payload, err := io.ReadAll(io.LimitReader(r, size))
			require.NoError(t, err)
			require.Len(t, payload, int(size))

			rel, ok := strings.CutPrefix(pathutil.Join(stackTop(stack), name), "root/")
			require.True(t, ok)
			assert.Equal(t, tree[rel], payload, rel)
			files++
			total += size
		}
	}

	assert.Empty(t, stack, "all directories closed")
	assert.Equal(t, dirs, ends)
	assert.Equal(t, Stats{Files: files, Dirs: dirs, Bytes: total}, stats)
}

func stackTop(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}
