// Package platform isolates the operating-system specific parts of
// reading source entries.
package platform

import (
	"errors"
	"io/fs"
)

// ErrSymlink is returned when attempting to open a symbolic link.
var ErrSymlink = errors.New("symbolic links not supported")

// Kind classifies a source entry for packing.
type Kind uint8

const (
	// KindOther is anything that is neither a directory nor a regular file:
	// symlinks, devices, sockets, FIFOs.
	KindOther Kind = iota
	KindDir
	KindRegular
)

// Classify returns the kind of an entry from Lstat information.
func Classify(info fs.FileInfo) Kind {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindRegular
	default:
		return KindOther
	}
}

// Describe returns a short human-readable description of a non-regular
// entry type for diagnostics.
func Describe(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return "symlink"
	case mode&fs.ModeNamedPipe != 0:
		return "named pipe"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeCharDevice != 0:
		return "character device"
	case mode&fs.ModeDevice != 0:
		return "device"
	case mode.IsDir():
		return "directory"
	case mode.IsRegular():
		return "regular file"
	default:
		return "irregular file"
	}
}
