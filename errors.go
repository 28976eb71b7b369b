package lpack

import (
	"errors"

	"github.com/meigma/lpack/internal/frame"
	"github.com/meigma/lpack/internal/platform"
)

// Errors re-exported from the framing codec.
var (
	// ErrCorruptArchive matches every error caused by malformed framing.
	// The more specific errors below all satisfy errors.Is(err, ErrCorruptArchive).
	ErrCorruptArchive = frame.ErrCorrupt

	// ErrBadLength is returned for a length field that is empty, non-numeric,
	// too long, or overflowing.
	ErrBadLength = frame.ErrBadLength

	// ErrTruncated is returned when the archive ends mid-frame, mid-payload,
	// or with directories still open.
	ErrTruncated = frame.ErrTruncated

	// ErrUnbalancedEnd is returned for an end-of-directory frame with no
	// directory open.
	ErrUnbalancedEnd = frame.ErrUnbalancedEnd

	// ErrBadName is returned for a decoded entry name that is not a safe
	// relative path.
	ErrBadName = frame.ErrBadName

	// ErrNameTooLong is returned when a name exceeds MaxNameLen bytes.
	ErrNameTooLong = frame.ErrNameTooLong
)

var (
	// ErrSymlink is returned when a symlink is encountered on open. Pack
	// converts it into a skipped entry.
	ErrSymlink = platform.ErrSymlink

	// ErrTooDeep is returned when directories nest deeper than the
	// configured maximum depth.
	ErrTooDeep = errors.New("lpack: directory nesting too deep")

	// ErrFileChanged is returned when a source file yields fewer bytes than
	// its size at the time its frame was written.
	ErrFileChanged = errors.New("lpack: file changed during packing")
)

// MaxNameLen is the longest name an entry frame may declare, including
// the trailing "/" of directory names.
const MaxNameLen = frame.MaxNameLen
