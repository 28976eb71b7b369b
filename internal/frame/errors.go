package frame

import "errors"

// ErrCorrupt matches every error caused by malformed archive framing.
var ErrCorrupt = errors.New("lpack: corrupt archive")

// ErrNameTooLong is returned when a name exceeds MaxNameLen. The decoder
// wraps it together with ErrCorrupt; the encoder returns it on its own.
var ErrNameTooLong = errors.New("lpack: name too long")

// Framing errors. Each of them satisfies errors.Is(err, ErrCorrupt).
var (
	// ErrBadLength is returned for a length field that is empty, contains a
	// non-digit, has too many digits, or overflows.
	ErrBadLength = &corruptError{msg: "lpack: bad length field"}

	// ErrTruncated is returned when the source ends inside a frame, inside
	// a payload, or while directories are still open.
	ErrTruncated = &corruptError{msg: "lpack: truncated archive"}

	// ErrUnbalancedEnd is returned for an end-of-directory frame with no
	// open directory.
	ErrUnbalancedEnd = &corruptError{msg: "lpack: end of directory without open directory"}

	// ErrBadName is returned for a decoded name that is not a safe
	// relative path.
	ErrBadName = &corruptError{msg: "lpack: invalid entry name"}
)

type corruptError struct {
	msg string
}

func (e *corruptError) Error() string { return e.msg }

// Is makes every framing error match ErrCorrupt.
func (e *corruptError) Is(target error) bool {
	return target == ErrCorrupt
}
