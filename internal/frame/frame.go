// Package frame implements the length-prefixed framing shared by the
// archive encoder and decoder.
//
// An archive is a sequence of frames:
//
//	dirEntry  := decimal ":" name "/" entry* "0:"
//	fileEntry := decimal ":" name decimal ":" raw-bytes
//
// Every name and payload is preceded by its decimal byte length, so the
// payload is never scanned for delimiters.
package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

const (
	// MaxNameLen bounds the declared length of a name, including the
	// directory marker.
	MaxNameLen = 255

	// Delim terminates every decimal length field.
	Delim = ':'

	// DirMarker is appended to directory names.
	DirMarker = '/'

	maxNameDigits = 3
	maxSizeDigits = 19
)

// End is the end-of-directory sentinel: a zero-length name frame.
var End = []byte("0:")

// Writer emits frames to an underlying writer.
// Payload bytes are written through Write after WriteFile.
type Writer struct {
	w       *bufio.Writer
	scratch []byte
	written int64
}

// NewWriter returns a buffered frame writer. Callers must call Flush.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:       bufio.NewWriter(w),
		scratch: make([]byte, 0, maxSizeDigits+1),
	}
}

// WriteDir writes a directory name frame. The declared length counts the
// trailing marker.
func (w *Writer) WriteDir(name string) error {
	if err := checkName(name, len(name)+1); err != nil {
		return err
	}
	if err := w.writeLength(int64(len(name) + 1)); err != nil {
		return err
	}
	if err := w.writeString(name); err != nil {
		return err
	}
	return w.writeByte(DirMarker)
}

// WriteFile writes a file name frame followed by its payload length.
// Exactly size payload bytes must follow through Write.
func (w *Writer) WriteFile(name string, size int64) error {
	if err := checkName(name, len(name)); err != nil {
		return err
	}
	if size < 0 {
		return fmt.Errorf("negative file size %d for %q", size, name)
	}
	if err := w.writeLength(int64(len(name))); err != nil {
		return err
	}
	if err := w.writeString(name); err != nil {
		return err
	}
	return w.writeLength(size)
}

// WriteEnd writes the end-of-directory sentinel.
func (w *Writer) WriteEnd() error {
	n, err := w.w.Write(End)
	w.written += int64(n)
	return err
}

// Write writes raw payload bytes.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.written += int64(n)
	return n, err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Written returns the number of archive bytes accepted so far.
func (w *Writer) Written() int64 {
	return w.written
}

func (w *Writer) writeLength(n int64) error {
	w.scratch = strconv.AppendInt(w.scratch[:0], n, 10)
	w.scratch = append(w.scratch, Delim)
	_, err := w.Write(w.scratch)
	return err
}

func (w *Writer) writeString(s string) error {
	n, err := w.w.WriteString(s)
	w.written += int64(n)
	return err
}

func (w *Writer) writeByte(b byte) error {
	if err := w.w.WriteByte(b); err != nil {
		return err
	}
	w.written++
	return nil
}

func checkName(name string, declared int) error {
	if name == "" {
		return errors.New("empty entry name")
	}
	if declared > MaxNameLen {
		return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrNameTooLong, name, declared, MaxNameLen)
	}
	return nil
}

// Reader consumes frames from an underlying reader.
// Payload bytes are read through Read after ReadSize.
type Reader struct {
	r    *bufio.Reader
	name [MaxNameLen]byte
}

// NewReader returns a buffered frame reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// More reports whether the source has at least one more byte.
func (r *Reader) More() (bool, error) {
	_, err := r.r.Peek(1)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	return false, err
}

// ReadName reads a name-length field and the name it declares.
// An empty name is the end-of-directory sentinel.
func (r *Reader) ReadName() (string, error) {
	n, err := r.readLength(maxNameDigits)
	if err != nil {
		return "", fmt.Errorf("name length: %w", err)
	}
	if n > MaxNameLen {
		return "", fmt.Errorf("%w: %w: declared %d bytes, limit %d", ErrCorrupt, ErrNameTooLong, n, MaxNameLen)
	}
	if n == 0 {
		return "", nil
	}
	buf := r.name[:n]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", truncated(err, "name")
	}
	return string(buf), nil
}

// ReadSize reads a file-length field.
func (r *Reader) ReadSize() (int64, error) {
	n, err := r.readLength(maxSizeDigits)
	if err != nil {
		return 0, fmt.Errorf("file length: %w", err)
	}
	return n, nil
}

// Read reads raw payload bytes.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// readLength parses an unsigned decimal terminated by Delim. Leading
// zeros are accepted.
func (r *Reader) readLength(maxDigits int) (int64, error) {
	var (
		v      int64
		digits int
	)
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, truncated(err, "length field")
		}
		if b == Delim {
			break
		}
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("%w: unexpected byte %q", ErrBadLength, b)
		}
		digits++
		if digits > maxDigits {
			return 0, fmt.Errorf("%w: more than %d digits", ErrBadLength, maxDigits)
		}
		d := int64(b - '0')
		if v > (math.MaxInt64-d)/10 {
			return 0, fmt.Errorf("%w: value overflows", ErrBadLength)
		}
		v = v*10 + d
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: no digits", ErrBadLength)
	}
	return v, nil
}

// truncated converts end-of-input into ErrTruncated and passes other read
// errors through.
func truncated(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: source ended inside %s", ErrTruncated, what)
	}
	return err
}
