// Package file copies entry payloads between sources and archives.
package file

import (
	"context"
	"io"
)

// CopyN copies exactly n bytes from src to dst, checking for context
// cancellation between reads. It returns the number of bytes written.
//
// If src ends before n bytes, CopyN returns io.ErrUnexpectedEOF. Reads
// never ask for more than the remaining count, so src is not consumed
// past the n-th byte.
func CopyN(ctx context.Context, dst io.Writer, src io.Reader, n int64, buf []byte) (int64, error) {
	var written int64
	for written < n {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		chunk := buf
		if remaining := n - written; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		nr, er := src.Read(chunk)
		if nr > 0 {
			nw, ew := dst.Write(chunk[:nr])
			if nw > 0 {
				written += int64(nw)
			}
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				if written < n {
					return written, io.ErrUnexpectedEOF
				}
				return written, nil
			}
			return written, er
		}
	}
	return written, nil
}
