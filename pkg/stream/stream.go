// Package stream defines the duplex byte channel a command link runs over and
// a few implementations of it: an in-memory double, a logging wrapper, TCP
// and (in serialport) a native serial port.
package stream

import (
	"errors"
	"fmt"
	"io"
)

// ErrShortRead is returned when the stream ends before a read is satisfied.
var ErrShortRead = errors.New("stream: short read")

// Stream is an ordered, reliable duplex byte channel.
// Reads may return fewer bytes than asked; use ReadExactly for framed reads.
// Timeouts are the implementation's business.
type Stream interface {
	io.Reader
	io.Writer
}

// Conn is a Stream that can be closed.
type Conn interface {
	Stream
	io.Closer
}

// ReadExactly blocks until n bytes are read from r.
func ReadExactly(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	got, err := io.ReadFull(r, b)
	if err != nil {
		return b[:got], fmt.Errorf("%w (%d of %d bytes): %w", ErrShortRead, got, n, err)
	}
	return b, nil
}

// WriteAll writes p with a single Write call and reports short writes.
func WriteAll(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("stream: wrote %d of %d bytes: %w", n, len(p), io.ErrShortWrite)
	}
	return nil
}
