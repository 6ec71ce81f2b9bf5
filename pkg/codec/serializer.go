package codec

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrShortBuffer is returned when a buffer does not hold exactly Size bytes.
	ErrShortBuffer = errors.New("codec: wrong buffer length")

	// ErrRange is returned when a value does not fit the declared kind.
	ErrRange = errors.New("codec: value out of range")

	// ErrArity is returned when a tuple has the wrong number of fields.
	ErrArity = errors.New("codec: wrong number of values")

	// ErrUnsupportedType is returned for values or struct fields with no fixed-width encoding.
	ErrUnsupportedType = errors.New("codec: unsupported type")
)

// Serializer converts between values of T and their fixed-width encoding.
// Implementations are immutable and safe to share.
type Serializer[T any] interface {
	// Size is the exact number of bytes every encoded value occupies.
	Size() int

	// Append appends the encoding of v to dst.
	Append(dst []byte, v T) ([]byte, error)

	// Decode decodes a value from exactly Size bytes.
	Decode(b []byte) (T, error)

	// String describes the layout, e.g. "u8" or "{u8, f32}".
	String() string
}

// None is the value type of commands that take no arguments or return nothing.
type None = struct{}

// Void is an absent serializer. Passing it where a Serializer[None] is expected
// declares that nothing is written or read for that side of an exchange.
var Void Serializer[None]

// Pack encodes v into a new buffer.
func Pack[T any](s Serializer[T], v T) ([]byte, error) {
	return s.Append(make([]byte, 0, s.Size()), v)
}

// Write encodes v and writes it to w in a single call.
func Write[T any](w io.Writer, s Serializer[T], v T) error {
	b, err := Pack(s, v)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("codec: write %s: %w", s, err)
	}
	return nil
}

// Read reads exactly Size bytes from r and decodes them.
func Read[T any](r io.Reader, s Serializer[T]) (T, error) {
	var zero T
	b := make([]byte, s.Size())
	if _, err := io.ReadFull(r, b); err != nil {
		return zero, fmt.Errorf("codec: read %s: %w", s, err)
	}
	return s.Decode(b)
}

// Describe returns s.String(), or "none" for an absent serializer.
func Describe[T any](s Serializer[T]) string {
	if s == nil {
		return "none"
	}
	return s.String()
}

func checkLen(b []byte, want int) error {
	if len(b) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortBuffer, len(b), want)
	}
	return nil
}
