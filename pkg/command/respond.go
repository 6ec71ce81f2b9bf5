package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// ErrInvalidPolicy is returned for a policy with a nil enum or a width that is
// not an unsigned kind.
var ErrInvalidPolicy = errors.New("command: invalid respond policy")

// RespondPolicy reads and classifies the status that opens every reply.
type RespondPolicy[E status.Code] struct {
	enum  *status.Enum[E]
	width codec.Kind
}

// NewRespondPolicy creates a policy decoding statuses of the given unsigned
// width into enum.
func NewRespondPolicy[E status.Code](enum *status.Enum[E], width codec.Kind) (RespondPolicy[E], error) {
	if enum == nil {
		return RespondPolicy[E]{}, fmt.Errorf("%w: nil enum", ErrInvalidPolicy)
	}
	if !width.Unsigned() {
		return RespondPolicy[E]{}, fmt.Errorf("%w: status width %s is not unsigned", ErrInvalidPolicy, width)
	}
	return RespondPolicy[E]{enum: enum, width: width}, nil
}

// MustRespondPolicy is like NewRespondPolicy but panics on error.
func MustRespondPolicy[E status.Code](enum *status.Enum[E], width codec.Kind) RespondPolicy[E] {
	p, err := NewRespondPolicy(enum, width)
	if err != nil {
		panic(err)
	}
	return p
}

// Enum returns the status enum.
func (p RespondPolicy[E]) Enum() *status.Enum[E] { return p.enum }

// Width returns the status kind.
func (p RespondPolicy[E]) Width() codec.Kind { return p.width }

// ReadStatus blocks for exactly one status and maps it onto the enum.
// An unknown value yields a *ProtocolViolationError.
func (p RespondPolicy[E]) ReadStatus(r io.Reader) (E, error) {
	b, err := stream.ReadExactly(r, p.width.Size())
	if err != nil {
		return 0, fmt.Errorf("command: read status: %w", err)
	}
	raw, err := p.width.DecodeUint(b)
	if err != nil {
		return 0, err
	}
	code, err := p.enum.Decode(raw)
	if err != nil {
		return 0, &ProtocolViolationError{Raw: raw, Enum: p.enum.Name()}
	}
	return code, nil
}

// Describe returns e.g. "(u8, ArduinoError<u8>)" for the given return layout.
func (p RespondPolicy[E]) Describe(returns string) string {
	return fmt.Sprintf("(%s, %s<%s>)", returns, p.enum.Name(), p.width)
}

// Respond reads one reply: the status, then the return payload only when the
// status is ok. A non-ok status consumes nothing beyond the status bytes.
func Respond[R any, E status.Code](r io.Reader, p RespondPolicy[E], returns codec.Serializer[R]) (Result[R, E], error) {
	code, err := p.ReadStatus(r)
	if err != nil {
		return Result[R, E]{}, err
	}
	if !p.enum.IsOK(code) {
		return errNamed[R](code, p.enum.NameOf(code)), nil
	}
	if returns == nil {
		var zero R
		return Ok[R, E](zero), nil
	}
	v, err := codec.Read(r, returns)
	if err != nil {
		return Result[R, E]{}, fmt.Errorf("command: read return value: %w", err)
	}
	return Ok[R, E](v), nil
}
