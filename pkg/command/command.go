package command

import (
	"io"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/status"
)

// Sender runs one exchange over a stream. Command and Cached implement it.
type Sender[A, R any, E status.Code] interface {
	Send(rw io.ReadWriter, v A) (Result[R, E], error)
	Instruction() Instruction[A]
	String() string
}

// Command pairs an instruction with the reply it expects. It holds no mutable
// state and may be shared.
type Command[A, R any, E status.Code] struct {
	instr   Instruction[A]
	returns codec.Serializer[R]
	policy  RespondPolicy[E]
}

// New creates a command. A nil returns (codec.Void) means an ok reply carries
// no payload.
func New[A, R any, E status.Code](instr Instruction[A], returns codec.Serializer[R], policy RespondPolicy[E]) Command[A, R, E] {
	return Command[A, R, E]{instr: instr, returns: returns, policy: policy}
}

// Instruction returns the request half.
func (c Command[A, R, E]) Instruction() Instruction[A] { return c.instr }

// Returns returns the return serializer, nil if none.
func (c Command[A, R, E]) Returns() codec.Serializer[R] { return c.returns }

// Policy returns the respond policy.
func (c Command[A, R, E]) Policy() RespondPolicy[E] { return c.policy }

// Encode returns the request bytes for v.
func (c Command[A, R, E]) Encode(v A) ([]byte, error) { return c.instr.Encode(v) }

// Send writes the request and blocks for the reply. On error the Result is
// the zero value.
func (c Command[A, R, E]) Send(rw io.ReadWriter, v A) (Result[R, E], error) {
	if err := c.instr.Send(rw, v); err != nil {
		return Result[R, E]{}, err
	}
	return Respond(rw, c.policy, c.returns)
}

// String returns e.g. "digitalRead<02>(u8) -> (u8, ArduinoError<u8>)".
func (c Command[A, R, E]) String() string {
	return c.instr.String() + " -> " + c.policy.Describe(codec.Describe(c.returns))
}
