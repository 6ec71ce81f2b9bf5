package command

import (
	"bytes"
	"fmt"
	"io"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// Instruction is the request half of a command: a fixed code and an optional
// argument layout.
type Instruction[A any] struct {
	name string
	code []byte
	args codec.Serializer[A]
}

// NewInstruction creates an instruction. A nil args (codec.Void) means the
// command takes no arguments and only the code is written.
func NewInstruction[A any](name string, code []byte, args codec.Serializer[A]) Instruction[A] {
	return Instruction[A]{
		name: name,
		code: bytes.Clone(code),
		args: args,
	}
}

// Name returns the command name.
func (i Instruction[A]) Name() string { return i.name }

// Code returns a copy of the encoded command code.
func (i Instruction[A]) Code() []byte { return bytes.Clone(i.code) }

// Args returns the argument serializer, nil if the command takes none.
func (i Instruction[A]) Args() codec.Serializer[A] { return i.args }

// Size returns the request length in bytes.
func (i Instruction[A]) Size() int {
	if i.args == nil {
		return len(i.code)
	}
	return len(i.code) + i.args.Size()
}

// Encode returns the request bytes for v.
func (i Instruction[A]) Encode(v A) ([]byte, error) {
	b := make([]byte, 0, i.Size())
	b = append(b, i.code...)
	if i.args == nil {
		return b, nil
	}
	b, err := i.args.Append(b, v)
	if err != nil {
		return nil, fmt.Errorf("command %s: encode args: %w", i.name, err)
	}
	return b, nil
}

// Send encodes the request and writes it in one call. Nothing is written if
// encoding fails.
func (i Instruction[A]) Send(w io.Writer, v A) error {
	b, err := i.Encode(v)
	if err != nil {
		return err
	}
	if err := stream.WriteAll(w, b); err != nil {
		return fmt.Errorf("command %s: write request: %w", i.name, err)
	}
	return nil
}

// String returns e.g. "pinMode<00>({u8, u8})".
func (i Instruction[A]) String() string {
	args := ""
	if i.args != nil {
		args = i.args.String()
	}
	return fmt.Sprintf("%s<%X>(%s)", i.name, i.code, args)
}
