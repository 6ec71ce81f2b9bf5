package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
)

// Kind is a codec.Kind written by name in YAML ("u8", "f32", ...).
type Kind struct {
	codec.Kind
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return &LoadError{Line: n.Line, Message: "expected a kind name"}
	}
	parsed, err := codec.ParseKind(n.Value)
	if err != nil {
		return &LoadError{Line: n.Line, Message: "invalid kind", Cause: err}
	}
	k.Kind = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (any, error) {
	return k.Kind.String(), nil
}

// Shape is the layout of an argument list, return value or startup frame:
// none, a single kind, or a tuple of kinds. YAML accepts a scalar or a list.
type Shape []codec.Kind

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Shape) UnmarshalYAML(n *yaml.Node) error {
	var names []string
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" || n.Value == "" || n.Value == "none" {
			*s = nil
			return nil
		}
		names = []string{n.Value}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return &LoadError{Line: item.Line, Message: "expected a kind name"}
			}
			names = append(names, item.Value)
		}
	default:
		return &LoadError{Line: n.Line, Message: "expected a kind or a list of kinds"}
	}

	out := make(Shape, 0, len(names))
	for _, name := range names {
		k, err := codec.ParseKind(name)
		if err != nil {
			return &LoadError{Line: n.Line, Message: "invalid kind", Cause: err}
		}
		out = append(out, k)
	}
	*s = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Shape) MarshalYAML() (any, error) {
	switch len(s) {
	case 0:
		return nil, nil
	case 1:
		return s[0].String(), nil
	}
	names := make([]string, len(s))
	for i, k := range s {
		names[i] = k.String()
	}
	return names, nil
}

// Size returns the encoded width.
func (s Shape) Size() int {
	n := 0
	for _, k := range s {
		n += k.Size()
	}
	return n
}

// String returns "none", a kind name, or a tuple like "{u8, u8}".
func (s Shape) String() string {
	switch len(s) {
	case 0:
		return "none"
	case 1:
		return s[0].String()
	}
	names := make([]string, len(s))
	for i, k := range s {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Serializer returns the runtime serializer for the shape: nil for none, the
// Kind itself for one field, and a codec.Struct (values as []any) otherwise.
func (s Shape) Serializer() codec.Serializer[any] {
	switch len(s) {
	case 0:
		return nil
	case 1:
		return s[0]
	}
	return codec.Erase[[]any](codec.MustStruct(s...))
}

// Value packs call arguments into the value Serializer expects:
// nil for none, the single value, or the whole slice.
func (s Shape) Value(args []any) (any, error) {
	if len(args) != len(s) {
		return nil, fmt.Errorf("%w: got %d, want %d for %s", codec.ErrArity, len(args), len(s), s)
	}
	switch len(s) {
	case 0:
		return nil, nil
	case 1:
		return args[0], nil
	}
	return args, nil
}

// Parse converts textual arguments, as typed on a console, into a value for
// Serializer.
func (s Shape) Parse(fields []string) (any, error) {
	if len(fields) != len(s) {
		return nil, fmt.Errorf("%w: got %d, want %d for %s", codec.ErrArity, len(fields), len(s), s)
	}
	args := make([]any, len(s))
	for i, k := range s {
		v, err := k.ParseValue(fields[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		args[i] = v
	}
	return s.Value(args)
}

// Zero returns the zero value of the shape in Serializer's representation.
func (s Shape) Zero() any {
	ser := s.Serializer()
	if ser == nil {
		return nil
	}
	v, err := ser.Decode(make([]byte, ser.Size()))
	if err != nil {
		panic(err)
	}
	return v
}
