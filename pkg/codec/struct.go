package codec

import (
	"fmt"
	"strings"
)

// Struct is a dynamic composite of primitive kinds encoded from []any.
// Fields are concatenated in declared order with no padding.
type Struct struct {
	kinds []Kind
	size  int
}

// NewStruct creates a composite of the given kinds.
func NewStruct(kinds ...Kind) (*Struct, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: empty struct", ErrArity)
	}
	s := &Struct{kinds: append([]Kind(nil), kinds...)}
	for i, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: field %d: %s", ErrUnsupportedType, i, k)
		}
		s.size += k.Size()
	}
	return s, nil
}

// MustStruct is like NewStruct but panics on error. For package-level layouts.
func MustStruct(kinds ...Kind) *Struct {
	s, err := NewStruct(kinds...)
	if err != nil {
		panic(err)
	}
	return s
}

// Kinds returns a copy of the field kinds.
func (s *Struct) Kinds() []Kind {
	return append([]Kind(nil), s.kinds...)
}

// Size returns the total encoded width.
func (s *Struct) Size() int { return s.size }

// String returns the layout, e.g. "{u8, f32}".
func (s *Struct) String() string {
	return describeKinds(s.kinds)
}

// Append encodes exactly one value per field. dst is left unchanged on error.
func (s *Struct) Append(dst []byte, v []any) ([]byte, error) {
	if len(v) != len(s.kinds) {
		return dst, fmt.Errorf("%w: got %d, want %d for %s", ErrArity, len(v), len(s.kinds), s)
	}
	out := dst
	for i, k := range s.kinds {
		var err error
		out, err = k.Append(out, v[i])
		if err != nil {
			return dst, fmt.Errorf("field %d: %w", i, err)
		}
	}
	return out, nil
}

// Decode splits exactly Size bytes into one value per field.
func (s *Struct) Decode(b []byte) ([]any, error) {
	if err := checkLen(b, s.size); err != nil {
		return nil, err
	}
	out := make([]any, 0, len(s.kinds))
	for i, k := range s.kinds {
		n := k.Size()
		v, err := k.Decode(b[:n])
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = append(out, v)
		b = b[n:]
	}
	return out, nil
}

func describeKinds(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Compile-time interface satisfaction check.
var _ Serializer[[]any] = (*Struct)(nil)
