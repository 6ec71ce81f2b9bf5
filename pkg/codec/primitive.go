package codec

import "fmt"

// Scalar is the set of Go types with a primitive wire kind.
type Scalar interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | float32 | float64 | bool
}

// Primitive is the typed serializer for a single scalar.
type Primitive[T Scalar] struct {
	kind Kind
}

// Typed primitive serializers.
var (
	U8   = Primitive[uint8]{KindU8}
	U16  = Primitive[uint16]{KindU16}
	U32  = Primitive[uint32]{KindU32}
	U64  = Primitive[uint64]{KindU64}
	I8   = Primitive[int8]{KindI8}
	I16  = Primitive[int16]{KindI16}
	I32  = Primitive[int32]{KindI32}
	I64  = Primitive[int64]{KindI64}
	F32  = Primitive[float32]{KindF32}
	F64  = Primitive[float64]{KindF64}
	Bool = Primitive[bool]{KindBool}
)

// Kind returns the wire kind.
func (p Primitive[T]) Kind() Kind { return p.kind }

// Size returns the encoded width in bytes.
func (p Primitive[T]) Size() int { return p.kind.Size() }

// String returns the kind name.
func (p Primitive[T]) String() string { return p.kind.String() }

// Append appends the little-endian encoding of v.
func (p Primitive[T]) Append(dst []byte, v T) ([]byte, error) {
	return p.kind.Append(dst, v)
}

// Decode decodes exactly Size bytes.
func (p Primitive[T]) Decode(b []byte) (T, error) {
	var zero T
	v, err := p.kind.Decode(b)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s decodes to %T, not %T", ErrUnsupportedType, p.kind, v, zero)
	}
	return t, nil
}

// Compile-time interface satisfaction checks.
var (
	_ Serializer[uint8]   = U8
	_ Serializer[float32] = F32
	_ Serializer[bool]    = Bool
)
