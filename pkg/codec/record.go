package codec

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// Record is the typed composite serializer for a Go struct T whose fields are
// all exported fixed-width scalars. Field order is wire order.
//
//	type PinMode struct {
//		Pin  uint8
//		Mode uint8
//	}
//	var pinMode = codec.MustRecord[PinMode]()
type Record[T any] struct {
	kinds []Kind
	size  int
	name  string
}

var reflectKinds = map[reflect.Kind]Kind{
	reflect.Uint8:   KindU8,
	reflect.Uint16:  KindU16,
	reflect.Uint32:  KindU32,
	reflect.Uint64:  KindU64,
	reflect.Int8:    KindI8,
	reflect.Int16:   KindI16,
	reflect.Int32:   KindI32,
	reflect.Int64:   KindI64,
	reflect.Float32: KindF32,
	reflect.Float64: KindF64,
	reflect.Bool:    KindBool,
}

// NewRecord validates the layout of T once.
func NewRecord[T any]() (*Record[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, t)
	}
	if t.NumField() == 0 {
		return nil, fmt.Errorf("%w: %s has no fields", ErrArity, t)
	}
	r := &Record[T]{name: t.Name()}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			return nil, fmt.Errorf("%w: %s.%s is not exported", ErrUnsupportedType, t, f.Name)
		}
		k, ok := reflectKinds[f.Type.Kind()]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s has type %s", ErrUnsupportedType, t, f.Name, f.Type)
		}
		r.kinds = append(r.kinds, k)
		r.size += k.Size()
	}
	return r, nil
}

// MustRecord is like NewRecord but panics on error. For package-level layouts.
func MustRecord[T any]() *Record[T] {
	r, err := NewRecord[T]()
	if err != nil {
		panic(err)
	}
	return r
}

// Kinds returns a copy of the field kinds.
func (r *Record[T]) Kinds() []Kind {
	return append([]Kind(nil), r.kinds...)
}

// Size returns the total encoded width.
func (r *Record[T]) Size() int { return r.size }

// String returns the field layout, e.g. "{u8, u8}".
func (r *Record[T]) String() string {
	return describeKinds(r.kinds)
}

// Append appends the little-endian encoding of v's fields.
func (r *Record[T]) Append(dst []byte, v T) ([]byte, error) {
	out, err := binary.Append(dst, binary.LittleEndian, v)
	if err != nil {
		return dst, fmt.Errorf("codec: encode %s: %w", r.name, err)
	}
	return out, nil
}

// Decode decodes exactly Size bytes into a T.
func (r *Record[T]) Decode(b []byte) (T, error) {
	var v T
	if err := checkLen(b, r.size); err != nil {
		return v, err
	}
	if _, err := binary.Decode(b, binary.LittleEndian, &v); err != nil {
		return v, fmt.Errorf("codec: decode %s: %w", r.name, err)
	}
	return v, nil
}
