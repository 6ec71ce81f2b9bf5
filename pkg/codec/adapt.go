package codec

import "fmt"

// Erased adapts a Serializer[T] to Serializer[any]. Append accepts only
// values of type T.
type Erased[T any] struct {
	inner Serializer[T]
}

// Erase wraps s so it can sit next to Kind values in a runtime layout.
func Erase[T any](s Serializer[T]) Serializer[any] {
	if s == nil {
		return nil
	}
	if k, ok := any(s).(Serializer[any]); ok {
		return k
	}
	return Erased[T]{inner: s}
}

func (e Erased[T]) Size() int      { return e.inner.Size() }
func (e Erased[T]) String() string { return e.inner.String() }

func (e Erased[T]) Append(dst []byte, v any) ([]byte, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return dst, fmt.Errorf("%w: %T for %s, want %T", ErrUnsupportedType, v, e.inner, zero)
	}
	return e.inner.Append(dst, t)
}

func (e Erased[T]) Decode(b []byte) (any, error) {
	v, err := e.inner.Decode(b)
	if err != nil {
		return nil, err
	}
	return v, nil
}
