// Package status models the closed set of status codes a device answers with.
package status

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownCode is returned when a device reports a code outside the enum.
	ErrUnknownCode = errors.New("status: unknown code")

	// ErrInvalidEnum is returned by NewEnum for malformed member lists.
	ErrInvalidEnum = errors.New("status: invalid enum")
)

// Code is the constraint for status code types.
type Code interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Member is one named status.
type Member[E Code] struct {
	Code E
	Name string
}

// Enum is a closed status set with exactly one ok member.
// An Enum is immutable once built and shared by every command of a protocol.
type Enum[E Code] struct {
	name    string
	ok      E
	members []Member[E]
	names   map[E]string
}

// NewEnum builds an enum named name. ok must be one of the member codes.
func NewEnum[E Code](name string, ok E, members ...Member[E]) (*Enum[E], error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidEnum)
	}
	e := &Enum[E]{
		name:    name,
		ok:      ok,
		members: slices.Clone(members),
		names:   make(map[E]string, len(members)),
	}
	for _, m := range members {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: %s: code %d has no name", ErrInvalidEnum, name, uint64(m.Code))
		}
		if prev, dup := e.names[m.Code]; dup {
			return nil, fmt.Errorf("%w: %s: code %d used by %s and %s", ErrInvalidEnum, name, uint64(m.Code), prev, m.Name)
		}
		e.names[m.Code] = m.Name
	}
	if _, found := e.names[ok]; !found {
		return nil, fmt.Errorf("%w: %s: ok code %d is not a member", ErrInvalidEnum, name, uint64(ok))
	}
	return e, nil
}

// MustEnum is like NewEnum but panics on error. For package-level enums.
func MustEnum[E Code](name string, ok E, members ...Member[E]) *Enum[E] {
	e, err := NewEnum(name, ok, members...)
	if err != nil {
		panic(err)
	}
	return e
}

// Name returns the enum's name.
func (e *Enum[E]) Name() string { return e.name }

// OK returns the success code.
func (e *Enum[E]) OK() E { return e.ok }

// IsOK reports whether c is the success code.
func (e *Enum[E]) IsOK(c E) bool { return c == e.ok }

// Contains reports whether c is a member.
func (e *Enum[E]) Contains(c E) bool {
	_, ok := e.names[c]
	return ok
}

// Members returns the members in declaration order.
func (e *Enum[E]) Members() []Member[E] {
	return slices.Clone(e.members)
}

// NameOf returns the member name for c, or a numeric placeholder.
func (e *Enum[E]) NameOf(c E) string {
	if n, ok := e.names[c]; ok {
		return n
	}
	return fmt.Sprintf("%s(%d)", e.name, uint64(c))
}

// Decode maps a raw wire value onto a member.
func (e *Enum[E]) Decode(raw uint64) (E, error) {
	c := E(raw)
	if uint64(c) != raw || !e.Contains(c) {
		return 0, fmt.Errorf("%w: %d is not a member of %s", ErrUnknownCode, raw, e.name)
	}
	return c, nil
}

// String returns the enum's name.
func (e *Enum[E]) String() string { return e.name }
