package command

import (
	"errors"
	"fmt"

	"github.com/serialcmd/serialcmd-go/pkg/status"
)

// ErrNoResult is returned by AsError on the zero Result, which is what a
// failed Send returns alongside its error.
var ErrNoResult = errors.New("command: no result")

// Result holds exactly one of a decoded return value or a non-ok status.
// The zero Result holds neither: IsOk and IsErr both report false.
type Result[T any, E status.Code] struct {
	value  T
	code   E
	name   string
	ok     bool
	failed bool
}

// Ok returns a successful result.
func Ok[T any, E status.Code](v T) Result[T, E] {
	return Result[T, E]{value: v, ok: true}
}

// Err returns a failed result carrying a device status.
func Err[T any, E status.Code](code E) Result[T, E] {
	return Result[T, E]{code: code, failed: true}
}

func errNamed[T any, E status.Code](code E, name string) Result[T, E] {
	return Result[T, E]{code: code, name: name, failed: true}
}

// IsOk reports whether the device answered with its ok status.
func (r Result[T, E]) IsOk() bool { return r.ok }

// IsErr reports whether the device answered with a non-ok status.
func (r Result[T, E]) IsErr() bool { return r.failed }

// Value returns the decoded value and whether the result is ok.
func (r Result[T, E]) Value() (T, bool) { return r.value, r.ok }

// Status returns the device status and whether the result is an error.
func (r Result[T, E]) Status() (E, bool) { return r.code, r.failed }

// StatusName returns the member name of an error status, if known.
func (r Result[T, E]) StatusName() string { return r.name }

// Unwrap returns the value. It panics on an error result.
func (r Result[T, E]) Unwrap() T {
	if !r.ok {
		panic(fmt.Sprintf("command: Unwrap on %s", r))
	}
	return r.value
}

// UnwrapOr returns the value, or def on an error result.
func (r Result[T, E]) UnwrapOr(def T) T {
	if !r.ok {
		return def
	}
	return r.value
}

// AsError returns nil for ok results, a *StatusError for error results and
// ErrNoResult for the zero Result.
func (r Result[T, E]) AsError() error {
	switch {
	case r.ok:
		return nil
	case r.failed:
		return &StatusError[E]{Code: r.code, Name: r.name}
	}
	return ErrNoResult
}

// String returns "Ok(value)", "Err(name)" or "Invalid" for the zero Result.
func (r Result[T, E]) String() string {
	if r.ok {
		return fmt.Sprintf("Ok(%v)", r.value)
	}
	if !r.failed {
		return "Invalid"
	}
	if r.name != "" {
		return fmt.Sprintf("Err(%s)", r.name)
	}
	return fmt.Sprintf("Err(%d)", uint64(r.code))
}
