package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is a fixed-width primitive wire type.
//
// Kind also implements Serializer[any] so runtime-described layouts (catalogue
// files, the console) can encode values whose Go type is only known at run time.
type Kind uint8

const (
	KindU8 Kind = iota + 1
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindBool
)

var kindNames = map[Kind]string{
	KindU8:   "u8",
	KindU16:  "u16",
	KindU32:  "u32",
	KindU64:  "u64",
	KindI8:   "i8",
	KindI16:  "i16",
	KindI32:  "i32",
	KindI64:  "i64",
	KindF32:  "f32",
	KindF64:  "f64",
	KindBool: "bool",
}

// ParseKind parses a kind name such as "u8" or "f32".
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrUnsupportedType, s)
}

// String returns the short kind name.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Size returns the encoded width in bytes.
func (k Kind) Size() int {
	switch k {
	case KindU8, KindI8, KindBool:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	default:
		return 0
	}
}

// Unsigned reports whether k is an unsigned integer kind.
func (k Kind) Unsigned() bool {
	return k >= KindU8 && k <= KindU64
}

// Signed reports whether k is a signed integer kind.
func (k Kind) Signed() bool {
	return k >= KindI8 && k <= KindI64
}

// Float reports whether k is a floating point kind.
func (k Kind) Float() bool {
	return k == KindF32 || k == KindF64
}

// MaxUnsigned returns the largest value an unsigned kind can hold.
func (k Kind) MaxUnsigned() uint64 {
	if !k.Unsigned() {
		return 0
	}
	return math.MaxUint64 >> (64 - 8*k.Size())
}

// Append encodes v as k. Integers of any Go width are accepted as long as the
// value fits; bool is accepted by integer kinds as 0 or 1.
func (k Kind) Append(dst []byte, v any) ([]byte, error) {
	switch {
	case k.Unsigned():
		u, err := k.unsignedOf(v)
		if err != nil {
			return dst, err
		}
		return appendUint(dst, k.Size(), u), nil
	case k.Signed():
		i, err := k.signedOf(v)
		if err != nil {
			return dst, err
		}
		return appendUint(dst, k.Size(), uint64(i)), nil
	case k == KindF32:
		f, err := k.floatOf(v)
		if err != nil {
			return dst, err
		}
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return dst, fmt.Errorf("%w: %v does not fit f32", ErrRange, f)
		}
		// A float32 input keeps its exact bits (NaN payloads included).
		if f32, ok := v.(float32); ok {
			return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f32)), nil
		}
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(f))), nil
	case k == KindF64:
		f, err := k.floatOf(v)
		if err != nil {
			return dst, err
		}
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(f)), nil
	case k == KindBool:
		b, err := k.boolOf(v)
		if err != nil {
			return dst, err
		}
		if b {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	}
	return dst, fmt.Errorf("%w: %s", ErrUnsupportedType, k)
}

// Decode decodes exactly Size bytes into the natural Go type of k:
// uint8..uint64, int8..int64, float32, float64 or bool.
// Any non-zero byte decodes as true for bool.
func (k Kind) Decode(b []byte) (any, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, k)
	}
	if err := checkLen(b, k.Size()); err != nil {
		return nil, err
	}
	switch k {
	case KindU8:
		return b[0], nil
	case KindU16:
		return binary.LittleEndian.Uint16(b), nil
	case KindU32:
		return binary.LittleEndian.Uint32(b), nil
	case KindU64:
		return binary.LittleEndian.Uint64(b), nil
	case KindI8:
		return int8(b[0]), nil
	case KindI16:
		return int16(binary.LittleEndian.Uint16(b)), nil
	case KindI32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case KindI64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	case KindF32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	case KindF64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	default:
		return b[0] != 0, nil
	}
}

// DecodeUint decodes an unsigned kind straight to uint64.
func (k Kind) DecodeUint(b []byte) (uint64, error) {
	if !k.Unsigned() {
		return 0, fmt.Errorf("%w: %s is not unsigned", ErrUnsupportedType, k)
	}
	if err := checkLen(b, k.Size()); err != nil {
		return 0, err
	}
	var u uint64
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return u, nil
}

// ParseValue parses the textual form of a value of kind k, as typed on a
// console or written in a catalogue. Integers accept Go prefixes (0x, 0b, 0o).
func (k Kind) ParseValue(s string) (any, error) {
	s = strings.TrimSpace(s)
	var v any
	var err error
	switch {
	case k.Unsigned():
		v, err = strconv.ParseUint(s, 0, 64)
	case k.Signed():
		v, err = strconv.ParseInt(s, 0, 64)
	case k.Float():
		v, err = strconv.ParseFloat(s, 64)
	case k == KindBool:
		v, err = strconv.ParseBool(s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, k)
	}
	if err != nil {
		return nil, fmt.Errorf("codec: parse %s %q: %w", k, s, err)
	}
	// Round-trip through the encoder for the range check and the natural type.
	b, err := k.Append(nil, v)
	if err != nil {
		return nil, err
	}
	return k.Decode(b)
}

func appendUint(dst []byte, size int, u uint64) []byte {
	for i := range size {
		dst = append(dst, byte(u>>(8*i)))
	}
	return dst
}

// integerOf splits an integer-like value into sign and magnitude pieces.
func integerOf(v any) (i int64, u uint64, unsigned bool, ok bool) {
	switch x := v.(type) {
	case int:
		return int64(x), 0, false, true
	case int8:
		return int64(x), 0, false, true
	case int16:
		return int64(x), 0, false, true
	case int32:
		return int64(x), 0, false, true
	case int64:
		return x, 0, false, true
	case uint:
		return 0, uint64(x), true, true
	case uint8:
		return 0, uint64(x), true, true
	case uint16:
		return 0, uint64(x), true, true
	case uint32:
		return 0, uint64(x), true, true
	case uint64:
		return 0, x, true, true
	case uintptr:
		return 0, uint64(x), true, true
	case bool:
		if x {
			return 0, 1, true, true
		}
		return 0, 0, true, true
	}
	return 0, 0, false, false
}

func (k Kind) unsignedOf(v any) (uint64, error) {
	i, u, unsigned, ok := integerOf(v)
	if !ok {
		return 0, fmt.Errorf("%w: %T for %s", ErrUnsupportedType, v, k)
	}
	if !unsigned {
		if i < 0 {
			return 0, fmt.Errorf("%w: %d does not fit %s", ErrRange, i, k)
		}
		u = uint64(i)
	}
	if u > k.MaxUnsigned() {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrRange, u, k)
	}
	return u, nil
}

func (k Kind) signedOf(v any) (int64, error) {
	i, u, unsigned, ok := integerOf(v)
	if !ok {
		return 0, fmt.Errorf("%w: %T for %s", ErrUnsupportedType, v, k)
	}
	if unsigned {
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d does not fit %s", ErrRange, u, k)
		}
		i = int64(u)
	}
	bits := 8 * k.Size()
	lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	if bits == 64 {
		lo, hi = math.MinInt64, math.MaxInt64
	}
	if i < lo || i > hi {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrRange, i, k)
	}
	return i, nil
}

func (k Kind) floatOf(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	}
	i, u, unsigned, ok := integerOf(v)
	if !ok {
		return 0, fmt.Errorf("%w: %T for %s", ErrUnsupportedType, v, k)
	}
	if unsigned {
		return float64(u), nil
	}
	return float64(i), nil
}

func (k Kind) boolOf(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	i, u, unsigned, ok := integerOf(v)
	if !ok {
		return false, fmt.Errorf("%w: %T for %s", ErrUnsupportedType, v, k)
	}
	if !unsigned {
		if i < 0 {
			return false, fmt.Errorf("%w: %d is not a bool", ErrRange, i)
		}
		u = uint64(i)
	}
	if u > 1 {
		return false, fmt.Errorf("%w: %d is not a bool", ErrRange, u)
	}
	return u == 1, nil
}

// Compile-time interface satisfaction check.
var _ Serializer[any] = KindU8
