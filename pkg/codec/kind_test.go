package codec

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestKindSizesAndNames(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		size int
	}{
		{KindU8, "u8", 1},
		{KindU16, "u16", 2},
		{KindU32, "u32", 4},
		{KindU64, "u64", 8},
		{KindI8, "i8", 1},
		{KindI16, "i16", 2},
		{KindI32, "i32", 4},
		{KindI64, "i64", 8},
		{KindF32, "f32", 4},
		{KindF64, "f64", 8},
		{KindBool, "bool", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.size, tt.kind.Size())
			parsed, err := ParseKind(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, parsed)
		})
	}
}

func TestParseKindUnknown(t *testing.T) {
	_, err := ParseKind("u24")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.False(t, Kind(99).Valid())
}

func TestKindEncoding(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
		hex  string
		out  any
	}{
		{"u8", KindU8, 0xAB, "ab", uint8(0xAB)},
		{"u16", KindU16, 0x1234, "3412", uint16(0x1234)},
		{"u32", KindU32, uint32(0xDEADBEEF), "efbeadde", uint32(0xDEADBEEF)},
		{"u64 max", KindU64, uint64(math.MaxUint64), "ffffffffffffffff", uint64(math.MaxUint64)},
		{"i8 min", KindI8, -128, "80", int8(-128)},
		{"i16", KindI16, -2, "feff", int16(-2)},
		{"i32", KindI32, int32(-1), "ffffffff", int32(-1)},
		{"i64 min", KindI64, int64(math.MinInt64), "0000000000000080", int64(math.MinInt64)},
		{"f32 one", KindF32, float32(1), "0000803f", float32(1)},
		{"f64 minus two", KindF64, -2.0, "00000000000000c0", -2.0},
		{"bool true", KindBool, true, "01", true},
		{"bool from int", KindBool, 0, "00", false},
		{"u8 from bool", KindU8, true, "01", uint8(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.kind.Append(nil, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.hex, hex.EncodeToString(b))

			v, err := tt.kind.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, tt.out, v)
		})
	}
}

func TestKindRange(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   any
	}{
		{"u8 overflow", KindU8, 300},
		{"u8 negative", KindU8, -1},
		{"u16 overflow", KindU16, uint32(70000)},
		{"i8 overflow", KindI8, 128},
		{"i8 underflow", KindI8, -129},
		{"i64 from huge uint", KindI64, uint64(math.MaxUint64)},
		{"f32 overflow", KindF32, 1e39},
		{"bool from 2", KindBool, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := []byte{0x55}
			out, err := tt.kind.Append(dst, tt.in)
			assert.ErrorIs(t, err, ErrRange)
			assert.Equal(t, []byte{0x55}, out)
		})
	}
}

func TestKindUnsupportedValue(t *testing.T) {
	_, err := KindU8.Append(nil, "1")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = KindF64.Append(nil, struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = Kind(0).Append(nil, 1)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestKindDecodeWrongLength(t *testing.T) {
	_, err := KindU32.Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortBuffer)
	_, err = KindU8.Decode([]byte{1, 2})
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestKindBoolDecodeNonZero(t *testing.T) {
	v, err := KindBool.Decode([]byte{0x7F})
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestKindFloatSpecials(t *testing.T) {
	nan := math.Float32frombits(0x7FC00001)
	b, err := KindF32.Append(nil, nan)
	require.NoError(t, err)
	v, err := KindF32.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7FC00001), math.Float32bits(v.(float32)))

	b, err = KindF64.Append(nil, math.Inf(-1))
	require.NoError(t, err)
	v, err = KindF64.Decode(b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.(float64), -1))

	b, err = KindF32.Append(nil, math.Inf(1))
	require.NoError(t, err)
	assert.Equal(t, "0000807f", hex.EncodeToString(b))
}

func TestKindDecodeUint(t *testing.T) {
	u, err := KindU16.DecodeUint(mustHex(t, "3412"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), u)

	_, err = KindI16.DecodeUint(mustHex(t, "3412"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = KindU16.DecodeUint(mustHex(t, "34"))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestKindMaxUnsigned(t *testing.T) {
	assert.Equal(t, uint64(0xFF), KindU8.MaxUnsigned())
	assert.Equal(t, uint64(0xFFFF), KindU16.MaxUnsigned())
	assert.Equal(t, uint64(0xFFFFFFFF), KindU32.MaxUnsigned())
	assert.Equal(t, uint64(math.MaxUint64), KindU64.MaxUnsigned())
	assert.Zero(t, KindI8.MaxUnsigned())
}

func TestKindParseValue(t *testing.T) {
	tests := []struct {
		kind Kind
		in   string
		want any
	}{
		{KindU8, "13", uint8(13)},
		{KindU8, "0x0d", uint8(13)},
		{KindI16, "-300", int16(-300)},
		{KindF32, "1.5", float32(1.5)},
		{KindF64, "-0.25", -0.25},
		{KindBool, "true", true},
		{KindBool, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.in, func(t *testing.T) {
			v, err := tt.kind.ParseValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	_, err := KindU8.ParseValue("256")
	assert.ErrorIs(t, err, ErrRange)
	_, err = KindU8.ParseValue("-1")
	assert.Error(t, err)
	_, err = KindI32.ParseValue("abc")
	assert.Error(t, err)
}
