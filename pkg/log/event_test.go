package log

import (
	"bytes"
	"testing"
)

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{Direction(9).String(), "UNKNOWN"},
		{LayerStream.String(), "STREAM"},
		{LayerCommand.String(), "COMMAND"},
		{LayerProtocol.String(), "PROTOCOL"},
		{Layer(9).String(), "UNKNOWN"},
		{CategoryExchange.String(), "EXCHANGE"},
		{CategoryState.String(), "STATE"},
		{CategoryError.String(), "ERROR"},
		{Category(1).String(), "UNKNOWN"},
		{ExchangeRequest.String(), "REQUEST"},
		{ExchangeReply.String(), "REPLY"},
		{StateEntityLink.String(), "LINK"},
		{StateEntityProtocol.String(), "PROTOCOL"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestNewFrameEventCopies(t *testing.T) {
	src := []byte{0x01, 0x10}
	fe := NewFrameEvent(src)
	src[0] = 0xFF

	if fe.Size != 2 {
		t.Errorf("Size: got %d, want 2", fe.Size)
	}
	if !bytes.Equal(fe.Data, []byte{0x01, 0x10}) {
		t.Errorf("Data aliases caller buffer: %X", fe.Data)
	}
	if fe.Truncated {
		t.Error("small frame marked truncated")
	}
}

func TestNewFrameEventTruncates(t *testing.T) {
	fe := NewFrameEvent(make([]byte, MaxFrameData+10))
	if fe.Size != MaxFrameData+10 {
		t.Errorf("Size: got %d", fe.Size)
	}
	if len(fe.Data) != MaxFrameData || !fe.Truncated {
		t.Errorf("expected truncation to %d bytes, got %d (truncated=%v)", MaxFrameData, len(fe.Data), fe.Truncated)
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	m := NewMultiLogger()
	if OrNoop(m) != Logger(m) {
		t.Error("OrNoop should return non-nil loggers unchanged")
	}
}
