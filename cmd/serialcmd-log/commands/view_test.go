package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/serialcmd/serialcmd-go/pkg/log"
)

func TestFormatFrameEvent(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp:    ts,
		ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
		Direction:    log.DirectionOut,
		Layer:        log.LayerStream,
		Category:     log.CategoryExchange,
		Endpoint:     "/dev/ttyACM0",
		Frame:        &log.FrameEvent{Size: 3, Data: []byte{0x00, 0x0d, 0x01}},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"2026-01-28T10:15:32.123456Z",
		"[conn:abc12345]",
		"OUT",
		"STREAM Frame",
		"@ /dev/ttyACM0",
		"Size: 3 bytes",
		"Data: 000d01",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "truncated") {
		t.Errorf("unexpected truncation marker:\n%s", output)
	}
}

func TestFormatTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, log.Event{Frame: &log.FrameEvent{Size: 9000, Data: []byte{1}, Truncated: true}})
	if !strings.Contains(buf.String(), "(truncated)") {
		t.Errorf("expected truncation marker, got:\n%s", buf.String())
	}
}

func TestFormatExchangeEvents(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := exchange(ts, "conn-1", "digitalRead", 2, 13, 1, 0, "ok", 1500*time.Microsecond)

	var buf bytes.Buffer
	formatEvent(&buf, events[0])
	output := buf.String()
	if !strings.Contains(output, "COMMAND REQUEST") {
		t.Errorf("expected request label, got:\n%s", output)
	}
	if !strings.Contains(output, "Command: digitalRead (code 2)") {
		t.Errorf("expected command line, got:\n%s", output)
	}
	if !strings.Contains(output, "Args: 13") {
		t.Errorf("expected args, got:\n%s", output)
	}
	if !strings.Contains(output, "Device: arduino") {
		t.Errorf("expected device, got:\n%s", output)
	}

	buf.Reset()
	formatEvent(&buf, events[1])
	output = buf.String()
	for _, want := range []string{"IN", "REPLY", "Status: ok (0)", "Payload: 1", "Duration: 1.500ms"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestFormatStateAndError(t *testing.T) {
	code := uint64(0x7f)
	var buf bytes.Buffer
	formatEvent(&buf, log.Event{
		Layer:    log.LayerProtocol,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityProtocol,
			OldState: "SETUP",
			NewState: "ACTIVE",
			Reason:   "startup 1",
		},
	})
	formatEvent(&buf, log.Event{
		Layer:    log.LayerCommand,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerCommand,
			Message: "protocol violation",
			Code:    &code,
			Context: "digitalRead",
		},
	})
	output := buf.String()
	for _, want := range []string{"SETUP -> ACTIVE", "Reason: startup 1", "Message: protocol violation", "Code: 0x7F", "Context: digitalRead"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{1500 * time.Microsecond, "1.500ms"},
		{2500 * time.Millisecond, "2.500s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRunViewFiltersByCommand(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	var events []log.Event
	events = append(events, exchange(ts, "conn-1", "millis", 3, nil, uint32(1000), 0, "ok", time.Millisecond)...)
	events = append(events, exchange(ts, "conn-1", "digitalRead", 2, 13, 0, 0, "ok", time.Millisecond)...)
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{Command: "millis"}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()
	if got := strings.Count(output, "Command: millis"); got != 2 {
		t.Errorf("expected 2 millis events, got %d:\n%s", got, output)
	}
	if strings.Contains(output, "digitalRead") {
		t.Errorf("digitalRead should be filtered out:\n%s", output)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	if err := RunView("/nonexistent/file.sclog", log.Filter{}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayerFlag("Stream"); err != nil || l != log.LayerStream {
		t.Errorf("ParseLayerFlag(Stream) = %v, %v", l, err)
	}
	if _, err := ParseLayerFlag("wire"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if d, err := ParseDirectionFlag("OUT"); err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirectionFlag(OUT) = %v, %v", d, err)
	}
	if _, err := ParseDirectionFlag("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if c, err := ParseCategoryFlag("error"); err != nil || c != log.CategoryError {
		t.Errorf("ParseCategoryFlag(error) = %v, %v", c, err)
	}
	if _, err := ParseCategoryFlag("message"); err == nil {
		t.Error("expected error for unknown category")
	}
}
