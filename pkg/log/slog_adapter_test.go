package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logToJSON(t *testing.T, ev Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(ev)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterFrame(t *testing.T) {
	entry := logToJSON(t, Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Direction:    DirectionOut,
		Layer:        LayerStream,
		Frame:        NewFrameEvent([]byte{0x01, 0x10}),
	})

	if entry["msg"] != "protocol" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v", entry["level"])
	}
	if entry["direction"] != "OUT" || entry["layer"] != "STREAM" {
		t.Errorf("header attrs: %v", entry)
	}
	if entry["bytes"] != "0110" {
		t.Errorf("bytes: got %v, want 0110", entry["bytes"])
	}
}

func TestSlogAdapterExchangeReply(t *testing.T) {
	status := uint64(0)
	entry := logToJSON(t, Event{
		ConnectionID: "conn-1",
		Device:       "arduino",
		Layer:        LayerCommand,
		Exchange: &ExchangeEvent{
			Type:       ExchangeReply,
			Code:       3,
			Command:    "millis",
			Status:     &status,
			StatusName: "ok",
			Payload:    uint32(1234),
		},
	})

	if entry["command"] != "millis" || entry["type"] != "REPLY" {
		t.Errorf("exchange attrs: %v", entry)
	}
	if entry["status_name"] != "ok" {
		t.Errorf("status_name: got %v", entry["status_name"])
	}
	if entry["payload"] != float64(1234) {
		t.Errorf("payload: got %v", entry["payload"])
	}
	if entry["device"] != "arduino" {
		t.Errorf("device: got %v", entry["device"])
	}
}

func TestSlogAdapterError(t *testing.T) {
	code := uint64(7)
	entry := logToJSON(t, Event{
		Category: CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerCommand,
			Message: "unknown status",
			Code:    &code,
			Context: "digitalRead",
		},
	})
	if entry["error_msg"] != "unknown status" || entry["error_code"] != float64(7) {
		t.Errorf("error attrs: %v", entry)
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{Frame: &FrameEvent{Size: 1}})
	if buf.Len() != 0 {
		t.Errorf("debug event leaked at info level: %q", buf.String())
	}
}
