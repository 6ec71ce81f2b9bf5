package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/serialcmd/serialcmd-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+log.FileExtension)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// exchange returns the request and reply events of one call.
func exchange(ts time.Time, connID, command string, code uint64, args, payload any, status uint64, statusName string, rtt time.Duration) []log.Event {
	st := status
	reply := &log.ExchangeEvent{
		Type:       log.ExchangeReply,
		Code:       code,
		Command:    command,
		Status:     &st,
		StatusName: statusName,
		Payload:    payload,
		RoundTrip:  &rtt,
		Failed:     status != 0,
	}
	return []log.Event{
		{
			Timestamp: ts, ConnectionID: connID, Device: "arduino",
			Direction: log.DirectionOut, Layer: log.LayerCommand, Category: log.CategoryExchange,
			Exchange: &log.ExchangeEvent{Type: log.ExchangeRequest, Code: code, Command: command, Args: args},
		},
		{
			Timestamp: ts.Add(rtt), ConnectionID: connID, Device: "arduino",
			Direction: log.DirectionIn, Layer: log.LayerCommand, Category: log.CategoryExchange,
			Exchange: reply,
		},
	}
}
