package stream

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serialcmd/serialcmd-go/pkg/log"
)

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func TestLoggedEmitsFrames(t *testing.T) {
	capture := &captureLogger{}
	inner := NewMock([]byte{0x00, 0xAB})
	l := NewLogged(inner, capture, "conn-1")
	l.SetDevice("arduino", "/dev/ttyACM0")
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	_, err := l.Write([]byte{0x01, 0x10})
	require.NoError(t, err)
	b, err := ReadExactly(l, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xAB}, b)

	require.Len(t, capture.events, 2)
	out, in := capture.events[0], capture.events[1]

	assert.Equal(t, log.DirectionOut, out.Direction)
	assert.Equal(t, log.LayerStream, out.Layer)
	assert.Equal(t, []byte{0x01, 0x10}, out.Frame.Data)
	assert.Equal(t, "conn-1", out.ConnectionID)
	assert.Equal(t, "arduino", out.Device)
	assert.Equal(t, "/dev/ttyACM0", out.Endpoint)
	assert.Equal(t, fixed, out.Timestamp)

	assert.Equal(t, log.DirectionIn, in.Direction)
	assert.Equal(t, []byte{0x00, 0xAB}, in.Frame.Data)
}

func TestLoggedEOFIsNotAnError(t *testing.T) {
	capture := &captureLogger{}
	l := NewLogged(NewMock(nil), capture, "c")

	_, err := l.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, capture.events)
}

type failingStream struct{}

func (failingStream) Read([]byte) (int, error)  { return 0, errors.New("framing error") }
func (failingStream) Write([]byte) (int, error) { return 0, errors.New("port gone") }

func TestLoggedEmitsErrors(t *testing.T) {
	capture := &captureLogger{}
	l := NewLogged(failingStream{}, capture, "c")

	_, err := l.Write([]byte{1})
	assert.Error(t, err)
	_, err = l.Read(make([]byte, 1))
	assert.Error(t, err)

	require.Len(t, capture.events, 2)
	assert.Equal(t, log.CategoryError, capture.events[0].Category)
	assert.Equal(t, "port gone", capture.events[0].Error.Message)
	assert.Equal(t, "write", capture.events[0].Error.Context)
	assert.Equal(t, "read", capture.events[1].Error.Context)
}

func TestLoggedNilLoggerAndClose(t *testing.T) {
	m := NewMock(nil)
	l := NewLogged(m, nil, "c")
	_, err := l.Write([]byte{1})
	require.NoError(t, err)
	require.NoError(t, l.Close())
	_, err = m.Write([]byte{1})
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	assert.NoError(t, NewLogged(failingStream{}, nil, "c").Close())
}
