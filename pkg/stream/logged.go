package stream

import (
	"io"
	"time"

	"github.com/serialcmd/serialcmd-go/pkg/log"
)

// Logged wraps a Stream and reports every transfer as a log.FrameEvent.
type Logged struct {
	inner    Stream
	logger   log.Logger
	connID   string
	device   string
	endpoint string
	now      func() time.Time
}

// NewLogged wraps inner. A nil logger disables capture.
func NewLogged(inner Stream, logger log.Logger, connID string) *Logged {
	return &Logged{
		inner:  inner,
		logger: log.OrNoop(logger),
		connID: connID,
		now:    time.Now,
	}
}

// SetDevice records the catalogue name and peer address on emitted events.
func (l *Logged) SetDevice(device, endpoint string) {
	l.device = device
	l.endpoint = endpoint
}

// Read implements io.Reader.
func (l *Logged) Read(p []byte) (int, error) {
	n, err := l.inner.Read(p)
	if n > 0 {
		l.emit(log.DirectionIn, p[:n])
	}
	if err != nil && err != io.EOF {
		l.emitError("read", err)
	}
	return n, err
}

// Write implements io.Writer.
func (l *Logged) Write(p []byte) (int, error) {
	n, err := l.inner.Write(p)
	if n > 0 {
		l.emit(log.DirectionOut, p[:n])
	}
	if err != nil {
		l.emitError("write", err)
	}
	return n, err
}

// Close closes the inner stream if it is closable.
func (l *Logged) Close() error {
	if c, ok := l.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (l *Logged) emit(dir log.Direction, p []byte) {
	l.logger.Log(log.Event{
		Timestamp:    l.now(),
		ConnectionID: l.connID,
		Direction:    dir,
		Layer:        log.LayerStream,
		Category:     log.CategoryExchange,
		Device:       l.device,
		Endpoint:     l.endpoint,
		Frame:        log.NewFrameEvent(p),
	})
}

func (l *Logged) emitError(op string, err error) {
	l.logger.Log(log.Event{
		Timestamp:    l.now(),
		ConnectionID: l.connID,
		Layer:        log.LayerStream,
		Category:     log.CategoryError,
		Device:       l.device,
		Endpoint:     l.endpoint,
		Error: &log.ErrorEventData{
			Layer:   log.LayerStream,
			Message: err.Error(),
			Context: op,
		},
	})
}

// Compile-time interface satisfaction check.
var _ Conn = (*Logged)(nil)
