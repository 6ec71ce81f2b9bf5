package stream

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultDialTimeout bounds Dial when ctx carries no deadline.
const DefaultDialTimeout = 10 * time.Second

// TCPConfig configures a TCP link, typically to a serial-to-network bridge.
type TCPConfig struct {
	// Address is host:port.
	Address string

	// DialTimeout bounds connection setup (default: DefaultDialTimeout).
	DialTimeout time.Duration

	// ReadTimeout, when non-zero, is applied as a fresh deadline before each read.
	ReadTimeout time.Duration
}

// Dial connects to a device over TCP.
func Dial(ctx context.Context, cfg TCPConfig) (Conn, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("stream: dial %s: %w", cfg.Address, err)
	}
	if cfg.ReadTimeout > 0 {
		return &deadlineConn{Conn: conn, timeout: cfg.ReadTimeout}, nil
	}
	return conn, nil
}

// deadlineConn refreshes the read deadline before every read.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
