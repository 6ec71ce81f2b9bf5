package catalog

import (
	"context"
	"errors"

	"github.com/serialcmd/serialcmd-go/pkg/stream"
	"github.com/serialcmd/serialcmd-go/pkg/stream/serialport"
)

// ErrNoConnection is returned by Open when the catalogue names no link.
var ErrNoConnection = errors.New("catalog: no connection configured")

// Open connects to the device described by the connection block and returns
// the stream plus a printable endpoint.
func (conn Connection) Open(ctx context.Context) (stream.Conn, string, error) {
	switch {
	case conn.Serial != nil:
		p, err := serialport.Open(serialport.Config{
			Device:      conn.Serial.Device,
			Baud:        conn.Serial.Baud,
			ReadTimeout: conn.Serial.ReadTimeout,
		})
		if err != nil {
			return nil, "", err
		}
		// Drop bytes left over from before the device reset.
		if err := p.Flush(); err != nil {
			_ = p.Close()
			return nil, "", err
		}
		return p, conn.Serial.Device, nil
	case conn.TCP != nil:
		c, err := stream.Dial(ctx, stream.TCPConfig{
			Address:     conn.TCP.Address,
			DialTimeout: conn.TCP.DialTimeout,
			ReadTimeout: conn.TCP.ReadTimeout,
		})
		if err != nil {
			return nil, "", err
		}
		return c, conn.TCP.Address, nil
	}
	return nil, "", ErrNoConnection
}
