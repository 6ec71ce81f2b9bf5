// Package serialport opens native serial ports as command streams.
package serialport

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"

	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// DefaultBaud is the rate used when Config.Baud is zero.
const DefaultBaud = 115200

// ErrNoDevice is returned when Config.Device is empty.
var ErrNoDevice = errors.New("serialport: no device")

// Config holds serial port settings. Framing is 8N1.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM3").
	Device string

	// Baud rate (default: DefaultBaud).
	Baud int

	// ReadTimeout bounds each read; zero blocks until data arrives.
	// A timed out read returns no data, which surfaces as a short read
	// on the exchange in progress.
	ReadTimeout time.Duration
}

// Port is an open serial port.
type Port struct {
	port   *serial.Port
	device string
}

// Open opens the port described by cfg.
func Open(cfg Config) (*Port, error) {
	if cfg.Device == "" {
		return nil, ErrNoDevice
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	p, err := serial.OpenPort(toNative(cfg))
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", cfg.Device, err)
	}
	return &Port{port: p, device: cfg.Device}, nil
}

func toNative(cfg Config) *serial.Config {
	return &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        serial.DefaultSize,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
}

// Device returns the device path.
func (p *Port) Device() string { return p.device }

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) { return p.port.Read(b) }

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) { return p.port.Write(b) }

// Flush discards unread input and unsent output, e.g. bytes left over from
// a previous session before Begin.
func (p *Port) Flush() error { return p.port.Flush() }

// Close closes the port.
func (p *Port) Close() error { return p.port.Close() }

// Compile-time interface satisfaction check.
var _ stream.Conn = (*Port)(nil)
