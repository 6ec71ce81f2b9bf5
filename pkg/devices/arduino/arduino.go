// Package arduino is a typed binding for the reference Arduino firmware,
// which exposes a handful of core functions over the serial port.
package arduino

import (
	_ "embed"
	"log/slog"

	"github.com/serialcmd/serialcmd-go/pkg/catalog"
	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/command"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/protocol"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// Error is the status the firmware answers with.
type Error uint8

const (
	ErrorOK   Error = 0x00
	ErrorFail Error = 0x01
)

// Errors is the firmware's status enum.
var Errors = status.MustEnum("ArduinoError", ErrorOK,
	status.Member[Error]{Code: ErrorOK, Name: "ok"},
	status.Member[Error]{Code: ErrorFail, Name: "fail"},
)

// Pin modes and well-known pins, as in Arduino.h.
const (
	INPUT        uint8 = 0x0
	OUTPUT       uint8 = 0x1
	INPUT_PULLUP uint8 = 0x2

	LOW  uint8 = 0x0
	HIGH uint8 = 0x1

	LED_BUILTIN uint8 = 13
)

// PinModeArgs is the pinMode request.
type PinModeArgs struct {
	Pin  uint8
	Mode uint8
}

// DigitalWriteArgs is the digitalWrite request.
type DigitalWriteArgs struct {
	Pin   uint8
	Level uint8
}

var (
	pinModeArgs      = codec.MustRecord[PinModeArgs]()
	digitalWriteArgs = codec.MustRecord[DigitalWriteArgs]()
)

//go:embed arduino.yaml
var catalogYAML []byte

// Catalog returns the catalogue describing the same commands, for tools that
// work from YAML.
func Catalog() (*catalog.Catalog, error) {
	return catalog.Parse(catalogYAML)
}

// Options configures New.
type Options struct {
	ConnectionID   string
	Logger         *slog.Logger
	ProtocolLogger log.Logger
}

// Protocol talks to one board.
type Protocol struct {
	p *protocol.Protocol[uint8, Error]

	pinMode      *protocol.Handle[PinModeArgs, codec.None, Error]
	digitalWrite *protocol.Handle[DigitalWriteArgs, codec.None, Error]
	digitalRead  *protocol.Handle[uint8, uint8, Error]
	millis       *protocol.Handle[codec.None, uint32, Error]
	delay        *protocol.Handle[uint32, codec.None, Error]
}

// New registers the board's commands on s. Call Begin before anything else.
func New(s stream.Stream, opts Options) (*Protocol, error) {
	p, err := protocol.New(protocol.Config[uint8, Error]{
		Stream:         s,
		CodeKind:       codec.KindU8,
		Policy:         command.MustRespondPolicy(Errors, codec.KindU8),
		Startup:        codec.U8,
		Name:           "arduino",
		ConnectionID:   opts.ConnectionID,
		Logger:         opts.Logger,
		ProtocolLogger: opts.ProtocolLogger,
	})
	if err != nil {
		return nil, err
	}
	return &Protocol{
		p:            p,
		pinMode:      protocol.MustAdd[PinModeArgs, codec.None](p, "pinMode", pinModeArgs, codec.Void),
		digitalWrite: protocol.MustAdd[DigitalWriteArgs, codec.None](p, "digitalWrite", digitalWriteArgs, codec.Void),
		digitalRead:  protocol.MustAdd[uint8, uint8](p, "digitalRead", codec.U8, codec.U8),
		millis:       protocol.MustAdd[codec.None, uint32](p, "millis", codec.Void, codec.U32),
		delay:        protocol.MustAdd[uint32, codec.None](p, "delay", codec.U32, codec.Void),
	}, nil
}

// Protocol returns the underlying protocol.
func (a *Protocol) Protocol() *protocol.Protocol[uint8, Error] { return a.p }

// Begin reads the startup byte. The reference firmware sends a non-zero
// value once it is ready.
func (a *Protocol) Begin() (uint8, error) { return a.p.Begin() }

// PinMode sets the mode of pin.
func (a *Protocol) PinMode(pin, mode uint8) (command.Result[codec.None, Error], error) {
	return a.pinMode.Send(PinModeArgs{Pin: pin, Mode: mode})
}

// DigitalWrite drives pin HIGH when high is set, LOW otherwise.
func (a *Protocol) DigitalWrite(pin uint8, high bool) (command.Result[codec.None, Error], error) {
	level := LOW
	if high {
		level = HIGH
	}
	return a.digitalWrite.Send(DigitalWriteArgs{Pin: pin, Level: level})
}

// DigitalRead reads the level of pin.
func (a *Protocol) DigitalRead(pin uint8) (command.Result[uint8, Error], error) {
	return a.digitalRead.Send(pin)
}

// Millis returns the board uptime in milliseconds.
func (a *Protocol) Millis() (command.Result[uint32, Error], error) {
	return a.millis.Send(codec.None{})
}

// Delay makes the board wait ms milliseconds before answering.
func (a *Protocol) Delay(ms uint32) (command.Result[codec.None, Error], error) {
	return a.delay.Send(ms)
}
