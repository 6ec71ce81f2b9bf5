package arduino

import (
	"log/slog"
	"sync"
	"time"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/device"
)

// NumPins is the number of digital pins on the simulated board (an Uno).
const NumPins = 20

// Board simulates the reference firmware: pin modes and levels plus a clock.
type Board struct {
	mu     sync.Mutex
	modes  [NumPins]uint8
	levels [NumPins]uint8

	start time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithClock replaces the wall clock and sleep used by millis and delay.
func WithClock(now func() time.Time, sleep func(time.Duration)) BoardOption {
	return func(b *Board) {
		b.now = now
		b.sleep = sleep
	}
}

// NewBoard returns a board with every pin in INPUT mode, driven LOW.
func NewBoard(opts ...BoardOption) *Board {
	b := &Board{now: time.Now, sleep: time.Sleep}
	for _, o := range opts {
		o(b)
	}
	b.start = b.now()
	return b
}

// Level returns the level of pin as last written or read.
func (b *Board) Level(pin uint8) uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(pin) >= NumPins {
		return LOW
	}
	return b.levels[pin]
}

// SetInput drives an input pin from outside, e.g. a button in a test.
func (b *Board) SetInput(pin, level uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(pin) < NumPins && b.modes[pin] != OUTPUT {
		b.levels[pin] = level
	}
}

// Device returns a device serving the board with the given startup byte.
func (b *Board) Device(startup uint8, logger *slog.Logger) (*device.Device[Error], error) {
	d, err := device.New(device.Config[Error]{
		Enum:    Errors,
		Startup: []byte{startup},
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	if err := device.Handle(d, "pinMode", pinModeArgs, codec.Void, b.pinMode); err != nil {
		return nil, err
	}
	if err := device.Handle(d, "digitalWrite", digitalWriteArgs, codec.Void, b.digitalWrite); err != nil {
		return nil, err
	}
	if err := device.Handle(d, "digitalRead", codec.U8, codec.U8, b.digitalRead); err != nil {
		return nil, err
	}
	if err := device.Handle(d, "millis", codec.Void, codec.U32, b.millis); err != nil {
		return nil, err
	}
	if err := device.Handle(d, "delay", codec.U32, codec.Void, b.delay); err != nil {
		return nil, err
	}
	return d, nil
}

func (b *Board) pinMode(a PinModeArgs) (codec.None, Error) {
	if int(a.Pin) >= NumPins || a.Mode > INPUT_PULLUP {
		return codec.None{}, ErrorFail
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modes[a.Pin] = a.Mode
	if a.Mode == INPUT_PULLUP {
		b.levels[a.Pin] = HIGH
	}
	return codec.None{}, ErrorOK
}

func (b *Board) digitalWrite(a DigitalWriteArgs) (codec.None, Error) {
	if int(a.Pin) >= NumPins {
		return codec.None{}, ErrorFail
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.Level != LOW {
		b.levels[a.Pin] = HIGH
	} else {
		b.levels[a.Pin] = LOW
	}
	return codec.None{}, ErrorOK
}

func (b *Board) digitalRead(pin uint8) (uint8, Error) {
	if int(pin) >= NumPins {
		return 0, ErrorFail
	}
	return b.Level(pin), ErrorOK
}

func (b *Board) millis(codec.None) (uint32, Error) {
	// Wraps after ~49 days like the real counter.
	return uint32(b.now().Sub(b.start).Milliseconds()), ErrorOK
}

func (b *Board) delay(ms uint32) (codec.None, Error) {
	b.sleep(time.Duration(ms) * time.Millisecond)
	return codec.None{}, ErrorOK
}
