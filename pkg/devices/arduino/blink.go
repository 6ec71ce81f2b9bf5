package arduino

import (
	"context"
	"errors"
	"fmt"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/command"
)

// ErrNotReady is returned by Blink when the board reports a zero startup byte.
var ErrNotReady = errors.New("arduino: board not ready")

// Blink starts the board, then toggles LED_BUILTIN cycles times, letting the
// board wait periodMS between toggles. It stops early when ctx is done.
func Blink(ctx context.Context, a *Protocol, cycles int, periodMS uint32) error {
	startup, err := a.Begin()
	if err != nil {
		return err
	}
	if startup == 0 {
		return ErrNotReady
	}

	if err := check(a.PinMode(LED_BUILTIN, OUTPUT)); err != nil {
		return fmt.Errorf("arduino: pinMode: %w", err)
	}
	for i := range cycles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := check(a.DigitalWrite(LED_BUILTIN, i%2 == 0)); err != nil {
			return fmt.Errorf("arduino: digitalWrite: %w", err)
		}
		if err := check(a.Delay(periodMS)); err != nil {
			return fmt.Errorf("arduino: delay: %w", err)
		}
	}
	return nil
}

func check(res command.Result[codec.None, Error], err error) error {
	if err != nil {
		return err
	}
	return res.AsError()
}
