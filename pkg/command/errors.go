package command

import (
	"fmt"

	"github.com/serialcmd/serialcmd-go/pkg/status"
)

// ProtocolViolationError reports a status value outside the device's enum.
// The stream should be considered out of sync after this error.
type ProtocolViolationError struct {
	Raw  uint64
	Enum string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("command: protocol violation: status 0x%02X is not a member of %s", e.Raw, e.Enum)
}

// Unwrap returns status.ErrUnknownCode.
func (e *ProtocolViolationError) Unwrap() error {
	return status.ErrUnknownCode
}

// StatusError is a device-reported non-ok status expressed as an error.
// See Result.AsError.
type StatusError[E status.Code] struct {
	Code E
	Name string
}

func (e *StatusError[E]) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("command: device status %d", uint64(e.Code))
	}
	return fmt.Sprintf("command: device status %s (%d)", e.Name, uint64(e.Code))
}
