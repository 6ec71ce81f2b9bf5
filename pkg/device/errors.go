package device

import "errors"

// Device errors.
var (
	// ErrUnknownCommand is returned by Serve when the host sends a code with no handler.
	ErrUnknownCommand = errors.New("device: unknown command code")

	// ErrDuplicateCommand is returned when a command name is handled twice.
	ErrDuplicateCommand = errors.New("device: duplicate command")

	// ErrCatalogFull is returned when the code width has no codes left.
	ErrCatalogFull = errors.New("device: command catalogue full")

	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("device: invalid config")
)
