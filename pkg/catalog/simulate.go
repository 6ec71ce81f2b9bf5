package catalog

import (
	"fmt"
	"log/slog"

	"github.com/serialcmd/serialcmd-go/pkg/device"
)

// HandlerFunc serves one command of a simulated device. args and the returned
// value use the Shape.Serializer representation.
type HandlerFunc func(args any) (any, Status)

// Simulate builds a device that implements the catalogue. Commands without an
// entry in handlers answer ok with a zero return value. startup is sent as the
// startup frame (nil means the shape's zero value).
func Simulate(c *Catalog, startup any, handlers map[string]HandlerFunc, logger *slog.Logger) (*device.Device[Status], error) {
	enum, err := c.Enum()
	if err != nil {
		return nil, err
	}

	var frame []byte
	if ser := c.Protocol.Startup.Serializer(); ser != nil {
		if startup == nil {
			startup = c.Protocol.Startup.Zero()
		}
		if frame, err = ser.Append(nil, startup); err != nil {
			return nil, fmt.Errorf("catalog: encode startup: %w", err)
		}
	}

	d, err := device.New(device.Config[Status]{
		Enum:       enum,
		CodeKind:   c.Protocol.Code.Kind,
		StatusKind: c.Protocol.Status.Kind,
		Startup:    frame,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	for _, cmd := range c.Commands {
		fn, ok := handlers[cmd.Name]
		if !ok {
			zero := cmd.Returns.Zero()
			fn = func(any) (any, Status) { return zero, enum.OK() }
		}
		if err := device.Handle(d, cmd.Name, cmd.Args.Serializer(), cmd.Returns.Serializer(), fn); err != nil {
			return nil, err
		}
	}
	for name := range handlers {
		if _, _, ok := c.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: handler for %s", ErrUnknownCommand, name)
		}
	}
	return d, nil
}
