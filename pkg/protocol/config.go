package protocol

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/command"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// ErrInvalidConfig is returned by New for unusable configurations.
var ErrInvalidConfig = errors.New("protocol: invalid config")

// Config configures a Protocol.
type Config[S any, E status.Code] struct {
	// Stream is the link to the device. Required.
	Stream stream.Stream

	// CodeKind is the unsigned width of command codes (default: codec.KindU8).
	CodeKind codec.Kind

	// Policy reads the status that opens every reply. Required.
	Policy command.RespondPolicy[E]

	// Startup is the layout of the value the device sends once the link is
	// up. Nil means Begin reads nothing.
	Startup codec.Serializer[S]

	// Name labels the device in logs (e.g. "arduino").
	Name string

	// ConnectionID labels protocol events (default: a new UUID).
	ConnectionID string

	// Logger receives operational logs (default: slog.Default()).
	Logger *slog.Logger

	// ProtocolLogger receives decoded exchanges and phase changes.
	// Nil disables capture.
	ProtocolLogger log.Logger
}

func (c *Config[S, E]) applyDefaults() {
	if c.CodeKind == 0 {
		c.CodeKind = codec.KindU8
	}
	if c.ConnectionID == "" {
		c.ConnectionID = uuid.New().String()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.ProtocolLogger = log.OrNoop(c.ProtocolLogger)
}

func (c *Config[S, E]) validate() error {
	if c.Stream == nil {
		return fmt.Errorf("%w: nil stream", ErrInvalidConfig)
	}
	if !c.CodeKind.Unsigned() {
		return fmt.Errorf("%w: code width %s is not unsigned", ErrInvalidConfig, c.CodeKind)
	}
	if c.Policy.Enum() == nil {
		return fmt.Errorf("%w: no respond policy", ErrInvalidConfig)
	}
	return nil
}
