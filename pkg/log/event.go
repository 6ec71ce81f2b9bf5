package log

import (
	"time"
)

// Event is a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the link (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates byte flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Device names the catalogue spoken on the link (e.g. "arduino").
	Device string `cbor:"6,keyasint,omitempty"`

	// Endpoint is the peer address (serial device path or host:port).
	Endpoint string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Stream layer
	Exchange    *ExchangeEvent    `cbor:"11,keyasint,omitempty"` // Command layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Protocol phase
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of byte flow.
type Direction uint8

const (
	// DirectionIn is device to host.
	DirectionIn Direction = 0
	// DirectionOut is host to device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerStream is the byte stream (raw bytes).
	LayerStream Layer = 0
	// LayerCommand is the command layer (decoded requests and replies).
	LayerCommand Layer = 1
	// LayerProtocol is the protocol registry and handshake.
	LayerProtocol Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerStream:
		return "STREAM"
	case LayerCommand:
		return "COMMAND"
	case LayerProtocol:
		return "PROTOCOL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryExchange indicates request or reply traffic.
	CategoryExchange Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryExchange:
		return "EXCHANGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxFrameData is the number of bytes a FrameEvent keeps before truncating.
const MaxFrameData = 4096

// FrameEvent captures raw bytes at the stream layer.
type FrameEvent struct {
	// Size is the number of bytes transferred.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes (may be truncated).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent copies p into a FrameEvent, truncating at MaxFrameData.
func NewFrameEvent(p []byte) *FrameEvent {
	fe := &FrameEvent{Size: len(p)}
	data := p
	if len(data) > MaxFrameData {
		data = data[:MaxFrameData]
		fe.Truncated = true
	}
	fe.Data = append([]byte(nil), data...)
	return fe
}

// ExchangeEvent captures one decoded half of a command exchange.
type ExchangeEvent struct {
	// Type distinguishes request from reply.
	Type ExchangeType `cbor:"1,keyasint"`

	// Code is the command code the exchange was addressed to.
	Code uint64 `cbor:"2,keyasint"`

	// Command is the registered command name.
	Command string `cbor:"3,keyasint,omitempty"`

	// For requests: the argument value (CBOR-compatible representation).
	Args any `cbor:"4,keyasint,omitempty"`

	// For replies: the raw status code.
	Status *uint64 `cbor:"5,keyasint,omitempty"`

	// For replies: the status member name.
	StatusName string `cbor:"6,keyasint,omitempty"`

	// For ok replies: the decoded return value.
	Payload any `cbor:"7,keyasint,omitempty"`

	// RoundTrip is the time from request write to reply decode (replies only).
	RoundTrip *time.Duration `cbor:"8,keyasint,omitempty"`

	// Failed is set on replies whose status is not the ok member.
	Failed bool `cbor:"9,keyasint,omitempty"`
}

// ExchangeType distinguishes requests from replies.
type ExchangeType uint8

const (
	// ExchangeRequest is a request written to the device.
	ExchangeRequest ExchangeType = 0
	// ExchangeReply is a status (and payload) read from the device.
	ExchangeReply ExchangeType = 1
)

// String returns the exchange type name.
func (t ExchangeType) String() string {
	switch t {
	case ExchangeRequest:
		return "REQUEST"
	case ExchangeReply:
		return "REPLY"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures protocol lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityLink is the underlying stream.
	StateEntityLink StateEntity = 0
	// StateEntityProtocol is the protocol phase (setup, active).
	StateEntityProtocol StateEntity = 1
)

// String returns the entity name.
func (e StateEntity) String() string {
	switch e {
	case StateEntityLink:
		return "LINK"
	case StateEntityProtocol:
		return "PROTOCOL"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the raw status code for protocol violations.
	Code *uint64 `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
