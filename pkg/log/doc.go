// Package log provides structured protocol capture for serialcmd links.
//
// This package defines the Logger interface and Event types for recording what
// crossed a command link at two layers: the raw bytes seen by the stream and the
// decoded command exchanges seen by the protocol. It is separate from
// operational logging (slog); protocol capture is a machine-readable trace for
// debugging firmware and host catalogues that disagree.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field captures: write to a binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/serialcmd/arduino.sclog")
//
// # Event Types
//
//   - Stream: raw request and reply bytes (FrameEvent)
//   - Command: decoded requests and replies (ExchangeEvent)
//   - Protocol: phase changes such as the startup handshake (StateChangeEvent)
//
// Errors at any layer have a dedicated event type.
//
// # File Format
//
// Log files are a sequence of CBOR-encoded events with the .sclog extension.
// The serialcmd-log tool provides viewing, filtering and export.
package log
