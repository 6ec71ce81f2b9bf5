// Package device implements the device side of a command link: it emits the
// startup frame, then reads requests, dispatches them to handlers and writes
// status-first replies. It stands in for firmware in tests and in the
// console's simulate mode.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// Config configures a Device.
type Config[E status.Code] struct {
	// Enum is the status set replies are drawn from. Required.
	Enum *status.Enum[E]

	// CodeKind is the command code width (default: codec.KindU8).
	CodeKind codec.Kind

	// StatusKind is the status width (default: codec.KindU8).
	StatusKind codec.Kind

	// Startup is written once when Serve starts. May be empty.
	Startup []byte

	// Logger receives operational logs (default: slog.Default()).
	Logger *slog.Logger
}

// Request is a request the device received.
type Request struct {
	Code uint64
	Name string
	Args []byte
}

type handler[E status.Code] struct {
	name    string
	argSize int
	serve   func(args []byte) (E, []byte, error)
}

// Device dispatches requests by code to registered handlers.
// Handlers run on the Serve goroutine.
type Device[E status.Code] struct {
	cfg      Config[E]
	handlers []handler[E]
	names    map[string]int
	received []Request

	mu sync.RWMutex
}

// New creates a device with no commands.
func New[E status.Code](cfg Config[E]) (*Device[E], error) {
	if cfg.Enum == nil {
		return nil, fmt.Errorf("%w: nil enum", ErrInvalidConfig)
	}
	if cfg.CodeKind == 0 {
		cfg.CodeKind = codec.KindU8
	}
	if cfg.StatusKind == 0 {
		cfg.StatusKind = codec.KindU8
	}
	if !cfg.CodeKind.Unsigned() || !cfg.StatusKind.Unsigned() {
		return nil, fmt.Errorf("%w: code and status widths must be unsigned", ErrInvalidConfig)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Startup = append([]byte(nil), cfg.Startup...)
	return &Device[E]{cfg: cfg, names: make(map[string]int)}, nil
}

// Handle registers the next command. Codes follow registration order, so
// commands must be handled in the same order the host adds them. fn returns
// the reply value and a status; the value is only sent when the status is ok.
func Handle[A, R any, E status.Code](d *Device[E], name string, args codec.Serializer[A], returns codec.Serializer[R], fn func(A) (R, E)) error {
	argSize := 0
	if args != nil {
		argSize = args.Size()
	}
	return d.add(handler[E]{
		name:    name,
		argSize: argSize,
		serve: func(raw []byte) (E, []byte, error) {
			var a A
			if args != nil {
				var err error
				if a, err = args.Decode(raw); err != nil {
					return 0, nil, fmt.Errorf("decode args: %w", err)
				}
			}
			r, code := fn(a)
			if !d.cfg.Enum.IsOK(code) || returns == nil {
				return code, nil, nil
			}
			out, err := codec.Pack(returns, r)
			if err != nil {
				return 0, nil, fmt.Errorf("encode return: %w", err)
			}
			return code, out, nil
		},
	})
}

func (d *Device[E]) add(h handler[E]) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, dup := d.names[h.name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, h.name)
	}
	if uint64(len(d.handlers)) > d.cfg.CodeKind.MaxUnsigned() {
		return fmt.Errorf("%w: %s", ErrCatalogFull, h.name)
	}
	d.names[h.name] = len(d.handlers)
	d.handlers = append(d.handlers, h)
	return nil
}

// Commands returns the handled command names in code order.
func (d *Device[E]) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.handlers))
	for i, h := range d.handlers {
		out[i] = h.name
	}
	return out
}

// Received returns every request seen so far.
func (d *Device[E]) Received() []Request {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]Request, len(d.received))
	copy(result, d.received)
	return result
}

// Serve writes the startup frame and answers requests until the host closes
// the stream (nil), ctx is cancelled (ctx.Err()) or the host sends something
// the device cannot parse. Cancelling ctx closes rw if it is an io.Closer.
func (d *Device[E]) Serve(ctx context.Context, rw io.ReadWriter) error {
	if c, ok := rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	if len(d.cfg.Startup) > 0 {
		if err := stream.WriteAll(rw, d.cfg.Startup); err != nil {
			return d.exit(ctx, fmt.Errorf("device: write startup: %w", err))
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.serveOne(rw); err != nil {
			return d.exit(ctx, err)
		}
	}
}

func (d *Device[E]) serveOne(rw io.ReadWriter) error {
	raw, err := stream.ReadExactly(rw, d.cfg.CodeKind.Size())
	if err != nil {
		return err
	}
	code, err := d.cfg.CodeKind.DecodeUint(raw)
	if err != nil {
		return err
	}

	d.mu.RLock()
	var h handler[E]
	known := code < uint64(len(d.handlers))
	if known {
		h = d.handlers[code]
	}
	d.mu.RUnlock()
	if !known {
		return fmt.Errorf("%w: %d", ErrUnknownCommand, code)
	}

	args, err := stream.ReadExactly(rw, h.argSize)
	if err != nil {
		return fmt.Errorf("device: %s: read args: %w", h.name, err)
	}

	d.mu.Lock()
	d.received = append(d.received, Request{Code: code, Name: h.name, Args: args})
	d.mu.Unlock()

	st, payload, err := h.serve(args)
	if err != nil {
		return fmt.Errorf("device: %s: %w", h.name, err)
	}
	reply, err := d.cfg.StatusKind.Append(nil, uint64(st))
	if err != nil {
		return fmt.Errorf("device: %s: encode status: %w", h.name, err)
	}
	reply = append(reply, payload...)

	d.cfg.Logger.Debug("device exchange",
		slog.String("command", h.name),
		slog.String("status", d.cfg.Enum.NameOf(st)),
		slog.Int("reply_bytes", len(reply)))

	if err := stream.WriteAll(rw, reply); err != nil {
		return fmt.Errorf("device: %s: write reply: %w", h.name, err)
	}
	return nil
}

// exit maps end-of-stream conditions to a clean return.
func (d *Device[E]) exit(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if (errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF)) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
