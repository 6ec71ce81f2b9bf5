package protocol

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/serialcmd/serialcmd-go/pkg/command"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/status"
)

// Handle is a registered command bound to its protocol's stream.
type Handle[A, R any, E status.Code] struct {
	*link[E]
	sender command.Sender[A, R, E]
	code   uint64
}

// Name returns the command name.
func (h *Handle[A, R, E]) Name() string { return h.sender.Instruction().Name() }

// Code returns the assigned command code.
func (h *Handle[A, R, E]) Code() uint64 { return h.code }

// Sender returns the underlying command.
func (h *Handle[A, R, E]) Sender() command.Sender[A, R, E] { return h.sender }

// String describes the command.
func (h *Handle[A, R, E]) String() string { return h.sender.String() }

// Send runs one exchange. The protocol must be active. When err is non-nil
// the Result is the zero value, which is neither ok nor err.
func (h *Handle[A, R, E]) Send(v A) (command.Result[R, E], error) {
	switch Phase(h.phase.Load()) {
	case PhaseActive:
	case PhaseFailed:
		return command.Result[R, E]{}, fmt.Errorf("%w: %s", ErrStartupFailed, h.Name())
	default:
		return command.Result[R, E]{}, fmt.Errorf("%w: %s", ErrNotStarted, h.Name())
	}

	h.plog.Log(h.event(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerCommand,
		Category:  log.CategoryExchange,
		Exchange: &log.ExchangeEvent{
			Type:    log.ExchangeRequest,
			Code:    h.code,
			Command: h.Name(),
			Args:    argValue(v),
		},
	}))

	start := h.now()
	res, err := h.sender.Send(h.stream, v)
	rtt := h.now().Sub(start)
	if err != nil {
		h.fail(err)
		return res, err
	}

	reply := &log.ExchangeEvent{
		Type:      log.ExchangeReply,
		Code:      h.code,
		Command:   h.Name(),
		RoundTrip: &rtt,
	}
	if val, ok := res.Value(); ok {
		raw := uint64(h.enum.OK())
		reply.Status = &raw
		reply.StatusName = h.enum.NameOf(h.enum.OK())
		reply.Payload = argValue(val)
	} else {
		code, _ := res.Status()
		raw := uint64(code)
		reply.Status = &raw
		reply.StatusName = res.StatusName()
		reply.Failed = true
	}
	h.plog.Log(h.event(log.Event{
		Direction: log.DirectionIn,
		Layer:     log.LayerCommand,
		Category:  log.CategoryExchange,
		Exchange:  reply,
	}))

	h.logger.Debug("exchange",
		slog.String("command", h.Name()),
		slog.String("result", res.String()),
		slog.Duration("round_trip", rtt))
	return res, nil
}

func (h *Handle[A, R, E]) fail(err error) {
	var pv *command.ProtocolViolationError
	if errors.As(err, &pv) {
		h.logger.Warn("protocol violation",
			slog.String("command", h.Name()),
			slog.Uint64("status", pv.Raw),
			slog.String("enum", pv.Enum))
		h.emitError(h.Name(), err, &pv.Raw)
		return
	}
	h.logger.Debug("exchange failed", slog.String("command", h.Name()), slog.Any("error", err))
	h.emitError(h.Name(), err, nil)
}

// argValue drops empty values so they are omitted from captures.
func argValue(v any) any {
	if _, empty := v.(struct{}); empty {
		return nil
	}
	return v
}
