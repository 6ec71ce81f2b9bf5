package protocol

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/command"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

type boardError uint8

const (
	boardOK  boardError = 0
	boardBad boardError = 1
)

var boardErrors = status.MustEnum("BoardError", boardOK,
	status.Member[boardError]{Code: boardOK, Name: "ok"},
	status.Member[boardError]{Code: boardBad, Name: "bad"},
)

type recorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func newProtocol(t *testing.T, s stream.Stream, plog log.Logger) *Protocol[bool, boardError] {
	t.Helper()
	p, err := New(Config[bool, boardError]{
		Stream:         s,
		Policy:         command.MustRespondPolicy(boardErrors, codec.KindU8),
		Startup:        codec.Bool,
		Name:           "board",
		ConnectionID:   "conn-test",
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		ProtocolLogger: plog,
	})
	require.NoError(t, err)
	return p
}

func TestBeginThenZeroArgCommand(t *testing.T) {
	s := stream.NewMock([]byte{0x01, 0x00})
	p := newProtocol(t, s, nil)

	ping, err := Add[codec.None, codec.None](p, "ping", codec.Void, codec.Void)
	require.NoError(t, err)

	started, err := p.Begin()
	require.NoError(t, err)
	assert.True(t, started)

	res, err := ping.Send(codec.None{})
	require.NoError(t, err)
	assert.True(t, res.IsOk())
	assert.Equal(t, []byte{0x00}, s.Written())
	assert.Equal(t, 0, s.Remaining())
}

func TestArgumentAndReturn(t *testing.T) {
	s := stream.NewMock([]byte{0x01, 0x00, 0xAB})
	p := newProtocol(t, s, nil)

	_, err := Add[codec.None, codec.None](p, "ping", codec.Void, codec.Void)
	require.NoError(t, err)
	read, err := Add[uint8, uint8](p, "read", codec.U8, codec.U8)
	require.NoError(t, err)

	_, err = p.Begin()
	require.NoError(t, err)

	res, err := read.Send(0x10)
	require.NoError(t, err)
	assert.Equal(t, "0110", hex.EncodeToString(s.Written()))
	assert.Equal(t, uint8(0xAB), res.Unwrap())
}

func TestErrorStatusDoesNotBlock(t *testing.T) {
	s := stream.NewMock([]byte{0x01, 0x01})
	p := newProtocol(t, s, nil)

	_, err := Add[codec.None, codec.None](p, "ping", codec.Void, codec.Void)
	require.NoError(t, err)
	read, err := Add[uint8, uint8](p, "read", codec.U8, codec.U8)
	require.NoError(t, err)
	_, err = p.Begin()
	require.NoError(t, err)

	res, err := read.Send(0x10)
	require.NoError(t, err)
	code, isErr := res.Status()
	require.True(t, isErr)
	assert.Equal(t, boardBad, code)
	assert.Equal(t, 0, s.Remaining())
}

func TestSequentialCodes(t *testing.T) {
	p := newProtocol(t, stream.NewMock(nil), nil)
	names := []string{"pinMode", "digitalWrite", "digitalRead", "millis", "delay"}
	for i, name := range names {
		h, err := Add[uint8, codec.None](p, name, codec.U8, codec.Void)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), h.Code())
		assert.Equal(t, name, h.Name())
	}

	entries := p.Commands()
	require.Len(t, entries, len(names))
	for i, e := range entries {
		assert.Equal(t, names[i], e.Name)
		assert.Equal(t, uint64(i), e.Code)
		assert.Equal(t, []byte{byte(i)}, e.Encoded)
	}
	assert.Equal(t, "digitalRead<02>(u8) -> (none, BoardError<u8>)", entries[2].Signature)
}

func TestCommandsIsCopy(t *testing.T) {
	p := newProtocol(t, stream.NewMock(nil), nil)
	_, err := Add[uint8, codec.None](p, "a", codec.U8, codec.Void)
	require.NoError(t, err)

	entries := p.Commands()
	entries[0].Encoded[0] = 0xFF
	entries[0].Name = "changed"
	assert.Equal(t, "a", p.Commands()[0].Name)
	assert.Equal(t, []byte{0x00}, p.Commands()[0].Encoded)
}

func TestWideCodes(t *testing.T) {
	s := stream.NewMock([]byte{0x01, 0x00})
	p, err := New(Config[bool, boardError]{
		Stream:   s,
		CodeKind: codec.KindU16,
		Policy:   command.MustRespondPolicy(boardErrors, codec.KindU8),
		Startup:  codec.Bool,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(65536), p.Capacity())

	_, err = Add[codec.None, codec.None](p, "a", codec.Void, codec.Void)
	require.NoError(t, err)
	b, err := Add[codec.None, codec.None](p, "b", codec.Void, codec.Void)
	require.NoError(t, err)

	_, err = p.Begin()
	require.NoError(t, err)
	_, err = b.Send(codec.None{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00}, s.Written())
}

func TestCatalogFull(t *testing.T) {
	p := newProtocol(t, stream.NewMock(nil), nil)
	assert.Equal(t, uint64(256), p.Capacity())

	for i := range 256 {
		_, err := Add[codec.None, codec.None](p, fmt.Sprintf("cmd%d", i), codec.Void, codec.Void)
		require.NoError(t, err)
	}
	_, err := Add[codec.None, codec.None](p, "overflow", codec.Void, codec.Void)
	assert.ErrorIs(t, err, ErrCatalogFull)
	assert.Len(t, p.Commands(), 256)
}

func TestRegistrationRules(t *testing.T) {
	p := newProtocol(t, stream.NewMock([]byte{0x01}), nil)

	_, err := Add[codec.None, codec.None](p, "", codec.Void, codec.Void)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Add[codec.None, codec.None](p, "x", codec.Void, codec.Void)
	require.NoError(t, err)
	_, err = Add[uint8, codec.None](p, "x", codec.U8, codec.Void)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = p.Begin()
	require.NoError(t, err)
	_, err = Add[codec.None, codec.None](p, "late", codec.Void, codec.Void)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	assert.Len(t, p.Commands(), 1)
}

func TestBeginLifecycle(t *testing.T) {
	s := stream.NewMock(nil)
	p := newProtocol(t, s, nil)
	h, err := Add[codec.None, codec.None](p, "ping", codec.Void, codec.Void)
	require.NoError(t, err)

	_, err = h.Send(codec.None{})
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Empty(t, s.Written())

	s.Feed([]byte{0x00})
	started, err := p.Begin()
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, PhaseActive, p.Phase())

	_, err = p.Begin()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestBeginFailureIsTerminal(t *testing.T) {
	rec := &recorder{}
	s := stream.NewMock([]byte{0x34})
	p, err := New(Config[uint16, boardError]{
		Stream:         s,
		Policy:         command.MustRespondPolicy(boardErrors, codec.KindU8),
		Startup:        codec.U16,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		ProtocolLogger: rec,
	})
	require.NoError(t, err)
	ping := MustAdd[codec.None, codec.None](p, "ping", codec.Void, codec.Void)

	// Half a startup frame: the link is out of step for good.
	_, err = p.Begin()
	assert.ErrorIs(t, err, ErrStartupFailed)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, PhaseFailed, p.Phase())

	s.Feed([]byte{0x12, 0x00})
	v, err := p.Begin()
	assert.ErrorIs(t, err, ErrStartupFailed)
	assert.Equal(t, uint16(0), v)
	assert.Equal(t, PhaseFailed, p.Phase())
	assert.Equal(t, 2, s.Remaining())

	_, err = ping.Send(codec.None{})
	assert.ErrorIs(t, err, ErrStartupFailed)
	assert.Empty(t, s.Written())

	_, err = Add[codec.None, codec.None](p, "late", codec.Void, codec.Void)
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	last := rec.events[len(rec.events)-1]
	require.NotNil(t, last.StateChange)
	assert.Equal(t, "FAILED", last.StateChange.NewState)
}

func TestRegistrationClosedByBegin(t *testing.T) {
	for range 20 {
		p := newProtocol(t, stream.NewMock([]byte{0x01}), nil)

		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := Add[codec.None, codec.None](p, fmt.Sprintf("cmd%d", i), codec.Void, codec.Void)
				if err != nil {
					assert.ErrorIs(t, err, ErrRegistrationClosed)
				}
			}()
		}
		_, err := p.Begin()
		require.NoError(t, err)
		atBegin := len(p.Commands())
		wg.Wait()
		assert.Len(t, p.Commands(), atBegin)
	}
}

func TestBeginWithoutStartup(t *testing.T) {
	s := stream.NewMock(nil)
	p, err := New(Config[codec.None, boardError]{
		Stream: s,
		Policy: command.MustRespondPolicy(boardErrors, codec.KindU8),
	})
	require.NoError(t, err)

	_, err = p.Begin()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Consumed())
	assert.NotEmpty(t, p.ConnectionID())
}

func TestNewValidation(t *testing.T) {
	policy := command.MustRespondPolicy(boardErrors, codec.KindU8)

	_, err := New(Config[bool, boardError]{Policy: policy})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config[bool, boardError]{Stream: stream.NewMock(nil)})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config[bool, boardError]{Stream: stream.NewMock(nil), Policy: policy, CodeKind: codec.KindI8})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	p, err := New(Config[bool, boardError]{Stream: stream.NewMock(nil), Policy: policy})
	require.NoError(t, err)
	assert.Equal(t, codec.KindU8, p.CodeKind())
	assert.Equal(t, boardErrors, p.Policy().Enum())
}

func TestAddCached(t *testing.T) {
	s := stream.NewMock([]byte{0x01, 0x00, 0x07, 0x00, 0x07})
	p := newProtocol(t, s, nil)

	read, err := AddCached[uint8, uint8](p, "read", codec.U8, codec.U8, 4)
	require.NoError(t, err)
	assert.True(t, p.Commands()[0].Cached)

	_, err = p.Begin()
	require.NoError(t, err)
	for range 2 {
		res, err := read.Send(3)
		require.NoError(t, err)
		assert.Equal(t, uint8(7), res.Unwrap())
	}
	assert.Equal(t, []byte{0x00, 0x03, 0x00, 0x03}, s.Written())

	cached, ok := read.Sender().(*command.Cached[uint8, uint8, boardError])
	require.True(t, ok)
	hits, misses, _ := cached.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestProtocolEvents(t *testing.T) {
	rec := &recorder{}
	s := stream.NewMock([]byte{0x01, 0x00, 0xAB, 0x01, 0x09})
	p := newProtocol(t, s, rec)
	read := MustAdd[uint8, uint8](p, "read", codec.U8, codec.U8)

	_, err := p.Begin()
	require.NoError(t, err)
	_, err = read.Send(0x10)
	require.NoError(t, err)
	_, err = read.Send(0x11)
	require.NoError(t, err)
	_, err = read.Send(0x12)
	require.Error(t, err)

	require.Len(t, rec.events, 7)

	state := rec.events[0]
	require.NotNil(t, state.StateChange)
	assert.Equal(t, "ACTIVE", state.StateChange.NewState)
	assert.Equal(t, "conn-test", state.ConnectionID)
	assert.Equal(t, "board", state.Device)

	req, reply := rec.events[1], rec.events[2]
	require.NotNil(t, req.Exchange)
	assert.Equal(t, log.ExchangeRequest, req.Exchange.Type)
	assert.Equal(t, "read", req.Exchange.Command)
	assert.Equal(t, uint8(0x10), req.Exchange.Args)
	require.NotNil(t, reply.Exchange)
	assert.Equal(t, log.ExchangeReply, reply.Exchange.Type)
	assert.Equal(t, uint64(0), *reply.Exchange.Status)
	assert.Equal(t, "ok", reply.Exchange.StatusName)
	assert.Equal(t, uint8(0xAB), reply.Exchange.Payload)
	assert.NotNil(t, reply.Exchange.RoundTrip)

	errReply := rec.events[4]
	assert.Equal(t, uint64(1), *errReply.Exchange.Status)
	assert.Equal(t, "bad", errReply.Exchange.StatusName)
	assert.Nil(t, errReply.Exchange.Payload)

	failure := rec.events[6]
	require.NotNil(t, failure.Error)
	assert.Equal(t, log.CategoryError, failure.Category)
	assert.Equal(t, "read", failure.Error.Context)
}

func TestProtocolViolationIsLogged(t *testing.T) {
	rec := &recorder{}
	var buf bytes.Buffer
	s := stream.NewMock([]byte{0x01, 0x09})
	p, err := New(Config[bool, boardError]{
		Stream:         s,
		Policy:         command.MustRespondPolicy(boardErrors, codec.KindU8),
		Startup:        codec.Bool,
		Logger:         slog.New(slog.NewTextHandler(&buf, nil)),
		ProtocolLogger: rec,
	})
	require.NoError(t, err)
	ping := MustAdd[codec.None, codec.None](p, "ping", codec.Void, codec.Void)
	_, err = p.Begin()
	require.NoError(t, err)

	_, err = ping.Send(codec.None{})
	var pv *command.ProtocolViolationError
	require.ErrorAs(t, err, &pv)

	last := rec.events[len(rec.events)-1]
	require.NotNil(t, last.Error)
	require.NotNil(t, last.Error.Code)
	assert.Equal(t, uint64(9), *last.Error.Code)
	assert.Contains(t, buf.String(), "protocol violation")
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "SETUP", PhaseSetup.String())
	assert.Equal(t, "STARTING", PhaseStarting.String())
	assert.Equal(t, "ACTIVE", PhaseActive.String())
	assert.Equal(t, "FAILED", PhaseFailed.String())
	assert.Equal(t, "UNKNOWN", Phase(9).String())
}

func TestMustAddPanics(t *testing.T) {
	p := newProtocol(t, stream.NewMock(nil), nil)
	MustAdd[codec.None, codec.None](p, "x", codec.Void, codec.Void)
	assert.Panics(t, func() { MustAdd[codec.None, codec.None](p, "x", codec.Void, codec.Void) })
}
