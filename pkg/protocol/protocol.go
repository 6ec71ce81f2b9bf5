package protocol

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/command"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

var (
	// ErrCatalogFull is returned when the code width has no codes left.
	ErrCatalogFull = errors.New("protocol: command catalogue full")

	// ErrRegistrationClosed is returned by Add after Begin.
	ErrRegistrationClosed = errors.New("protocol: registration closed")

	// ErrDuplicateName is returned when a command name is registered twice.
	ErrDuplicateName = errors.New("protocol: duplicate command name")

	// ErrAlreadyStarted is returned by a second Begin.
	ErrAlreadyStarted = errors.New("protocol: already started")

	// ErrNotStarted is returned by handles used before Begin.
	ErrNotStarted = errors.New("protocol: not started")

	// ErrStartupFailed is returned by Begin and every handle once the startup
	// read has failed. The link must be reopened.
	ErrStartupFailed = errors.New("protocol: startup failed")
)

// Phase is the protocol lifecycle state.
type Phase int32

const (
	PhaseSetup Phase = iota
	PhaseStarting
	PhaseActive
	// PhaseFailed is terminal: the startup read failed.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "SETUP"
	case PhaseStarting:
		return "STARTING"
	case PhaseActive:
		return "ACTIVE"
	case PhaseFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Entry describes one registered command.
type Entry struct {
	Name      string
	Code      uint64
	Encoded   []byte
	Signature string
	Cached    bool
}

// link is the state handles share with their protocol.
type link[E status.Code] struct {
	stream stream.Stream
	enum   *status.Enum[E]
	name   string
	connID string
	logger *slog.Logger
	plog   log.Logger
	phase  atomic.Int32
	now    func() time.Time
}

// Protocol is the command catalogue and lifecycle of one device link.
type Protocol[S any, E status.Code] struct {
	*link[E]

	codeKind codec.Kind
	policy   command.RespondPolicy[E]
	startup  codec.Serializer[S]

	mu      sync.Mutex
	entries []Entry
	names   map[string]struct{}
}

// New creates a Protocol in the setup phase.
func New[S any, E status.Code](cfg Config[S, E]) (*Protocol[S, E], error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Protocol[S, E]{
		link: &link[E]{
			stream: cfg.Stream,
			enum:   cfg.Policy.Enum(),
			name:   cfg.Name,
			connID: cfg.ConnectionID,
			logger: cfg.Logger.With(slog.String("conn_id", cfg.ConnectionID)),
			plog:   cfg.ProtocolLogger,
			now:    time.Now,
		},
		codeKind: cfg.CodeKind,
		policy:   cfg.Policy,
		startup:  cfg.Startup,
		names:    make(map[string]struct{}),
	}, nil
}

// Policy returns the respond policy shared by every command.
func (p *Protocol[S, E]) Policy() command.RespondPolicy[E] { return p.policy }

// CodeKind returns the command code width.
func (p *Protocol[S, E]) CodeKind() codec.Kind { return p.codeKind }

// ConnectionID returns the ID used on protocol events.
func (p *Protocol[S, E]) ConnectionID() string { return p.connID }

// Phase returns the current lifecycle phase.
func (p *Protocol[S, E]) Phase() Phase { return Phase(p.phase.Load()) }

// Capacity returns how many commands the code width allows, or 0 when the
// width is 8 bytes and the count does not fit a uint64.
func (p *Protocol[S, E]) Capacity() uint64 {
	if p.codeKind.Size() >= 8 {
		return 0
	}
	return p.codeKind.MaxUnsigned() + 1
}

// Commands returns the registered commands in code order.
func (p *Protocol[S, E]) Commands() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		e.Encoded = append([]byte(nil), e.Encoded...)
		out[i] = e
	}
	return out
}

// reserve allocates the next code for name.
func (p *Protocol[S, E]) reserve(name string) (uint64, []byte, error) {
	if p.Phase() != PhaseSetup {
		return 0, nil, fmt.Errorf("%w: cannot add %s", ErrRegistrationClosed, name)
	}
	if name == "" {
		return 0, nil, fmt.Errorf("%w: empty command name", ErrInvalidConfig)
	}
	if _, dup := p.names[name]; dup {
		return 0, nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	next := uint64(len(p.entries))
	if next > p.codeKind.MaxUnsigned() {
		return 0, nil, fmt.Errorf("%w: %s code width allows %d commands", ErrCatalogFull, p.codeKind, p.Capacity())
	}
	code, err := p.codeKind.Append(nil, next)
	if err != nil {
		return 0, nil, err
	}
	return next, code, nil
}

func (p *Protocol[S, E]) commit(e Entry) {
	p.entries = append(p.entries, e)
	p.names[e.Name] = struct{}{}
	p.logger.Debug("command registered",
		slog.String("command", e.Name),
		slog.Uint64("code", e.Code),
		slog.String("signature", e.Signature))
}

// Add registers a command and returns its bound handle. Pass codec.Void for
// args or returns the command does not have.
func Add[A, R, S any, E status.Code](p *Protocol[S, E], name string, args codec.Serializer[A], returns codec.Serializer[R]) (*Handle[A, R, E], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, code, err := p.reserve(name)
	if err != nil {
		return nil, err
	}
	cmd := command.New(command.NewInstruction(name, code, args), returns, p.policy)
	h := &Handle[A, R, E]{link: p.link, sender: cmd, code: n}
	p.commit(Entry{Name: name, Code: n, Encoded: code, Signature: cmd.String()})
	return h, nil
}

// AddCached is like Add but memoizes encoded requests (see command.Cached).
func AddCached[A comparable, R, S any, E status.Code](p *Protocol[S, E], name string, args codec.Serializer[A], returns codec.Serializer[R], limit int) (*Handle[A, R, E], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, code, err := p.reserve(name)
	if err != nil {
		return nil, err
	}
	cmd := command.NewCached(command.New(command.NewInstruction(name, code, args), returns, p.policy), limit)
	h := &Handle[A, R, E]{link: p.link, sender: cmd, code: n}
	p.commit(Entry{Name: name, Code: n, Encoded: code, Signature: cmd.String(), Cached: true})
	return h, nil
}

// MustAdd is like Add but panics on error. For fixed catalogues built at init.
func MustAdd[A, R, S any, E status.Code](p *Protocol[S, E], name string, args codec.Serializer[A], returns codec.Serializer[R]) *Handle[A, R, E] {
	h, err := Add(p, name, args, returns)
	if err != nil {
		panic(err)
	}
	return h
}

// Begin reads the device's startup value and closes registration. It may be
// called once. A failed read leaves the protocol in PhaseFailed.
func (p *Protocol[S, E]) Begin() (S, error) {
	var zero S
	p.mu.Lock()
	started := p.phase.CompareAndSwap(int32(PhaseSetup), int32(PhaseStarting))
	p.mu.Unlock()
	if !started {
		if p.Phase() == PhaseFailed {
			return zero, ErrStartupFailed
		}
		return zero, ErrAlreadyStarted
	}

	v := zero
	if p.startup != nil {
		var err error
		v, err = codec.Read(p.stream, p.startup)
		if err != nil {
			p.phase.Store(int32(PhaseFailed))
			p.logger.Warn("startup read failed", slog.Any("error", err))
			p.emitError("begin", err, nil)
			p.plog.Log(p.event(log.Event{
				Layer:    log.LayerProtocol,
				Category: log.CategoryState,
				StateChange: &log.StateChangeEvent{
					Entity:   log.StateEntityProtocol,
					OldState: PhaseStarting.String(),
					NewState: PhaseFailed.String(),
					Reason:   err.Error(),
				},
			}))
			return zero, fmt.Errorf("%w: %w", ErrStartupFailed, err)
		}
	}

	p.phase.Store(int32(PhaseActive))
	p.logger.Info("protocol started",
		slog.String("device", p.name),
		slog.Int("commands", len(p.Commands())),
		slog.String("startup", fmt.Sprint(v)))
	p.plog.Log(p.event(log.Event{
		Layer:    log.LayerProtocol,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityProtocol,
			OldState: PhaseSetup.String(),
			NewState: PhaseActive.String(),
			Reason:   fmt.Sprintf("startup %v", v),
		},
	}))
	return v, nil
}

func (l *link[E]) event(ev log.Event) log.Event {
	ev.Timestamp = l.now()
	ev.ConnectionID = l.connID
	ev.Device = l.name
	return ev
}

func (l *link[E]) emitError(context string, err error, raw *uint64) {
	l.plog.Log(l.event(log.Event{
		Layer:    log.LayerCommand,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerCommand,
			Message: err.Error(),
			Code:    raw,
			Context: context,
		},
	}))
}
