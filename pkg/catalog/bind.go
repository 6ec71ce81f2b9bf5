package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/serialcmd/serialcmd-go/pkg/command"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/protocol"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// Status is the status code type of catalogue-driven protocols.
type Status uint64

// Result is the outcome of a catalogue-driven call.
type Result = command.Result[any, Status]

// Enum builds the status enum described by the catalogue.
func (c *Catalog) Enum() (*status.Enum[Status], error) {
	members := make([]status.Member[Status], len(c.Status.Members))
	var ok Status
	for i, m := range c.Status.Members {
		members[i] = status.Member[Status]{Code: Status(m.Code), Name: m.Name}
		if m.Name == c.Status.OK {
			ok = Status(m.Code)
		}
	}
	return status.NewEnum(c.Status.Name, ok, members...)
}

// BindOptions configures Bind.
type BindOptions struct {
	ConnectionID   string
	Logger         *slog.Logger
	ProtocolLogger log.Logger
}

// Session is a catalogue bound to a live stream.
type Session struct {
	catalog  *Catalog
	protocol *protocol.Protocol[any, Status]
	handles  map[string]*protocol.Handle[any, any, Status]
}

// Bind registers every catalogue command, in order, on a new protocol over s.
func Bind(c *Catalog, s stream.Stream, opts BindOptions) (*Session, error) {
	enum, err := c.Enum()
	if err != nil {
		return nil, err
	}
	policy, err := command.NewRespondPolicy(enum, c.Protocol.Status.Kind)
	if err != nil {
		return nil, err
	}
	p, err := protocol.New(protocol.Config[any, Status]{
		Stream:         s,
		CodeKind:       c.Protocol.Code.Kind,
		Policy:         policy,
		Startup:        c.Protocol.Startup.Serializer(),
		Name:           c.Name,
		ConnectionID:   opts.ConnectionID,
		Logger:         opts.Logger,
		ProtocolLogger: opts.ProtocolLogger,
	})
	if err != nil {
		return nil, err
	}

	sess := &Session{
		catalog:  c,
		protocol: p,
		handles:  make(map[string]*protocol.Handle[any, any, Status], len(c.Commands)),
	}
	for _, cmd := range c.Commands {
		var h *protocol.Handle[any, any, Status]
		if cmd.Cached {
			h, err = protocol.AddCached(p, cmd.Name, cmd.Args.Serializer(), cmd.Returns.Serializer(), 0)
		} else {
			h, err = protocol.Add(p, cmd.Name, cmd.Args.Serializer(), cmd.Returns.Serializer())
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: bind %s: %w", cmd.Name, err)
		}
		sess.handles[cmd.Name] = h
	}
	return sess, nil
}

// Catalog returns the bound catalogue.
func (s *Session) Catalog() *Catalog { return s.catalog }

// Protocol returns the underlying protocol.
func (s *Session) Protocol() *protocol.Protocol[any, Status] { return s.protocol }

// Begin reads the startup frame.
func (s *Session) Begin() (any, error) { return s.protocol.Begin() }

// Call invokes name with one Go value per argument field.
func (s *Session) Call(name string, args ...any) (Result, error) {
	cmd, h, err := s.lookup(name)
	if err != nil {
		return Result{}, err
	}
	v, err := cmd.Args.Value(args)
	if err != nil {
		return Result{}, fmt.Errorf("catalog: %s: %w", name, err)
	}
	return h.Send(v)
}

// CallText invokes name with textual arguments, e.g. from a console line.
func (s *Session) CallText(name string, fields []string) (Result, error) {
	cmd, h, err := s.lookup(name)
	if err != nil {
		return Result{}, err
	}
	v, err := cmd.Args.Parse(fields)
	if err != nil {
		return Result{}, fmt.Errorf("catalog: %s: %w", name, err)
	}
	return h.Send(v)
}

// ErrUnknownCommand is returned for names not in the catalogue.
var ErrUnknownCommand = errors.New("catalog: unknown command")

func (s *Session) lookup(name string) (Command, *protocol.Handle[any, any, Status], error) {
	cmd, _, ok := s.catalog.Lookup(name)
	if !ok {
		return Command{}, nil, fmt.Errorf("%w: %s (have %s)", ErrUnknownCommand, name, strings.Join(s.catalog.Names(), ", "))
	}
	return cmd, s.handles[name], nil
}

// Names returns the command names in code order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.Commands))
	for i, cmd := range c.Commands {
		out[i] = cmd.Name
	}
	return out
}
