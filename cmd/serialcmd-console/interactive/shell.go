// Package interactive provides the command shell of serialcmd-console.
package interactive

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/serialcmd/serialcmd-go/pkg/catalog"
	"github.com/serialcmd/serialcmd-go/pkg/protocol"
)

// Shell executes console lines against a bound catalogue.
type Shell struct {
	sess *catalog.Session
	out  io.Writer
}

// NewShell creates a shell writing its output to out.
func NewShell(sess *catalog.Session, out io.Writer) *Shell {
	return &Shell{sess: sess, out: out}
}

// Exec runs one input line and reports whether the user asked to quit.
// Lines of the form "<command> [args...]" call the device.
func (s *Shell) Exec(line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	name, args := parts[0], parts[1:]

	switch strings.ToLower(name) {
	case "help", "?":
		s.printHelp()
	case "list", "ls":
		s.cmdList()
	case "info":
		s.cmdInfo(args)
	case "status":
		s.cmdStatus()
	case "call":
		if len(args) == 0 {
			fmt.Fprintln(s.out, "Usage: call <command> [args...]")
			return false
		}
		s.call(args[0], args[1:])
	case "quit", "exit", "q":
		return true
	default:
		s.call(name, args)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintf(s.out, `
%s Console Commands:
  <command> [args...] - Call a device command (see 'list')
  call <command> ...  - Same, for names that shadow a built-in
  list                - List the catalogue commands
  info <command>      - Show the wire layout of a command
  status              - Show protocol phase and catalogue fingerprint
  help                - Show this help
  quit                - Exit

`, s.sess.Catalog().Name)
}

func (s *Shell) cmdList() {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tCOMMAND\tARGS\tRETURNS")
	for _, e := range s.sess.Protocol().Commands() {
		cmd, _, _ := s.sess.Catalog().Lookup(e.Name)
		fmt.Fprintf(tw, "%X\t%s\t%s\t%s\n", e.Encoded, e.Name, cmd.Args, cmd.Returns)
	}
	tw.Flush()
}

func (s *Shell) cmdInfo(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: info <command>")
		return
	}
	cmd, code, ok := s.sess.Catalog().Lookup(args[0])
	if !ok {
		fmt.Fprintf(s.out, "Unknown command: %s\n", args[0])
		return
	}
	for _, e := range s.sess.Protocol().Commands() {
		if e.Name != cmd.Name {
			continue
		}
		fmt.Fprintf(s.out, "%s\n", e.Signature)
		fmt.Fprintf(s.out, "  Code:    %d (%X)\n", code, e.Encoded)
		fmt.Fprintf(s.out, "  Request: %d bytes\n", len(e.Encoded)+cmd.Args.Size())
		fmt.Fprintf(s.out, "  Reply:   %d status bytes + %d on ok\n", s.sess.Catalog().Protocol.Status.Size(), cmd.Returns.Size())
		if cmd.Cached {
			fmt.Fprintln(s.out, "  Cached:  yes")
		}
		if cmd.Description != "" {
			fmt.Fprintf(s.out, "  %s\n", cmd.Description)
		}
	}
}

func (s *Shell) cmdStatus() {
	c := s.sess.Catalog()
	p := s.sess.Protocol()
	fmt.Fprintf(s.out, "Device:      %s\n", c.Name)
	fmt.Fprintf(s.out, "Connection:  %s\n", p.ConnectionID())
	fmt.Fprintf(s.out, "Phase:       %s\n", p.Phase())
	fmt.Fprintf(s.out, "Fingerprint: %s\n", c.Fingerprint())
	if capacity := p.Capacity(); capacity > 0 {
		fmt.Fprintf(s.out, "Commands:    %d of %d codes\n", len(p.Commands()), capacity)
	} else {
		fmt.Fprintf(s.out, "Commands:    %d\n", len(p.Commands()))
	}
}

func (s *Shell) call(name string, args []string) {
	res, err := s.sess.CallText(name, args)
	switch {
	case errors.Is(err, catalog.ErrUnknownCommand):
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", name)
	case errors.Is(err, protocol.ErrNotStarted):
		fmt.Fprintln(s.out, "Error: protocol not started")
	case errors.Is(err, protocol.ErrStartupFailed):
		fmt.Fprintln(s.out, "Error: startup failed, reconnect the device")
	case err != nil:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	case res.IsOk():
		v, _ := res.Value()
		if v == nil {
			fmt.Fprintln(s.out, "ok")
		} else {
			fmt.Fprintf(s.out, "ok: %v\n", v)
		}
	default:
		code, _ := res.Status()
		fmt.Fprintf(s.out, "%s (%d)\n", res.StatusName(), code)
	}
}

// Names returns the words the shell completes: built-ins and catalogue commands.
func (s *Shell) Names() []string {
	names := []string{"help", "list", "info", "status", "call", "quit"}
	return append(names, s.sess.Catalog().Names()...)
}
