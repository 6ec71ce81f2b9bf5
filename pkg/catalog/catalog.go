// Package catalog loads command catalogues from YAML and binds them to a
// runtime protocol, so tools can talk to any device without generated code.
//
// A catalogue lists, in code order, every command the firmware implements:
//
//	name: arduino
//	protocol:
//	  code: u8
//	  status: u8
//	  startup: u8
//	status:
//	  name: ArduinoError
//	  ok: ok
//	  members:
//	    - {name: ok, code: 0}
//	    - {name: fail, code: 1}
//	commands:
//	  - name: pinMode
//	    args: [u8, u8]
//	  - name: millis
//	    returns: u32
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
)

// Catalog is a parsed and validated catalogue.
type Catalog struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Protocol    ProtocolDef `yaml:"protocol"`
	Status      StatusDef   `yaml:"status"`
	Commands    []Command   `yaml:"commands"`
	Connection  Connection  `yaml:"connection,omitempty"`
}

// ProtocolDef holds the wire widths.
type ProtocolDef struct {
	// Code is the command code width (default u8).
	Code Kind `yaml:"code,omitempty"`

	// Status is the status width (default u8).
	Status Kind `yaml:"status,omitempty"`

	// Startup is the layout of the startup frame; empty for none.
	Startup Shape `yaml:"startup,omitempty"`
}

// StatusDef is the device's status enum.
type StatusDef struct {
	Name    string   `yaml:"name"`
	OK      string   `yaml:"ok"`
	Members []Member `yaml:"members"`
}

// Member is one named status code.
type Member struct {
	Name        string `yaml:"name"`
	Code        uint64 `yaml:"code"`
	Description string `yaml:"description,omitempty"`
}

// Command is one catalogue entry. Its code is its index.
type Command struct {
	Name        string `yaml:"name"`
	Args        Shape  `yaml:"args,omitempty"`
	Returns     Shape  `yaml:"returns,omitempty"`
	Cached      bool   `yaml:"cached,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Connection says how to reach the device by default.
type Connection struct {
	Serial *SerialDef `yaml:"serial,omitempty"`
	TCP    *TCPDef    `yaml:"tcp,omitempty"`
}

// SerialDef configures a native serial port.
type SerialDef struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud,omitempty"`
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`
}

// TCPDef configures a TCP link to a serial bridge.
type TCPDef struct {
	Address     string        `yaml:"address"`
	DialTimeout time.Duration `yaml:"dial_timeout,omitempty"`
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`
}

// LoadError describes a catalogue that could not be loaded.
type LoadError struct {
	// File is the catalogue path (empty for in-memory data).
	File string

	// Line is the YAML line (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	switch {
	case e.File != "" && e.Line > 0:
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + msg
	case e.File != "":
		return e.File + ": " + msg
	case e.Line > 0:
		return "catalog: line " + strconv.Itoa(e.Line) + ": " + msg
	}
	return "catalog: " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses and validates a catalogue.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, le
		}
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and validates the catalogue at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	c, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return c, nil
}

// Validate applies defaults and checks the catalogue is usable.
func (c *Catalog) Validate() error {
	if c.Name == "" {
		return &LoadError{Message: "catalogue name is required"}
	}
	if c.Protocol.Code.Kind == 0 {
		c.Protocol.Code.Kind = codec.KindU8
	}
	if c.Protocol.Status.Kind == 0 {
		c.Protocol.Status.Kind = codec.KindU8
	}
	if !c.Protocol.Code.Unsigned() {
		return &LoadError{Message: fmt.Sprintf("code width %s is not unsigned", c.Protocol.Code)}
	}
	if !c.Protocol.Status.Unsigned() {
		return &LoadError{Message: fmt.Sprintf("status width %s is not unsigned", c.Protocol.Status)}
	}
	if err := c.validateStatus(); err != nil {
		return err
	}

	if n := uint64(len(c.Commands)); n > 0 && n-1 > c.Protocol.Code.MaxUnsigned() {
		return &LoadError{Message: fmt.Sprintf("%d commands do not fit %s codes", len(c.Commands), c.Protocol.Code)}
	}
	seen := make(map[string]bool, len(c.Commands))
	for i, cmd := range c.Commands {
		if cmd.Name == "" {
			return &LoadError{Message: fmt.Sprintf("command %d has no name", i)}
		}
		if seen[cmd.Name] {
			return &LoadError{Message: fmt.Sprintf("duplicate command %q", cmd.Name)}
		}
		seen[cmd.Name] = true
		// Tuple arguments are []any, which cannot key the request memo.
		if cmd.Cached && len(cmd.Args) > 1 {
			return &LoadError{Message: fmt.Sprintf("command %q: cached commands take at most one argument", cmd.Name)}
		}
	}
	if c.Connection.Serial != nil && c.Connection.TCP != nil {
		return &LoadError{Message: "connection: serial and tcp are mutually exclusive"}
	}
	return nil
}

func (c *Catalog) validateStatus() error {
	s := c.Status
	if s.Name == "" {
		return &LoadError{Message: "status enum name is required"}
	}
	if len(s.Members) == 0 {
		return &LoadError{Message: "status enum has no members"}
	}
	okFound := false
	names := make(map[string]bool, len(s.Members))
	for _, m := range s.Members {
		if names[m.Name] {
			return &LoadError{Message: fmt.Sprintf("duplicate status name %q", m.Name)}
		}
		names[m.Name] = true
		if m.Code > c.Protocol.Status.MaxUnsigned() {
			return &LoadError{Message: fmt.Sprintf("status %s=%d does not fit %s", m.Name, m.Code, c.Protocol.Status)}
		}
		if m.Name == s.OK {
			okFound = true
		}
	}
	if !okFound {
		return &LoadError{Message: fmt.Sprintf("ok status %q is not a member of %s", s.OK, s.Name)}
	}
	// Duplicate names and codes are caught when the enum is built.
	if _, err := c.Enum(); err != nil {
		return &LoadError{Message: "invalid status enum", Cause: err}
	}
	return nil
}

// Lookup returns the command named name and its code.
func (c *Catalog) Lookup(name string) (Command, uint64, bool) {
	for i, cmd := range c.Commands {
		if cmd.Name == name {
			return cmd, uint64(i), true
		}
	}
	return Command{}, 0, false
}
