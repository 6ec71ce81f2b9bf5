// Command serialcmd-console connects to a device described by a command
// catalogue and calls its commands from an interactive shell.
//
// Usage:
//
//	serialcmd-console [flags]
//
// Flags:
//
//	-catalog string    Catalogue YAML (default: built-in Arduino catalogue)
//	-device string     Serial device, overriding the catalogue connection
//	-baud int          Serial baud rate (default 115200)
//	-tcp string        TCP address of a serial bridge
//	-simulate          Talk to an in-process simulated device
//	-log string        File path for protocol capture (CBOR format)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-run string        Run ';'-separated commands instead of the shell
//	-blink int         Run the Arduino blink demo for n toggles
//
// Examples:
//
//	# Arduino on the first USB serial port
//	serialcmd-console -device /dev/ttyACM0
//
//	# Try a catalogue without hardware, capturing the session
//	serialcmd-console -catalog sensor.yaml -simulate -log session.sclog
//
//	# One-shot calls
//	serialcmd-console -device /dev/ttyACM0 -run "pinMode 13 1; digitalWrite 13 1"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/serialcmd/serialcmd-go/cmd/serialcmd-console/interactive"
	"github.com/serialcmd/serialcmd-go/pkg/catalog"
	"github.com/serialcmd/serialcmd-go/pkg/devices/arduino"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
	"github.com/serialcmd/serialcmd-go/pkg/stream/serialport"
)

// Config holds the console configuration.
type Config struct {
	CatalogPath string
	Device      string
	Baud        int
	TCP         string
	Simulate    bool
	ProtocolLog string
	LogLevel    string
	Script      string
	Blink       int
}

var config Config

func init() {
	flag.StringVar(&config.CatalogPath, "catalog", "", "Catalogue YAML (default: built-in Arduino catalogue)")
	flag.StringVar(&config.Device, "device", "", "Serial device, overriding the catalogue connection")
	flag.IntVar(&config.Baud, "baud", serialport.DefaultBaud, "Serial baud rate")
	flag.StringVar(&config.TCP, "tcp", "", "TCP address of a serial bridge, overriding the catalogue connection")
	flag.BoolVar(&config.Simulate, "simulate", false, "Talk to an in-process simulated device")
	flag.StringVar(&config.ProtocolLog, "log", "", "File path for protocol capture (CBOR format)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.Script, "run", "", "Run ';'-separated commands instead of the interactive shell")
	flag.IntVar(&config.Blink, "blink", 0, "Run the Arduino blink demo for n toggles (built-in catalogue only)")
}

// logOutput lets the interactive console take over log output once the
// prompt is up.
type logOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *logOutput) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *logOutput) set(w io.Writer) {
	o.mu.Lock()
	o.w = w
	o.mu.Unlock()
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", config.LogLevel)
	}
	out := &logOutput{w: os.Stderr}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	builtin := config.CatalogPath == ""
	c, err := loadCatalog(builtin)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, endpoint, err := connect(ctx, c, builtin, logger)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	connID := uuid.New().String()
	logger.Info("connected",
		slog.String("device", c.Name),
		slog.String("endpoint", endpoint),
		slog.String("conn_id", connID),
		slog.String("fingerprint", c.Fingerprint()))

	// Protocol capture: CBOR file and, at debug level, the operational log.
	var loggers []log.Logger
	if config.ProtocolLog != "" {
		fl, err := log.NewFileLogger(config.ProtocolLog)
		if err != nil {
			return fmt.Errorf("failed to create protocol logger: %w", err)
		}
		defer func() {
			if err := fl.Close(); err != nil {
				logger.Warn("closing protocol log", slog.Any("error", err))
			}
		}()
		loggers = append(loggers, fl)
		logger.Info("protocol logging", slog.String("path", config.ProtocolLog))
	}
	if level <= slog.LevelDebug {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	var s stream.Stream = conn
	var plog log.Logger
	if len(loggers) > 0 {
		plog = log.NewMultiLogger(loggers...)
		logged := stream.NewLogged(conn, plog, connID)
		logged.SetDevice(c.Name, endpoint)
		s = logged
	}

	if config.Blink > 0 {
		a, err := arduino.New(s, arduino.Options{ConnectionID: connID, Logger: logger, ProtocolLogger: plog})
		if err != nil {
			return err
		}
		if err := arduino.Blink(ctx, a, config.Blink, 500); err != nil {
			return fmt.Errorf("blink: %w", err)
		}
		fmt.Println("Blink complete")
		return nil
	}

	sess, err := catalog.Bind(c, s, catalog.BindOptions{
		ConnectionID:   connID,
		Logger:         logger,
		ProtocolLogger: plog,
	})
	if err != nil {
		return err
	}
	startup, err := sess.Begin()
	if err != nil {
		return err
	}
	fmt.Printf("%s ready (startup: %v)\n", c.Name, startup)

	if config.Script != "" {
		shell := interactive.NewShell(sess, os.Stdout)
		for _, line := range strings.Split(config.Script, ";") {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			fmt.Printf("> %s\n", line)
			if shell.Exec(line) {
				break
			}
		}
		return nil
	}

	console, err := interactive.New(sess)
	if err != nil {
		return err
	}
	out.set(console.Stderr())
	console.Run(ctx, cancel)
	out.set(os.Stderr)
	return nil
}

func validateConfig() error {
	if config.Device != "" && config.TCP != "" {
		return errors.New("-device and -tcp are mutually exclusive")
	}
	if config.Simulate && (config.Device != "" || config.TCP != "") {
		return errors.New("-simulate cannot be combined with -device or -tcp")
	}
	if config.Blink > 0 && config.CatalogPath != "" {
		return errors.New("-blink needs the built-in Arduino catalogue")
	}
	if config.Baud <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", config.Baud)
	}
	return nil
}

func loadCatalog(builtin bool) (*catalog.Catalog, error) {
	if builtin {
		return arduino.Catalog()
	}
	return catalog.Load(config.CatalogPath)
}

// connect opens the link selected by the flags, falling back to the
// catalogue's connection block.
func connect(ctx context.Context, c *catalog.Catalog, builtin bool, logger *slog.Logger) (stream.Conn, string, error) {
	switch {
	case config.Simulate:
		return simulate(ctx, c, builtin, logger)
	case config.Device != "":
		return catalog.Connection{Serial: &catalog.SerialDef{Device: config.Device, Baud: config.Baud}}.Open(ctx)
	case config.TCP != "":
		return catalog.Connection{TCP: &catalog.TCPDef{Address: config.TCP}}.Open(ctx)
	}
	return c.Connection.Open(ctx)
}

type server interface {
	Serve(ctx context.Context, rw io.ReadWriter) error
}

// simulate starts an in-process device on one end of a pipe. The built-in
// catalogue gets the Arduino board model; others answer ok with zero values.
func simulate(ctx context.Context, c *catalog.Catalog, builtin bool, logger *slog.Logger) (stream.Conn, string, error) {
	var srv server
	var err error
	if builtin {
		srv, err = arduino.NewBoard().Device(1, logger)
	} else {
		srv, err = catalog.Simulate(c, nil, nil, logger)
	}
	if err != nil {
		return nil, "", err
	}

	host, dev := net.Pipe()
	go func() {
		if err := srv.Serve(ctx, dev); err != nil {
			logger.Warn("simulated device stopped", slog.Any("error", err))
		}
	}()
	return host, "simulator", nil
}
