// Command serialcmd-log views and analyzes protocol capture files.
//
// Capture files are written by serialcmd-console with the -log flag, or by any
// program that attaches a log.FileLogger to its protocol.
//
// Usage:
//
//	serialcmd-log <command> [flags] <file.sclog>
//
// Commands:
//
//	view     View capture in human-readable format
//	export   Export capture to JSONL or CSV
//	filter   Filter capture and write to new file
//	stats    Show statistics about the capture
//
// Examples:
//
//	# View all events
//	serialcmd-log view arduino.sclog
//
//	# View only raw bytes
//	serialcmd-log view --layer stream arduino.sclog
//
//	# Show every digitalRead exchange
//	serialcmd-log view --command digitalRead arduino.sclog
//
//	# Filter by connection and save to new file
//	serialcmd-log filter --conn-id abc12345 -o filtered.sclog arduino.sclog
//
//	# Show statistics
//	serialcmd-log stats arduino.sclog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/serialcmd/serialcmd-go/cmd/serialcmd-log/commands"
)

const usage = `serialcmd-log - Command Protocol Capture Analyzer

Usage:
  serialcmd-log <command> [flags] <file.sclog>

Commands:
  view     View capture in human-readable format
  export   Export capture to JSONL or CSV
  filter   Filter capture and write to new file
  stats    Show statistics about the capture

Use "serialcmd-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseFile parses flags and returns the single capture path argument.
func parseFile(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func usageFor(fs *flag.FlagSet, header string) func() {
	return func() {
		fmt.Fprint(os.Stderr, header)
		fs.PrintDefaults()
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = usageFor(fs, `serialcmd-log view - View capture in human-readable format

Usage:
  serialcmd-log view [flags] <file.sclog>

Flags:
`)
	layer := fs.String("layer", "", "Filter by layer (stream, command, protocol)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (exchange, state, error)")
	command := fs.String("command", "", "Filter by command name")
	path := parseFile(fs, args)

	filter, err := commands.FilterOptions{
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
		Command:   *command,
	}.Build()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = usageFor(fs, `serialcmd-log export - Export capture to JSONL or CSV

Usage:
  serialcmd-log export [flags] <file.sclog>

Flags:
`)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parseFile(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = usageFor(fs, `serialcmd-log filter - Filter capture and write to new file

Usage:
  serialcmd-log filter [flags] <file.sclog>

Flags:
`)
	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.Device, "device", "", "Filter by device (catalogue name)")
	fs.StringVar(&opts.Command, "command", "", "Filter by command name")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (stream, command, protocol)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (exchange, state, error)")
	path := parseFile(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = usageFor(fs, `serialcmd-log stats - Show statistics about the capture

Usage:
  serialcmd-log stats <file.sclog>

`)
	path := parseFile(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
