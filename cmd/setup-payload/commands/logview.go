package commands

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mash-protocol/setup-payload/pkg/log"
)

// LogOptions configures the log command.
type LogOptions struct {
	Operation  string
	ErrorsOnly bool
	Kind       string
	RunID      string
	Format     string
	File       string
}

// RunLog views a CBOR codec event log.
func RunLog(args []string, stdout, stderr io.Writer) int {
	opts, help, err := parseLogArgs(args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printLogUsage(stderr)
		return exitCommandError
	}
	if help {
		return exitSuccess
	}

	filter, err := opts.filter()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	reader, err := log.NewFilteredReader(opts.File, filter)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open log file: %v\n", err)
		return exitCommandError
	}
	defer reader.Close()

	encoder := json.NewEncoder(stdout)
	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: failed to read event: %v\n", err)
			return exitCommandError
		}
		count++

		if opts.Format == "jsonl" {
			if err := encoder.Encode(event); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return exitCommandError
			}
			continue
		}
		formatEvent(stdout, event)
	}

	if opts.Format == "text" {
		fmt.Fprintf(stdout, "%d events\n", count)
	}
	return exitSuccess
}

// ParseOperationFlag parses an operation name.
func ParseOperationFlag(s string) (log.Operation, error) {
	switch strings.ToLower(s) {
	case "generate", "gen":
		return log.OperationGenerate, nil
	case "parse":
		return log.OperationParse, nil
	default:
		return 0, fmt.Errorf("unknown operation: %s (valid: generate, parse)", s)
	}
}

func (o *LogOptions) filter() (log.Filter, error) {
	f := log.Filter{
		ErrorsOnly: o.ErrorsOnly,
		ErrorKind:  o.Kind,
		RunID:      o.RunID,
	}
	if o.Operation != "" {
		op, err := ParseOperationFlag(o.Operation)
		if err != nil {
			return f, err
		}
		f.Operation = &op
	}
	return f, nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	status := "OK"
	if event.Error != nil {
		status = event.Error.Kind
	}
	fmt.Fprintf(w, "%s [evt:%s] %s %s %s\n", ts, shortenID(event.ID), event.Operation, event.Format, status)

	if event.RunID != "" {
		fmt.Fprintf(w, "  Run: %s\n", shortenID(event.RunID))
	}
	if event.Input != "" {
		fmt.Fprintf(w, "  Input: %s\n", event.Input)
	}
	if event.Output != nil {
		if event.Output.ManualCode != "" {
			fmt.Fprintf(w, "  Manualcode: %s\n", event.Output.ManualCode)
		}
		if event.Output.QRCode != "" {
			fmt.Fprintf(w, "  QRCode: %s\n", event.Output.QRCode)
		}
	}
	if p := event.Payload; p != nil {
		fmt.Fprintf(w, "  Passcode: %08d  Flow: %d  Short discriminator: %d", p.Passcode, p.Flow, p.ShortDiscriminator)
		if p.LongDiscriminator != nil {
			fmt.Fprintf(w, "  Long discriminator: %d", *p.LongDiscriminator)
		}
		fmt.Fprintln(w)
	}
	if event.Error != nil {
		fmt.Fprintf(w, "  Error: %s\n", event.Error.Message)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a UUID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func parseLogArgs(args []string, stdout io.Writer) (*LogOptions, bool, error) {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	opts := &LogOptions{}

	fs.StringVar(&opts.Operation, "op", "", "Filter by operation (generate, parse)")
	fs.BoolVar(&opts.ErrorsOnly, "errors", false, "Show only failed operations")
	fs.StringVar(&opts.Kind, "kind", "", "Filter by error kind (e.g. ChecksumMismatch)")
	fs.StringVar(&opts.RunID, "run", "", "Filter by batch run ID")
	fs.StringVar(&opts.Format, "format", "text", "Output format (text, jsonl)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")

	help, err := parseFlags(fs, args, printLogUsage, stdout)
	if help || err != nil {
		return opts, help, err
	}

	if fs.NArg() != 1 {
		return opts, false, errors.New("log file path required")
	}
	opts.File = fs.Arg(0)
	if err := outputFormat(opts.Format, "text", "jsonl"); err != nil {
		return opts, false, err
	}
	return opts, false, nil
}

func printLogUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: setup-payload log [options] <file.plog>

Options:
  --op          Filter by operation (generate, parse)
  --errors      Show only failed operations
  --kind        Filter by error kind (e.g. ChecksumMismatch)
  --run         Filter by batch run ID
  -f, --format  Output format (text, jsonl) [default: text]

Examples:
  setup-payload log run.plog
  setup-payload log --errors --op parse run.plog`)
}
