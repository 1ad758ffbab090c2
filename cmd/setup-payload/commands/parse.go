package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mash-protocol/setup-payload/pkg/log"
	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// ParseOptions configures the parse command.
type ParseOptions struct {
	Format string
	Input  string
	loggingOptions
}

// ParseOutput is the json/yaml form of parse's result.
type ParseOutput struct {
	Input   string        `json:"input" yaml:"input"`
	Format  string        `json:"format" yaml:"format"`
	Payload PayloadOutput `json:"payload" yaml:"payload"`
}

// RunParse runs the parse command.
func RunParse(args []string, stdout, stderr io.Writer) int {
	opts, help, err := parseParseArgs(args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printParseUsage(stderr)
		return exitCommandError
	}
	if help {
		return exitSuccess
	}

	logger, closeLog, err := opts.openLogger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer closeLog()

	if opts.Format == "text" {
		fmt.Fprintf(stdout, "Parsing payload: %s\n", opts.Input)
	}

	return parseAndPrint(opts.Input, opts.Format, logger, stdout, stderr)
}

// parseAndPrint decodes input, logs the result and prints it in format.
func parseAndPrint(input, format string, logger log.Logger, stdout, stderr io.Writer) int {
	p, err := payload.Parse(input)
	logger.Log(log.NewParseEvent(input, p, err))
	if err != nil {
		return reportError(stderr, err)
	}

	detected := payload.DetectFormat(input)
	if format == "text" {
		printPayloadText(stdout, p, detected)
		return exitSuccess
	}

	out := ParseOutput{
		Input:   input,
		Format:  detected.String(),
		Payload: buildPayloadOutput(p, detected),
	}
	if err := writeStructured(stdout, format, out); err != nil {
		return reportError(stderr, err)
	}
	return exitSuccess
}

func parseParseArgs(args []string, stdout io.Writer) (*ParseOptions, bool, error) {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	opts := &ParseOptions{}

	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	opts.register(fs)

	help, err := parseFlags(fs, args, printParseUsage, stdout)
	if help || err != nil {
		return opts, help, err
	}

	// A manual code may be passed as separate digit groups.
	opts.Input = strings.Join(fs.Args(), " ")
	if opts.Input == "" {
		return opts, false, errors.New("no payload specified")
	}
	if err := outputFormat(opts.Format, "text", "json", "yaml"); err != nil {
		return opts, false, err
	}
	return opts, false, nil
}

func printParseUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: setup-payload parse [options] <payload>

Decodes a QR code ("MT:...") or an 11/21 digit manual pairing code.

Options:
  -f, --format  Output format (text, json, yaml) [default: text]
  --log-file    Append CBOR codec events to this file
  --verbose     Log codec events to stderr

Examples:
  setup-payload parse MT:-24J042C00KA0648G00
  setup-payload parse 3497-011-2332
  setup-payload parse --format yaml 749701123365521327694`)
}
