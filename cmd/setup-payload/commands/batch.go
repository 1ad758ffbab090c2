package commands

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/mash-protocol/setup-payload/pkg/log"
	"github.com/mash-protocol/setup-payload/pkg/manifest"
)

// BatchOptions configures the batch command.
type BatchOptions struct {
	Format   string
	Manifest string
	loggingOptions
}

// BatchRecord is one generated device.
type BatchRecord struct {
	Serial        string `json:"serial" yaml:"serial"`
	Discriminator uint16 `json:"discriminator" yaml:"discriminator"`
	Passcode      uint32 `json:"passcode" yaml:"passcode"`
	ManualCode    string `json:"manualcode" yaml:"manualcode"`
	QRCode        string `json:"qrcode" yaml:"qrcode"`
	Generated     bool   `json:"generated,omitempty" yaml:"generated,omitempty"`
}

// BatchOutput is the json/yaml form of batch's result.
type BatchOutput struct {
	RunID   string        `json:"run_id" yaml:"run_id"`
	Devices []BatchRecord `json:"devices" yaml:"devices"`
}

// RunBatch runs the batch command.
func RunBatch(args []string, stdout, stderr io.Writer) int {
	opts, help, err := parseBatchArgs(args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printBatchUsage(stderr)
		return exitCommandError
	}
	if help {
		return exitSuccess
	}

	m, err := manifest.Load(opts.Manifest)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	entries, err := m.Payloads()
	if err != nil {
		return reportError(stderr, err)
	}

	logger, closeLog, err := opts.openLogger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer closeLog()

	out, err := runBatch(entries, logger)
	if err != nil {
		return reportError(stderr, err)
	}

	switch opts.Format {
	case "csv":
		err = writeBatchCSV(stdout, out.Devices)
	case "json", "yaml":
		err = writeStructured(stdout, opts.Format, out)
	default:
		err = writeBatchTable(stdout, out.Devices)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

// runBatch generates codes for every entry. All events share one run ID.
// Generation stops at the first failure so that no partial batch is printed.
func runBatch(entries []manifest.Entry, logger log.Logger) (BatchOutput, error) {
	out := BatchOutput{RunID: uuid.NewString()}

	for i, e := range entries {
		gen, err := generate(e.Payload)

		event := log.NewGenerateEvent(e.Payload, gen.QRCode, gen.ManualCode, err)
		event.RunID = out.RunID
		event.Input = e.Serial
		logger.Log(event)

		if err != nil {
			return out, &manifest.EntryError{Index: i, Serial: e.Serial, Err: err}
		}

		long, _ := e.Payload.LongDiscriminator()
		out.Devices = append(out.Devices, BatchRecord{
			Serial:        e.Serial,
			Discriminator: long,
			Passcode:      e.Payload.Passcode,
			ManualCode:    gen.ManualCode,
			QRCode:        gen.QRCode,
			Generated:     e.GeneratedPasscode || e.GeneratedDiscriminator,
		})
	}
	return out, nil
}

func writeBatchTable(w io.Writer, records []BatchRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL\tDISCRIMINATOR\tPASSCODE\tMANUALCODE\tQRCODE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%08d\t%s\t%s\n", r.Serial, r.Discriminator, r.Passcode, r.ManualCode, r.QRCode)
	}
	return tw.Flush()
}

func writeBatchCSV(w io.Writer, records []BatchRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"serial", "discriminator", "passcode", "manualcode", "qrcode"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Serial,
			strconv.FormatUint(uint64(r.Discriminator), 10),
			fmt.Sprintf("%08d", r.Passcode),
			r.ManualCode,
			r.QRCode,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseBatchArgs(args []string, stdout io.Writer) (*BatchOptions, bool, error) {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	opts := &BatchOptions{}

	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml, csv)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	opts.register(fs)

	help, err := parseFlags(fs, args, printBatchUsage, stdout)
	if help || err != nil {
		return opts, help, err
	}

	if fs.NArg() != 1 {
		return opts, false, errors.New("exactly one manifest file required")
	}
	opts.Manifest = fs.Arg(0)
	if err := outputFormat(opts.Format, "text", "json", "yaml", "csv"); err != nil {
		return opts, false, err
	}
	return opts, false, nil
}

func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: setup-payload batch [options] <manifest.yaml>

Generates QR and manual codes for every device in a YAML manifest.
Missing passcodes and discriminators are generated at random.

Options:
  -f, --format  Output format (text, json, yaml, csv) [default: text]
  --log-file    Append CBOR codec events to this file
  --verbose     Log codec events to stderr

Examples:
  setup-payload batch devices.yaml
  setup-payload batch --format csv --log-file run.plog devices.yaml`)
}
