package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/mash-protocol/setup-payload/pkg/log"
	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// Default values for optional generate flags.
const (
	defaultDiscovery = payload.DiscoveryOnNetwork
	maxDiscoveryFlag = 7
)

// GenerateOptions configures the generate command.
type GenerateOptions struct {
	Discriminator numberFlag
	Passcode      numberFlag
	VendorID      numberFlag
	ProductID     numberFlag
	Discovery     numberFlag
	Flow          string
	Format        string
	loggingOptions
}

// GenerateOutput is the json/yaml form of generate's result.
type GenerateOutput struct {
	ManualCode        string        `json:"manualcode" yaml:"manualcode"`
	ManualCodeGrouped string        `json:"manualcode_grouped" yaml:"manualcode_grouped"`
	QRCode            string        `json:"qrcode" yaml:"qrcode"`
	QRCodeLink        string        `json:"qrcode_link" yaml:"qrcode_link"`
	Payload           PayloadOutput `json:"payload" yaml:"payload"`
}

// RunGenerate runs the generate command.
func RunGenerate(args []string, stdout, stderr io.Writer) int {
	opts, help, err := parseGenerateArgs(args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printGenerateUsage(stderr)
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

	return generateAndPrint(opts, logger, stdout, stderr)
}

// generateAndPrint encodes the payload described by opts, logs the result
// to logger and prints it in opts.Format.
func generateAndPrint(opts *GenerateOptions, logger log.Logger, stdout, stderr io.Writer) int {
	p, err := opts.payload()
	if err != nil {
		return reportError(stderr, err)
	}

	out, err := generate(p)
	logger.Log(log.NewGenerateEvent(p, out.QRCode, out.ManualCode, err))
	if err != nil {
		return reportError(stderr, err)
	}

	if opts.Format != "text" {
		if err := writeStructured(stdout, opts.Format, out); err != nil {
			return reportError(stderr, err)
		}
		return exitSuccess
	}

	fmt.Fprintf(stdout, "Manualcode : %s\n", out.ManualCode)
	fmt.Fprintf(stdout, "QRCode : %s\n", out.QRCode)
	fmt.Fprintf(stdout, "QRCode Link: %s\n", out.QRCodeLink)
	return exitSuccess
}

// payload range-checks the flags and builds the payload to encode.
func (o *GenerateOptions) payload() (*payload.SetupPayload, error) {
	if err := payload.CheckRange("discriminator", o.Discriminator.value, 0, payload.DiscriminatorMax); err != nil {
		return nil, err
	}
	if err := payload.CheckRange("passcode", o.Passcode.value, payload.PasscodeMin, payload.PasscodeMax); err != nil {
		return nil, err
	}
	if err := payload.CheckRange("vendor id", o.VendorID.value, 0, 0xFFFF); err != nil {
		return nil, err
	}
	if err := payload.CheckRange("product id", o.ProductID.value, 0, 0xFFFF); err != nil {
		return nil, err
	}

	discovery := uint64(defaultDiscovery)
	if o.Discovery.set {
		discovery = o.Discovery.value
	}
	if err := payload.CheckRange("discovery capabilities", discovery, 0, maxDiscoveryFlag); err != nil {
		return nil, err
	}

	flow, err := payload.ParseCommissioningFlow(o.Flow)
	if err != nil {
		return nil, err
	}

	p := payload.New(uint16(o.Discriminator.value), uint32(o.Passcode.value),
		uint16(o.VendorID.value), uint16(o.ProductID.value),
		payload.DiscoveryCapabilities(discovery), flow)
	if err := p.Validate(payload.ValidationModeProduce); err != nil {
		return nil, err
	}
	return p, nil
}

// generate produces both codes for p.
func generate(p *payload.SetupPayload) (GenerateOutput, error) {
	manual, err := p.ManualCode()
	if err != nil {
		return GenerateOutput{}, err
	}
	qr, err := p.QRCode()
	if err != nil {
		return GenerateOutput{}, err
	}
	link, err := p.QRCodeLink()
	if err != nil {
		return GenerateOutput{}, err
	}
	return GenerateOutput{
		ManualCode:        manual,
		ManualCodeGrouped: payload.GroupManualCode(manual),
		QRCode:            qr,
		QRCodeLink:        link,
		Payload:           buildPayloadOutput(p, payload.FormatQRCode),
	}, nil
}

func parseGenerateArgs(args []string, stdout io.Writer) (*GenerateOptions, bool, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	opts := &GenerateOptions{}

	numberVar(fs, &opts.Discriminator, "Discriminator (0..4095)", "discriminator", "d")
	numberVar(fs, &opts.Passcode, "Setup passcode (1..99999998)", "passcode", "p")
	numberVar(fs, &opts.VendorID, "Vendor ID (0..0xFFFF)", "vendor-id", "vid")
	numberVar(fs, &opts.ProductID, "Product ID (0..0xFFFF)", "product-id", "pid")
	numberVar(fs, &opts.Discovery, "Discovery capability bitmask (0..7)", "discovery-cap-bitmask", "dm")
	fs.StringVar(&opts.Flow, "commissioning-flow", "0", "Commissioning flow (0..2 or name)")
	fs.StringVar(&opts.Flow, "cf", "0", "Commissioning flow (shorthand)")
	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	opts.register(fs)

	help, err := parseFlags(fs, args, printGenerateUsage, stdout)
	if help || err != nil {
		return opts, help, err
	}

	if fs.NArg() > 0 {
		return opts, false, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if !opts.Discriminator.set {
		return opts, false, errors.New("--discriminator is required")
	}
	if !opts.Passcode.set {
		return opts, false, errors.New("--passcode is required")
	}
	if err := outputFormat(opts.Format, "text", "json", "yaml"); err != nil {
		return opts, false, err
	}
	return opts, false, nil
}

func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: setup-payload generate [options]

Options:
  -d, --discriminator           Discriminator (0..4095) [required]
  -p, --passcode                Setup passcode (1..99999998) [required]
  -vid, --vendor-id             Vendor ID (0..0xFFFF) [default: 0]
  -pid, --product-id            Product ID (0..0xFFFF) [default: 0]
  -dm, --discovery-cap-bitmask  Discovery capabilities: 1 SoftAP, 2 BLE, 4 OnNetwork [default: 4]
  -cf, --commissioning-flow     0 Standard, 1 UserIntent, 2 Custom [default: 0]
  -f, --format                  Output format (text, json, yaml) [default: text]
  --log-file                    Append CBOR codec events to this file
  --verbose                     Log codec events to stderr

Numbers may be decimal or 0x-prefixed hex.

Examples:
  setup-payload generate -d 3840 -p 20202021 -vid 0xFFF1 -pid 0x8001
  setup-payload generate -d 3840 -p 20202021 -cf 2 --format json`)
}
