// setup-payload generates and decodes Matter onboarding payloads: the
// "MT:" QR code text and the 11/21 digit manual pairing code.
package main

import (
	"fmt"
	"os"

	"github.com/mash-protocol/setup-payload/cmd/setup-payload/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "generate", "gen":
		exitCode = commands.RunGenerate(args, os.Stdout, os.Stderr)
	case "parse":
		exitCode = commands.RunParse(args, os.Stdout, os.Stderr)
	case "batch":
		exitCode = commands.RunBatch(args, os.Stdout, os.Stderr)
	case "discover":
		exitCode = commands.RunDiscover(args, os.Stdout, os.Stderr)
	case "shell":
		exitCode = commands.RunShell(args, os.Stdin, os.Stdout, os.Stderr)
	case "log":
		exitCode = commands.RunLog(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("setup-payload version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`setup-payload - Matter onboarding payload tool

Usage:
  setup-payload <command> [options] [arguments]

Commands:
  generate   Generate a QR code and manual pairing code
  parse      Decode a QR code or manual pairing code
  batch      Generate codes for every device in a YAML manifest
  discover   Find the commissionable device matching a payload via mDNS
  shell      Interactive decoder
  log        View a codec event log

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Exit codes:
  0  success
  1  usage or I/O error
  2  invalid payload or field value

Examples:
  setup-payload generate -d 3840 -p 20202021 -vid 0xFFF1 -pid 0x8001
  setup-payload parse MT:-24J0AFN00KA0648G00
  setup-payload batch --format csv devices.yaml

For command-specific help, run:
  setup-payload <command> --help`)
}
