package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mash-protocol/setup-payload/pkg/log"
)

// lineReader is the part of *readline.Instance the shell loop uses.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// ShellOptions configures the shell command.
type ShellOptions struct {
	loggingOptions
}

// RunShell runs an interactive decoder: each line is parsed and printed.
func RunShell(args []string, stdin io.ReadCloser, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	opts := &ShellOptions{}
	opts.register(fs)

	help, err := parseFlags(fs, args, printShellUsage, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printShellUsage(stderr)
		return exitCommandError
	}
	if help {
		return exitSuccess
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "payload> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryLimit:    100,
		Stdin:           stdin,
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create readline: %v\n", err)
		return exitCommandError
	}

	logger, closeLog, err := opts.openLogger(rl.Stderr())
	if err != nil {
		rl.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer closeLog()

	runShell(rl, logger, rl.Stdout(), rl.Stderr())
	return exitSuccess
}

// runShell reads lines until EOF or "exit". Payload errors are printed and
// the loop continues.
func runShell(rl lineReader, logger log.Logger, stdout, stderr io.Writer) {
	defer rl.Close()

	printShellHelp(stdout)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		fields := strings.Fields(input)
		switch strings.ToLower(fields[0]) {
		case "exit", "quit", "q":
			return
		case "help", "?":
			printShellHelp(stdout)
		case "generate", "gen":
			shellGenerate(fields[1:], logger, stdout, stderr)
		case "json", "yaml":
			parseAndPrint(strings.Join(fields[1:], " "), fields[0], logger, stdout, stderr)
		default:
			parseAndPrint(input, "text", logger, stdout, stderr)
		}
	}
}

// shellGenerate runs a generate line with the shell's logger. Logging
// flags on the line are ignored.
func shellGenerate(args []string, logger log.Logger, stdout, stderr io.Writer) {
	opts, help, err := parseGenerateArgs(args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return
	}
	if help {
		return
	}
	generateAndPrint(opts, logger, stdout, stderr)
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, `Enter a QR code or manual pairing code to decode it.
Commands:
  json <payload>       Decode and print as JSON
  yaml <payload>       Decode and print as YAML
  generate <options>   Same options as "setup-payload generate"
  help                 Show this help
  exit                 Leave the shell`)
}

func printShellUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: setup-payload shell [options]

Options:
  --log-file  Append CBOR codec events to this file
  --verbose   Log codec events to stderr`)
}
