// Package commands implements the setup-payload CLI commands.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/mash-protocol/setup-payload/pkg/log"
	"github.com/mash-protocol/setup-payload/pkg/payload"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitPayloadError = 2
)

// numberFlag is a flag.Value accepting decimal or 0x-prefixed hex.
type numberFlag struct {
	value uint64
	set   bool
}

func (n *numberFlag) String() string {
	if n == nil || !n.set {
		return ""
	}
	return strconv.FormatUint(n.value, 10)
}

func (n *numberFlag) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	n.value = v
	n.set = true
	return nil
}

// numberVar registers n under every name.
func numberVar(fs *flag.FlagSet, n *numberFlag, usage string, names ...string) {
	for _, name := range names {
		fs.Var(n, name, usage)
	}
}

// outputFormat validates a --format value against the allowed set.
func outputFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q", format)
}

// loggingOptions are shared by commands that record codec events.
type loggingOptions struct {
	LogFile string
	Verbose bool
}

func (o *loggingOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.LogFile, "log-file", "", "Append CBOR codec events to this file")
	fs.BoolVar(&o.Verbose, "verbose", false, "Log codec events to stderr")
}

// openLogger builds the event logger selected by o. The returned close
// function must be called when the command finishes.
func (o *loggingOptions) openLogger(stderr io.Writer) (log.Logger, func(), error) {
	var loggers []log.Logger
	var fileLogger *log.FileLogger

	if o.Verbose {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}
	if o.LogFile != "" {
		var err error
		fileLogger, err = log.NewFileLogger(o.LogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		loggers = append(loggers, fileLogger)
	}

	closeFn := func() {
		if fileLogger != nil {
			if err := fileLogger.Err(); err != nil {
				fmt.Fprintf(stderr, "Warning: log file: %v\n", err)
			}
			fileLogger.Close()
		}
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}

// reportError prints a one-line diagnostic and returns the exit code for
// err: exitPayloadError for codec errors, exitCommandError otherwise.
func reportError(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if isPayloadError(err) {
		return exitPayloadError
	}
	return exitCommandError
}

func isPayloadError(err error) bool {
	kind := payload.ErrorKind(err)
	return kind != "" && kind != "Unknown"
}

// parseFlags parses args, mapping -h/--help to a printed usage.
func parseFlags(fs *flag.FlagSet, args []string, usage func(io.Writer), stdout io.Writer) (help bool, err error) {
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(stdout)
			return true, nil
		}
		return false, err
	}
	return false, nil
}
