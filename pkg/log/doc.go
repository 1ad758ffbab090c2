// Package log records setup payload codec operations.
//
// Every generate or parse performed by a tool can be captured as an Event:
// the input, the produced codes, the decoded fields and, on failure, the
// error kind. This is separate from operational logging (slog). The event
// log is a machine-readable audit trail, useful when a factory line must
// prove which codes were printed for which serial numbers.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For production: append to a binary file
//	logger, _ := log.NewFileLogger("provisioning.plog")
//
//	// Both
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer map keys.
// The "setup-payload log" command views and filters them.
package log
