package payload

import (
	"errors"
	"fmt"

	"github.com/mash-protocol/setup-payload/pkg/base38"
)

// Payload errors.
var (
	// ErrInvalidCharacter is returned when a QR code contains a symbol
	// outside the Base38 alphabet.
	ErrInvalidCharacter = base38.ErrInvalidCharacter

	// ErrMalformedInput is returned when a QR code body has a length or
	// chunk value that no encoder produces.
	ErrMalformedInput = base38.ErrMalformedInput

	ErrInvalidLength        = errors.New("payload: invalid manual code length")
	ErrInvalidFormat        = errors.New("payload: invalid format")
	ErrChecksumMismatch     = errors.New("payload: checksum mismatch")
	ErrOutOfRange           = errors.New("payload: value out of range")
	ErrInvalidPasscode      = errors.New("payload: disallowed passcode")
	ErrIncomplete           = errors.New("payload: field required by format is absent")
	ErrUnrecognizedPayload  = errors.New("payload: neither a QR code nor a manual pairing code")
	ErrInvalidDiscoveryBits = errors.New("payload: unknown discovery capability bits")
)

// FieldError reports a semantic field whose value exceeds its range.
// It matches ErrOutOfRange with errors.Is.
type FieldError struct {
	Field string
	Value uint64
	Min   uint64
	Max   uint64
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s %d not in [%d, %d]", ErrOutOfRange, e.Field, e.Value, e.Min, e.Max)
}

// Unwrap returns ErrOutOfRange.
func (e *FieldError) Unwrap() error {
	return ErrOutOfRange
}

// CheckRange returns a *FieldError if v is outside [lo, hi].
func CheckRange(field string, v, lo, hi uint64) error {
	if v < lo || v > hi {
		return &FieldError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// errorKinds is checked in order; the first match names the error.
var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrUnrecognizedPayload, "UnrecognizedPayload"},
	{ErrInvalidCharacter, "InvalidCharacter"},
	{ErrMalformedInput, "MalformedInput"},
	{ErrInvalidLength, "InvalidLength"},
	{ErrChecksumMismatch, "ChecksumMismatch"},
	{ErrInvalidFormat, "InvalidFormat"},
	{ErrOutOfRange, "OutOfRange"},
	{ErrInvalidPasscode, "InvalidPasscode"},
	{ErrIncomplete, "Incomplete"},
	{ErrInvalidDiscoveryBits, "InvalidDiscoveryBits"},
}

// ErrorKind returns the taxonomy name of err, such as "ChecksumMismatch",
// "Unknown" for errors outside the taxonomy, or "" for nil.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Unknown"
}
