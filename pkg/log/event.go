package log

import (
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// Event represents one codec operation.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the operation completed (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ID uniquely identifies the event (UUID).
	ID string `cbor:"2,keyasint"`

	// RunID groups events from one batch run (UUID).
	RunID string `cbor:"3,keyasint,omitempty"`

	// Operation is what was performed.
	Operation Operation `cbor:"4,keyasint"`

	// Format is the textual encoding involved.
	Format Format `cbor:"5,keyasint"`

	// Input is the string being parsed, or the serial of a batch entry.
	Input string `cbor:"6,keyasint,omitempty"`

	// Output holds the generated codes (generate only).
	Output *OutputData `cbor:"7,keyasint,omitempty"`

	// Payload holds the fields that were encoded or decoded.
	Payload *PayloadFields `cbor:"8,keyasint,omitempty"`

	// Error is set when the operation failed.
	Error *ErrorEventData `cbor:"9,keyasint,omitempty"`
}

// Operation identifies the codec operation.
type Operation uint8

const (
	// OperationGenerate is code generation from fields.
	OperationGenerate Operation = 0
	// OperationParse is decoding of a QR or manual code.
	OperationParse Operation = 1
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OperationGenerate:
		return "GENERATE"
	case OperationParse:
		return "PARSE"
	default:
		return "UNKNOWN"
	}
}

// Format identifies the textual encoding.
type Format uint8

const (
	// FormatBoth is used by generate, which produces both codes.
	FormatBoth Format = 0
	// FormatQRCode is the "MT:" base38 encoding.
	FormatQRCode Format = 1
	// FormatManualCode is the 11 or 21 digit encoding.
	FormatManualCode Format = 2
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatBoth:
		return "BOTH"
	case FormatQRCode:
		return "QRCODE"
	case FormatManualCode:
		return "MANUALCODE"
	default:
		return "UNKNOWN"
	}
}

// FormatOf converts a payload format.
func FormatOf(f payload.Format) Format {
	if f == payload.FormatQRCode {
		return FormatQRCode
	}
	return FormatManualCode
}

// OutputData captures the generated codes.
type OutputData struct {
	QRCode     string `cbor:"1,keyasint,omitempty"`
	ManualCode string `cbor:"2,keyasint,omitempty"`
}

// PayloadFields is the logged form of a payload.SetupPayload.
// Absent optional fields are nil pointers.
type PayloadFields struct {
	Version            uint8   `cbor:"1,keyasint"`
	VendorID           uint16  `cbor:"2,keyasint,omitempty"`
	ProductID          uint16  `cbor:"3,keyasint,omitempty"`
	Flow               uint8   `cbor:"4,keyasint"`
	Discovery          *uint8  `cbor:"5,keyasint,omitempty"`
	LongDiscriminator  *uint16 `cbor:"6,keyasint,omitempty"`
	ShortDiscriminator uint8   `cbor:"7,keyasint"`
	Passcode           uint32  `cbor:"8,keyasint"`
}

// FieldsOf returns the logged form of p.
func FieldsOf(p *payload.SetupPayload) *PayloadFields {
	f := &PayloadFields{
		Version:            p.Version,
		VendorID:           p.VendorID,
		ProductID:          p.ProductID,
		Flow:               uint8(p.Flow),
		ShortDiscriminator: p.ShortDiscriminator(),
		Passcode:           p.Passcode,
	}
	if p.HasDiscovery {
		d := uint8(p.Discovery)
		f.Discovery = &d
	}
	if long, ok := p.LongDiscriminator(); ok {
		f.LongDiscriminator = &long
	}
	return f
}

// ErrorEventData captures a failed operation.
type ErrorEventData struct {
	// Kind is the error taxonomy name, e.g. "ChecksumMismatch".
	Kind string `cbor:"1,keyasint"`

	// Message is the full error text.
	Message string `cbor:"2,keyasint"`
}

// NewGenerateEvent builds the event for a generate of p. qr or manual may
// be empty when that code was not produced.
func NewGenerateEvent(p *payload.SetupPayload, qr, manual string, err error) Event {
	e := Event{
		Timestamp: time.Now(),
		ID:        uuid.NewString(),
		Operation: OperationGenerate,
		Format:    FormatBoth,
		Payload:   FieldsOf(p),
	}
	if qr != "" || manual != "" {
		e.Output = &OutputData{QRCode: qr, ManualCode: manual}
	}
	e.Error = errorData(err)
	return e
}

// NewParseEvent builds the event for a parse of input. p is nil on failure.
func NewParseEvent(input string, p *payload.SetupPayload, err error) Event {
	e := Event{
		Timestamp: time.Now(),
		ID:        uuid.NewString(),
		Operation: OperationParse,
		Format:    FormatOf(payload.DetectFormat(input)),
		Input:     input,
	}
	if p != nil {
		e.Payload = FieldsOf(p)
	}
	e.Error = errorData(err)
	return e
}

func errorData(err error) *ErrorEventData {
	if err == nil {
		return nil
	}
	return &ErrorEventData{Kind: payload.ErrorKind(err), Message: err.Error()}
}
