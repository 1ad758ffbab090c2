package payload

import (
	"fmt"
	"strings"
)

// Format identifies a textual payload encoding.
type Format uint8

const (
	FormatQRCode Format = iota
	FormatManualCode
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatQRCode:
		return "qrcode"
	case FormatManualCode:
		return "manualcode"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// DetectFormat returns FormatQRCode for strings starting with "MT:" and
// FormatManualCode for everything else.
func DetectFormat(s string) Format {
	if strings.HasPrefix(strings.TrimSpace(s), QRCodePrefix) {
		return FormatQRCode
	}
	return FormatManualCode
}

// Parse decodes a QR code or a manual pairing code. The "MT:" prefix is
// the only content inspected to choose between them.
//
// Input that is not a QR code and does not have the shape of a manual code
// (11 or 21 digits) fails with an error matching both
// ErrUnrecognizedPayload and the underlying manual code error.
func Parse(s string) (*SetupPayload, error) {
	if DetectFormat(s) == FormatQRCode {
		return ParseQRCode(s)
	}

	p, err := ParseManualCode(s)
	if err != nil && !looksLikeManualCode(s) {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedPayload, err)
	}
	return p, err
}

func looksLikeManualCode(s string) bool {
	code := stripSeparators(s)
	return isDigits(code) && (len(code) == ManualCodeShortLength || len(code) == ManualCodeLongLength)
}
