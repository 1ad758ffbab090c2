package payload

import (
	"fmt"
	"strings"

	"github.com/mash-protocol/setup-payload/pkg/base38"
	"github.com/mash-protocol/setup-payload/pkg/bitpack"
)

// QR code constants.
const (
	// QRCodePrefix starts every QR code payload string.
	QRCodePrefix = "MT:"

	// QRCodeLinkBase renders a payload as a scannable QR code image.
	QRCodeLinkBase = "https://project-chip.github.io/connectedhomeip/qrcode.html?data="
)

// Field names shared by the QR and manual layouts.
const (
	fieldVersion       = "version"
	fieldVendorID      = "vid"
	fieldProductID     = "pid"
	fieldFlow          = "flow"
	fieldDiscovery     = "discovery"
	fieldDiscriminator = "discriminator"
	fieldPasscode      = "pincode"
	fieldPadding       = "padding"
)

const (
	versionBits   = 3
	flowBits      = 2
	discoveryBits = 8
	passcodeBits  = 27
)

// qrLayout is the 88-bit QR code header. Fields are assigned from the
// least significant bit of byte 0 upward, so the version lands in the low
// bits of the first byte and the padding in the high bits of the last.
var qrLayout = bitpack.NewLayout(bitpack.LSBFirst,
	bitpack.Field{Name: fieldVersion, Width: versionBits},
	bitpack.Field{Name: fieldVendorID, Width: 16},
	bitpack.Field{Name: fieldProductID, Width: 16},
	bitpack.Field{Name: fieldFlow, Width: flowBits},
	bitpack.Field{Name: fieldDiscovery, Width: discoveryBits},
	bitpack.Field{Name: fieldDiscriminator, Width: DiscriminatorLongBits},
	bitpack.Field{Name: fieldPasscode, Width: passcodeBits},
	bitpack.Field{Name: fieldPadding, Width: 4},
)

// QRCodeHeaderSize is the size in bytes of the fixed QR code header.
var QRCodeHeaderSize = qrLayout.Size()

// QRCode returns the "MT:" QR code string for p.
//
// The payload must carry a long discriminator and discovery capabilities;
// one parsed from a manual code cannot be turned into a QR code.
func (p *SetupPayload) QRCode() (string, error) {
	if err := p.Validate(ValidationModeProduce); err != nil {
		return "", err
	}
	long, ok := p.Discriminator.Long()
	if !ok {
		return "", fmt.Errorf("%w: QR code requires a long discriminator", ErrIncomplete)
	}
	if !p.HasDiscovery {
		return "", fmt.Errorf("%w: QR code requires discovery capabilities", ErrIncomplete)
	}

	header, err := qrLayout.Pack(bitpack.Values{
		fieldVersion:       uint64(p.Version),
		fieldVendorID:      uint64(p.VendorID),
		fieldProductID:     uint64(p.ProductID),
		fieldFlow:          uint64(p.Flow),
		fieldDiscovery:     uint64(p.Discovery),
		fieldDiscriminator: uint64(long),
		fieldPasscode:      uint64(p.Passcode),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}

	return QRCodePrefix + base38.Encode(append(header, p.OptionalData...)), nil
}

// QRCodeLink returns a URL rendering the payload's QR code.
func (p *SetupPayload) QRCodeLink() (string, error) {
	qr, err := p.QRCode()
	if err != nil {
		return "", err
	}
	return QRCodeLinkBase + qr, nil
}

// ParseQRCode parses an "MT:" QR code string.
//
// Padding bits are not checked. Bytes after the 11-byte header are kept in
// OptionalData.
func ParseQRCode(s string) (*SetupPayload, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, QRCodePrefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidFormat, QRCodePrefix)
	}

	data, err := base38.Decode(s[len(QRCodePrefix):])
	if err != nil {
		return nil, err
	}
	if len(data) < QRCodeHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformedInput, len(data), QRCodeHeaderSize)
	}

	v, err := qrLayout.Unpack(data[:QRCodeHeaderSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if v[fieldVersion] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, v[fieldVersion])
	}

	p := &SetupPayload{
		Version:       uint8(v[fieldVersion]),
		VendorID:      uint16(v[fieldVendorID]),
		ProductID:     uint16(v[fieldProductID]),
		Flow:          CommissioningFlow(v[fieldFlow]),
		Discovery:     DiscoveryCapabilities(v[fieldDiscovery]),
		HasDiscovery:  true,
		Discriminator: LongDiscriminator(uint16(v[fieldDiscriminator])),
		Passcode:      uint32(v[fieldPasscode]),
	}
	if rest := data[QRCodeHeaderSize:]; len(rest) > 0 {
		p.OptionalData = append([]byte(nil), rest...)
	}
	return p, nil
}
