package payload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mash-protocol/setup-payload/pkg/bitpack"
	"github.com/mash-protocol/setup-payload/pkg/verhoeff"
)

// Manual pairing code lengths, check digit included.
const (
	ManualCodeShortLength = 11
	ManualCodeLongLength  = 21
)

const (
	fieldVendorProductPresent = "vid_pid_present"
	fieldPasscodeLSB          = "pincode_lsb"
	fieldPasscodeMSB          = "pincode_msb"

	passcodeLSBBits = 14
	passcodeMSBBits = passcodeBits - passcodeLSBBits

	// vendorProductFlag is the vid_pid_present bit within the first digit.
	vendorProductFlag = 1 << 2
	maxFirstDigit     = 7
)

// manualLayout is the bit structure sliced into decimal chunks. Chunk
// boundaries fall at bit offsets 4, 20 and 33, not at field boundaries.
var manualLayout = bitpack.NewLayout(bitpack.MSBFirst,
	bitpack.Field{Name: fieldVersion, Width: 1},
	bitpack.Field{Name: fieldVendorProductPresent, Width: 1},
	bitpack.Field{Name: fieldDiscriminator, Width: DiscriminatorShortBits},
	bitpack.Field{Name: fieldPasscodeLSB, Width: passcodeLSBBits},
	bitpack.Field{Name: fieldPasscodeMSB, Width: passcodeMSBBits},
	bitpack.Field{Name: fieldVendorID, Width: 16},
	bitpack.Field{Name: fieldProductID, Width: 16},
	bitpack.Field{Name: fieldPadding, Width: 7},
)

// manualChunk is a run of bits rendered as a fixed number of decimal digits.
type manualChunk struct {
	offset, bits uint
	digits       int
}

var manualChunks = []manualChunk{
	{offset: 0, bits: 4, digits: 1},
	{offset: 4, bits: 16, digits: 5},
	{offset: 20, bits: 13, digits: 4},
}

var vendorProductChunks = []manualChunk{
	{offset: 33, bits: 16, digits: 5},
	{offset: 49, bits: 16, digits: 5},
}

// ManualCode returns the 11-digit (Standard flow) or 21-digit manual
// pairing code for p. Vendor and product IDs are embedded only when the
// flow is not Standard.
func (p *SetupPayload) ManualCode() (string, error) {
	if err := p.Validate(ValidationModeProduce); err != nil {
		return "", err
	}

	longCode := p.Flow != FlowStandard
	values := bitpack.Values{
		fieldVersion:       uint64(p.Version),
		fieldDiscriminator: uint64(p.Discriminator.Short()),
		fieldPasscodeLSB:   uint64(p.Passcode) & (1<<passcodeLSBBits - 1),
		fieldPasscodeMSB:   uint64(p.Passcode) >> passcodeLSBBits,
	}
	if longCode {
		values[fieldVendorProductPresent] = 1
		values[fieldVendorID] = uint64(p.VendorID)
		values[fieldProductID] = uint64(p.ProductID)
	}

	data, err := manualLayout.Pack(values)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}

	chunks := manualChunks
	if longCode {
		chunks = append(chunks[:len(chunks):len(chunks)], vendorProductChunks...)
	}

	var sb strings.Builder
	for _, c := range chunks {
		v, err := bitpack.Slice(manualLayout.Order(), data, c.offset, c.bits)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%0*d", c.digits, v)
	}

	code, err := verhoeff.Append(sb.String())
	if err != nil {
		return "", err
	}
	return code, nil
}

// ParseManualCode parses an 11 or 21 digit manual pairing code. Spaces
// and dashes used for display grouping are ignored.
//
// The result has a short discriminator and no discovery capabilities. A
// code carrying vendor and product IDs yields FlowCustom, since the format
// cannot tell UserIntent from Custom.
func ParseManualCode(s string) (*SetupPayload, error) {
	code := stripSeparators(s)

	if len(code) != ManualCodeShortLength && len(code) != ManualCodeLongLength {
		return nil, fmt.Errorf("%w: %d digits, want %d or %d",
			ErrInvalidLength, len(code), ManualCodeShortLength, ManualCodeLongLength)
	}
	if !isDigits(code) {
		return nil, fmt.Errorf("%w: manual code must be decimal digits", ErrInvalidFormat)
	}
	if code[0]-'0' > maxFirstDigit {
		return nil, fmt.Errorf("%w: leading digit %c exceeds %d", ErrInvalidFormat, code[0], maxFirstDigit)
	}
	if err := verhoeff.Validate(code); err != nil {
		if errors.Is(err, verhoeff.ErrMismatch) {
			return nil, fmt.Errorf("%w: %v", ErrChecksumMismatch, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	longCode := (code[0]-'0')&vendorProductFlag != 0
	want := ManualCodeShortLength
	if longCode {
		want = ManualCodeLongLength
	}
	if len(code) != want {
		return nil, fmt.Errorf("%w: vendor/product flag requires %d digits, got %d",
			ErrInvalidLength, want, len(code))
	}

	chunks := manualChunks
	if longCode {
		chunks = append(chunks[:len(chunks):len(chunks)], vendorProductChunks...)
	}

	w := bitpack.NewWriter(manualLayout.Order(), manualLayout.Size())
	pos := 0
	for _, c := range chunks {
		digits := code[pos : pos+c.digits]
		pos += c.digits

		v, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if err := w.WriteBits(v, c.bits); err != nil {
			return nil, fmt.Errorf("%w: chunk %q: %v", ErrInvalidFormat, digits, err)
		}
	}

	values, err := manualLayout.Unpack(w.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	p := &SetupPayload{
		Version:       uint8(values[fieldVersion]),
		Discriminator: ShortDiscriminator(uint8(values[fieldDiscriminator])),
		Passcode:      uint32(values[fieldPasscodeMSB]<<passcodeLSBBits | values[fieldPasscodeLSB]),
		Flow:          FlowStandard,
	}
	if values[fieldVendorProductPresent] != 0 {
		p.Flow = FlowCustom
		p.VendorID = uint16(values[fieldVendorID])
		p.ProductID = uint16(values[fieldProductID])
	}
	return p, nil
}

// GroupManualCode groups a manual code for display: 4-3-4 for short
// codes, 4-3-4-5-5 for long ones. Other input is returned unchanged.
func GroupManualCode(code string) string {
	var groups []int
	switch len(code) {
	case ManualCodeShortLength:
		groups = []int{4, 3, 4}
	case ManualCodeLongLength:
		groups = []int{4, 3, 4, 5, 5}
	default:
		return code
	}

	parts := make([]string, 0, len(groups))
	pos := 0
	for _, n := range groups {
		parts = append(parts, code[pos:pos+n])
		pos += n
	}
	return strings.Join(parts, "-")
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
