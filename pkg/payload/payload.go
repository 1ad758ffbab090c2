package payload

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// SetupPayload holds the onboarding parameters of a Matter device.
//
// A payload built by a provisioning tool has a long discriminator and
// discovery capabilities. A payload parsed from a manual pairing code has
// only the short discriminator, no discovery capabilities, and collapses
// UserIntent to Custom because the manual format records only whether
// vendor and product IDs are present.
type SetupPayload struct {
	// Version is a 3-bit field and is always 0.
	Version uint8

	VendorID  uint16
	ProductID uint16

	Flow CommissioningFlow

	// Discovery is meaningful only when HasDiscovery is set. Zero is a
	// valid bitmask, so absence is never encoded as zero.
	Discovery    DiscoveryCapabilities
	HasDiscovery bool

	Discriminator Discriminator

	// Passcode is the 27-bit setup PIN.
	Passcode uint32

	// OptionalData holds the bytes following the fixed QR code header.
	// They are carried through unparsed.
	OptionalData []byte
}

// New returns a payload with a long discriminator and discovery
// capabilities, suitable for both QR and manual code generation.
func New(discriminator uint16, passcode uint32, vendorID, productID uint16,
	discovery DiscoveryCapabilities, flow CommissioningFlow) *SetupPayload {
	return &SetupPayload{
		VendorID:      vendorID,
		ProductID:     productID,
		Flow:          flow,
		Discovery:     discovery,
		HasDiscovery:  true,
		Discriminator: LongDiscriminator(discriminator),
		Passcode:      passcode,
	}
}

// ValidationMode controls validation strictness.
type ValidationMode int

const (
	// ValidationModeProduce is strict: only values defined for payload
	// version 0 are accepted.
	ValidationModeProduce ValidationMode = iota

	// ValidationModeConsume tolerates reserved flows, unknown discovery
	// bits and disallowed passcodes, so that parsed payloads from newer
	// or non-conforming devices can still be inspected.
	ValidationModeConsume
)

// disallowedPasscodes must never be used as a setup PIN.
var disallowedPasscodes = map[uint32]bool{
	0:        true,
	11111111: true,
	22222222: true,
	33333333: true,
	44444444: true,
	55555555: true,
	66666666: true,
	77777777: true,
	88888888: true,
	99999999: true,
	12345678: true,
	87654321: true,
}

// ValidatePasscode checks the passcode range and the disallowed list.
func ValidatePasscode(passcode uint32) error {
	if err := CheckRange("passcode", uint64(passcode), PasscodeMin, PasscodeMax); err != nil {
		return err
	}
	if disallowedPasscodes[passcode] {
		return fmt.Errorf("%w: %08d", ErrInvalidPasscode, passcode)
	}
	return nil
}

// Validate checks every field against its declared range.
func (p *SetupPayload) Validate(mode ValidationMode) error {
	if p.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, p.Version)
	}

	if err := p.Discriminator.validate(); err != nil {
		return err
	}

	if mode == ValidationModeProduce {
		if err := ValidatePasscode(p.Passcode); err != nil {
			return err
		}
		if err := CheckRange("commissioning flow", uint64(p.Flow), uint64(FlowStandard), uint64(FlowCustom)); err != nil {
			return err
		}
		if p.HasDiscovery && p.Discovery&^DiscoveryKnown != 0 {
			return fmt.Errorf("%w: 0x%02X", ErrInvalidDiscoveryBits, uint8(p.Discovery))
		}
		return nil
	}

	if err := CheckRange("passcode", uint64(p.Passcode), 0, 1<<passcodeBits-1); err != nil {
		return err
	}
	return CheckRange("commissioning flow", uint64(p.Flow), 0, 1<<flowBits-1)
}

// LongDiscriminator returns the 12-bit discriminator if known.
func (p *SetupPayload) LongDiscriminator() (uint16, bool) {
	return p.Discriminator.Long()
}

// ShortDiscriminator returns the top 4 bits of the discriminator.
func (p *SetupPayload) ShortDiscriminator() uint8 {
	return p.Discriminator.Short()
}

// HasVendorProduct reports whether either ID is non-zero. Zero is treated
// as "not specified": a 21-digit manual code that embeds vid 0 and pid 0
// reports false even though its flow is Custom.
func (p *SetupPayload) HasVendorProduct() bool {
	return p.VendorID != 0 || p.ProductID != 0
}

// SupportsOnNetwork reports whether the device is discoverable on IP.
func (p *SetupPayload) SupportsOnNetwork() bool {
	return p.HasDiscovery && p.Discovery.Has(DiscoveryOnNetwork)
}

// SupportsBLE reports whether the device is discoverable over BLE.
func (p *SetupPayload) SupportsBLE() bool {
	return p.HasDiscovery && p.Discovery.Has(DiscoveryBLE)
}

// String returns a single-line summary.
func (p *SetupPayload) String() string {
	discovery := "None"
	if p.HasDiscovery {
		discovery = p.Discovery.String()
	}
	return fmt.Sprintf("flow=%s passcode=%08d discriminator=%s discovery=%s vid=0x%04X pid=0x%04X",
		p.Flow, p.Passcode, p.Discriminator, discovery, p.VendorID, p.ProductID)
}

// GeneratePasscode returns a random passcode that passes ValidatePasscode.
func GeneratePasscode() (uint32, error) {
	span := big.NewInt(PasscodeMax - PasscodeMin + 1)
	for {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return 0, fmt.Errorf("failed to generate passcode: %w", err)
		}
		passcode := uint32(n.Uint64()) + PasscodeMin
		if !disallowedPasscodes[passcode] {
			return passcode, nil
		}
	}
}

// GenerateDiscriminator returns a random 12-bit discriminator.
func GenerateDiscriminator() (uint16, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(DiscriminatorMax+1))
	if err != nil {
		return 0, fmt.Errorf("failed to generate discriminator: %w", err)
	}
	return uint16(n.Uint64()), nil
}
