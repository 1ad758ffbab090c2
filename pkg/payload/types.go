package payload

import (
	"fmt"
	"strings"
)

// Field limits.
const (
	DiscriminatorLongBits  = 12
	DiscriminatorShortBits = 4

	// DiscriminatorMax is the largest 12-bit discriminator.
	DiscriminatorMax = 1<<DiscriminatorLongBits - 1

	// ShortDiscriminatorMax is the largest 4-bit discriminator.
	ShortDiscriminatorMax = 1<<DiscriminatorShortBits - 1

	PasscodeMin = 1
	PasscodeMax = 99999998

	// Version is the only payload version this package produces or accepts.
	Version = 0
)

// Discriminator is a device discriminator as carried by a payload.
//
// QR codes carry the 12-bit long form. Manual pairing codes carry only the
// 4 most significant bits, so a discriminator parsed from one is short and
// its long value is unknown.
type Discriminator struct {
	value   uint16
	isShort bool
}

// LongDiscriminator returns a 12-bit discriminator. Validate rejects
// values above DiscriminatorMax.
func LongDiscriminator(value uint16) Discriminator {
	return Discriminator{value: value}
}

// ShortDiscriminator returns a 4-bit discriminator.
func ShortDiscriminator(value uint8) Discriminator {
	return Discriminator{value: uint16(value), isShort: true}
}

// IsShort reports whether only the 4-bit form is known.
func (d Discriminator) IsShort() bool {
	return d.isShort
}

// Long returns the 12-bit value, if known.
func (d Discriminator) Long() (uint16, bool) {
	if d.isShort {
		return 0, false
	}
	return d.value, true
}

// Short returns the 4-bit value: the top nibble of a long discriminator.
func (d Discriminator) Short() uint8 {
	if d.isShort {
		return uint8(d.value)
	}
	return uint8(d.value >> (DiscriminatorLongBits - DiscriminatorShortBits))
}

// Matches reports whether a 12-bit discriminator advertised by a device
// is consistent with d.
func (d Discriminator) Matches(long uint16) bool {
	if d.isShort {
		return uint8(long>>(DiscriminatorLongBits-DiscriminatorShortBits)) == uint8(d.value)
	}
	return d.value == long
}

func (d Discriminator) validate() error {
	if d.isShort {
		return CheckRange("short discriminator", uint64(d.value), 0, ShortDiscriminatorMax)
	}
	return CheckRange("discriminator", uint64(d.value), 0, DiscriminatorMax)
}

// String returns "long:N" or "short:N".
func (d Discriminator) String() string {
	if d.isShort {
		return fmt.Sprintf("short:%d", d.value)
	}
	return fmt.Sprintf("long:%d", d.value)
}

// DiscoveryCapabilities is the 8-bit rendezvous bitmask carried in QR codes.
type DiscoveryCapabilities uint8

const (
	DiscoverySoftAP    DiscoveryCapabilities = 1 << 0
	DiscoveryBLE       DiscoveryCapabilities = 1 << 1
	DiscoveryOnNetwork DiscoveryCapabilities = 1 << 2

	// DiscoveryKnown is the set of bits a produced payload may carry.
	DiscoveryKnown = DiscoverySoftAP | DiscoveryBLE | DiscoveryOnNetwork
)

// Has reports whether flag is set.
func (d DiscoveryCapabilities) Has(flag DiscoveryCapabilities) bool {
	return d&flag != 0
}

// String returns the set flags joined by '|', "none" for zero.
// Unknown bits are rendered as a hex remainder.
func (d DiscoveryCapabilities) String() string {
	if d == 0 {
		return "none"
	}

	var caps []string
	if d.Has(DiscoverySoftAP) {
		caps = append(caps, "SoftAP")
	}
	if d.Has(DiscoveryBLE) {
		caps = append(caps, "BLE")
	}
	if d.Has(DiscoveryOnNetwork) {
		caps = append(caps, "OnNetwork")
	}
	if rest := d &^ DiscoveryKnown; rest != 0 {
		caps = append(caps, fmt.Sprintf("0x%02X", uint8(rest)))
	}
	return strings.Join(caps, "|")
}

// CommissioningFlow is the onboarding UX variant.
type CommissioningFlow uint8

const (
	// FlowStandard devices enter pairing mode on power-up.
	FlowStandard CommissioningFlow = 0
	// FlowUserIntent devices need a user action before pairing.
	FlowUserIntent CommissioningFlow = 1
	// FlowCustom devices need vendor-defined steps.
	FlowCustom CommissioningFlow = 2
)

// String returns the flow name.
func (c CommissioningFlow) String() string {
	switch c {
	case FlowStandard:
		return "Standard"
	case FlowUserIntent:
		return "UserIntent"
	case FlowCustom:
		return "Custom"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// ParseCommissioningFlow accepts a flow name (case-insensitive) or its
// numeric value.
func ParseCommissioningFlow(s string) (CommissioningFlow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "standard":
		return FlowStandard, nil
	case "1", "userintent", "user-intent":
		return FlowUserIntent, nil
	case "2", "custom":
		return FlowCustom, nil
	}
	return 0, fmt.Errorf("%w: commissioning flow %q", ErrOutOfRange, s)
}
