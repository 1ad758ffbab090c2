package discovery

import (
	"errors"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeCommissionable is the service type for devices in commissioning mode.
	ServiceTypeCommissionable = "_matterc._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default Matter port.
	DefaultPort = 5540
)

// TXT record keys for commissionable discovery.
const (
	TXTKeyDiscriminator      = "D"
	TXTKeyVendorProduct      = "VP"
	TXTKeyCommissioningMode  = "CM"
	TXTKeyDeviceType         = "DT"
	TXTKeyDeviceName         = "DN"
	TXTKeyPairingHint        = "PH"
	TXTKeyPairingInstruction = "PI"
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// MaxDiscriminator is the maximum discriminator value (12 bits).
const MaxDiscriminator = 4095

// Discovery errors.
var (
	ErrInvalidTXTRecord     = errors.New("invalid TXT record format")
	ErrInvalidDiscriminator = errors.New("discriminator out of range")
	ErrMissingRequired      = errors.New("missing required field")
	ErrNotFound             = errors.New("no matching commissionable device found")
)

// CommissioningMode is the CM TXT value.
type CommissioningMode uint8

const (
	// CommissioningModeClosed means the window is not open.
	CommissioningModeClosed CommissioningMode = 0
	// CommissioningModeBasic is a window opened with the onboarding passcode.
	CommissioningModeBasic CommissioningMode = 1
	// CommissioningModeEnhanced is a window opened with a temporary passcode.
	CommissioningModeEnhanced CommissioningMode = 2
)

// String returns the mode name.
func (m CommissioningMode) String() string {
	switch m {
	case CommissioningModeClosed:
		return "CLOSED"
	case CommissioningModeBasic:
		return "BASIC"
	case CommissioningModeEnhanced:
		return "ENHANCED"
	default:
		return "UNKNOWN"
	}
}

// CommissionableNode is a device found advertising _matterc._udp.
type CommissionableNode struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// Host is the hostname.
	Host string

	// Port is the commissioning port.
	Port uint16

	// Addresses are the resolved IP addresses.
	Addresses []string

	// Discriminator is the 12-bit long discriminator.
	Discriminator uint16

	// VendorID and ProductID are set when HasVendorID / HasProductID.
	VendorID     uint16
	ProductID    uint16
	HasVendorID  bool
	HasProductID bool

	// CommissioningMode is the advertised window mode.
	CommissioningMode CommissioningMode

	// DeviceType is the primary device type, if advertised.
	DeviceType uint32

	// DeviceName is the optional user-visible name.
	DeviceName string

	// PairingHint and PairingInstruction describe how to open the window.
	PairingHint        uint16
	PairingInstruction string
}
