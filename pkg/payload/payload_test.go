package payload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDiscriminator = 3840
	testPasscode      = 20202021
	testVendorID      = 0xFFF1
	testProductID     = 0x8001
)

func testPayload(discovery DiscoveryCapabilities, flow CommissioningFlow) *SetupPayload {
	return New(testDiscriminator, testPasscode, testVendorID, testProductID, discovery, flow)
}

func TestDiscriminator(t *testing.T) {
	long := LongDiscriminator(0xF00)
	assert.False(t, long.IsShort())
	v, ok := long.Long()
	assert.True(t, ok)
	assert.Equal(t, uint16(0xF00), v)
	assert.Equal(t, uint8(0xF), long.Short())
	assert.True(t, long.Matches(0xF00))
	assert.False(t, long.Matches(0xF01))
	assert.Equal(t, "long:3840", long.String())

	short := ShortDiscriminator(0xF)
	assert.True(t, short.IsShort())
	_, ok = short.Long()
	assert.False(t, ok)
	assert.Equal(t, uint8(0xF), short.Short())
	assert.True(t, short.Matches(0xF00))
	assert.True(t, short.Matches(0xFFF))
	assert.False(t, short.Matches(0xE00))
	assert.Equal(t, "short:15", short.String())
}

func TestDiscoveryCapabilitiesString(t *testing.T) {
	tests := []struct {
		caps DiscoveryCapabilities
		want string
	}{
		{0, "none"},
		{DiscoveryBLE, "BLE"},
		{DiscoveryOnNetwork, "OnNetwork"},
		{DiscoverySoftAP | DiscoveryBLE | DiscoveryOnNetwork, "SoftAP|BLE|OnNetwork"},
		{DiscoveryBLE | 0x10, "BLE|0x10"},
	}

	for _, tt := range tests {
		if got := tt.caps.String(); got != tt.want {
			t.Errorf("DiscoveryCapabilities(%d).String() = %q, want %q", tt.caps, got, tt.want)
		}
	}
}

func TestParseCommissioningFlow(t *testing.T) {
	tests := []struct {
		in      string
		want    CommissioningFlow
		wantErr bool
	}{
		{"0", FlowStandard, false},
		{"standard", FlowStandard, false},
		{"1", FlowUserIntent, false},
		{"UserIntent", FlowUserIntent, false},
		{"2", FlowCustom, false},
		{"Custom", FlowCustom, false},
		{"3", 0, true},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCommissioningFlow(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommissioningFlow(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			assert.ErrorIs(t, err, ErrOutOfRange)
			continue
		}
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "Unknown(3)", CommissioningFlow(3).String())
}

func TestValidatePasscode(t *testing.T) {
	tests := []struct {
		passcode uint32
		wantErr  error
	}{
		{1, nil},
		{20202021, nil},
		{PasscodeMax, nil},
		{0, ErrOutOfRange},
		{PasscodeMax + 1, ErrOutOfRange},
		{1 << 27, ErrOutOfRange},
		{11111111, ErrInvalidPasscode},
		{12345678, ErrInvalidPasscode},
		{87654321, ErrInvalidPasscode},
	}

	for _, tt := range tests {
		err := ValidatePasscode(tt.passcode)
		if tt.wantErr == nil {
			assert.NoError(t, err, "passcode %d", tt.passcode)
			continue
		}
		assert.ErrorIs(t, err, tt.wantErr, "passcode %d", tt.passcode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *SetupPayload)
		mode    ValidationMode
		wantErr error
	}{
		{"valid", func(p *SetupPayload) {}, ValidationModeProduce, nil},
		{"version", func(p *SetupPayload) { p.Version = 1 }, ValidationModeProduce, ErrInvalidFormat},
		{"discriminator", func(p *SetupPayload) { p.Discriminator = LongDiscriminator(4096) }, ValidationModeProduce, ErrOutOfRange},
		{"short discriminator", func(p *SetupPayload) { p.Discriminator = ShortDiscriminator(16) }, ValidationModeProduce, ErrOutOfRange},
		{"zero passcode", func(p *SetupPayload) { p.Passcode = 0 }, ValidationModeProduce, ErrOutOfRange},
		{"big passcode", func(p *SetupPayload) { p.Passcode = 0x5F5E0FF }, ValidationModeProduce, ErrOutOfRange},
		{"disallowed passcode", func(p *SetupPayload) { p.Passcode = 88888888 }, ValidationModeProduce, ErrInvalidPasscode},
		{"reserved flow", func(p *SetupPayload) { p.Flow = 3 }, ValidationModeProduce, ErrOutOfRange},
		{"unknown discovery", func(p *SetupPayload) { p.Discovery = 0x08 }, ValidationModeProduce, ErrInvalidDiscoveryBits},
		{"consume reserved flow", func(p *SetupPayload) { p.Flow = 3 }, ValidationModeConsume, nil},
		{"consume disallowed passcode", func(p *SetupPayload) { p.Passcode = 88888888 }, ValidationModeConsume, nil},
		{"consume unknown discovery", func(p *SetupPayload) { p.Discovery = 0xFF }, ValidationModeConsume, nil},
		{"consume oversized passcode", func(p *SetupPayload) { p.Passcode = 1 << 27 }, ValidationModeConsume, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPayload(DiscoveryBLE, FlowStandard)
			tt.mutate(p)
			err := p.Validate(tt.mode)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFieldError(t *testing.T) {
	err := CheckRange("vendor id", 0x10000, 0, 0xFFFF)
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "vendor id", fe.Field)
	assert.Equal(t, uint64(0x10000), fe.Value)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "vendor id 65536 not in [0, 65535]")

	assert.NoError(t, CheckRange("vendor id", 0xFFFF, 0, 0xFFFF))
}

func TestGeneratePasscode(t *testing.T) {
	seen := make(map[uint32]bool)
	for range 100 {
		passcode, err := GeneratePasscode()
		require.NoError(t, err)
		require.NoError(t, ValidatePasscode(passcode))
		seen[passcode] = true
	}
	if len(seen) < 90 {
		t.Errorf("expected more unique passcodes, got %d", len(seen))
	}
}

func TestGenerateDiscriminator(t *testing.T) {
	for range 100 {
		d, err := GenerateDiscriminator()
		require.NoError(t, err)
		assert.LessOrEqual(t, d, uint16(DiscriminatorMax))
	}
}

func TestPayloadAccessors(t *testing.T) {
	p := testPayload(DiscoveryBLE|DiscoveryOnNetwork, FlowStandard)

	long, ok := p.LongDiscriminator()
	assert.True(t, ok)
	assert.Equal(t, uint16(testDiscriminator), long)
	assert.Equal(t, uint8(testDiscriminator>>8), p.ShortDiscriminator())
	assert.True(t, p.SupportsBLE())
	assert.True(t, p.SupportsOnNetwork())
	assert.True(t, p.HasVendorProduct())
	assert.Equal(t,
		"flow=Standard passcode=20202021 discriminator=long:3840 discovery=BLE|OnNetwork vid=0xFFF1 pid=0x8001",
		p.String())

	p.HasDiscovery = false
	assert.False(t, p.SupportsBLE())
	assert.Contains(t, p.String(), "discovery=None")
}

func TestHasVendorProductZeroIDs(t *testing.T) {
	p := New(testDiscriminator, testPasscode, 0, 0, DiscoveryOnNetwork, FlowCustom)
	code, err := p.ManualCode()
	require.NoError(t, err)
	require.Len(t, code, ManualCodeLongLength)

	got, err := ParseManualCode(code)
	require.NoError(t, err)
	assert.Equal(t, FlowCustom, got.Flow)
	assert.False(t, got.HasVendorProduct())

	got.VendorID = 0xFFF1
	assert.True(t, got.HasVendorProduct())
}
