package manifest

import (
	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// Entry is a resolved device.
type Entry struct {
	Serial  string
	Payload *payload.SetupPayload

	// GeneratedPasscode and GeneratedDiscriminator report values that
	// were drawn at random because the manifest did not set them.
	GeneratedPasscode      bool
	GeneratedDiscriminator bool
}

// Generator supplies random passcodes and discriminators.
type Generator struct {
	Passcode      func() (uint32, error)
	Discriminator func() (uint16, error)
}

// DefaultGenerator draws from crypto/rand.
var DefaultGenerator = Generator{
	Passcode:      payload.GeneratePasscode,
	Discriminator: payload.GenerateDiscriminator,
}

// Payloads resolves every device with DefaultGenerator.
func (m *Manifest) Payloads() ([]Entry, error) {
	return m.Resolve(DefaultGenerator)
}

// Resolve merges each device over the defaults, fills missing passcodes
// and discriminators from gen, and validates the result. The first
// failing entry aborts resolution with an *EntryError.
func (m *Manifest) Resolve(gen Generator) ([]Entry, error) {
	entries := make([]Entry, 0, len(m.Devices))
	for i, d := range m.Devices {
		e, err := resolve(m.Defaults.merge(d.Fields), gen)
		if err != nil {
			return nil, &EntryError{Index: i, Serial: d.Serial, Err: err}
		}
		e.Serial = d.Serial
		entries = append(entries, e)
	}
	return entries, nil
}

// merge returns f overridden by every field set in o.
func (f Fields) merge(o Fields) Fields {
	if o.VendorID != nil {
		f.VendorID = o.VendorID
	}
	if o.ProductID != nil {
		f.ProductID = o.ProductID
	}
	if o.Discovery != nil {
		f.Discovery = o.Discovery
	}
	if o.Flow != nil {
		f.Flow = o.Flow
	}
	if o.Discriminator != nil {
		f.Discriminator = o.Discriminator
	}
	if o.Passcode != nil {
		f.Passcode = o.Passcode
	}
	return f
}

func resolve(f Fields, gen Generator) (Entry, error) {
	var e Entry

	vid, err := field("vendor id", f.VendorID, 0, 0xFFFF, 0)
	if err != nil {
		return e, err
	}
	pid, err := field("product id", f.ProductID, 0, 0xFFFF, 0)
	if err != nil {
		return e, err
	}
	discovery, err := field("discovery capabilities", f.Discovery, 0, 0xFF, uint64(DefaultDiscovery))
	if err != nil {
		return e, err
	}
	flow := payload.FlowStandard
	if f.Flow != nil {
		flow = payload.CommissioningFlow(*f.Flow)
	}

	var discriminator uint64
	if f.Discriminator == nil {
		d, err := gen.Discriminator()
		if err != nil {
			return e, err
		}
		discriminator = uint64(d)
		e.GeneratedDiscriminator = true
	} else if discriminator, err = field("discriminator", f.Discriminator, 0, payload.DiscriminatorMax, 0); err != nil {
		return e, err
	}

	var passcode uint64
	if f.Passcode == nil {
		p, err := gen.Passcode()
		if err != nil {
			return e, err
		}
		passcode = uint64(p)
		e.GeneratedPasscode = true
	} else if passcode, err = field("passcode", f.Passcode, payload.PasscodeMin, payload.PasscodeMax, 0); err != nil {
		return e, err
	}

	p := payload.New(uint16(discriminator), uint32(passcode), uint16(vid), uint16(pid),
		payload.DiscoveryCapabilities(discovery), flow)
	if err := p.Validate(payload.ValidationModeProduce); err != nil {
		return e, err
	}
	e.Payload = p
	return e, nil
}

// field returns *v (or def when nil) after checking it against [lo, hi].
func field(name string, v *uint64, lo, hi, def uint64) (uint64, error) {
	if v == nil {
		return def, nil
	}
	if err := payload.CheckRange(name, *v, lo, hi); err != nil {
		return 0, err
	}
	return *v, nil
}
