package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// Manifest errors.
var (
	ErrNoDevices       = errors.New("manifest: no devices")
	ErrMissingSerial   = errors.New("manifest: device serial is required")
	ErrDuplicateSerial = errors.New("manifest: duplicate serial")
)

// DefaultDiscovery is used when neither the defaults nor the device set
// discovery capabilities.
const DefaultDiscovery = payload.DiscoveryOnNetwork

// Manifest is a parsed batch manifest.
type Manifest struct {
	Defaults Fields   `yaml:"defaults"`
	Devices  []Device `yaml:"devices"`
}

// Fields are the payload values a manifest may set. Nil means unset.
// Values are decoded wide and range-checked when resolved, so that an
// oversized number reports payload.ErrOutOfRange with the field name.
type Fields struct {
	VendorID      *uint64 `yaml:"vendor_id,omitempty"`
	ProductID     *uint64 `yaml:"product_id,omitempty"`
	Discovery     *uint64 `yaml:"discovery,omitempty"`
	Flow          *Flow   `yaml:"flow,omitempty"`
	Discriminator *uint64 `yaml:"discriminator,omitempty"`
	Passcode      *uint64 `yaml:"passcode,omitempty"`
}

// Device is one manifest entry.
type Device struct {
	Serial string `yaml:"serial"`
	Fields `yaml:",inline"`
}

// Flow is a commissioning flow written as a name or a number.
type Flow payload.CommissioningFlow

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Flow) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: flow must be a scalar", value.Line)
	}
	flow, err := payload.ParseCommissioningFlow(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = Flow(flow)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (f Flow) MarshalYAML() (any, error) {
	return payload.CommissioningFlow(f).String(), nil
}

// EntryError reports a problem with one device entry.
type EntryError struct {
	Index  int
	Serial string
	Err    error
}

func (e *EntryError) Error() string {
	if e.Serial == "" {
		return fmt.Sprintf("device %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("device %d (%s): %v", e.Index, e.Serial, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoDevices
		}
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if len(m.Devices) == 0 {
		return nil, ErrNoDevices
	}

	seen := make(map[string]int, len(m.Devices))
	for i, d := range m.Devices {
		if d.Serial == "" {
			return nil, &EntryError{Index: i, Err: ErrMissingSerial}
		}
		if first, dup := seen[d.Serial]; dup {
			return nil, &EntryError{Index: i, Serial: d.Serial,
				Err: fmt.Errorf("%w: also device %d", ErrDuplicateSerial, first)}
		}
		seen[d.Serial] = i
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
