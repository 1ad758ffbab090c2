package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// PayloadOutput is the structured form of a payload for json/yaml output.
// Fields the source format does not carry are omitted.
type PayloadOutput struct {
	Version            uint8   `json:"version" yaml:"version"`
	Flow               string  `json:"flow" yaml:"flow"`
	Passcode           uint32  `json:"passcode" yaml:"passcode"`
	ShortDiscriminator uint8   `json:"short_discriminator" yaml:"short_discriminator"`
	LongDiscriminator  *uint16 `json:"long_discriminator,omitempty" yaml:"long_discriminator,omitempty"`
	Discovery          *uint8  `json:"discovery,omitempty" yaml:"discovery,omitempty"`
	VendorID           *uint16 `json:"vendor_id,omitempty" yaml:"vendor_id,omitempty"`
	ProductID          *uint16 `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	OptionalData       string  `json:"optional_data,omitempty" yaml:"optional_data,omitempty"`
}

// hasVendorProduct reports whether p's source format carried vendor and
// product IDs. QR codes always do; manual codes only for non-Standard flows.
func hasVendorProduct(p *payload.SetupPayload, format payload.Format) bool {
	return format == payload.FormatQRCode || p.Flow != payload.FlowStandard
}

func buildPayloadOutput(p *payload.SetupPayload, format payload.Format) PayloadOutput {
	out := PayloadOutput{
		Version:            p.Version,
		Flow:               p.Flow.String(),
		Passcode:           p.Passcode,
		ShortDiscriminator: p.ShortDiscriminator(),
	}
	if long, ok := p.LongDiscriminator(); ok {
		out.LongDiscriminator = &long
	}
	if p.HasDiscovery {
		d := uint8(p.Discovery)
		out.Discovery = &d
	}
	if hasVendorProduct(p, format) {
		vid, pid := p.VendorID, p.ProductID
		out.VendorID = &vid
		out.ProductID = &pid
	}
	if len(p.OptionalData) > 0 {
		out.OptionalData = hex.EncodeToString(p.OptionalData)
	}
	return out
}

const fieldLabelWidth = 24

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-*s: %s\n", fieldLabelWidth, label, value)
}

// printPayloadText writes one fixed-width line per field, "None" for
// fields the source format does not carry.
func printPayloadText(w io.Writer, p *payload.SetupPayload, format payload.Format) {
	out := buildPayloadOutput(p, format)

	printField(w, "Version", fmt.Sprintf("%d", out.Version))
	printField(w, "Flow", fmt.Sprintf("%s (%d)", out.Flow, uint8(p.Flow)))
	printField(w, "Pincode", fmt.Sprintf("%08d", out.Passcode))
	printField(w, "Short Discriminator", fmt.Sprintf("%d (0x%X)", out.ShortDiscriminator, out.ShortDiscriminator))

	if out.LongDiscriminator != nil {
		printField(w, "Long Discriminator", fmt.Sprintf("%d (0x%03X)", *out.LongDiscriminator, *out.LongDiscriminator))
	} else {
		printField(w, "Long Discriminator", "None")
	}

	if out.Discovery != nil {
		printField(w, "Discovery Capabilities", fmt.Sprintf("%s (%d)", p.Discovery, *out.Discovery))
	} else {
		printField(w, "Discovery Capabilities", "None")
	}

	if out.VendorID != nil {
		printField(w, "Vendor ID", fmt.Sprintf("%d (0x%04X)", *out.VendorID, *out.VendorID))
		printField(w, "Product ID", fmt.Sprintf("%d (0x%04X)", *out.ProductID, *out.ProductID))
	} else {
		printField(w, "Vendor ID", "None")
		printField(w, "Product ID", "None")
	}

	if out.OptionalData != "" {
		printField(w, "Optional Data", out.OptionalData)
	}
}

// writeStructured writes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
