package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeCommissionableTXT creates TXT records for a commissionable node.
func EncodeCommissionableTXT(node *CommissionableNode) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyDiscriminator] = strconv.FormatUint(uint64(node.Discriminator), 10)
	txt[TXTKeyCommissioningMode] = strconv.FormatUint(uint64(node.CommissioningMode), 10)

	if node.HasVendorID {
		vp := strconv.FormatUint(uint64(node.VendorID), 10)
		if node.HasProductID {
			vp += "+" + strconv.FormatUint(uint64(node.ProductID), 10)
		}
		txt[TXTKeyVendorProduct] = vp
	}
	if node.DeviceType != 0 {
		txt[TXTKeyDeviceType] = strconv.FormatUint(uint64(node.DeviceType), 10)
	}
	if node.DeviceName != "" {
		txt[TXTKeyDeviceName] = node.DeviceName
	}
	if node.PairingHint != 0 {
		txt[TXTKeyPairingHint] = strconv.FormatUint(uint64(node.PairingHint), 10)
	}
	if node.PairingInstruction != "" {
		txt[TXTKeyPairingInstruction] = node.PairingInstruction
	}

	return txt
}

// DecodeCommissionableTXT parses TXT records into node. Only D is required;
// malformed optional keys are ignored.
func DecodeCommissionableTXT(txt TXTRecordMap, node *CommissionableNode) error {
	dStr, ok := txt[TXTKeyDiscriminator]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDiscriminator)
	}
	d, err := strconv.ParseUint(dStr, 10, 16)
	if err != nil || d > MaxDiscriminator {
		return ErrInvalidDiscriminator
	}
	node.Discriminator = uint16(d)

	if vp, ok := txt[TXTKeyVendorProduct]; ok {
		if err := parseVendorProduct(vp, node); err != nil {
			return err
		}
	}

	if cm, err := strconv.ParseUint(txt[TXTKeyCommissioningMode], 10, 8); err == nil {
		node.CommissioningMode = CommissioningMode(cm)
	}
	if dt, err := strconv.ParseUint(txt[TXTKeyDeviceType], 10, 32); err == nil {
		node.DeviceType = uint32(dt)
	}
	if ph, err := strconv.ParseUint(txt[TXTKeyPairingHint], 10, 16); err == nil {
		node.PairingHint = uint16(ph)
	}
	node.DeviceName = txt[TXTKeyDeviceName]
	node.PairingInstruction = txt[TXTKeyPairingInstruction]

	return nil
}

// parseVendorProduct parses "vid" or "vid+pid".
func parseVendorProduct(s string, node *CommissionableNode) error {
	vidStr, pidStr, hasPID := strings.Cut(s, "+")

	vid, err := strconv.ParseUint(vidStr, 10, 16)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q", ErrInvalidTXTRecord, TXTKeyVendorProduct, s)
	}
	node.VendorID = uint16(vid)
	node.HasVendorID = true

	if hasPID {
		pid, err := strconv.ParseUint(pidStr, 10, 16)
		if err != nil {
			return fmt.Errorf("%w: invalid %s %q", ErrInvalidTXTRecord, TXTKeyVendorProduct, s)
		}
		node.ProductID = uint16(pid)
		node.HasProductID = true
	}
	return nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a sorted slice of
// "key=value" strings. This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if found {
			txt[k] = v
		} else if k != "" {
			// Key without value (boolean flag)
			txt[k] = ""
		}
	}
	return txt
}
