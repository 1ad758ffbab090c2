// Package discovery finds Matter devices in commissioning mode that match
// an onboarding payload.
//
// # Commissionable Discovery (_matterc._udp)
//
// A device with an open commissioning window advertises a DNS-SD service
// of type _matterc._udp. Its TXT record carries:
//
//   - D: the 12-bit long discriminator (required)
//   - VP: vendor ID, optionally followed by "+" and product ID
//   - CM: commissioning mode (0 closed, 1 basic, 2 enhanced)
//   - DN: device name
//   - DT: device type
//   - PH, PI: pairing hint and pairing instruction
//
// # Matching
//
// A payload parsed from a QR code carries the long discriminator and is
// matched exactly. One parsed from a manual pairing code carries only the
// top 4 bits, so any device whose long discriminator shares them matches.
// Vendor and product IDs are compared only when both sides carry them.
package discovery
