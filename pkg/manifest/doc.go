// Package manifest loads YAML batch manifests for factory provisioning.
//
// A manifest lists devices by serial number with optional per-device
// overrides of shared defaults:
//
//	defaults:
//	  vendor_id: 0xFFF1
//	  product_id: 0x8001
//	  discovery: 4
//	  flow: standard
//	devices:
//	  - serial: SN001
//	    discriminator: 3840
//	    passcode: 20202021
//	  - serial: SN002
//
// Entries without a passcode or discriminator get random ones. Every
// resolved payload is validated before any code is generated.
package manifest
