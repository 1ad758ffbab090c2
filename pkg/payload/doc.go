// Package payload encodes and decodes Matter onboarding payloads: the QR
// code and the manual pairing code a user scans or types to commission a
// device.
//
// # QR Code
//
// An 88-bit header is packed least significant bit first:
//
//	version(3) vid(16) pid(16) flow(2) discovery(8) discriminator(12) passcode(27) padding(4)
//
// The 11 resulting bytes are Base38 encoded and prefixed with "MT:".
//
//	MT:-24J042C00KA0648G00
//
// # Manual Pairing Code
//
// A bit structure packed most significant bit first:
//
//	version(1) vid_pid_present(1) discriminator(4) passcode_lsb(14) passcode_msb(13) vid(16) pid(16) padding(7)
//
// is cut into decimal chunks of 1, 5 and 4 digits (bits 0-3, 4-19 and
// 20-32). When the commissioning flow is not Standard, the vendor and
// product IDs follow as two 5-digit chunks. A Verhoeff check digit ends
// the code, giving 11 or 21 digits:
//
//	34970112332
//	749701123365521327694
//
// Only the top 4 bits of the discriminator fit in a manual code, and the
// flow is reduced to "vendor/product IDs present or not".
//
// # Parsing
//
// Parse dispatches on the "MT:" prefix. All errors match one of the
// package sentinels with errors.Is.
package payload
