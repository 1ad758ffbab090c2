// Package bitpack packs named unsigned fields of arbitrary bit width into
// byte buffers and back.
//
// A Layout is an ordered list of (name, width) fields. Fields are laid out
// back to back with no alignment, so a field may straddle byte boundaries.
// The bit order is a property of the layout:
//
//   - MSBFirst: the first field occupies the most significant bits of
//     byte 0, and each field is written most significant bit first.
//   - LSBFirst: the first field occupies the least significant bits of
//     byte 0, and each field is written least significant bit first. The
//     buffer is then the little-endian form of the packed integer.
//
// Writer and Reader expose the underlying bit cursor for callers that need
// to slice a packed buffer at arbitrary bit offsets.
package bitpack
