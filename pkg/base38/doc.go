// Package base38 implements the Base38 encoding used by Matter QR code
// onboarding payloads.
//
// # Alphabet
//
// The alphabet has 38 symbols: the digits 0-9, the uppercase letters A-Z,
// then '-' and '.'. A symbol's position in the alphabet is its value. All
// symbols fall inside the QR code alphanumeric character set.
//
// # Chunking
//
// Input bytes are consumed in chunks of up to three, read as a
// little-endian integer, and emitted least-significant symbol first:
//
//	1 byte  -> 2 symbols
//	2 bytes -> 4 symbols
//	3 bytes -> 5 symbols
//
// Decoding inverts the table, so only encoded lengths of the form
// 5k, 5k+2 and 5k+4 are valid.
package base38
