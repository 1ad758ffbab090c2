// Package verhoeff computes and verifies Verhoeff check digits.
//
// The Verhoeff scheme is built on the dihedral group D5. It detects every
// single-digit substitution and every transposition of adjacent digits,
// which is why Matter uses it for the last digit of manual pairing codes.
package verhoeff
