package verhoeff

import (
	"errors"
	"fmt"
)

// Checksum errors.
var (
	ErrNonDigit = errors.New("verhoeff: non-digit character")
	ErrEmpty    = errors.New("verhoeff: empty input")
	ErrMismatch = errors.New("verhoeff: check digit mismatch")
)

// multiplication is the Cayley table of the dihedral group D5.
var multiplication = [10][10]uint8{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
	{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
	{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
	{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
	{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
	{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
	{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
	{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
	{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}

// permutation[i] is the position-dependent permutation applied to the
// digit i places from the right, with period 8.
var permutation = [8][10]uint8{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
	{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
	{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
	{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
	{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
	{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
	{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
}

var inverse = [10]uint8{0, 4, 3, 2, 1, 5, 6, 7, 8, 9}

// CheckDigit returns the ASCII check digit for the decimal string s.
func CheckDigit(s string) (byte, error) {
	c, err := accumulate(s, 1)
	if err != nil {
		return 0, err
	}
	return '0' + inverse[c], nil
}

// Append returns s followed by its check digit.
func Append(s string) (string, error) {
	d, err := CheckDigit(s)
	if err != nil {
		return "", err
	}
	return s + string(d), nil
}

// Validate verifies that the last digit of s is the check digit of the
// preceding digits.
func Validate(s string) error {
	if s == "" {
		return ErrEmpty
	}
	c, err := accumulate(s, 0)
	if err != nil {
		return err
	}
	if c != 0 {
		return fmt.Errorf("%w: expected %c, got %c", ErrMismatch, expected(s), s[len(s)-1])
	}
	return nil
}

// accumulate folds the digits of s right to left. offset is the position
// of the rightmost digit: 1 when the check digit is still to be appended,
// 0 when s already ends with it.
func accumulate(s string, offset int) (uint8, error) {
	var c uint8
	for i := len(s) - 1; i >= 0; i-- {
		d := s[i]
		if d < '0' || d > '9' {
			return 0, fmt.Errorf("%w: %q at offset %d", ErrNonDigit, d, i)
		}
		pos := (len(s) - 1 - i + offset) % len(permutation)
		c = multiplication[c][permutation[pos][d-'0']]
	}
	return c, nil
}

// expected recomputes the check digit for a string already known to be
// all digits. Used only for error reporting.
func expected(s string) byte {
	d, _ := CheckDigit(s[:len(s)-1])
	return d
}
