package base38

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the ordered Base38 symbol set.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-."

// Radix is the number of symbols in the alphabet.
const Radix = len(Alphabet)

const (
	maxBytesPerChunk = 3
	maxCharsPerChunk = 5
)

// Codec errors.
var (
	ErrInvalidCharacter = errors.New("base38: invalid character")
	ErrMalformedInput   = errors.New("base38: malformed input")
)

// charsForBytes maps a chunk byte count to its encoded symbol count.
var charsForBytes = [maxBytesPerChunk + 1]int{0, 2, 4, 5}

// bytesForChars maps an encoded chunk length to its byte count.
// Zero marks a length no encoder can produce.
var bytesForChars = [maxCharsPerChunk + 1]int{0, 0, 1, 0, 2, 3}

// decodeTable maps an ASCII byte to its symbol value, or -1.
var decodeTable [256]int8

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		decodeTable[Alphabet[i]] = int8(i)
	}
}

// EncodedLen returns the length of the Base38 encoding of n bytes.
func EncodedLen(n int) int {
	return (n/maxBytesPerChunk)*maxCharsPerChunk + charsForBytes[n%maxBytesPerChunk]
}

// DecodedLen returns the number of bytes encoded by a string of length n.
// It returns an error wrapping ErrMalformedInput when no encoding has that length.
func DecodedLen(n int) (int, error) {
	full := (n / maxCharsPerChunk) * maxBytesPerChunk
	rem := n % maxCharsPerChunk
	if rem == 0 {
		return full, nil
	}
	if bytesForChars[rem] == 0 {
		return 0, fmt.Errorf("%w: trailing chunk of %d characters", ErrMalformedInput, rem)
	}
	return full + bytesForChars[rem], nil
}

// Encode returns the Base38 encoding of data.
func Encode(data []byte) string {
	var sb strings.Builder
	sb.Grow(EncodedLen(len(data)))

	for len(data) > 0 {
		n := min(len(data), maxBytesPerChunk)

		var value uint32
		for i := n - 1; i >= 0; i-- {
			value = value<<8 | uint32(data[i])
		}

		for range charsForBytes[n] {
			sb.WriteByte(Alphabet[value%uint32(Radix)])
			value /= uint32(Radix)
		}

		data = data[n:]
	}

	return sb.String()
}

// Decode returns the bytes represented by the Base38 string s.
//
// A symbol outside the alphabet yields ErrInvalidCharacter. A chunk length
// that no encoding produces, or a chunk whose value does not fit its byte
// count, yields ErrMalformedInput.
func Decode(s string) ([]byte, error) {
	size, err := DecodedLen(len(s))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, size)
	for offset := 0; offset < len(s); offset += maxCharsPerChunk {
		chunk := s[offset:min(offset+maxCharsPerChunk, len(s))]

		var value uint64
		for i := len(chunk) - 1; i >= 0; i-- {
			v := decodeTable[chunk[i]]
			if v < 0 {
				return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidCharacter, chunk[i], offset+i)
			}
			value = value*uint64(Radix) + uint64(v)
		}

		n := bytesForChars[len(chunk)]
		if value>>(8*n) != 0 {
			return nil, fmt.Errorf("%w: chunk %q exceeds %d bytes", ErrMalformedInput, chunk, n)
		}

		for range n {
			out = append(out, byte(value))
			value >>= 8
		}
	}

	return out, nil
}

// IsValidChar reports whether c is a Base38 symbol.
func IsValidChar(c byte) bool {
	return decodeTable[c] >= 0
}
