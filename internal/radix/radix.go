// Package radix renders unsigned integers in positional numeral systems with
// bases 2 through 36.
//
// Digits are 0-9 followed by lowercase a-z. Output never carries leading
// zeros; zero renders as "0". A base outside [MinRadix, MaxRadix] is a
// programming error and panics instead of being clamped.
package radix

import (
	"fmt"
	"strconv"
)

const (
	// MinRadix is the smallest supported base.
	MinRadix = 2
	// MaxRadix is the largest supported base.
	MaxRadix = 36
	// Base36 is the base used for content fingerprints.
	Base36 = 36
)

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// Encode returns value written in the given radix.
func Encode(value uint64, radix int) string {
	mustValidRadix(radix)

	// 64 digits covers the longest output (base 2).
	var buf [64]byte
	i := len(buf)
	base := uint64(radix)
	for {
		i--
		buf[i] = digits[value%base]
		value /= base
		if value == 0 {
			break
		}
	}
	return string(buf[i:])
}

// Decode parses text produced by Encode. It panics on an invalid radix and
// returns an error for empty input, characters outside the radix, or values
// that overflow 64 bits.
func Decode(text string, radix int) (uint64, error) {
	mustValidRadix(radix)
	if text == "" {
		return 0, fmt.Errorf("radix %d: empty input", radix)
	}
	value, err := strconv.ParseUint(text, radix, 64)
	if err != nil {
		return 0, fmt.Errorf("radix %d: decode %q: %w", radix, text, err)
	}
	return value, nil
}

// Valid reports whether radix is usable with Encode and Decode.
func Valid(radix int) bool {
	return radix >= MinRadix && radix <= MaxRadix
}

func mustValidRadix(radix int) {
	if !Valid(radix) {
		panic(fmt.Sprintf("radix: base %d outside [%d, %d]", radix, MinRadix, MaxRadix))
	}
}
