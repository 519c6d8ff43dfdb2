// Package conv provides checked integer conversions.
//
// The conversions panic on overflow: a value out of range here means the
// automaton grew past what its compact encodings can address, which is a
// programming error rather than a recoverable condition.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// Use uint for comparison to avoid overflow on 32-bit platforms
	// where int cannot represent math.MaxUint32
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// IntToUint converts a non-negative int to uint.
// Panics if n < 0.
//
//go:inline
func IntToUint(n int) uint {
	if n < 0 {
		panic("integer overflow: negative int converted to uint")
	}
	return uint(n)
}
