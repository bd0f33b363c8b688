package util

import (
	"golang.org/x/exp/constraints"
)

// Clamp limits v to the closed range [lo, hi].
func Clamp[A constraints.Ordered](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Keys returns the keys of a map in unspecified order.
func Keys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Abs returns the absolute value of a signed integer.
func Abs[A constraints.Signed](v A) A {
	if v < 0 {
		return -v
	}
	return v
}

// FloorDiv divides a by b rounding toward negative infinity.
// Go's integer division truncates toward zero, which is wrong for
// negative scale degrees wrapping into lower octaves.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod returns a mod b with a result in [0, b) for positive b.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
