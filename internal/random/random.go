// Package random provides shuffling and bounded integers drawn from
// crypto/rand. Result ordering and provider offsets must not be predictable.
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Intn returns a uniform integer in [0, bound).
// crypto/rand.Int rejects out-of-range samples, so there is no modulo bias.
// A non-positive bound yields 0.
func Intn(bound int) int {
	if bound <= 1 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(bound)))
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(fmt.Sprintf("random: read secure source: %v", err))
	}
	return int(n.Int64())
}

// Shuffle permutes items in place with Fisher-Yates.
func Shuffle[T any](items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy of items and leaves the input untouched.
func Shuffled[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	Shuffle(out)
	return out
}
