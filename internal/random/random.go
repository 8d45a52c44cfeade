// Package random builds the seeded sources the generators draw from. Every
// generation call gets its own *rand.Rand so concurrent requests never share state.
package random

import (
	"math/rand/v2"
	"time"
)

// New returns a PCG-backed source for seed
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Seed derives a seed from the wall clock
func Seed() uint64 {
	return uint64(time.Now().UnixNano())
}

// FromClock returns a source seeded from the wall clock
func FromClock() *rand.Rand {
	return New(Seed())
}
