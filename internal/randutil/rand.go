// Package randutil centralises how the engine builds deterministic random
// sources so that identical state always reproduces identical samples.
package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both 64-bit PCG seeds are derived from it through a splitmix finaliser.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// RoundSeed derives the estimator seed for a session that has completed
// the given number of rounds. The same (base, rounds) pair always yields
// the same seed; recording or undoing a round changes it.
func RoundSeed(base int64, rounds int) int64 {
	return int64(mix(uint64(base)^mix(uint64(rounds)+goldenRatio64))) ^ int64(rounds)
}

// Split draws n child seeds from rng, used to give parallel workers their
// own independent streams while keeping the whole run reproducible.
func Split(rng *rand.Rand, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int64()
	}
	return seeds
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
