// Package seed turns a caller-supplied integer seed into deterministic random
// streams.
//
// No component of the grouping core reads global random state. Every stage
// that needs randomness receives its own stream derived from the run seed, so
// a given (matrix, K, H, seed) tuple always produces the same assignment.
//
// math/rand.Rand is not safe for concurrent use; derive one stream per
// consumer instead of sharing.
package seed

import "math/rand"

// Stream identifiers for the stages of a grouping run.
const (
	StreamSectorPhase  uint64 = 1
	StreamRedistribute uint64 = 2
)

// defaultSeed is used when callers pass seed == 0.
const defaultSeed int64 = 1

// New returns a deterministic generator for seed. Zero maps to defaultSeed.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// Mix combines a parent seed and a stream id with a SplitMix64 finalizer.
func Mix(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// Derive returns an independent stream for stream id keyed by the run seed.
// Unlike drawing from a shared generator, the result does not depend on how
// many values other stages consumed.
func Derive(runSeed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewSource(Mix(runSeed, stream)))
}

// Or returns r, or the default stream when r is nil.
func Or(r *rand.Rand) *rand.Rand {
	if r == nil {
		return New(0)
	}
	return r
}
