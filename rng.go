package main

import (
	"hash/fnv"
	"math/rand"
)

// newDeterministicRNG derives an independent stream from the run seed and a
// subsystem label so one subsystem's draws never perturb another's.
func newDeterministicRNG(seed, label string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte{':'})
	h.Write([]byte(label))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
