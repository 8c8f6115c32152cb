package eco

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// NewRand returns the PRNG feeding the cosmetic environment jitter.
// Non-cryptographic and seedable on purpose: scenario tests pin the seed,
// production passes the clock.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}
