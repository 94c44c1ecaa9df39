package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// ResolveSeed returns seed unchanged unless it is 0, in which case a fresh
// non-zero seed is drawn from the system entropy source.
func ResolveSeed(seed int64) int64 {
	for seed == 0 {
		var buf [8]byte
		if _, err := crand.Read(buf[:]); err != nil {
			seed = time.Now().UnixNano()
			continue
		}
		seed = int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
	}
	return seed
}

// New returns a generator for seed along with the seed actually used, so a
// run started with seed 0 can still be replayed.
func New(seed int64) (*rand.Rand, int64) {
	seed = ResolveSeed(seed)
	return rand.New(rand.NewSource(seed)), seed
}
