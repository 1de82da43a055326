package rdf

import (
	"encoding/binary"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/zeebo/xxh3"
)

const bnodePrefixLength = 16

// instanceSeq distinguishes generators created within the same clock tick.
var instanceSeq atomic.Uint64

// BlankNodeIDGenerator mints per-run-unique blank node identifiers. Ids are
// the generator's random prefix joined to either a caller-supplied label or
// a monotonic counter, so repeated labels map to the same id without any
// bookkeeping. A generator is not safe for concurrent use.
type BlankNodeIDGenerator struct {
	prefix  string
	counter uint64
}

// NewBlankNodeIDGenerator seeds a generator with a fresh random prefix of
// 16 characters drawn from [0-9A-Z].
func NewBlankNodeIDGenerator() *BlankNodeIDGenerator {
	var seed [16]byte
	binary.BigEndian.PutUint64(seed[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(seed[8:], instanceSeq.Add(1))
	rng := rand.New(rand.NewPCG(xxh3.Hash(seed[:8]), xxh3.Hash(seed[:])))

	prefix := make([]byte, bnodePrefixLength)
	for i := range prefix {
		n := rng.IntN(36)
		if n < 10 {
			prefix[i] = byte('0' + n)
		} else {
			prefix[i] = byte('A' + n - 10)
		}
	}

	return &BlankNodeIDGenerator{prefix: string(prefix)}
}

// Generate returns a fresh identifier for an anonymous node when label is
// empty, and a stable identifier for the given label otherwise.
func (g *BlankNodeIDGenerator) Generate(label string) string {
	if label == "" {
		label = strconv.FormatUint(g.counter, 10)
		g.counter++
	}
	return g.prefix + "-" + label
}
