// Package bloom provides a probabilistic SKU set used to short-circuit
// lookups for keys that were never inserted. No false negatives: a SKU
// that was added always tests as present.
package bloom

import (
	"math"
	"sync"

	"github.com/spaolacci/murmur3"
)

// Filter is a thread-safe bloom filter over string keys.
type Filter struct {
	mu        sync.RWMutex
	bits      []uint64
	numBits   uint64
	numHashes uint64
	count     uint64
}

// New creates a Filter sized for the expected number of keys and the
// target false positive rate.
func New(expectedKeys int, targetFPR float64) *Filter {
	numBits, numHashes := optimalParameters(expectedKeys, targetFPR)
	numWords := (numBits + 63) / 64
	return &Filter{
		bits:      make([]uint64, numWords),
		numBits:   uint64(numWords * 64),
		numHashes: uint64(numHashes),
	}
}

// optimalParameters returns the bit and hash counts for the classic
// bloom sizing formulas m = -n*ln(p)/ln(2)^2 and k = (m/n)*ln(2).
func optimalParameters(expectedKeys int, targetFPR float64) (numBits, numHashes int) {
	if expectedKeys <= 0 {
		expectedKeys = 1000
	}
	if targetFPR <= 0 || targetFPR >= 1 {
		targetFPR = 0.01
	}

	n := float64(expectedKeys)
	m := -n * math.Log(targetFPR) / (math.Ln2 * math.Ln2)
	numBits = int(math.Ceil(m))
	numHashes = int(math.Ceil((m / n) * math.Ln2))

	if numBits < 64 {
		numBits = 64
	}
	if numHashes < 1 {
		numHashes = 1
	}
	return numBits, numHashes
}

// Add inserts a key into the filter.
func (f *Filter) Add(key string) {
	h1, h2 := murmur3.Sum128([]byte(key))

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := uint64(0); i < f.numHashes; i++ {
		// Double hashing: h(i) = h1 + i*h2
		pos := (h1 + i*h2) % f.numBits
		f.bits[pos/64] |= 1 << (pos % 64)
	}
	f.count++
}

// Contains reports whether the key might be present. A false result is
// authoritative; a true result may be a false positive.
func (f *Filter) Contains(key string) bool {
	h1, h2 := murmur3.Sum128([]byte(key))

	f.mu.RLock()
	defer f.mu.RUnlock()
	for i := uint64(0); i < f.numHashes; i++ {
		pos := (h1 + i*h2) % f.numBits
		if f.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of keys added.
func (f *Filter) Count() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}
