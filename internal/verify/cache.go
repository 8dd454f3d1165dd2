package verify

import (
	"time"

	"github.com/torclang/torc/internal/ir"
)

// CacheStats reports proof cache usage.
type CacheStats struct {
	Hits    int
	Misses  int
	Entries int
}

// CacheEntry is one cached proof.
type CacheEntry struct {
	Witness        ir.ProofWitness
	ObligationHash string
	Timestamp      int64
}

// ProofCache is an in-memory content-addressed proof cache keyed by
// obligation hash. Unchanged obligations hit on later runs; changing
// the predicate or description changes the hash, so stale proofs can
// never be reused.
type ProofCache struct {
	entries map[string]CacheEntry
	hits    int
	misses  int
}

// NewProofCache creates an empty cache.
func NewProofCache() *ProofCache {
	return &ProofCache{entries: map[string]CacheEntry{}}
}

// Lookup returns the cached witness for the obligation, if present.
func (c *ProofCache) Lookup(ob ir.ProofObligation) (*ir.ProofWitness, bool) {
	hash := ob.ContentHash().Hex()
	entry, ok := c.entries[hash]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	w := entry.Witness
	return &w, true
}

// Store caches a proof witness for the obligation.
func (c *ProofCache) Store(ob ir.ProofObligation, witness ir.ProofWitness) {
	hash := ob.ContentHash().Hex()
	c.entries[hash] = CacheEntry{
		Witness:        witness,
		ObligationHash: hash,
		Timestamp:      time.Now().Unix(),
	}
}

// Invalidate removes a cached entry by obligation hash.
func (c *ProofCache) Invalidate(obligationHash string) {
	delete(c.entries, obligationHash)
}

// Statistics returns cache usage counters.
func (c *ProofCache) Statistics() CacheStats {
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}
