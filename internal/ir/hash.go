package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without colliding with old hashes.
const (
	DomainNode       = "torc/node/v1"
	DomainObligation = "torc/obligation/v1"
	DomainWitness    = "torc/witness/v1"
)

// ContentHash is a SHA-256 digest identifying a structure by content.
type ContentHash [32]byte

// Hex returns the lowercase hex rendering of the hash.
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 8 hex characters, for log lines and display.
func (h ContentHash) Short() string {
	return h.Hex()[:8]
}

func (h ContentHash) String() string {
	return h.Hex()
}

// ParseContentHash decodes a 64-character hex string into a ContentHash.
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse content hash: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("parse content hash: want %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func HashWithDomain(domain string, data []byte) ContentHash {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	var out ContentHash
	copy(out[:], h.Sum(nil))
	return out
}

// HashCanonical canonically marshals v and hashes it under the given
// domain. Returns an error if v cannot be canonically marshaled.
func HashCanonical(domain string, v CanonValue) (ContentHash, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return ContentHash{}, fmt.Errorf("hash %s: %w", domain, err)
	}
	return HashWithDomain(domain, data), nil
}

// MustHashCanonical is like HashCanonical but panics on error. Use only
// when inputs are known to be valid.
func MustHashCanonical(domain string, v CanonValue) ContentHash {
	h, err := HashCanonical(domain, v)
	if err != nil {
		panic(err)
	}
	return h
}
