package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithDomainDeterministic(t *testing.T) {
	a := HashWithDomain(DomainNode, []byte("payload"))
	b := HashWithDomain(DomainNode, []byte("payload"))
	assert.Equal(t, a, b)
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte("payload")
	a := HashWithDomain(DomainNode, data)
	b := HashWithDomain(DomainObligation, data)
	assert.NotEqual(t, a, b, "same data under different domains must not collide")
}

func TestHashNullSeparatorPreventsAmbiguity(t *testing.T) {
	// Without the 0x00 separator these two would hash identically.
	a := HashWithDomain("torc/ab", []byte("c"))
	b := HashWithDomain("torc/a", []byte("bc"))
	assert.NotEqual(t, a, b)
}

func TestHashCanonicalKeyOrderIndependent(t *testing.T) {
	a, err := HashCanonical(DomainNode, CanonObject{"x": CanonInt(1), "y": CanonInt(2)})
	require.NoError(t, err)
	b, err := HashCanonical(DomainNode, CanonObject{"y": CanonInt(2), "x": CanonInt(1)})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestContentHashHexRoundTrip(t *testing.T) {
	h := HashWithDomain(DomainNode, []byte("x"))
	parsed, err := ParseContentHash(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.Len(t, h.Hex(), 64)
	assert.Equal(t, h.Hex()[:8], h.Short())
}

func TestParseContentHashRejectsBadInput(t *testing.T) {
	_, err := ParseContentHash("zz")
	assert.Error(t, err)

	_, err = ParseContentHash("abcd")
	assert.Error(t, err, "too short")
}
