// Package ir provides the core intermediate representation for torc:
// the type universe, the predicate language, contracts, proof
// obligations, and the canonical serialization used for
// content-addressed hashing.
//
// Graph structure (nodes, edges, regions) lives in internal/graph; this
// package holds the value-level vocabulary those structures carry. All
// other internal packages import ir; ir imports nothing internal.
package ir
