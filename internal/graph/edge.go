package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/torclang/torc/internal/ir"
)

// EdgeID is a globally unique edge identifier (UUID string).
type EdgeID string

// NewEdgeID returns a fresh random edge id.
func NewEdgeID() EdgeID { return EdgeID(uuid.NewString()) }

// PortRef addresses one port of one node.
type PortRef struct {
	Node NodeID
	Port int
}

// At builds a port reference.
func At(node NodeID, port int) PortRef { return PortRef{Node: node, Port: port} }

// LifetimeKind categorizes edge data lifetimes.
type LifetimeKind string

const (
	// LifetimeRegion data lives for the duration of a region.
	LifetimeRegion LifetimeKind = "region"
	// LifetimeStatic data lives for the entire program execution.
	LifetimeStatic LifetimeKind = "static"
	// LifetimeManual data is managed via Allocate/Deallocate.
	LifetimeManual LifetimeKind = "manual"
	// LifetimeBounded data lives at most a bounded number of
	// nanoseconds.
	LifetimeBounded LifetimeKind = "bounded"
)

// Lifetime annotates how long the data on an edge persists.
type Lifetime struct {
	Kind LifetimeKind
	// Region is set for region lifetimes.
	Region RegionID
	// BoundNs is set for bounded lifetimes.
	BoundNs uint64
}

// StaticLifetime is the default lifetime.
func StaticLifetime() Lifetime { return Lifetime{Kind: LifetimeStatic} }

// RegionLifetime scopes data to a region.
func RegionLifetime(id RegionID) Lifetime {
	return Lifetime{Kind: LifetimeRegion, Region: id}
}

// BoundedLifetime limits data lifetime to ns nanoseconds.
func BoundedLifetime(ns uint64) Lifetime {
	return Lifetime{Kind: LifetimeBounded, BoundNs: ns}
}

// BandwidthConstraint specifies throughput requirements for an edge.
// MaxBytesPerSec of zero means uncapped.
type BandwidthConstraint struct {
	MinBytesPerSec uint64
	MaxBytesPerSec uint64
}

// MinBandwidth builds a constraint with only a minimum requirement.
func MinBandwidth(minBps uint64) BandwidthConstraint {
	return BandwidthConstraint{MinBytesPerSec: minBps}
}

// BoundedBandwidth builds a constraint with both bounds. min must not
// exceed max.
func BoundedBandwidth(minBps, maxBps uint64) (BandwidthConstraint, error) {
	if minBps > maxBps {
		return BandwidthConstraint{}, fmt.Errorf(
			"bandwidth constraint: min (%d) must be <= max (%d)", minBps, maxBps)
	}
	return BandwidthConstraint{MinBytesPerSec: minBps, MaxBytesPerSec: maxBps}, nil
}

// Edge is a data dependency from a source node's output port to a
// target node's input port, carrying a typed value.
type Edge struct {
	// ID is the unique edge identifier.
	ID EdgeID
	// Source is the output port of the producing node.
	Source PortRef
	// Target is the input port of the consuming node.
	Target PortRef
	// DataType is the type flowing along this edge, if declared.
	DataType ir.Type
	// Lifetime annotates the data on this edge.
	Lifetime Lifetime
	// Bandwidth optionally constrains edge throughput.
	Bandwidth *BandwidthConstraint
}

// NewEdge creates an untyped edge with a random id and static lifetime.
func NewEdge(source, target PortRef) *Edge {
	return &Edge{
		ID:       NewEdgeID(),
		Source:   source,
		Target:   target,
		Lifetime: StaticLifetime(),
	}
}

// TypedEdge creates an edge carrying the given data type.
func TypedEdge(source, target PortRef, dataType ir.Type) *Edge {
	e := NewEdge(source, target)
	e.DataType = dataType
	return e
}

// WithLifetime sets the lifetime annotation.
func (e *Edge) WithLifetime(lt Lifetime) *Edge {
	e.Lifetime = lt
	return e
}

// WithBandwidth sets the bandwidth constraint.
func (e *Edge) WithBandwidth(bw BandwidthConstraint) *Edge {
	e.Bandwidth = &bw
	return e
}

// Clone returns a copy of the edge with the same id.
func (e *Edge) Clone() *Edge {
	out := *e
	if e.Bandwidth != nil {
		bw := *e.Bandwidth
		out.Bandwidth = &bw
	}
	return &out
}

func (e *Edge) String() string {
	return fmt.Sprintf("Edge(%s port %d -> %s port %d)",
		e.Source.Node, e.Source.Port, e.Target.Node, e.Target.Port)
}
