package graph

import (
	"github.com/google/uuid"

	"github.com/torclang/torc/internal/ir"
)

// RegionID is a globally unique region identifier (UUID string).
type RegionID string

// NewRegionID returns a fresh random region id.
func NewRegionID() RegionID { return RegionID(uuid.NewString()) }

// RegionKind is the execution semantics of a region.
type RegionKind string

const (
	// RegionSequential nodes execute in data-dependency order.
	RegionSequential RegionKind = "sequential"
	// RegionParallel nodes are eligible for concurrent execution.
	RegionParallel RegionKind = "parallel"
	// RegionConditional nodes execute based on a guard.
	RegionConditional RegionKind = "conditional"
	// RegionIterative nodes execute repeatedly until termination.
	RegionIterative RegionKind = "iterative"
	// RegionAtomic operations do not interleave with the outside.
	RegionAtomic RegionKind = "atomic"
)

// ConstraintKind categorizes region execution constraints.
type ConstraintKind string

const (
	ConstraintMaxTime   ConstraintKind = "max_time"
	ConstraintMaxMemory ConstraintKind = "max_memory"
	ConstraintMaxEnergy ConstraintKind = "max_energy"
	ConstraintCustom    ConstraintKind = "custom"
)

// Constraint is an execution constraint applied to a region.
type Constraint struct {
	Kind ConstraintKind
	// Limit is nanoseconds for max_time, bytes for max_memory,
	// microjoules for max_energy.
	Limit uint64
	// Name and Description are set for custom constraints.
	Name        string
	Description string
}

// MaxTime limits region wall-clock time in nanoseconds.
func MaxTime(ns uint64) Constraint { return Constraint{Kind: ConstraintMaxTime, Limit: ns} }

// MaxMemory limits region memory usage in bytes.
func MaxMemory(bytes uint64) Constraint { return Constraint{Kind: ConstraintMaxMemory, Limit: bytes} }

// MaxEnergy limits region energy budget in microjoules.
func MaxEnergy(uj uint64) Constraint { return Constraint{Kind: ConstraintMaxEnergy, Limit: uj} }

// CustomConstraint is a user-defined constraint.
func CustomConstraint(name, description string) Constraint {
	return Constraint{Kind: ConstraintCustom, Name: name, Description: description}
}

// PortDirection distinguishes region interface inputs from outputs.
type PortDirection string

const (
	PortInput  PortDirection = "input"
	PortOutput PortDirection = "output"
)

// Port is a typed interface port on a region boundary.
type Port struct {
	// Name is human-readable.
	Name string
	// Direction is input or output.
	Direction PortDirection
	// Index is positional among ports of the same direction.
	Index int
	// Type of data flowing through this port.
	Type ir.Type
}

// InputPort builds an input interface port.
func InputPort(name string, index int, t ir.Type) Port {
	return Port{Name: name, Direction: PortInput, Index: index, Type: t}
}

// OutputPort builds an output interface port.
func OutputPort(name string, index int, t ir.Type) Port {
	return Port{Name: name, Direction: PortOutput, Index: index, Type: t}
}

// Region is a subgraph boundary grouping nodes under shared execution
// semantics and constraints.
type Region struct {
	// ID is the unique region identifier.
	ID RegionID
	// Kind gives the execution semantics.
	Kind RegionKind
	// Children are the nodes contained in this region.
	Children []NodeID
	// Constraints apply to the region as a whole.
	Constraints []Constraint
	// Interfaces are the region's typed boundary ports.
	Interfaces []Port
	// Parent is the enclosing region, if nested ("" = top level).
	Parent RegionID
}

// NewRegion creates a region with a random id.
func NewRegion(kind RegionKind, children []NodeID) *Region {
	return &Region{
		ID:       NewRegionID(),
		Kind:     kind,
		Children: children,
	}
}

// NewRegionWithID creates a region with a specific id.
func NewRegionWithID(id RegionID, kind RegionKind, children []NodeID) *Region {
	r := NewRegion(kind, children)
	r.ID = id
	return r
}

// WithConstraints sets the execution constraints.
func (r *Region) WithConstraints(constraints ...Constraint) *Region {
	r.Constraints = constraints
	return r
}

// WithInterfaces sets the interface ports.
func (r *Region) WithInterfaces(ports ...Port) *Region {
	r.Interfaces = ports
	return r
}

// WithParent sets the parent region.
func (r *Region) WithParent(parent RegionID) *Region {
	r.Parent = parent
	return r
}

// Clone returns a copy of the region with the same id.
func (r *Region) Clone() *Region {
	out := *r
	out.Children = append([]NodeID(nil), r.Children...)
	out.Constraints = append([]Constraint(nil), r.Constraints...)
	out.Interfaces = append([]Port(nil), r.Interfaces...)
	return &out
}
