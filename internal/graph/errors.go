package graph

import (
	"errors"
	"fmt"

	"github.com/torclang/torc/internal/ir"
)

// GraphError represents an error detected while building or validating
// a graph.
//
// Graph errors include:
//   - Structural defects: dangling edges, duplicate ids, missing nodes
//   - Cycle detection: cycles not passing through iteration constructs
//   - Semantic violations: linearity, effect propagation, type mismatch
//
// GraphError includes structured fields for diagnostics.
type GraphError struct {
	// Code identifies the error category.
	Code GraphErrorCode

	// Message is a human-readable description.
	Message string

	// Node identifies the affected node, if any.
	Node NodeID

	// Edge identifies the affected edge, if any.
	Edge EdgeID

	// Region identifies the affected region, if any.
	Region RegionID

	// Port is the affected port index (for port/linearity errors).
	Port int

	// Details contains additional context.
	Details map[string]string
}

// GraphErrorCode categorizes graph errors.
type GraphErrorCode string

const (
	// ErrCodeNodeNotFound indicates a referenced node does not exist.
	ErrCodeNodeNotFound GraphErrorCode = "NODE_NOT_FOUND"

	// ErrCodeEdgeNotFound indicates a referenced edge does not exist.
	ErrCodeEdgeNotFound GraphErrorCode = "EDGE_NOT_FOUND"

	// ErrCodeRegionNotFound indicates a referenced region does not exist.
	ErrCodeRegionNotFound GraphErrorCode = "REGION_NOT_FOUND"

	// ErrCodeDanglingEdge indicates an edge whose endpoints are not in
	// the graph.
	ErrCodeDanglingEdge GraphErrorCode = "DANGLING_EDGE"

	// ErrCodePortOutOfRange indicates an edge port index exceeds the
	// node's type signature.
	ErrCodePortOutOfRange GraphErrorCode = "PORT_OUT_OF_RANGE"

	// ErrCodeDuplicateNode indicates a node id was inserted twice.
	ErrCodeDuplicateNode GraphErrorCode = "DUPLICATE_NODE"

	// ErrCodeDuplicateEdge indicates an edge id was inserted twice.
	ErrCodeDuplicateEdge GraphErrorCode = "DUPLICATE_EDGE"

	// ErrCodeCycleDetected indicates a cycle not passing through any
	// iteration construct.
	ErrCodeCycleDetected GraphErrorCode = "CYCLE_DETECTED"

	// ErrCodeRegionContainment indicates a region child missing from
	// the graph.
	ErrCodeRegionContainment GraphErrorCode = "REGION_CONTAINMENT"

	// ErrCodeDuplicateRegionChild indicates a node listed twice in one
	// region.
	ErrCodeDuplicateRegionChild GraphErrorCode = "DUPLICATE_REGION_CHILD"

	// ErrCodeLinearityViolation indicates a linear or affine value with
	// the wrong consumer count.
	ErrCodeLinearityViolation GraphErrorCode = "LINEARITY_VIOLATION"

	// ErrCodeEffectViolation indicates a node whose declared effects do
	// not cover its predecessors' effects.
	ErrCodeEffectViolation GraphErrorCode = "EFFECT_VIOLATION"

	// ErrCodeTypeMismatch indicates incompatible types across an edge.
	ErrCodeTypeMismatch GraphErrorCode = "TYPE_MISMATCH"

	// ErrCodeMergeConflict indicates colliding ids between two graphs.
	ErrCodeMergeConflict GraphErrorCode = "MERGE_CONFLICT"

	// ErrCodeUnmappedBoundaryPort indicates a subgraph replacement with
	// an incomplete port mapping.
	ErrCodeUnmappedBoundaryPort GraphErrorCode = "UNMAPPED_BOUNDARY_PORT"

	// ErrCodeRegionCycle indicates a parent assignment that would break
	// the region forest invariant.
	ErrCodeRegionCycle GraphErrorCode = "REGION_CYCLE"
)

// Error implements the error interface.
func (e *GraphError) Error() string {
	switch {
	case e.Node != "" && e.Edge != "":
		return fmt.Sprintf("%s: %s (node=%s, edge=%s)", e.Code, e.Message, e.Node, e.Edge)
	case e.Node != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	case e.Edge != "":
		return fmt.Sprintf("%s: %s (edge=%s)", e.Code, e.Message, e.Edge)
	case e.Region != "":
		return fmt.Sprintf("%s: %s (region=%s)", e.Code, e.Message, e.Region)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCycleError returns true if the error is a cycle detection error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeCycleDetected
	}
	return false
}

// IsNotFoundError returns true if the error indicates a missing node,
// edge, or region. Uses errors.As to handle wrapped errors.
func IsNotFoundError(err error) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		switch ge.Code {
		case ErrCodeNodeNotFound, ErrCodeEdgeNotFound, ErrCodeRegionNotFound:
			return true
		}
	}
	return false
}

// ErrorCode extracts the graph error code from err, or "" if err is not
// a GraphError.
func ErrorCode(err error) GraphErrorCode {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// NewNodeNotFoundError creates a GraphError for a missing node.
func NewNodeNotFoundError(id NodeID) *GraphError {
	return &GraphError{
		Code:    ErrCodeNodeNotFound,
		Message: fmt.Sprintf("node not found: %s", id),
		Node:    id,
	}
}

// NewEdgeNotFoundError creates a GraphError for a missing edge.
func NewEdgeNotFoundError(id EdgeID) *GraphError {
	return &GraphError{
		Code:    ErrCodeEdgeNotFound,
		Message: fmt.Sprintf("edge not found: %s", id),
		Edge:    id,
	}
}

// NewRegionNotFoundError creates a GraphError for a missing region.
func NewRegionNotFoundError(id RegionID) *GraphError {
	return &GraphError{
		Code:    ErrCodeRegionNotFound,
		Message: fmt.Sprintf("region not found: %s", id),
		Region:  id,
	}
}

// NewDanglingEdgeError creates a GraphError for an edge with a missing
// endpoint.
func NewDanglingEdgeError(src, dst NodeID) *GraphError {
	return &GraphError{
		Code:    ErrCodeDanglingEdge,
		Message: fmt.Sprintf("dangling edge: source node %s or target node %s not in graph", src, dst),
		Details: map[string]string{"src": string(src), "dst": string(dst)},
	}
}

// NewPortOutOfRangeError creates a GraphError for a port index beyond
// the node's type signature.
func NewPortOutOfRangeError(node NodeID, port int) *GraphError {
	return &GraphError{
		Code:    ErrCodePortOutOfRange,
		Message: fmt.Sprintf("port index %d out of range for node %s", port, node),
		Node:    node,
		Port:    port,
	}
}

// NewDuplicateNodeError creates a GraphError for a repeated node id.
func NewDuplicateNodeError(id NodeID) *GraphError {
	return &GraphError{
		Code:    ErrCodeDuplicateNode,
		Message: fmt.Sprintf("duplicate node id: %s", id),
		Node:    id,
	}
}

// NewDuplicateEdgeError creates a GraphError for a repeated edge id.
func NewDuplicateEdgeError(id EdgeID) *GraphError {
	return &GraphError{
		Code:    ErrCodeDuplicateEdge,
		Message: fmt.Sprintf("duplicate edge id: %s", id),
		Edge:    id,
	}
}

// NewCycleError creates a GraphError for a cycle not passing through an
// iteration construct.
func NewCycleError(node NodeID) *GraphError {
	return &GraphError{
		Code:    ErrCodeCycleDetected,
		Message: fmt.Sprintf("cycle detected involving node %s", node),
		Node:    node,
	}
}

// NewRegionCycleError creates a GraphError for a parent assignment
// that would make a region its own ancestor.
func NewRegionCycleError(child, parent RegionID) *GraphError {
	return &GraphError{
		Code:    ErrCodeRegionCycle,
		Message: fmt.Sprintf("setting parent %s would make region %s its own ancestor", parent, child),
		Region:  child,
	}
}

// NewRegionContainmentError creates a GraphError for a region child
// missing from the graph.
func NewRegionContainmentError(child NodeID, region RegionID) *GraphError {
	return &GraphError{
		Code:    ErrCodeRegionContainment,
		Message: fmt.Sprintf("node %s not contained in its declared region %s", child, region),
		Node:    child,
		Region:  region,
	}
}

// NewDuplicateRegionChildError creates a GraphError for a node listed
// twice in one region.
func NewDuplicateRegionChildError(child NodeID, region RegionID) *GraphError {
	return &GraphError{
		Code:    ErrCodeDuplicateRegionChild,
		Message: fmt.Sprintf("duplicate child node %s in region %s", child, region),
		Node:    child,
		Region:  region,
	}
}

// NewLinearityError creates a GraphError for a consumer-count violation.
func NewLinearityError(node NodeID, port int, lin ir.Linearity, consumers int) *GraphError {
	return &GraphError{
		Code: ErrCodeLinearityViolation,
		Message: fmt.Sprintf("linearity violation: %s value at node %s port %d has %d consumer(s)",
			lin, node, port, consumers),
		Node: node,
		Port: port,
		Details: map[string]string{
			"linearity": string(lin),
			"consumers": fmt.Sprintf("%d", consumers),
		},
	}
}

// NewEffectViolationError creates a GraphError for undeclared upstream
// effects.
func NewEffectViolationError(node NodeID, declared, required string) *GraphError {
	return &GraphError{
		Code: ErrCodeEffectViolation,
		Message: fmt.Sprintf("effect violation: node %s declares %s but depends on %s",
			node, declared, required),
		Node: node,
		Details: map[string]string{
			"declared": declared,
			"required": required,
		},
	}
}

// NewTypeMismatchError creates a GraphError for incompatible edge types.
func NewTypeMismatchError(edge EdgeID, expected, found string) *GraphError {
	return &GraphError{
		Code: ErrCodeTypeMismatch,
		Message: fmt.Sprintf("type mismatch on edge %s: expected %s, found %s",
			edge, expected, found),
		Edge: edge,
		Details: map[string]string{
			"expected": expected,
			"found":    found,
		},
	}
}

// NewMergeConflictError creates a GraphError for colliding ids during
// merge. kind is "node", "edge", or "region".
func NewMergeConflictError(kind, id string) *GraphError {
	return &GraphError{
		Code:    ErrCodeMergeConflict,
		Message: fmt.Sprintf("merge conflict: duplicate %s id %s", kind, id),
		Details: map[string]string{"kind": kind, "id": id},
	}
}

// NewUnmappedBoundaryPortError creates a GraphError for a subgraph
// replacement with an incomplete port mapping.
func NewUnmappedBoundaryPortError(node NodeID, port int) *GraphError {
	return &GraphError{
		Code:    ErrCodeUnmappedBoundaryPort,
		Message: fmt.Sprintf("incomplete port mapping: unmapped boundary port (%s, %d)", node, port),
		Node:    node,
		Port:    port,
	}
}
