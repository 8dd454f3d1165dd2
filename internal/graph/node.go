package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/torclang/torc/internal/ir"
)

// NodeID is a globally unique node identifier (UUID string).
type NodeID string

// NewNodeID returns a fresh random node id.
func NewNodeID() NodeID { return NodeID(uuid.NewString()) }

// ArithmeticOp enumerates arithmetic operations.
type ArithmeticOp string

const (
	ArithAdd ArithmeticOp = "Add"
	ArithSub ArithmeticOp = "Sub"
	ArithMul ArithmeticOp = "Mul"
	ArithDiv ArithmeticOp = "Div"
	ArithMod ArithmeticOp = "Mod"
	ArithPow ArithmeticOp = "Pow"
)

// BitwiseOp enumerates bitwise operations.
type BitwiseOp string

const (
	BitAnd        BitwiseOp = "And"
	BitOr         BitwiseOp = "Or"
	BitXor        BitwiseOp = "Xor"
	BitNot        BitwiseOp = "Not"
	BitShiftLeft  BitwiseOp = "ShiftLeft"
	BitShiftRight BitwiseOp = "ShiftRight"
	BitRotate     BitwiseOp = "Rotate"
)

// ComparisonOp enumerates comparison operations.
type ComparisonOp string

const (
	CmpEq ComparisonOp = "Eq"
	CmpNe ComparisonOp = "Ne"
	CmpLt ComparisonOp = "Lt"
	CmpLe ComparisonOp = "Le"
	CmpGt ComparisonOp = "Gt"
	CmpGe ComparisonOp = "Ge"
)

// MemoryOrdering enumerates memory orderings for atomic operations.
type MemoryOrdering string

const (
	OrderRelaxed MemoryOrdering = "Relaxed"
	OrderAcquire MemoryOrdering = "Acquire"
	OrderRelease MemoryOrdering = "Release"
	OrderAcqRel  MemoryOrdering = "AcqRel"
	OrderSeqCst  MemoryOrdering = "SeqCst"
)

// NodeClass is the category of computation a node performs.
type NodeClass string

const (
	// Primitive computation
	ClassLiteral    NodeClass = "Literal"
	ClassArithmetic NodeClass = "Arithmetic"
	ClassBitwise    NodeClass = "Bitwise"
	ClassComparison NodeClass = "Comparison"
	ClassConversion NodeClass = "Conversion"

	// Data structure
	ClassConstruct   NodeClass = "Construct"
	ClassDestructure NodeClass = "Destructure"
	ClassIndex       NodeClass = "Index"
	ClassSlice       NodeClass = "Slice"

	// Control flow
	ClassSelect   NodeClass = "Select"
	ClassSwitch   NodeClass = "Switch"
	ClassIterate  NodeClass = "Iterate"
	ClassRecurse  NodeClass = "Recurse"
	ClassFixpoint NodeClass = "Fixpoint"

	// Effects
	ClassAllocate   NodeClass = "Allocate"
	ClassDeallocate NodeClass = "Deallocate"
	ClassRead       NodeClass = "Read"
	ClassWrite      NodeClass = "Write"
	ClassAtomic     NodeClass = "Atomic"
	ClassFence      NodeClass = "Fence"
	ClassSyscall    NodeClass = "Syscall"
	ClassFFICall    NodeClass = "FFICall"

	// Meta
	ClassVerify     NodeClass = "Verify"
	ClassAssume     NodeClass = "Assume"
	ClassMeasure    NodeClass = "Measure"
	ClassCheckpoint NodeClass = "Checkpoint"
	ClassAnnotate   NodeClass = "Annotate"

	// Probabilistic
	ClassSample      NodeClass = "Sample"
	ClassCondition   NodeClass = "Condition"
	ClassExpectation NodeClass = "Expectation"
	ClassEntropy     NodeClass = "Entropy"
	ClassApproximate NodeClass = "Approximate"
)

// NodeKind is the kind of computation a node represents: a class plus
// an operator qualifier for parameterized classes (Arithmetic, Bitwise,
// Comparison, Atomic, Fence). Comparable, so usable as a map key.
type NodeKind struct {
	Class NodeClass
	Op    string
}

// Kind returns a kind for an unparameterized class.
func Kind(class NodeClass) NodeKind { return NodeKind{Class: class} }

// Arithmetic returns an arithmetic node kind.
func Arithmetic(op ArithmeticOp) NodeKind {
	return NodeKind{Class: ClassArithmetic, Op: string(op)}
}

// Bitwise returns a bitwise node kind.
func Bitwise(op BitwiseOp) NodeKind {
	return NodeKind{Class: ClassBitwise, Op: string(op)}
}

// Comparison returns a comparison node kind.
func Comparison(op ComparisonOp) NodeKind {
	return NodeKind{Class: ClassComparison, Op: string(op)}
}

// Atomic returns an atomic node kind with the given ordering.
func Atomic(ord MemoryOrdering) NodeKind {
	return NodeKind{Class: ClassAtomic, Op: string(ord)}
}

// Fence returns a fence node kind with the given ordering.
func Fence(ord MemoryOrdering) NodeKind {
	return NodeKind{Class: ClassFence, Op: string(ord)}
}

func (k NodeKind) String() string {
	if k.Op != "" {
		return fmt.Sprintf("%s(%s)", k.Class, k.Op)
	}
	return string(k.Class)
}

// CycleExempt reports whether the kind is allowed to sit on a cycle:
// iteration and recursion constructs carry explicit back-edges.
func (k NodeKind) CycleExempt() bool {
	switch k.Class {
	case ClassIterate, ClassRecurse, ClassFixpoint:
		return true
	default:
		return false
	}
}

// Node is a unit of computation in a torc graph.
type Node struct {
	// ID is the globally unique identifier.
	ID NodeID
	// Kind is the category of computation.
	Kind NodeKind
	// TypeSignature gives input and output port types, if declared.
	TypeSignature *ir.TypeSignature
	// Contract carries pre/postconditions, resource bounds, and
	// effects, if declared.
	Contract *ir.Contract
	// Provenance records who created this node and why.
	Provenance *ir.Provenance
	// Annotations hold extensible metadata (optimization hints,
	// safety class, etc.).
	Annotations map[string]string
}

// NewNode creates a node of the given kind with a random id.
func NewNode(kind NodeKind) *Node {
	return &Node{
		ID:          NewNodeID(),
		Kind:        kind,
		Annotations: map[string]string{},
	}
}

// NewNodeWithID creates a node with a specific id, for deserialization
// or testing.
func NewNodeWithID(id NodeID, kind NodeKind) *Node {
	n := NewNode(kind)
	n.ID = id
	return n
}

// WithTypeSignature attaches a type signature.
func (n *Node) WithTypeSignature(sig ir.TypeSignature) *Node {
	n.TypeSignature = &sig
	return n
}

// WithContract attaches a contract.
func (n *Node) WithContract(c *ir.Contract) *Node {
	n.Contract = c
	return n
}

// WithProvenance attaches provenance information.
func (n *Node) WithProvenance(p *ir.Provenance) *Node {
	n.Provenance = p
	return n
}

// WithAnnotation sets a metadata key.
func (n *Node) WithAnnotation(key, value string) *Node {
	n.Annotations[key] = value
	return n
}

// Clone returns a deep copy of the node with the same id.
func (n *Node) Clone() *Node {
	out := *n
	if n.TypeSignature != nil {
		sig := *n.TypeSignature
		sig.Inputs = append([]ir.Type(nil), n.TypeSignature.Inputs...)
		sig.Outputs = append([]ir.Type(nil), n.TypeSignature.Outputs...)
		out.TypeSignature = &sig
	}
	out.Contract = n.Contract.Clone()
	out.Annotations = make(map[string]string, len(n.Annotations))
	for k, v := range n.Annotations {
		out.Annotations[k] = v
	}
	return &out
}

// ContentHash returns the content-addressed identity of the node: its
// kind, type signature, and contract. The id, region membership,
// provenance, and annotations are excluded, so structurally identical
// nodes hash identically.
func (n *Node) ContentHash() ir.ContentHash {
	obj := ir.CanonObject{
		"kind": ir.CanonString(n.Kind.String()),
	}
	if n.TypeSignature != nil {
		obj["type_signature"] = ir.CanonString(n.TypeSignature.String())
	}
	if n.Contract != nil {
		obj["contract"] = contractCanon(n.Contract)
	}
	return ir.MustHashCanonical(ir.DomainNode, obj)
}

// contractCanon renders a contract into canonical-JSON form for node
// hashing. Predicates and effects use their canonical string forms.
func contractCanon(c *ir.Contract) ir.CanonValue {
	obj := ir.CanonObject{}
	if len(c.Preconditions) > 0 {
		pre := make(ir.CanonArray, len(c.Preconditions))
		for i, p := range c.Preconditions {
			pre[i] = ir.CanonString(p.String())
		}
		obj["preconditions"] = pre
	}
	if len(c.Postconditions) > 0 {
		post := make(ir.CanonArray, len(c.Postconditions))
		for i, p := range c.Postconditions {
			post[i] = ir.CanonString(p.String())
		}
		obj["postconditions"] = post
	}
	if c.TimeBound != nil {
		obj["time"] = ir.CanonObject{
			"wcet_ns": ir.CanonUint(c.TimeBound.WCETNs),
			"bcet_ns": ir.CanonUint(c.TimeBound.BCETNs),
			"avg_ns":  ir.CanonUint(c.TimeBound.AvgNs),
			"target":  ir.CanonString(c.TimeBound.Target),
		}
	}
	if c.MemoryBound != nil {
		obj["memory"] = ir.CanonObject{
			"peak_bytes":      ir.CanonUint(c.MemoryBound.PeakBytes),
			"allocated_bytes": ir.CanonUint(c.MemoryBound.AllocatedBytes),
			"freed_bytes":     ir.CanonUint(c.MemoryBound.FreedBytes),
		}
	}
	if c.StackBound != nil {
		obj["stack"] = ir.CanonUint(c.StackBound.MaxBytes)
	}
	if c.EnergyBound != nil {
		obj["energy"] = ir.CanonUint(c.EnergyBound.MaxMicrojoules)
	}
	if len(c.FailureModes) > 0 {
		modes := make(ir.CanonArray, len(c.FailureModes))
		for i, fm := range c.FailureModes {
			modes[i] = ir.CanonObject{
				"name":        ir.CanonString(fm.Name),
				"description": ir.CanonString(fm.Description),
				"recovery":    ir.CanonString(fm.Recovery.String()),
			}
		}
		obj["failure_modes"] = modes
	}
	obj["effects"] = ir.CanonString(c.Effects.String())
	return obj
}
