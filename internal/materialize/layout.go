package materialize

import (
	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/ir"
	"github.com/torclang/torc/internal/platform"
)

// TypeSize is the estimated size and alignment of a type.
type TypeSize struct {
	SizeBytes  uint64
	AlignBytes uint64
}

// FrameEstimate is the estimated stack frame for one node.
type FrameEstimate struct {
	NodeID      graph.NodeID
	InputBytes  uint64
	OutputBytes uint64
	// TotalBytes includes inputs, outputs, and frame overhead.
	TotalBytes uint64
}

// MemoryLayout is the complete memory estimate for a graph.
type MemoryLayout struct {
	// Per-node stack frames, in node insertion order.
	Frames []FrameEstimate
	// Worst-case stack usage along any dependency path.
	PeakStackBytes uint64
	// Static data contributed by literal nodes.
	StaticDataBytes uint64
	// Code size heuristic.
	EstimatedCodeBytes uint64
}

const instructionsPerNode = 10

// EstimateTypeSize computes size and alignment for a type under C-like
// ABI rules: natural alignment capped at the word size. The second
// result is false for dynamically sized or unresolved types.
func EstimateTypeSize(t ir.Type, target platform.Platform) (TypeSize, bool) {
	word := uint64(target.WordBytes)

	switch v := t.(type) {
	case ir.TyVoid, ir.TyUnit:
		return TypeSize{SizeBytes: 0, AlignBytes: 1}, true
	case ir.TyBool:
		return TypeSize{SizeBytes: 1, AlignBytes: 1}, true
	case ir.TyInt:
		bytes := (uint64(v.Width) + 7) / 8
		return TypeSize{SizeBytes: bytes, AlignBytes: minU64(bytes, word)}, true
	case ir.TyFloat:
		bytes := uint64(v.Bits) / 8
		return TypeSize{SizeBytes: bytes, AlignBytes: minU64(bytes, word)}, true
	case ir.TyFixed:
		bytes := (uint64(v.TotalBits) + 7) / 8
		return TypeSize{SizeBytes: bytes, AlignBytes: minU64(bytes, word)}, true

	case ir.TyTuple:
		return estimateAggregate(v.Elems, target)
	case ir.TyRecord:
		types := make([]ir.Type, len(v.Fields))
		for i, f := range v.Fields {
			types[i] = f.Type
		}
		return estimateAggregate(types, target)

	case ir.TyVariant:
		// Tag byte plus the widest case, padded to overall alignment.
		tagSize := uint64(1)
		if len(v.Cases) > 256 {
			tagSize = 4
		}
		maxSize := uint64(0)
		maxAlign := minU64(tagSize, word)
		for _, c := range v.Cases {
			cs, ok := EstimateTypeSize(c.Type, target)
			if !ok {
				return TypeSize{}, false
			}
			maxSize = maxU64(maxSize, cs.SizeBytes)
			maxAlign = maxU64(maxAlign, cs.AlignBytes)
		}
		return TypeSize{
			SizeBytes:  alignUp(tagSize+maxSize, maxAlign),
			AlignBytes: maxAlign,
		}, true

	case ir.TyArray:
		es, ok := EstimateTypeSize(v.Elem, target)
		if !ok {
			return TypeSize{}, false
		}
		stride := alignUp(es.SizeBytes, es.AlignBytes)
		return TypeSize{
			SizeBytes:  stride * uint64(v.Len),
			AlignBytes: es.AlignBytes,
		}, true

	case ir.TyOption:
		is, ok := EstimateTypeSize(v.Inner, target)
		if !ok {
			return TypeSize{}, false
		}
		align := maxU64(is.AlignBytes, 1)
		return TypeSize{
			SizeBytes:  alignUp(1+is.SizeBytes, align),
			AlignBytes: align,
		}, true

	// Wrappers delegate to the inner type.
	case ir.TyRefined:
		return EstimateTypeSize(v.Base, target)
	case ir.TyLinear:
		return EstimateTypeSize(v.Inner, target)
	case ir.TyTimed:
		return EstimateTypeSize(v.Inner, target)
	case ir.TySized:
		return EstimateTypeSize(v.Inner, target)
	case ir.TyPowered:
		return EstimateTypeSize(v.Inner, target)

	// Dynamically sized or unresolved.
	case ir.TyVec, ir.TyDistribution, ir.TyNamed, ir.TyParameterized:
		return TypeSize{}, false

	default:
		return TypeSize{}, false
	}
}

func estimateAggregate(elems []ir.Type, target platform.Platform) (TypeSize, bool) {
	size := uint64(0)
	maxAlign := uint64(1)
	for _, elem := range elems {
		es, ok := EstimateTypeSize(elem, target)
		if !ok {
			return TypeSize{}, false
		}
		size = alignUp(size, es.AlignBytes)
		size += es.SizeBytes
		maxAlign = maxU64(maxAlign, es.AlignBytes)
	}
	return TypeSize{SizeBytes: alignUp(size, maxAlign), AlignBytes: maxAlign}, true
}

// EstimateLayout computes per-node frames, peak stack, static data,
// and a code size heuristic for a graph on a target.
func EstimateLayout(g *graph.Graph, target platform.Platform) (*MemoryLayout, error) {
	layout := &MemoryLayout{}
	frameBytes := map[graph.NodeID]uint64{}
	overhead := uint64(target.WordBytes) * 2

	for _, node := range g.Nodes() {
		var inputBytes, outputBytes uint64
		if node.TypeSignature != nil {
			inputBytes = sumSizes(node.TypeSignature.Inputs, target)
			outputBytes = sumSizes(node.TypeSignature.Outputs, target)
		}
		total := inputBytes + outputBytes + overhead

		frameBytes[node.ID] = total
		layout.Frames = append(layout.Frames, FrameEstimate{
			NodeID:      node.ID,
			InputBytes:  inputBytes,
			OutputBytes: outputBytes,
			TotalBytes:  total,
		})

		if node.Kind.Class == graph.ClassLiteral {
			layout.StaticDataBytes += outputBytes
		}
	}

	layout.PeakStackBytes = computePeakStack(g, frameBytes)

	codeMultiplier := uint64(8)
	if target.WordBytes == 4 {
		codeMultiplier = 4
	}
	layout.EstimatedCodeBytes = uint64(g.NodeCount()) * instructionsPerNode * codeMultiplier

	return layout, nil
}

func sumSizes(types []ir.Type, target platform.Platform) uint64 {
	total := uint64(0)
	for _, t := range types {
		if ts, ok := EstimateTypeSize(t, target); ok {
			total += ts.SizeBytes
		}
	}
	return total
}

// computePeakStack finds the heaviest dependency path in frame bytes,
// the worst-case stack depth under sequential execution. Falls back to
// the sum of all frames when the graph has an illegal cycle.
func computePeakStack(g *graph.Graph, frameBytes map[graph.NodeID]uint64) uint64 {
	sorted, err := g.TopologicalSort()
	if err != nil {
		total := uint64(0)
		for _, b := range frameBytes {
			total += b
		}
		return total
	}
	if len(sorted) == 0 {
		return 0
	}

	heaviest := map[graph.NodeID]uint64{}
	peak := uint64(0)
	for _, id := range sorted {
		best := uint64(0)
		for _, eid := range g.IncomingEdges(id) {
			edge, ok := g.Edge(eid)
			if !ok {
				continue
			}
			best = maxU64(best, heaviest[edge.Source.Node])
		}
		heaviest[id] = best + frameBytes[id]
		peak = maxU64(peak, heaviest[id])
	}
	return peak
}

func alignUp(value, align uint64) uint64 {
	if align == 0 {
		return value
	}
	return (value + align - 1) / align * align
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
