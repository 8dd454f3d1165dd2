package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/torclang/torc/internal/compiler"
	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/ir"
)

// graphFile is the on-disk JSON shape of a graph. Graphs are not
// persisted by the core; this codec is the CLI's boundary format.
type graphFile struct {
	Nodes   []nodeEntry   `json:"nodes"`
	Edges   []edgeEntry   `json:"edges,omitempty"`
	Regions []regionEntry `json:"regions,omitempty"`
}

type nodeEntry struct {
	ID          string            `json:"id"`
	Class       string            `json:"class"`
	Op          string            `json:"op,omitempty"`
	Inputs      []typeEntry       `json:"inputs,omitempty"`
	Outputs     []typeEntry       `json:"outputs,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

type edgeEntry struct {
	ID     string     `json:"id,omitempty"`
	Source portEntry  `json:"source"`
	Target portEntry  `json:"target"`
	Type   *typeEntry `json:"type,omitempty"`
}

type portEntry struct {
	Node string `json:"node"`
	Port int    `json:"port"`
}

type regionEntry struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Children []string `json:"children,omitempty"`
	Parent   string   `json:"parent,omitempty"`
}

// typeEntry is a discriminated union over the type universe. Kind
// selects the form; the remaining fields qualify it.
type typeEntry struct {
	Kind string `json:"kind"`

	Width  uint8 `json:"width,omitempty"`
	Signed bool  `json:"signed,omitempty"`
	Bits   uint8 `json:"bits,omitempty"`

	TotalBits uint8 `json:"total_bits,omitempty"`
	FracBits  uint8 `json:"frac_bits,omitempty"`

	Elems  []typeEntry  `json:"elems,omitempty"`
	Fields []fieldEntry `json:"fields,omitempty"`
	Cases  []fieldEntry `json:"cases,omitempty"`

	Elem  *typeEntry `json:"elem,omitempty"`
	Len   int        `json:"len,omitempty"`
	Inner *typeEntry `json:"inner,omitempty"`
	Base  *typeEntry `json:"base,omitempty"`

	// Pred is a predicate expression for refined types, in contract
	// condition syntax.
	Pred      string `json:"pred,omitempty"`
	Linearity string `json:"linearity,omitempty"`
	WCETNs    uint64 `json:"wcet_ns,omitempty"`
	Target    string `json:"target,omitempty"`
	MaxBytes  uint64 `json:"max_bytes,omitempty"`
	EnergyUJ  uint64 `json:"energy_uj,omitempty"`
	Name      string `json:"name,omitempty"`
}

type fieldEntry struct {
	Name string    `json:"name"`
	Type typeEntry `json:"type"`
}

// LoadGraph reads a graph from a JSON file.
func LoadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "reading graph file", err)
	}
	return ParseGraph(data)
}

// ParseGraph decodes a graph from JSON bytes.
func ParseGraph(data []byte) (*graph.Graph, error) {
	var file graphFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, WrapExitError(ExitCommandError, "parsing graph JSON", err)
	}

	g := graph.New()

	for _, entry := range file.Nodes {
		node, err := decodeNode(entry)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddNode(node); err != nil {
			return nil, WrapExitError(ExitCommandError, "adding node "+entry.ID, err)
		}
	}

	for i, entry := range file.Edges {
		edge, err := decodeEdge(entry)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddEdge(edge); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("adding edge %d", i), err)
		}
	}

	for _, entry := range file.Regions {
		region := graph.NewRegionWithID(graph.RegionID(entry.ID),
			graph.RegionKind(entry.Kind), nil)
		for _, child := range entry.Children {
			region.Children = append(region.Children, graph.NodeID(child))
		}
		if _, err := g.AddRegion(region); err != nil {
			return nil, WrapExitError(ExitCommandError, "adding region "+entry.ID, err)
		}
	}
	// Parents wire up after every region exists.
	for _, entry := range file.Regions {
		if entry.Parent == "" {
			continue
		}
		if err := g.SetRegionParent(graph.RegionID(entry.ID), graph.RegionID(entry.Parent)); err != nil {
			return nil, WrapExitError(ExitCommandError, "linking region "+entry.ID, err)
		}
	}

	return g, nil
}

func decodeNode(entry nodeEntry) (*graph.Node, error) {
	if entry.ID == "" {
		return nil, NewExitError(ExitCommandError, "node is missing an id")
	}

	kind := graph.NodeKind{Class: graph.NodeClass(entry.Class), Op: entry.Op}
	node := graph.NewNodeWithID(graph.NodeID(entry.ID), kind)

	if len(entry.Inputs) > 0 || len(entry.Outputs) > 0 {
		inputs, err := decodeTypes(entry.Inputs, entry.ID)
		if err != nil {
			return nil, err
		}
		outputs, err := decodeTypes(entry.Outputs, entry.ID)
		if err != nil {
			return nil, err
		}
		node = node.WithTypeSignature(ir.NewTypeSignature(inputs, outputs))
	}

	for key, value := range entry.Annotations {
		node = node.WithAnnotation(key, value)
	}

	return node, nil
}

func decodeEdge(entry edgeEntry) (*graph.Edge, error) {
	source := graph.At(graph.NodeID(entry.Source.Node), entry.Source.Port)
	target := graph.At(graph.NodeID(entry.Target.Node), entry.Target.Port)

	var edge *graph.Edge
	if entry.Type != nil {
		dataType, err := decodeType(*entry.Type)
		if err != nil {
			return nil, err
		}
		edge = graph.TypedEdge(source, target, dataType)
	} else {
		edge = graph.NewEdge(source, target)
	}
	if entry.ID != "" {
		edge.ID = graph.EdgeID(entry.ID)
	}
	return edge, nil
}

func decodeTypes(entries []typeEntry, nodeID string) ([]ir.Type, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	types := make([]ir.Type, 0, len(entries))
	for _, entry := range entries {
		t, err := decodeType(entry)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "node "+nodeID, err)
		}
		types = append(types, t)
	}
	return types, nil
}

func decodeType(entry typeEntry) (ir.Type, error) {
	switch entry.Kind {
	case "void":
		return ir.TyVoid{}, nil
	case "unit":
		return ir.TyUnit{}, nil
	case "bool":
		return ir.TyBool{}, nil
	case "int":
		return ir.TyInt{Width: entry.Width, Signed: entry.Signed}, nil
	case "float":
		return ir.TyFloat{Bits: entry.Bits}, nil
	case "fixed":
		return ir.TyFixed{TotalBits: entry.TotalBits, FracBits: entry.FracBits}, nil

	case "tuple":
		elems, err := decodeTypeList(entry.Elems)
		if err != nil {
			return nil, err
		}
		return ir.TyTuple{Elems: elems}, nil
	case "record":
		fields, err := decodeFields(entry.Fields)
		if err != nil {
			return nil, err
		}
		return ir.TyRecord{Fields: fields}, nil
	case "variant":
		cases, err := decodeFields(entry.Cases)
		if err != nil {
			return nil, err
		}
		return ir.TyVariant{Cases: cases}, nil

	case "array":
		elem, err := decodeChild(entry.Elem, "array elem")
		if err != nil {
			return nil, err
		}
		return ir.TyArray{Elem: elem, Len: entry.Len}, nil
	case "vec":
		elem, err := decodeChild(entry.Elem, "vec elem")
		if err != nil {
			return nil, err
		}
		return ir.TyVec{Elem: elem}, nil

	case "refined":
		base, err := decodeChild(entry.Base, "refined base")
		if err != nil {
			return nil, err
		}
		pred, err := compiler.ParsePredicate(entry.Pred)
		if err != nil {
			return nil, fmt.Errorf("refinement predicate: %w", err)
		}
		return ir.TyRefined{Base: base, Pred: pred}, nil

	case "linear":
		inner, err := decodeChild(entry.Inner, "linear inner")
		if err != nil {
			return nil, err
		}
		return ir.TyLinear{Inner: inner, Linearity: ir.Linearity(entry.Linearity)}, nil
	case "timed":
		inner, err := decodeChild(entry.Inner, "timed inner")
		if err != nil {
			return nil, err
		}
		return ir.TyTimed{Inner: inner, WCETNs: entry.WCETNs, Target: entry.Target}, nil
	case "sized":
		inner, err := decodeChild(entry.Inner, "sized inner")
		if err != nil {
			return nil, err
		}
		return ir.TySized{Inner: inner, MaxBytes: entry.MaxBytes}, nil
	case "powered":
		inner, err := decodeChild(entry.Inner, "powered inner")
		if err != nil {
			return nil, err
		}
		return ir.TyPowered{Inner: inner, EnergyUJ: entry.EnergyUJ}, nil
	case "distribution":
		inner, err := decodeChild(entry.Inner, "distribution inner")
		if err != nil {
			return nil, err
		}
		return ir.TyDistribution{Inner: inner}, nil
	case "option":
		inner, err := decodeChild(entry.Inner, "option inner")
		if err != nil {
			return nil, err
		}
		return ir.TyOption{Inner: inner}, nil

	case "named":
		if entry.Name == "" {
			return nil, fmt.Errorf("named type requires a name")
		}
		return ir.TyNamed{Name: entry.Name}, nil

	default:
		return nil, fmt.Errorf("unknown type kind %q", entry.Kind)
	}
}

func decodeTypeList(entries []typeEntry) ([]ir.Type, error) {
	types := make([]ir.Type, 0, len(entries))
	for _, entry := range entries {
		t, err := decodeType(entry)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func decodeFields(entries []fieldEntry) ([]ir.Field, error) {
	fields := make([]ir.Field, 0, len(entries))
	for _, entry := range entries {
		t, err := decodeType(entry.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ir.Field{Name: entry.Name, Type: t})
	}
	return fields, nil
}

func decodeChild(entry *typeEntry, what string) (ir.Type, error) {
	if entry == nil {
		return nil, fmt.Errorf("%s is required", what)
	}
	return decodeType(*entry)
}
