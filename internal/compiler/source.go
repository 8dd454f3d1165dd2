package compiler

import (
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/torclang/torc/internal/graph"
)

// CompileString compiles contract source text.
func CompileString(src string) (*ContractSet, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileContracts(v)
}

// CompileFile compiles a contract source file.
func CompileFile(path string) (*ContractSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileContracts(v)
}

// ApplyContracts attaches compiled contracts to their graph nodes.
// Every contract must name an existing node.
func ApplyContracts(g *graph.Graph, set *ContractSet) error {
	for _, nodeID := range set.NodeIDs() {
		node, ok := g.Node(graph.NodeID(nodeID))
		if !ok {
			return &CompileError{
				Field:   "contracts." + nodeID,
				Message: "no node with this id in the graph",
			}
		}
		contract, _ := set.Get(nodeID)
		node.Contract = contract
	}
	return nil
}
