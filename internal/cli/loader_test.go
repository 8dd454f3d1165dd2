package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/ir"
)

const pipelineJSON = `{
	"nodes": [
		{
			"id": "adc-read",
			"class": "Read",
			"outputs": [{"kind": "int", "width": 16, "signed": false}]
		},
		{
			"id": "scale",
			"class": "Arithmetic",
			"op": "Mul",
			"inputs": [{"kind": "int", "width": 16, "signed": false}],
			"outputs": [{"kind": "int", "width": 32, "signed": true}],
			"annotations": {"stage": "conditioning"}
		}
	],
	"edges": [
		{
			"source": {"node": "adc-read", "port": 0},
			"target": {"node": "scale", "port": 0},
			"type": {"kind": "int", "width": 16, "signed": false}
		}
	],
	"regions": [
		{"id": "acquire", "kind": "sequential", "children": ["adc-read", "scale"]}
	]
}`

func TestParseGraph(t *testing.T) {
	g, err := ParseGraph([]byte(pipelineJSON))
	require.NoError(t, err)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1, g.RegionCount())

	scale, ok := g.Node("scale")
	require.True(t, ok)
	assert.Equal(t, graph.ClassArithmetic, scale.Kind.Class)
	assert.Equal(t, "Mul", scale.Kind.Op)
	assert.Equal(t, "conditioning", scale.Annotations["stage"])
	require.NotNil(t, scale.TypeSignature)
	assert.Equal(t, ir.U16(), scale.TypeSignature.Inputs[0])
	assert.Equal(t, ir.I32(), scale.TypeSignature.Outputs[0])
}

func TestLoadGraphFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte(pipelineJSON), 0o644))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
}

func TestLoadGraphMissingFile(t *testing.T) {
	_, err := LoadGraph(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseGraphRejectsMalformedJSON(t *testing.T) {
	_, err := ParseGraph([]byte(`{"nodes": [`))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseGraphRejectsMissingNodeID(t *testing.T) {
	_, err := ParseGraph([]byte(`{"nodes": [{"class": "Literal"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing an id")
}

func TestParseGraphRejectsUnknownTypeKind(t *testing.T) {
	src := `{"nodes": [{"id": "x", "class": "Literal", "outputs": [{"kind": "quaternion"}]}]}`
	_, err := ParseGraph([]byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type kind")
}

func TestParseGraphNestedRegions(t *testing.T) {
	src := `{
		"nodes": [{"id": "a", "class": "Literal"}],
		"regions": [
			{"id": "outer", "kind": "sequential"},
			{"id": "inner", "kind": "parallel", "children": ["a"], "parent": "outer"}
		]
	}`
	g, err := ParseGraph([]byte(src))
	require.NoError(t, err)

	parent, ok := g.ParentRegion("inner")
	require.True(t, ok)
	assert.Equal(t, graph.RegionID("outer"), parent)
}

func TestDecodeRefinedType(t *testing.T) {
	src := `{"nodes": [{"id": "x", "class": "Literal", "outputs": [
		{"kind": "refined", "base": {"kind": "int", "width": 32, "signed": true},
		 "pred": "value >= 0 && value <= 4095"}
	]}]}`
	g, err := ParseGraph([]byte(src))
	require.NoError(t, err)

	node, _ := g.Node("x")
	refined, ok := node.TypeSignature.Outputs[0].(ir.TyRefined)
	require.True(t, ok)
	assert.Equal(t, ir.InRange("value", 0, 4095), refined.Pred)
}

func TestDecodeWrapperTypes(t *testing.T) {
	src := `{"nodes": [{"id": "x", "class": "Literal", "outputs": [
		{"kind": "linear", "linearity": "Linear",
		 "inner": {"kind": "array", "len": 64, "elem": {"kind": "float", "bits": 32}}}
	]}]}`
	g, err := ParseGraph([]byte(src))
	require.NoError(t, err)

	node, _ := g.Node("x")
	linear, ok := node.TypeSignature.Outputs[0].(ir.TyLinear)
	require.True(t, ok)
	assert.Equal(t, ir.LinLinear, linear.Linearity)
	assert.Equal(t, ir.TyArray{Elem: ir.F32(), Len: 64}, linear.Inner)
}
