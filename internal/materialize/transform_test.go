package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/platform"
)

type countingTransform struct {
	applied int
}

func (c *countingTransform) Name() string { return "counting" }

func (c *countingTransform) Apply(_ *graph.Graph, _ platform.Platform) TransformStats {
	c.applied++
	return TransformStats{NodesAdded: 1}
}

func TestIdentityTransformLeavesGraphUnchanged(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, literal("a"))
	before := g.NodeCount()

	stats := IdentityTransform{}.Apply(g, platform.GenericLinuxX8664())
	assert.Equal(t, TransformStats{}, stats)
	assert.Equal(t, before, g.NodeCount())
}

func TestRegistryAppliesInRegistrationOrder(t *testing.T) {
	first := &countingTransform{}
	second := &countingTransform{}

	registry := NewTransformRegistry()
	registry.RegisterTransform(first)
	registry.RegisterTransform(IdentityTransform{})
	registry.RegisterTransform(second)

	g := graph.New()
	stats := registry.ApplyAll(g, platform.GenericLinuxX8664())

	assert.Len(t, stats, 3)
	assert.Equal(t, 1, stats[0].NodesAdded)
	assert.Equal(t, 0, stats[1].NodesAdded)
	assert.Equal(t, 1, first.applied)
	assert.Equal(t, 1, second.applied)
}

func TestEmptyRegistry(t *testing.T) {
	registry := NewTransformRegistry()
	assert.Empty(t, registry.Lowerings())
	assert.Empty(t, registry.Transforms())
	assert.Empty(t, registry.ApplyAll(graph.New(), platform.GenericLinuxX8664()))
}
