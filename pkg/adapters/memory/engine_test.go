package memory_test

import (
	"testing"

	"github.com/aretw0/graphnav/pkg/adapters/memory"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...memory.EngineOption) *memory.Engine {
	t.Helper()
	e, err := memory.NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestEngine_Catalog(t *testing.T) {
	e := newEngine(t)
	names := []string{}
	for _, nt := range e.NodeTypes() {
		names = append(names, nt.Name)
	}
	assert.Equal(t, []string{"Empty", "Circle", "CreateRectangle", "AddPoints", "Translate", "Repeat", "SmoothTangents", "Merge", "Subgraph"}, names)

	restricted := newEngine(t, memory.WithCatalog("Circle", "Empty"))
	require.Len(t, restricted.NodeTypes(), 2)
	assert.Equal(t, "Circle", restricted.NodeTypes()[0].Name)

	_, err := memory.NewEngine(memory.WithCatalog("Teapot"))
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
}

func TestEngine_GenerationalHandles(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()

	a, err := e.AddProcessorNode(root, "Circle")
	require.NoError(t, err)
	assert.Equal(t, "0.0", a.ID)
	assert.Equal(t, "Circle", a.Type)

	require.NoError(t, e.RemoveNode(root, a))
	assert.ErrorIs(t, e.RemoveNode(root, a), domain.ErrInvalidReference)

	b, err := e.AddProcessorNode(root, "Empty")
	require.NoError(t, err)
	assert.Equal(t, "0.1", b.ID, "slot reused with a new generation")

	_, err = e.IsSubgraphProcessor(root, a)
	assert.ErrorIs(t, err, domain.ErrInvalidReference, "stale handle stays invalid")

	_, err = e.AddProcessorNode(root, "Teapot")
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
}

func TestEngine_PathsAndHashes(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()

	key, err := e.HashGraphPath(root)
	require.NoError(t, err)
	assert.Equal(t, domain.ContextKey("r"), key)

	circle, _ := e.AddProcessorNode(root, "Circle")
	sub, _ := e.AddProcessorNode(root, "Subgraph")

	ok, err := e.IsSubgraphProcessor(root, sub)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = e.GraphPath(root, circle)
	assert.ErrorIs(t, err, domain.ErrNotSubgraph)

	child, err := e.GraphPath(root, sub)
	require.NoError(t, err)
	key, err = e.HashGraphPath(child)
	require.NoError(t, err)
	assert.Equal(t, domain.ContextKey("r/1.0"), key)

	inner, err := e.AddProcessorNode(child, "Subgraph")
	require.NoError(t, err)
	grandchild, err := e.GraphPath(child, inner)
	require.NoError(t, err)
	key, err = e.HashGraphPath(grandchild)
	require.NoError(t, err)
	assert.Equal(t, domain.ContextKey("r/1.0/0.0"), key)

	again, err := e.GraphPath(root, sub)
	require.NoError(t, err)
	againKey, _ := e.HashGraphPath(again)
	childKey, _ := e.HashGraphPath(child)
	assert.Equal(t, childKey, againKey, "independently resolved paths hash equal")

	require.NoError(t, e.RemoveNode(root, sub))
	_, err = e.HashGraphPath(child)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestEngine_RunProcessors(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()

	_, err := e.RunProcessors(root)
	assert.ErrorIs(t, err, domain.ErrNoResult, "no output node")

	rect, _ := e.AddProcessorNode(root, "CreateRectangle")
	move, _ := e.AddProcessorNode(root, "Translate")
	require.NoError(t, e.SetOutputNode(root, move))

	ok, err := e.IsInputSatisfied(root, move)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = e.RunProcessors(root)
	assert.ErrorIs(t, err, domain.ErrNoResult, "unsatisfied input")

	require.NoError(t, e.ConnectNodesSlotted(root, rect, move, 0))
	require.NoError(t, e.SetNodeParameter(root, move, "offset", "5,-5"))

	w, err := e.RunProcessors(root)
	require.NoError(t, err)
	require.Len(t, w.Shapes, 1)
	require.Len(t, w.Points, 4)
	lo, hi := w.Bounds()
	assert.Equal(t, domain.Position{5, -5}, lo)
	assert.Equal(t, domain.Position{105, 95}, hi)
}

func TestEngine_Links(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()

	a, _ := e.AddProcessorNode(root, "Circle")
	b, _ := e.AddProcessorNode(root, "Empty")
	merge, _ := e.AddProcessorNode(root, "Merge")
	move, _ := e.AddProcessorNode(root, "Translate")

	assert.ErrorIs(t, e.ConnectNodes(root, a, move), domain.ErrIncompatiblePort)
	assert.ErrorIs(t, e.ConnectNodesSlotted(root, a, merge, 0), domain.ErrIncompatiblePort)
	assert.ErrorIs(t, e.ConnectNodesSlotted(root, a, move, 1), domain.ErrIncompatiblePort)

	require.NoError(t, e.ConnectNodes(root, a, merge))
	require.NoError(t, e.ConnectNodes(root, b, merge))
	require.NoError(t, e.ConnectNodesSlotted(root, merge, move, 0))
	assert.ErrorIs(t, e.ConnectNodes(root, move, merge), memory.ErrCycle)

	require.NoError(t, e.SetOutputNode(root, merge))
	w, err := e.RunProcessors(root)
	require.NoError(t, err)
	assert.Len(t, w.Points, 16)

	require.NoError(t, e.DisconnectNodes(root, a, merge))
	require.NoError(t, e.DisconnectNodes(root, a, merge), "disconnecting twice is harmless")
	w, err = e.RunProcessors(root)
	require.NoError(t, err)
	assert.Empty(t, w.Points)

	require.NoError(t, e.DisconnectNodesSlotted(root, merge, move, 0))
	ok, _ := e.IsInputSatisfied(root, move)
	assert.False(t, ok)
}

func TestEngine_RemoveNodeDropsLinksAndOutput(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()
	a, _ := e.AddProcessorNode(root, "Circle")
	move, _ := e.AddProcessorNode(root, "Translate")
	require.NoError(t, e.ConnectNodesSlotted(root, a, move, 0))
	require.NoError(t, e.SetOutputNode(root, a))

	require.NoError(t, e.RemoveNode(root, a))

	ok, _ := e.IsInputSatisfied(root, move)
	assert.False(t, ok)
	_, err := e.RunProcessors(root)
	assert.ErrorIs(t, err, domain.ErrNoResult)
}

func TestEngine_Parameters(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()
	c, _ := e.AddProcessorNode(root, "Circle")

	v, err := e.NodeParameter(root, c, "radius")
	require.NoError(t, err)
	assert.Equal(t, "50", v)

	require.NoError(t, e.SetNodeParameter(root, c, "radius", "12.5"))
	v, _ = e.NodeParameter(root, c, "radius")
	assert.Equal(t, "12.5", v)

	assert.ErrorIs(t, e.SetNodeParameter(root, c, "radius", "big"), domain.ErrInvalidValue)
	assert.ErrorIs(t, e.SetNodeParameter(root, c, "colour", "red"), domain.ErrUnknownParameter)
	_, err = e.NodeParameter(root, c, "colour")
	assert.ErrorIs(t, err, domain.ErrUnknownParameter)
}

func TestEngine_SubgraphEvaluatesNestedOutput(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()
	sub, _ := e.AddProcessorNode(root, "Subgraph")
	require.NoError(t, e.SetOutputNode(root, sub))

	_, err := e.RunProcessors(root)
	assert.ErrorIs(t, err, domain.ErrNoResult, "nested graph has no output yet")

	child, err := e.GraphPath(root, sub)
	require.NoError(t, err)
	c, _ := e.AddProcessorNode(child, "Circle")
	require.NoError(t, e.SetNodeParameter(child, c, "segments", "4"))
	require.NoError(t, e.SetOutputNode(child, c))

	w, err := e.RunProcessors(root)
	require.NoError(t, err)
	assert.Len(t, w.Points, 4)
}

func TestEngine_SmoothTangents(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()
	base, _ := e.AddProcessorNode(root, "Empty")
	pts, _ := e.AddProcessorNode(root, "AddPoints")
	smooth, _ := e.AddProcessorNode(root, "SmoothTangents")
	require.NoError(t, e.SetNodeParameter(root, pts, "points", "0,0;10,0;20,0"))
	require.NoError(t, e.ConnectNodesSlotted(root, base, pts, 0))
	require.NoError(t, e.ConnectNodesSlotted(root, pts, smooth, 0))
	require.NoError(t, e.SetOutputNode(root, smooth))

	w, err := e.RunProcessors(root)
	require.NoError(t, err)
	mid := w.Points[w.Shapes[0].Vertices[1].Index]
	assert.Equal(t, domain.TangentAt(5, 0), mid.InTangent)
	assert.Equal(t, domain.TangentAt(15, 0), mid.OutTangent)
	assert.False(t, w.Shapes[0].Closed)
}

func TestEngine_ForeignPath(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddProcessorNode(domain.GraphPath{Ref: "elsewhere"}, "Circle")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestEngine_ParameterLimits(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()
	circle, err := e.AddProcessorNode(root, "Circle")
	require.NoError(t, err)
	repeat, err := e.AddProcessorNode(root, "Repeat")
	require.NoError(t, err)

	tests := []struct {
		node  domain.NodeHandle
		name  string
		value string
		ok    bool
	}{
		{repeat, "times", "1024", true},
		{repeat, "times", "1025", false},
		{repeat, "times", "2000000000", false},
		{repeat, "times", "-1", false},
		{circle, "segments", "4096", true},
		{circle, "segments", "4097", false},
		{circle, "segments", "99999999999", false},
	}
	for _, tt := range tests {
		err := e.SetNodeParameter(root, tt.node, tt.name, tt.value)
		if tt.ok {
			assert.NoError(t, err, "%s=%s", tt.name, tt.value)
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidValue, "%s=%s", tt.name, tt.value)
		}
	}

	v, err := e.NodeParameter(root, repeat, "times")
	require.NoError(t, err)
	assert.Equal(t, "1024", v, "rejected writes keep the last accepted value")
}

func TestEngine_RepeatRefusesHugeWorlds(t *testing.T) {
	e := newEngine(t)
	root := e.RootPath()
	circle, err := e.AddProcessorNode(root, "Circle")
	require.NoError(t, err)
	repeat, err := e.AddProcessorNode(root, "Repeat")
	require.NoError(t, err)
	require.NoError(t, e.ConnectNodesSlotted(root, circle, repeat, 0))
	require.NoError(t, e.SetOutputNode(root, repeat))

	require.NoError(t, e.SetNodeParameter(root, circle, "segments", "4096"))
	require.NoError(t, e.SetNodeParameter(root, repeat, "times", "1024"))
	_, err = e.RunProcessors(root)
	assert.ErrorContains(t, err, "limit is")

	require.NoError(t, e.SetNodeParameter(root, repeat, "times", "3"))
	w, err := e.RunProcessors(root)
	require.NoError(t, err)
	assert.Len(t, w.Points, 3*4096)
}
