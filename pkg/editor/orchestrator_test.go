package editor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/graphnav/pkg/adapters/memory"
	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/editor"
	"github.com/aretw0/graphnav/pkg/navigation"
	"github.com/aretw0/graphnav/pkg/ports"
	"github.com/aretw0/graphnav/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	engine  ports.Engine
	diagram *memory.Diagram
	state   *session.State
	bus     *bus.Bus
	nav     *navigation.Navigator
	orch    *editor.Orchestrator
	seen    []domain.Message
}

func newHarness(t *testing.T, engine ports.Engine) *harness {
	t.Helper()
	h := &harness{
		engine:  engine,
		diagram: memory.NewDiagram(nil),
		state:   session.New(engine.RootPath(), engine.NodeTypes()),
		bus:     bus.New(),
	}
	h.nav = navigation.New(engine, h.diagram, memory.NewStore(), h.state, h.bus)
	h.orch = editor.New(engine, h.diagram, h.state, h.bus, h.nav)
	h.orch.Register()
	for _, kind := range domain.Kinds() {
		h.bus.Subscribe(kind, func(_ context.Context, msg domain.Message) error {
			h.seen = append(h.seen, msg)
			return nil
		})
	}
	require.NoError(t, h.nav.Start(context.Background()))
	return h
}

func defaultHarness(t *testing.T, opts ...memory.EngineOption) *harness {
	t.Helper()
	e, err := memory.NewEngine(opts...)
	require.NoError(t, err)
	return newHarness(t, e)
}

func (h *harness) send(t *testing.T, msg domain.Message) {
	t.Helper()
	require.NoError(t, h.bus.Publish(context.Background(), msg))
}

func (h *harness) create(t *testing.T, typeName string) domain.NodeHandle {
	t.Helper()
	h.seen = nil
	h.send(t, domain.CreateNode{TypeName: typeName})
	for _, m := range h.seen {
		if c, ok := m.(domain.NodeCreated); ok {
			return c.Node
		}
	}
	t.Fatalf("no NodeCreated for %s", typeName)
	return domain.NodeHandle{}
}

func (h *harness) count(kind domain.Kind) int {
	n := 0
	for _, m := range h.seen {
		if m.Kind() == kind {
			n++
		}
	}
	return n
}

func TestOrchestrator_CreateAndDeleteNode(t *testing.T) {
	h := defaultHarness(t, memory.WithCatalog("Empty", "Circle"))

	h.seen = nil
	h.send(t, domain.CreateNode{TypeName: "Circle"})
	require.Len(t, h.seen, 2)
	created, ok := h.seen[0].(domain.NodeCreated)
	require.True(t, ok, "NodeCreated is delivered inside the CreateNode dispatch")
	assert.Equal(t, "Circle", created.Node.Type)
	assert.False(t, created.Node.IsZero())

	nodes := h.diagram.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, created.Node, nodes[0].Handle)
	assert.Equal(t, domain.DefaultNodePosition, nodes[0].Position)

	h.seen = nil
	h.send(t, domain.DeleteNode{Node: created.Node})
	assert.Equal(t, []domain.Message{domain.DeleteNode{Node: created.Node}}, h.seen)
	assert.Empty(t, h.diagram.Nodes())
}

func TestOrchestrator_CreateNodeUnknownType(t *testing.T) {
	h := defaultHarness(t, memory.WithCatalog("Empty"))
	err := h.bus.Publish(context.Background(), domain.CreateNode{TypeName: "Circle"})
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
	assert.Empty(t, h.diagram.Nodes())
}

func TestOrchestrator_DeleteClearsOnlyMatchingSelection(t *testing.T) {
	h := defaultHarness(t)
	a := h.create(t, "Circle")
	b := h.create(t, "Empty")

	h.send(t, domain.NodeSelected{Node: a})
	h.send(t, domain.DeleteNode{Node: b})
	assert.Equal(t, a, h.state.Selected())

	h.send(t, domain.DeleteNode{Node: a})
	assert.True(t, h.state.Selected().IsZero())
}

func TestOrchestrator_DeleteStaleHandle(t *testing.T) {
	h := defaultHarness(t)
	a := h.create(t, "Circle")
	h.send(t, domain.DeleteNode{Node: a})

	err := h.bus.Publish(context.Background(), domain.DeleteNode{Node: a})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestOrchestrator_DeletingOutputClearsIt(t *testing.T) {
	h := defaultHarness(t)
	a := h.create(t, "Circle")
	h.send(t, domain.SetOutputNode{Node: a})
	h.seen = nil

	h.send(t, domain.DeleteNode{Node: a})
	assert.True(t, h.state.Output().IsZero())
	assert.Zero(t, h.count(domain.KindRunProcessors))
}

func TestOrchestrator_SetOutputTriggersRun(t *testing.T) {
	h := defaultHarness(t)
	a := h.create(t, "Circle")

	h.seen = nil
	h.send(t, domain.SetOutputNode{Node: a})
	assert.Equal(t, 1, h.count(domain.KindRunProcessors))
	assert.Equal(t, a, h.state.Output())
	require.NotNil(t, h.state.Render())
	assert.Len(t, h.state.Render().Points, 16)
	assert.True(t, h.diagram.Nodes()[0].Output)

	h.seen = nil
	h.send(t, domain.SetOutputNode{})
	assert.Zero(t, h.count(domain.KindRunProcessors))
	assert.True(t, h.state.Output().IsZero())
	assert.False(t, h.diagram.Nodes()[0].Output)
}

// brokenEngine fails every evaluation.
type brokenEngine struct {
	*memory.Engine
}

func (brokenEngine) RunProcessors(domain.GraphPath) (*domain.World, error) {
	return nil, errors.New("evaluation failed")
}

func TestOrchestrator_SetOutputSurvivesFailedEvaluation(t *testing.T) {
	e, err := memory.NewEngine()
	require.NoError(t, err)
	h := newHarness(t, brokenEngine{Engine: e})
	a := h.create(t, "Circle")

	h.send(t, domain.SetOutputNode{Node: a})
	assert.Equal(t, a, h.state.Output())
	assert.True(t, h.diagram.Nodes()[0].Output)
	assert.Nil(t, h.state.Render())

	err = h.bus.Publish(context.Background(), domain.RunProcessors{})
	assert.ErrorContains(t, err, "evaluation failed")
}

func TestOrchestrator_NoResultKeepsRender(t *testing.T) {
	h := defaultHarness(t)
	c := h.create(t, "Circle")
	h.send(t, domain.SetOutputNode{Node: c})
	before := h.state.Render()
	require.NotNil(t, before)

	move := h.create(t, "Translate")
	h.send(t, domain.SetOutputNode{Node: move})
	assert.Same(t, before, h.state.Render(), "unsatisfied output keeps the last render")
}

func TestOrchestrator_Links(t *testing.T) {
	h := defaultHarness(t)
	a := h.create(t, "Circle")
	b := h.create(t, "CreateRectangle")
	move := h.create(t, "Translate")
	merge := h.create(t, "Merge")
	ctx := context.Background()

	assert.ErrorIs(t, h.bus.Publish(ctx, domain.CreateLink{From: a, To: move}), domain.ErrIncompatiblePort)
	assert.ErrorIs(t, h.bus.Publish(ctx, domain.CreateLink{From: a, To: merge, Slotted: true}), domain.ErrIncompatiblePort)
	assert.ErrorIs(t, h.bus.Publish(ctx, domain.CreateLink{From: a, To: move, Slot: 2, Slotted: true}), domain.ErrIncompatiblePort)
	assert.ErrorIs(t, h.bus.Publish(ctx, domain.CreateLink{To: move, Slotted: true}), domain.ErrInvalidReference)
	assert.Empty(t, h.diagram.Links())

	h.send(t, domain.CreateLink{From: a, To: move, Slotted: true})
	h.send(t, domain.CreateLink{From: b, To: move, Slotted: true})
	assert.Equal(t, []domain.VisualLink{{From: b, To: move, Slotted: true}}, h.diagram.Links())

	h.send(t, domain.CreateLink{From: a, To: merge})
	assert.Len(t, h.diagram.Links(), 2)

	h.send(t, domain.DeleteLink{From: domain.NodeHandle{}, To: merge})
	assert.Len(t, h.diagram.Links(), 2, "zero handles are ignored")

	h.send(t, domain.DeleteLink{From: a, To: merge})
	h.send(t, domain.DeleteLink{From: b, To: move, Slotted: true})
	assert.Empty(t, h.diagram.Links())
	ok, err := h.engine.IsInputSatisfied(h.state.GraphPath(), move)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrchestrator_SubgraphRoundTripRestoresOutput(t *testing.T) {
	h := defaultHarness(t)
	x := h.create(t, "Circle")
	sub := h.create(t, "Subgraph")
	h.send(t, domain.SetOutputNode{Node: x})
	w := h.state.Render()
	require.NotNil(t, w)

	h.send(t, domain.SubgraphNodeSelected{Node: sub})
	assert.Equal(t, domain.ContextKey("r/1.0"), mustKey(t, h))
	assert.Empty(t, h.diagram.Nodes())

	y := h.create(t, "CreateRectangle")
	h.send(t, domain.SetOutputNode{Node: y})
	w2 := h.state.Render()
	require.NotEqual(t, w, w2)

	h.seen = nil
	h.send(t, domain.MoveLevelUp{})
	var outputs []domain.NodeHandle
	for _, m := range h.seen {
		if so, ok := m.(domain.SetOutputNode); ok {
			outputs = append(outputs, so.Node)
		}
	}
	assert.Equal(t, []domain.NodeHandle{x}, outputs)
	assert.Equal(t, w, h.state.Render())
	assert.Len(t, h.diagram.Nodes(), 2)
}

func TestOrchestrator_SubgraphSelectRejectsPlainNode(t *testing.T) {
	h := defaultHarness(t)
	c := h.create(t, "Circle")
	err := h.bus.Publish(context.Background(), domain.SubgraphNodeSelected{Node: c})
	assert.ErrorIs(t, err, domain.ErrNotSubgraph)
	assert.Equal(t, domain.ContextKey("r"), mustKey(t, h))
}

func TestOrchestrator_CheckpointRevert(t *testing.T) {
	h := defaultHarness(t)
	ctx := context.Background()
	assert.ErrorIs(t, h.orch.Revert(ctx), domain.ErrNoCheckpoint)

	a := h.create(t, "Circle")
	h.send(t, domain.SaveAll{})
	cp, ok := h.orch.Checkpoint()
	require.True(t, ok)
	assert.Equal(t, domain.ContextKey("r"), cp.Context)

	require.True(t, h.diagram.MoveNode(a, domain.Position{300, 300}))
	h.send(t, domain.SetOutputNode{Node: a})
	require.NoError(t, h.orch.Revert(ctx))
	nodes := h.diagram.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, domain.DefaultNodePosition, nodes[0].Position)
	assert.True(t, nodes[0].Output, "output flag follows the live output")

	sub := h.create(t, "Subgraph")
	h.send(t, domain.SwitchToSubgraph{Node: sub})
	assert.ErrorIs(t, h.orch.Revert(ctx), domain.ErrNoCheckpoint)
}

func TestOrchestrator_ClosedSession(t *testing.T) {
	h := defaultHarness(t)
	h.state.Teardown()
	err := h.bus.Publish(context.Background(), domain.CreateNode{TypeName: "Circle"})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestOrchestrator_Unregister(t *testing.T) {
	h := defaultHarness(t)
	h.orch.Unregister()
	h.send(t, domain.CreateNode{TypeName: "Circle"})
	assert.Empty(t, h.diagram.Nodes())
}

func mustKey(t *testing.T, h *harness) domain.ContextKey {
	t.Helper()
	k, err := h.nav.Current()
	require.NoError(t, err)
	return k
}
