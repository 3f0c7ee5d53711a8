package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/navigation"
	"github.com/aretw0/graphnav/pkg/ports"
	"github.com/aretw0/graphnav/pkg/session"
)

// Checkpoint is the single saved copy of a context's diagram.
type Checkpoint struct {
	Context  domain.ContextKey
	Output   domain.NodeHandle
	Snapshot domain.Snapshot
}

// Orchestrator executes user intents against the engine and the diagram.
// It is not safe for concurrent use.
type Orchestrator struct {
	engine     ports.Engine
	diagram    ports.Diagram
	state      *session.State
	bus        *bus.Bus
	nav        *navigation.Navigator
	logger     *slog.Logger
	checkpoint *Checkpoint
	tokens     []bus.Token
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger configures a logger for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator. Call Register to attach it to the bus.
func New(engine ports.Engine, diagram ports.Diagram, state *session.State, b *bus.Bus, nav *navigation.Navigator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:  engine,
		diagram: diagram,
		state:   state,
		bus:     b,
		nav:     nav,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register subscribes Handle to every message kind.
func (o *Orchestrator) Register() {
	for _, kind := range domain.Kinds() {
		o.tokens = append(o.tokens, o.bus.Subscribe(kind, o.Handle))
	}
}

// Unregister removes the subscriptions made by Register.
func (o *Orchestrator) Unregister() {
	for _, tok := range o.tokens {
		o.bus.Unsubscribe(tok)
	}
	o.tokens = nil
}

// Handle dispatches msg to its handler.
func (o *Orchestrator) Handle(ctx context.Context, msg domain.Message) error {
	if o.state.Closed() {
		return domain.ErrSessionClosed
	}
	switch m := msg.(type) {
	case domain.CreateNode:
		return o.createNode(ctx, m)
	case domain.DeleteNode:
		return o.deleteNode(m)
	case domain.CreateLink:
		return o.createLink(m)
	case domain.DeleteLink:
		return o.deleteLink(m)
	case domain.SaveAll:
		return o.saveAll()
	case domain.SetOutputNode:
		return o.setOutputNode(ctx, m)
	case domain.RunProcessors:
		return o.runProcessors()
	case domain.NodeSelected:
		o.state.SetSelected(m.Node)
		return nil
	case domain.SubgraphNodeSelected:
		return o.subgraphNodeSelected(ctx, m)
	case domain.MoveLevelUp:
		return o.bus.Publish(ctx, domain.SwitchToGraphPath{Path: o.engine.RootPath(), Root: true})
	case domain.SwitchToSubgraph:
		return o.nav.Descend(ctx, m.Node)
	case domain.SwitchToGraphPath:
		if m.Root {
			return o.nav.NavigateToRoot(ctx)
		}
		return o.nav.NavigateTo(ctx, m.Path)
	case domain.NodeCreated, domain.SwitchedToSubgraph:
		// Notifications for other subscribers.
		return nil
	default:
		return fmt.Errorf("unhandled message %T", msg)
	}
}

func (o *Orchestrator) createNode(ctx context.Context, m domain.CreateNode) error {
	t, ok := o.state.TypeByName(m.TypeName)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, m.TypeName)
	}
	path := o.state.GraphPath()
	h, err := o.engine.AddProcessorNode(path, t.Name)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.Name, err)
	}
	sub, err := o.engine.IsSubgraphProcessor(path, h)
	if err != nil {
		return &domain.InvalidReferenceError{Op: "create", Node: h, Err: err}
	}
	if err := o.diagram.AddNode(domain.VisualNode{Handle: h, Position: domain.DefaultNodePosition, Subgraph: sub}); err != nil {
		return err
	}
	o.diagram.Repaint()
	o.logger.Debug("node created", "node", h)
	return o.bus.Publish(ctx, domain.NodeCreated{Node: h})
}

func (o *Orchestrator) deleteNode(m domain.DeleteNode) error {
	if err := o.engine.RemoveNode(o.state.GraphPath(), m.Node); err != nil {
		return &domain.InvalidReferenceError{Op: "delete", Node: m.Node, Err: err}
	}
	if o.state.Selected() == m.Node {
		o.state.SetSelected(domain.NodeHandle{})
	}
	// The engine forgets a removed output on its own.
	if o.state.Output() == m.Node {
		o.state.SetOutput(domain.NodeHandle{})
	}
	o.diagram.RemoveNode(m.Node)
	o.diagram.Repaint()
	o.logger.Debug("node deleted", "node", m.Node)
	return nil
}

// portsCompatible checks the link against the target's declared input arity.
func (o *Orchestrator) portsCompatible(to domain.NodeHandle, slot int, slotted bool) error {
	t, ok := o.state.TypeByName(to.Type)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, to.Type)
	}
	switch {
	case slotted && t.Input.Kind != domain.InputSlotted:
		return fmt.Errorf("%w: %s takes unordered inputs", domain.ErrIncompatiblePort, to)
	case slotted && (slot < 0 || slot >= t.Input.Slots):
		return fmt.Errorf("%w: %s has no slot %d", domain.ErrIncompatiblePort, to, slot)
	case !slotted && t.Input.Kind != domain.InputMultiple:
		return fmt.Errorf("%w: %s needs a slot", domain.ErrIncompatiblePort, to)
	}
	return nil
}

func (o *Orchestrator) createLink(m domain.CreateLink) error {
	if m.From.IsZero() || m.To.IsZero() {
		return fmt.Errorf("%w: link needs both ends", domain.ErrInvalidReference)
	}
	if err := o.portsCompatible(m.To, m.Slot, m.Slotted); err != nil {
		return err
	}
	path := o.state.GraphPath()
	var err error
	if m.Slotted {
		err = o.engine.ConnectNodesSlotted(path, m.From, m.To, m.Slot)
	} else {
		err = o.engine.ConnectNodes(path, m.From, m.To)
	}
	if err != nil {
		return fmt.Errorf("connect %s -> %s: %w", m.From, m.To, err)
	}
	if m.Slotted {
		// A slot holds one input; drop whatever was drawn there.
		for _, l := range o.diagram.Links() {
			if l.To == m.To && l.Slotted && l.Slot == m.Slot && l.From != m.From {
				o.diagram.RemoveLink(l)
			}
		}
	}
	o.diagram.AddLink(domain.VisualLink{From: m.From, To: m.To, Slot: m.Slot, Slotted: m.Slotted})
	o.diagram.Repaint()
	return nil
}

func (o *Orchestrator) deleteLink(m domain.DeleteLink) error {
	if m.From.IsZero() || m.To.IsZero() {
		return nil
	}
	path := o.state.GraphPath()
	var err error
	if m.Slotted {
		err = o.engine.DisconnectNodesSlotted(path, m.From, m.To, m.Slot)
	} else {
		err = o.engine.DisconnectNodes(path, m.From, m.To)
	}
	if err != nil {
		return fmt.Errorf("disconnect %s -> %s: %w", m.From, m.To, err)
	}
	o.diagram.RemoveLink(domain.VisualLink{From: m.From, To: m.To, Slot: m.Slot, Slotted: m.Slotted})
	o.diagram.Repaint()
	return nil
}

func (o *Orchestrator) setOutputNode(ctx context.Context, m domain.SetOutputNode) error {
	if !m.Node.IsZero() {
		if err := o.engine.SetOutputNode(o.state.GraphPath(), m.Node); err != nil {
			return &domain.InvalidReferenceError{Op: "set output", Node: m.Node, Err: err}
		}
	}
	if prev := o.state.Output(); !prev.IsZero() {
		o.diagram.SetOutputFlag(prev, false)
	}
	o.state.SetOutput(m.Node)
	if m.Node.IsZero() {
		o.diagram.Repaint()
		return nil
	}
	o.diagram.SetOutputFlag(m.Node, true)
	o.diagram.Repaint()
	// The output is set either way; an evaluation failure counts as no result.
	if err := o.bus.Publish(ctx, domain.RunProcessors{}); err != nil {
		o.logger.Warn("output did not evaluate", "output", m.Node, "err", err)
	}
	return nil
}

func (o *Orchestrator) runProcessors() error {
	if o.state.Output().IsZero() {
		return nil
	}
	w, err := o.engine.RunProcessors(o.state.GraphPath())
	if errors.Is(err, domain.ErrNoResult) {
		o.logger.Debug("no result", "output", o.state.Output())
		return nil
	}
	if err != nil {
		return fmt.Errorf("run processors: %w", err)
	}
	o.state.SetRender(w)
	return nil
}

func (o *Orchestrator) subgraphNodeSelected(ctx context.Context, m domain.SubgraphNodeSelected) error {
	ok, err := o.engine.IsSubgraphProcessor(o.state.GraphPath(), m.Node)
	if err != nil {
		return &domain.InvalidReferenceError{Op: "open", Node: m.Node, Err: err}
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotSubgraph, m.Node)
	}
	return o.bus.Publish(ctx, domain.SwitchToSubgraph{Node: m.Node})
}

func (o *Orchestrator) saveAll() error {
	key, err := o.nav.Current()
	if err != nil {
		return err
	}
	snapshot, err := o.diagram.Serialize()
	if err != nil {
		return err
	}
	o.checkpoint = &Checkpoint{Context: key, Output: o.state.Output(), Snapshot: snapshot}
	o.logger.Debug("checkpoint saved", "context", key, "bytes", len(snapshot))
	return nil
}

// Checkpoint returns the last SaveAll capture, if any.
func (o *Orchestrator) Checkpoint() (Checkpoint, bool) {
	if o.checkpoint == nil {
		return Checkpoint{}, false
	}
	cp := *o.checkpoint
	cp.Snapshot = cp.Snapshot.Clone()
	return cp, true
}

// Revert replays the checkpoint into the live diagram. Only the drawing is
// restored; nodes and links in the engine keep their current state. The
// checkpoint must belong to the live context.
func (o *Orchestrator) Revert(ctx context.Context) error {
	if o.state.Closed() {
		return domain.ErrSessionClosed
	}
	if o.checkpoint == nil {
		return domain.ErrNoCheckpoint
	}
	key, err := o.nav.Current()
	if err != nil {
		return err
	}
	if o.checkpoint.Context != key {
		return fmt.Errorf("%w for %s (saved in %s)", domain.ErrNoCheckpoint, key, o.checkpoint.Context)
	}
	if err := o.diagram.Deserialize(o.checkpoint.Snapshot); err != nil {
		return err
	}
	out := o.state.Output()
	for _, n := range o.diagram.Nodes() {
		o.diagram.SetOutputFlag(n.Handle, n.Handle == out)
	}
	o.state.SetSelected(domain.NodeHandle{})
	o.diagram.Repaint()
	o.logger.Debug("checkpoint restored", "context", key)
	return nil
}
