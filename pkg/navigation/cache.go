package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/ports"
	"github.com/aretw0/graphnav/pkg/session"
)

// Navigator is the context cache state machine. It is not safe for
// concurrent use.
type Navigator struct {
	engine  ports.Engine
	diagram ports.Diagram
	store   ports.ContextStore
	state   *session.State
	bus     *bus.Bus
	logger  *slog.Logger
}

// Option configures the Navigator.
type Option func(*Navigator)

// WithLogger configures a logger for transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// New creates a Navigator. Call Start before the first transition.
func New(engine ports.Engine, diagram ports.Diagram, store ports.ContextStore, state *session.State, b *bus.Bus, opts ...Option) *Navigator {
	n := &Navigator{
		engine:  engine,
		diagram: diagram,
		store:   store,
		state:   state,
		bus:     b,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Start makes the root graph live with an empty diagram and records its entry.
func (n *Navigator) Start(ctx context.Context) error {
	root := n.engine.RootPath()
	key, err := n.engine.HashGraphPath(root)
	if err != nil {
		return fmt.Errorf("hash root path: %w", err)
	}
	if err := n.diagram.Deserialize(nil); err != nil {
		return fmt.Errorf("clear diagram: %w", err)
	}
	if err := n.store.Save(ctx, domain.NewContextEntry(key)); err != nil {
		return fmt.Errorf("save root entry: %w", err)
	}
	n.state.SetGraphPath(root)
	n.logger.Debug("navigation started", "context", key)
	return nil
}

// Current returns the key of the live context.
func (n *Navigator) Current() (domain.ContextKey, error) {
	return n.engine.HashGraphPath(n.state.GraphPath())
}

// Visited lists the keys of every context entered so far.
func (n *Navigator) Visited(ctx context.Context) ([]domain.ContextKey, error) {
	return n.store.List(ctx)
}

// Lookup returns the cached entry of a visited context. The live context's
// entry reflects its last exit, not the diagram on screen.
func (n *Navigator) Lookup(ctx context.Context, key domain.ContextKey) (*domain.ContextEntry, error) {
	return n.store.Load(ctx, key)
}

// Enter leaves the live context and makes target live.
//
// The leaving snapshot and the entering snapshot are both complete before
// the output change is published and the repaint is requested, so handlers
// reacting to those never see a half-switched cache.
func (n *Navigator) Enter(ctx context.Context, target domain.GraphPath) error {
	leaving, err := n.Current()
	if err != nil {
		return fmt.Errorf("hash live context: %w", err)
	}
	key, err := n.engine.HashGraphPath(target)
	if err != nil {
		return fmt.Errorf("hash target context: %w", err)
	}

	// 1. Capture the context being left.
	snapshot, err := n.diagram.Serialize()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", leaving, err)
	}
	left := &domain.ContextEntry{
		Context:    leaving,
		OutputNode: n.state.Output(),
		Snapshot:   snapshot,
	}
	if err := n.store.Save(ctx, left); err != nil {
		return fmt.Errorf("save %s: %w", leaving, err)
	}

	// 2. Find or create the entry of the target.
	entry, err := n.store.Load(ctx, key)
	switch {
	case errors.Is(err, domain.ErrContextNotFound):
		entry = domain.NewContextEntry(key)
		if err := n.store.Save(ctx, entry); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		n.logger.Debug("first visit", "context", key)
	case err != nil:
		return fmt.Errorf("load %s: %w", key, err)
	}

	// 3. Replay it into the live diagram.
	if err := n.diagram.Deserialize(entry.Snapshot); err != nil {
		return fmt.Errorf("restore %s: %w", key, err)
	}
	n.state.SetGraphPath(target)
	n.state.SetSelected(domain.NodeHandle{})
	n.logger.Debug("entered context", "from", leaving, "to", key, "output", entry.OutputNode)

	// 4. Announce the stored output, then redraw. The context has switched
	// by now, so a failed announcement only loses the output.
	if err := n.bus.Publish(ctx, domain.SetOutputNode{Node: entry.OutputNode}); err != nil {
		n.logger.Warn("stored output not restored", "context", key, "output", entry.OutputNode, "err", err)
		if n.state.Output() != entry.OutputNode {
			n.state.SetOutput(domain.NodeHandle{})
		}
	}
	n.diagram.Repaint()
	return nil
}

// Descend enters the graph nested under child in the live context.
func (n *Navigator) Descend(ctx context.Context, child domain.NodeHandle) error {
	parent := n.state.GraphPath()
	ok, err := n.engine.IsSubgraphProcessor(parent, child)
	if err != nil {
		return &domain.InvalidReferenceError{Op: "descend", Node: child, Err: err}
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotSubgraph, child)
	}
	target, err := n.engine.GraphPath(parent, child)
	if err != nil {
		return fmt.Errorf("resolve subgraph of %s: %w", child, err)
	}
	label := n.label(parent, child)

	if err := n.Enter(ctx, target); err != nil {
		return err
	}
	return n.bus.Publish(ctx, domain.SwitchedToSubgraph{ParentPath: parent, Label: label})
}

// label prefers a subgraph's own "label" parameter over its type name.
func (n *Navigator) label(path domain.GraphPath, node domain.NodeHandle) string {
	if v, err := n.engine.NodeParameter(path, node, "label"); err == nil && v != "" {
		return v
	}
	return node.Type
}

// NavigateTo enters a context that was visited before. An unvisited target
// fails with an UnknownTargetError and leaves everything as it was.
func (n *Navigator) NavigateTo(ctx context.Context, target domain.GraphPath) error {
	key, err := n.engine.HashGraphPath(target)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnknownNavigationTarget, err)
	}
	if _, err := n.store.Load(ctx, key); err != nil {
		if errors.Is(err, domain.ErrContextNotFound) {
			n.logger.Error("navigation to unvisited context", "context", key)
			return &domain.UnknownTargetError{Key: key}
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	return n.Enter(ctx, target)
}

// NavigateToRoot enters the top-level graph.
func (n *Navigator) NavigateToRoot(ctx context.Context) error {
	return n.NavigateTo(ctx, n.engine.RootPath())
}

// Reset drops every cached entry.
func (n *Navigator) Reset(ctx context.Context) error {
	return n.store.Clear(ctx)
}
