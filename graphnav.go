package graphnav

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/pkg/adapters/memory"
	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/editor"
	"github.com/aretw0/graphnav/pkg/navigation"
	"github.com/aretw0/graphnav/pkg/ports"
	"github.com/aretw0/graphnav/pkg/session"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Editor wires the event bus, session state, context cache and command
// handlers around one engine. It is the high-level entry point of the library.
// An Editor is single-threaded; callers serialize access.
type Editor struct {
	engine  ports.Engine
	diagram ports.Diagram
	store   ports.ContextStore
	state   *session.State
	bus     *bus.Bus
	nav     *navigation.Navigator
	trail   *navigation.Trail
	orch    *editor.Orchestrator
	logger  *slog.Logger
	closed  bool
}

type options struct {
	logger  *slog.Logger
	store   ports.ContextStore
	diagram ports.Diagram
	metrics *bus.Metrics
}

// Option configures an Editor.
type Option func(*options)

// WithLogger sets a structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore backs the context cache with store instead of process memory.
func WithStore(store ports.ContextStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithDiagram supplies the visual model. Defaults to an in-memory diagram.
func WithDiagram(d ports.Diagram) Option {
	return func(o *options) {
		o.diagram = d
	}
}

// WithMetrics instruments bus dispatch.
func WithMetrics(m *bus.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New builds an Editor on an initialized engine and makes the root graph live.
func New(ctx context.Context, engine ports.Engine, opts ...Option) (*Editor, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.store == nil {
		o.store = memory.NewStore()
	}
	if o.diagram == nil {
		o.diagram = memory.NewDiagram(nil)
	}

	e := &Editor{
		engine:  engine,
		diagram: o.diagram,
		store:   o.store,
		logger:  o.logger,
	}
	e.state = session.New(engine.RootPath(), engine.NodeTypes())
	e.bus = bus.New(bus.WithLogger(o.logger.With("component", "bus")), bus.WithMetrics(o.metrics))
	e.nav = navigation.New(engine, e.diagram, e.store, e.state, e.bus, navigation.WithLogger(o.logger.With("component", "navigation")))
	e.orch = editor.New(engine, e.diagram, e.state, e.bus, e.nav, editor.WithLogger(o.logger.With("component", "editor")))

	trail, err := navigation.NewTrail(engine, e.state, e.bus)
	if err != nil {
		return nil, err
	}
	e.trail = trail

	// The trail follows the orchestrator so a failed jump leaves it intact.
	e.orch.Register()
	e.trail.Attach()

	if err := e.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("reset context cache: %w", err)
	}
	if err := e.nav.Start(ctx); err != nil {
		return nil, err
	}
	e.logger.Info("editor ready", "types", len(e.state.Catalog()), "version", strings.TrimSpace(Version))
	return e, nil
}

// Send publishes msg on the bus and returns the first handler error.
func (e *Editor) Send(ctx context.Context, msg domain.Message) error {
	if e.closed {
		return domain.ErrSessionClosed
	}
	return e.bus.Publish(ctx, msg)
}

// Revert restores the SaveAll checkpoint of the live context.
func (e *Editor) Revert(ctx context.Context) error {
	return e.orch.Revert(ctx)
}

// EditParameters opens a buffered edit session for node.
func (e *Editor) EditParameters(node domain.NodeHandle) (*editor.EditSession, error) {
	return e.orch.EditParameters(node)
}

// SelectCrumb jumps to breadcrumb i.
func (e *Editor) SelectCrumb(ctx context.Context, i int) error {
	if e.closed {
		return domain.ErrSessionClosed
	}
	return e.trail.Select(ctx, i)
}

// Node finds a node of the live diagram by its handle ID.
func (e *Editor) Node(id string) (domain.NodeHandle, bool) {
	for _, n := range e.diagram.Nodes() {
		if n.Handle.ID == id {
			return n.Handle, true
		}
	}
	return domain.NodeHandle{}, false
}

// Accessors for front ends that drive the parts directly.
func (e *Editor) Engine() ports.Engine                        { return e.engine }
func (e *Editor) Diagram() ports.Diagram                      { return e.diagram }
func (e *Editor) State() *session.State                       { return e.state }
func (e *Editor) Bus() *bus.Bus                               { return e.bus }
func (e *Editor) Navigator() *navigation.Navigator            { return e.nav }
func (e *Editor) Trail() *navigation.Trail                    { return e.trail }
func (e *Editor) Checkpoint() (editor.Checkpoint, bool)       { return e.orch.Checkpoint() }
func (e *Editor) Catalog() []domain.NodeType                  { return e.state.Catalog() }
func (e *Editor) Render() *domain.World                       { return e.state.Render() }
func (e *Editor) Current() (domain.ContextKey, error)         { return e.nav.Current() }
func (e *Editor) Closed() bool                                { return e.closed }
func (e *Editor) Logger() *slog.Logger                        { return e.logger }
func (e *Editor) TypeByName(n string) (domain.NodeType, bool) { return e.state.TypeByName(n) }

// Close detaches every handler, drops the context cache and tears the
// session state down. Calling it twice is harmless.
func (e *Editor) Close(ctx context.Context) error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.trail.Detach()
	e.orch.Unregister()
	e.state.Teardown()
	if err := e.nav.Reset(ctx); err != nil {
		return fmt.Errorf("clear context cache: %w", err)
	}
	e.logger.Info("editor closed")
	return nil
}
