package navigation

import (
	"context"
	"fmt"

	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/ports"
	"github.com/aretw0/graphnav/pkg/session"
)

// RootLabel names the first crumb.
const RootLabel = "Root"

// Crumb is one step of the breadcrumb trail.
type Crumb struct {
	Path  domain.GraphPath
	Key   domain.ContextKey
	Label string
}

// Trail is the breadcrumb list shown above the diagram. It grows on every
// descend and shrinks when the user jumps back to one of its crumbs.
type Trail struct {
	engine ports.Engine
	state  *session.State
	bus    *bus.Bus
	crumbs []Crumb
	tokens []bus.Token
}

// NewTrail returns a trail holding only the root crumb.
func NewTrail(engine ports.Engine, state *session.State, b *bus.Bus) (*Trail, error) {
	t := &Trail{engine: engine, state: state, bus: b}
	if err := t.reset(); err != nil {
		return nil, err
	}
	return t, nil
}

// Attach subscribes the trail to navigation notifications. Attach it after
// the handlers that perform navigation so a failed jump leaves it unchanged.
func (t *Trail) Attach() {
	t.tokens = append(t.tokens,
		bus.On(t.bus, t.onDescended),
		bus.On(t.bus, t.onJump),
	)
}

// Detach removes the trail's subscriptions.
func (t *Trail) Detach() {
	for _, tok := range t.tokens {
		t.bus.Unsubscribe(tok)
	}
	t.tokens = nil
}

// Crumbs returns a copy of the trail, root first.
func (t *Trail) Crumbs() []Crumb {
	return append([]Crumb(nil), t.crumbs...)
}

// Select jumps to crumb i.
func (t *Trail) Select(ctx context.Context, i int) error {
	if i < 0 || i >= len(t.crumbs) {
		return fmt.Errorf("crumb %d out of range [0,%d)", i, len(t.crumbs))
	}
	c := t.crumbs[i]
	return t.bus.Publish(ctx, domain.SwitchToGraphPath{Path: c.Path, Root: i == 0})
}

func (t *Trail) reset() error {
	root := t.engine.RootPath()
	key, err := t.engine.HashGraphPath(root)
	if err != nil {
		return fmt.Errorf("hash root path: %w", err)
	}
	t.crumbs = []Crumb{{Path: root, Key: key, Label: RootLabel}}
	return nil
}

func (t *Trail) onDescended(_ context.Context, msg domain.SwitchedToSubgraph) error {
	path := t.state.GraphPath()
	key, err := t.engine.HashGraphPath(path)
	if err != nil {
		return err
	}
	t.crumbs = append(t.crumbs, Crumb{Path: path, Key: key, Label: msg.Label})
	return nil
}

func (t *Trail) onJump(_ context.Context, msg domain.SwitchToGraphPath) error {
	if msg.Root {
		return t.reset()
	}
	key, err := t.engine.HashGraphPath(msg.Path)
	if err != nil {
		return t.reset()
	}
	for i := len(t.crumbs) - 1; i >= 0; i-- {
		if t.crumbs[i].Key == key {
			t.crumbs = t.crumbs[:i+1]
			return nil
		}
	}
	return t.reset()
}
