package editor

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/params"
)

// EditSession buffers parameter edits for one node until Commit.
type EditSession struct {
	o       *Orchestrator
	node    domain.NodeHandle
	nodeTyp domain.NodeType
	path    domain.GraphPath
	key     domain.ContextKey
	pending map[string]string
}

// EditParameters opens an edit session for node in the live context.
func (o *Orchestrator) EditParameters(node domain.NodeHandle) (*EditSession, error) {
	if o.state.Closed() {
		return nil, domain.ErrSessionClosed
	}
	t, ok := o.state.TypeByName(node.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, node.Type)
	}
	path := o.state.GraphPath()
	if _, err := o.engine.IsInputSatisfied(path, node); err != nil {
		return nil, &domain.InvalidReferenceError{Op: "edit", Node: node, Err: err}
	}
	key, err := o.nav.Current()
	if err != nil {
		return nil, err
	}
	return &EditSession{
		o:       o,
		node:    node,
		nodeTyp: t,
		path:    path,
		key:     key,
		pending: make(map[string]string),
	}, nil
}

// Node returns the node being edited.
func (s *EditSession) Node() domain.NodeHandle { return s.node }

// Parameters lists the node type's parameters in declaration order.
func (s *EditSession) Parameters() []domain.ParamDescriptor {
	return append([]domain.ParamDescriptor(nil), s.nodeTyp.Parameters...)
}

func (s *EditSession) check() error {
	if s.o.state.Closed() {
		return domain.ErrSessionClosed
	}
	key, err := s.o.nav.Current()
	if err != nil {
		return err
	}
	if key != s.key {
		return fmt.Errorf("%w: opened in %s, live context is %s", domain.ErrStaleEdit, s.key, key)
	}
	return nil
}

// Value returns the pending value of name, or the engine's current one.
func (s *EditSession) Value(name string) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	if v, ok := s.pending[name]; ok {
		return v, nil
	}
	return s.o.engine.NodeParameter(s.path, s.node, name)
}

// Set buffers a value after checking its textual form.
func (s *EditSession) Set(name, value string) error {
	if err := s.check(); err != nil {
		return err
	}
	desc, ok := s.nodeTyp.Parameter(name)
	if !ok {
		return fmt.Errorf("%w: %s has no %q", domain.ErrUnknownParameter, s.nodeTyp.Name, name)
	}
	if err := params.Validate(desc.Kind, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	s.pending[name] = value
	return nil
}

// Pending returns a copy of the buffered values.
func (s *EditSession) Pending() map[string]string {
	return maps.Clone(s.pending)
}

// Discard drops every buffered value.
func (s *EditSession) Discard() {
	clear(s.pending)
}

// Commit writes every buffered value in name order. If a write fails the
// values written before it are put back and nothing stays applied. After a
// successful write the output is re-evaluated when the node's inputs are
// satisfied.
func (s *EditSession) Commit(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.pending) == 0 {
		return nil
	}

	engine := s.o.engine
	names := slices.Sorted(maps.Keys(s.pending))
	applied := make([][2]string, 0, len(names))
	for _, name := range names {
		old, err := engine.NodeParameter(s.path, s.node, name)
		if err == nil {
			err = engine.SetNodeParameter(s.path, s.node, name, s.pending[name])
		}
		if err != nil {
			for i := len(applied) - 1; i >= 0; i-- {
				if rerr := engine.SetNodeParameter(s.path, s.node, applied[i][0], applied[i][1]); rerr != nil {
					s.o.logger.Error("rollback failed", "node", s.node, "param", applied[i][0], "err", rerr)
				}
			}
			return fmt.Errorf("commit %s.%s: %w", s.node, name, err)
		}
		applied = append(applied, [2]string{name, old})
	}
	clear(s.pending)
	s.o.logger.Debug("parameters committed", "node", s.node, "count", len(applied))

	ok, err := engine.IsInputSatisfied(s.path, s.node)
	if err != nil {
		return &domain.InvalidReferenceError{Op: "commit", Node: s.node, Err: err}
	}
	if !ok {
		return nil
	}
	return s.o.bus.Publish(ctx, domain.RunProcessors{})
}
