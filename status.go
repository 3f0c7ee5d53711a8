package graphnav

import (
	"context"

	"github.com/aretw0/graphnav/pkg/domain"
)

// CrumbView is the printable part of a breadcrumb.
type CrumbView struct {
	Key   domain.ContextKey `json:"key"`
	Label string            `json:"label"`
}

// Status is a read-only view of the session for front ends.
type Status struct {
	Context  domain.ContextKey   `json:"context"`
	Crumbs   []CrumbView         `json:"crumbs"`
	Selected domain.NodeHandle   `json:"selected"`
	Output   domain.NodeHandle   `json:"output"`
	Nodes    []domain.VisualNode `json:"nodes"`
	Links    []domain.VisualLink `json:"links"`
	Rendered bool                `json:"rendered"`
	Visited  int                 `json:"visited"`
}

// Status captures what is currently true for the user.
func (e *Editor) Status(ctx context.Context) (Status, error) {
	if e.closed {
		return Status{}, domain.ErrSessionClosed
	}
	key, err := e.nav.Current()
	if err != nil {
		return Status{}, err
	}
	visited, err := e.nav.Visited(ctx)
	if err != nil {
		return Status{}, err
	}
	crumbs := e.trail.Crumbs()
	views := make([]CrumbView, len(crumbs))
	for i, c := range crumbs {
		views[i] = CrumbView{Key: c.Key, Label: c.Label}
	}
	return Status{
		Context:  key,
		Crumbs:   views,
		Selected: e.state.Selected(),
		Output:   e.state.Output(),
		Nodes:    e.diagram.Nodes(),
		Links:    e.diagram.Links(),
		Rendered: e.state.Render() != nil,
		Visited:  len(visited),
	}, nil
}
