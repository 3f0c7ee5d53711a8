package session

import (
	"github.com/aretw0/graphnav/pkg/domain"
)

// Field names a State field for change notifications.
type Field string

const (
	FieldGraphPath Field = "graph_path"
	FieldSelection Field = "selection"
	FieldOutput    Field = "output"
	FieldRender    Field = "render"
	FieldCatalog   Field = "catalog"
)

// Observer is told about every field write.
type Observer func(field Field)

// State is the single mutable session record. Not safe for concurrent use.
type State struct {
	graphPath domain.GraphPath
	selected  domain.NodeHandle
	output    domain.NodeHandle
	render    *domain.World
	catalog   []domain.NodeType

	// typeByName is rebuilt lazily after a catalog write.
	typeByName map[string]domain.NodeType

	observers map[int]Observer
	nextObs   int
	closed    bool
}

// New creates the session record rooted at root with the engine's catalog.
func New(root domain.GraphPath, catalog []domain.NodeType) *State {
	return &State{
		graphPath: root,
		catalog:   append([]domain.NodeType(nil), catalog...),
		observers: make(map[int]Observer),
	}
}

// Teardown drops observers and clears every field. Further writes are ignored.
func (s *State) Teardown() {
	s.observers = make(map[int]Observer)
	s.graphPath = domain.GraphPath{}
	s.selected = domain.NodeHandle{}
	s.output = domain.NodeHandle{}
	s.render = nil
	s.catalog = nil
	s.typeByName = nil
	s.closed = true
}

// Closed reports whether Teardown ran.
func (s *State) Closed() bool {
	return s.closed
}

// Observe registers o and returns a function that removes it.
func (s *State) Observe(o Observer) (cancel func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() { delete(s.observers, id) }
}

func (s *State) notify(f Field) {
	for i := 0; i < s.nextObs; i++ {
		if o, ok := s.observers[i]; ok {
			o(f)
		}
	}
}

// GraphPath returns the path of the graph being edited.
func (s *State) GraphPath() domain.GraphPath { return s.graphPath }

// Selected returns the selected node, zero when none is.
func (s *State) Selected() domain.NodeHandle { return s.selected }

// Output returns the output node of the current graph, zero when unset.
func (s *State) Output() domain.NodeHandle { return s.output }

// Render returns the last render result, or nil if nothing was evaluated yet.
func (s *State) Render() *domain.World { return s.render }

// Catalog returns the node types in display order.
func (s *State) Catalog() []domain.NodeType {
	return append([]domain.NodeType(nil), s.catalog...)
}

// TypeByName looks a node type up by its unique name.
func (s *State) TypeByName(name string) (domain.NodeType, bool) {
	if s.typeByName == nil {
		s.typeByName = make(map[string]domain.NodeType, len(s.catalog))
		for _, t := range s.catalog {
			s.typeByName[t.Name] = t
		}
	}
	t, ok := s.typeByName[name]
	return t, ok
}

// SetGraphPath switches the edited graph and notifies FieldGraphPath.
func (s *State) SetGraphPath(p domain.GraphPath) {
	if s.closed {
		return
	}
	s.graphPath = p
	s.notify(FieldGraphPath)
}

// SetSelected records the selection and notifies FieldSelection.
func (s *State) SetSelected(h domain.NodeHandle) {
	if s.closed {
		return
	}
	s.selected = h
	s.notify(FieldSelection)
}

// SetOutput records the output node and notifies FieldOutput.
func (s *State) SetOutput(h domain.NodeHandle) {
	if s.closed {
		return
	}
	s.output = h
	s.notify(FieldOutput)
}

// SetRender stores the last evaluated world and notifies FieldRender.
func (s *State) SetRender(w *domain.World) {
	if s.closed {
		return
	}
	s.render = w
	s.notify(FieldRender)
}

// SetCatalog replaces the catalog and invalidates TypeByName.
func (s *State) SetCatalog(types []domain.NodeType) {
	if s.closed {
		return
	}
	s.catalog = append([]domain.NodeType(nil), types...)
	s.typeByName = nil
	s.notify(FieldCatalog)
}
