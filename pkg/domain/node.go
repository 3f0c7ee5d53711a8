package domain

import "fmt"

// NodeHandle references a node instance inside one graph context.
// ID is issued by the engine and never interpreted by the core; the zero
// value stands for "no node".
type NodeHandle struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// IsZero reports whether the handle is the "no node" sentinel.
func (h NodeHandle) IsZero() bool {
	return h.ID == ""
}

func (h NodeHandle) String() string {
	if h.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%s(%s)", h.Type, h.ID)
}

// Position is a 2D coordinate.
type Position [2]float64

// DefaultNodePosition is where freshly created nodes are placed in the diagram.
var DefaultNodePosition = Position{50, 50}

// VisualNode is the diagram-side view of an engine node.
type VisualNode struct {
	Handle   NodeHandle `json:"handle"`
	Position Position   `json:"position"`
	Subgraph bool       `json:"subgraph,omitempty"`
	Output   bool       `json:"output,omitempty"`
}

// VisualLink is a drawn connection between two nodes.
// Slot is only meaningful when Slotted is set.
type VisualLink struct {
	From    NodeHandle `json:"from"`
	To      NodeHandle `json:"to"`
	Slot    int        `json:"slot,omitempty"`
	Slotted bool       `json:"slotted,omitempty"`
}
