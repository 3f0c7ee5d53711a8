package ports

import "github.com/aretw0/graphnav/pkg/domain"

// Diagram is the live visual model shown to the user. It holds exactly one
// context's diagram at a time.
type Diagram interface {
	// Serialize captures the whole visual model.
	Serialize() (domain.Snapshot, error)

	// Deserialize replaces the visual model. An empty snapshot clears it.
	Deserialize(snapshot domain.Snapshot) error

	AddNode(node domain.VisualNode) error
	RemoveNode(handle domain.NodeHandle)
	AddLink(link domain.VisualLink)
	RemoveLink(link domain.VisualLink)

	// SetOutputFlag toggles the output marker of a node, if present.
	SetOutputFlag(handle domain.NodeHandle, output bool)

	Nodes() []domain.VisualNode
	Links() []domain.VisualLink

	// Repaint requests a redraw.
	Repaint()
}
