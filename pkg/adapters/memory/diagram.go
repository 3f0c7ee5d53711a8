package memory

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/graphnav/pkg/domain"
)

type diagramModel struct {
	Nodes []domain.VisualNode `json:"nodes"`
	Links []domain.VisualLink `json:"links"`
}

// Diagram implements ports.Diagram as a plain in-memory visual model.
// Snapshots are the JSON encoding of the model.
type Diagram struct {
	model    diagramModel
	repaints int
	onPaint  func()
}

// NewDiagram returns an empty diagram. onPaint, if non-nil, runs on every Repaint.
func NewDiagram(onPaint func()) *Diagram {
	return &Diagram{
		model:   diagramModel{Nodes: []domain.VisualNode{}, Links: []domain.VisualLink{}},
		onPaint: onPaint,
	}
}

// Serialize encodes the current model.
func (d *Diagram) Serialize() (domain.Snapshot, error) {
	data, err := json.Marshal(d.model)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize diagram: %w", err)
	}
	return domain.Snapshot(data), nil
}

// Deserialize replaces the model. An empty snapshot clears it; an invalid
// one leaves the model untouched.
func (d *Diagram) Deserialize(snapshot domain.Snapshot) error {
	next := diagramModel{Nodes: []domain.VisualNode{}, Links: []domain.VisualLink{}}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &next); err != nil {
			return fmt.Errorf("failed to deserialize diagram: %w", err)
		}
		if next.Nodes == nil {
			next.Nodes = []domain.VisualNode{}
		}
		if next.Links == nil {
			next.Links = []domain.VisualLink{}
		}
	}
	d.model = next
	return nil
}

// AddNode places a node. Adding a handle twice is an error.
func (d *Diagram) AddNode(node domain.VisualNode) error {
	if _, ok := d.find(node.Handle); ok {
		return fmt.Errorf("diagram already holds %s", node.Handle)
	}
	d.model.Nodes = append(d.model.Nodes, node)
	return nil
}

// RemoveNode drops a node and every link touching it.
func (d *Diagram) RemoveNode(handle domain.NodeHandle) {
	idx, ok := d.find(handle)
	if !ok {
		return
	}
	d.model.Nodes = append(d.model.Nodes[:idx], d.model.Nodes[idx+1:]...)

	links := d.model.Links[:0]
	for _, l := range d.model.Links {
		if l.From != handle && l.To != handle {
			links = append(links, l)
		}
	}
	d.model.Links = links
}

// AddLink draws a link unless an equal one is already drawn.
func (d *Diagram) AddLink(link domain.VisualLink) {
	for _, l := range d.model.Links {
		if l == link {
			return
		}
	}
	d.model.Links = append(d.model.Links, link)
}

// RemoveLink erases the first link equal to link.
func (d *Diagram) RemoveLink(link domain.VisualLink) {
	for i, l := range d.model.Links {
		if l == link {
			d.model.Links = append(d.model.Links[:i], d.model.Links[i+1:]...)
			return
		}
	}
}

// SetOutputFlag marks or unmarks a node as the graph output.
func (d *Diagram) SetOutputFlag(handle domain.NodeHandle, output bool) {
	if idx, ok := d.find(handle); ok {
		d.model.Nodes[idx].Output = output
	}
}

// MoveNode repositions a node, as a drag in a graphical widget would.
func (d *Diagram) MoveNode(handle domain.NodeHandle, pos domain.Position) bool {
	idx, ok := d.find(handle)
	if ok {
		d.model.Nodes[idx].Position = pos
	}
	return ok
}

// Nodes returns a copy of the drawn nodes.
func (d *Diagram) Nodes() []domain.VisualNode {
	return append([]domain.VisualNode(nil), d.model.Nodes...)
}

// Links returns a copy of the drawn links.
func (d *Diagram) Links() []domain.VisualLink {
	return append([]domain.VisualLink(nil), d.model.Links...)
}

// Repaint counts a redraw and fires the paint hook.
func (d *Diagram) Repaint() {
	d.repaints++
	if d.onPaint != nil {
		d.onPaint()
	}
}

// Repaints reports how many repaints were requested.
func (d *Diagram) Repaints() int {
	return d.repaints
}

func (d *Diagram) find(handle domain.NodeHandle) (int, bool) {
	for i, n := range d.model.Nodes {
		if n.Handle == handle {
			return i, true
		}
	}
	return -1, false
}
