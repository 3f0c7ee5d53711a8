package domain

// Kind tags a Message.
type Kind string

const (
	KindCreateNode           Kind = "CreateNode"
	KindNodeCreated          Kind = "NodeCreated"
	KindDeleteNode           Kind = "DeleteNode"
	KindCreateLink           Kind = "CreateLink"
	KindDeleteLink           Kind = "DeleteLink"
	KindSaveAll              Kind = "SaveAll"
	KindSetOutputNode        Kind = "SetOutputNode"
	KindNodeSelected         Kind = "NodeSelected"
	KindSubgraphNodeSelected Kind = "SubgraphNodeSelected"
	KindMoveLevelUp          Kind = "MoveLevelUp"
	KindRunProcessors        Kind = "RunProcessors"
	KindSwitchToSubgraph     Kind = "SwitchToSubgraph"
	KindSwitchedToSubgraph   Kind = "SwitchedToSubgraph"
	KindSwitchToGraphPath    Kind = "SwitchToGraphPath"
)

// Kinds lists every message kind, in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindCreateNode,
		KindNodeCreated,
		KindDeleteNode,
		KindCreateLink,
		KindDeleteLink,
		KindSaveAll,
		KindSetOutputNode,
		KindNodeSelected,
		KindSubgraphNodeSelected,
		KindMoveLevelUp,
		KindRunProcessors,
		KindSwitchToSubgraph,
		KindSwitchedToSubgraph,
		KindSwitchToGraphPath,
	}
}

// Message is the closed set of bus messages. Only types in this package
// implement it.
type Message interface {
	Kind() Kind
	sealed()
}

// CreateNode asks for a new node of the named catalog type in the current context.
type CreateNode struct{ TypeName string }

// NodeCreated announces a node added by CreateNode.
type NodeCreated struct{ Node NodeHandle }

// DeleteNode removes a node from the current context.
type DeleteNode struct{ Node NodeHandle }

// CreateLink connects From's output to To's input (a specific slot when Slotted).
type CreateLink struct {
	From, To NodeHandle
	Slot     int
	Slotted  bool
}

// DeleteLink mirrors CreateLink.
type DeleteLink struct {
	From, To NodeHandle
	Slot     int
	Slotted  bool
}

// SaveAll records a checkpoint of the live diagram.
type SaveAll struct{}

// SetOutputNode designates the node to evaluate; the zero handle clears it.
type SetOutputNode struct{ Node NodeHandle }

// NodeSelected marks a node as the current selection.
type NodeSelected struct{ Node NodeHandle }

// SubgraphNodeSelected asks to open the nested graph of a subgraph processor.
type SubgraphNodeSelected struct{ Node NodeHandle }

// MoveLevelUp returns to the root graph.
type MoveLevelUp struct{}

// RunProcessors re-evaluates the current context's output node.
type RunProcessors struct{}

// SwitchToSubgraph descends into the nested graph of Node.
type SwitchToSubgraph struct{ Node NodeHandle }

// SwitchedToSubgraph announces a completed descend. ParentPath is the context
// that was left; Label names the entered graph for breadcrumbs.
type SwitchedToSubgraph struct {
	ParentPath GraphPath
	Label      string
}

// SwitchToGraphPath jumps to an explicit, previously visited context, or to
// the root when Root is set.
type SwitchToGraphPath struct {
	Path GraphPath
	Root bool
}

func (CreateNode) Kind() Kind           { return KindCreateNode }
func (NodeCreated) Kind() Kind          { return KindNodeCreated }
func (DeleteNode) Kind() Kind           { return KindDeleteNode }
func (CreateLink) Kind() Kind           { return KindCreateLink }
func (DeleteLink) Kind() Kind           { return KindDeleteLink }
func (SaveAll) Kind() Kind              { return KindSaveAll }
func (SetOutputNode) Kind() Kind        { return KindSetOutputNode }
func (NodeSelected) Kind() Kind         { return KindNodeSelected }
func (SubgraphNodeSelected) Kind() Kind { return KindSubgraphNodeSelected }
func (MoveLevelUp) Kind() Kind          { return KindMoveLevelUp }
func (RunProcessors) Kind() Kind        { return KindRunProcessors }
func (SwitchToSubgraph) Kind() Kind     { return KindSwitchToSubgraph }
func (SwitchedToSubgraph) Kind() Kind   { return KindSwitchedToSubgraph }
func (SwitchToGraphPath) Kind() Kind    { return KindSwitchToGraphPath }

func (CreateNode) sealed()           {}
func (NodeCreated) sealed()          {}
func (DeleteNode) sealed()           {}
func (CreateLink) sealed()           {}
func (DeleteLink) sealed()           {}
func (SaveAll) sealed()              {}
func (SetOutputNode) sealed()        {}
func (NodeSelected) sealed()         {}
func (SubgraphNodeSelected) sealed() {}
func (MoveLevelUp) sealed()          {}
func (RunProcessors) sealed()        {}
func (SwitchToSubgraph) sealed()     {}
func (SwitchedToSubgraph) sealed()   {}
func (SwitchToGraphPath) sealed()    {}
