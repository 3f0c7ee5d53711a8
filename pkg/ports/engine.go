package ports

import "github.com/aretw0/graphnav/pkg/domain"

// Engine is the external graph-processing engine. It owns node and edge truth,
// parameter storage and evaluation. All calls are synchronous.
type Engine interface {
	// RootPath returns the path of the top-level graph.
	RootPath() domain.GraphPath

	// GraphPath returns the context nested under node within parent.
	GraphPath(parent domain.GraphPath, node domain.NodeHandle) (domain.GraphPath, error)

	// HashGraphPath returns the canonical hash of a path.
	HashGraphPath(path domain.GraphPath) (domain.ContextKey, error)

	// NodeTypes returns the catalog in display order.
	NodeTypes() []domain.NodeType

	AddProcessorNode(path domain.GraphPath, typeName string) (domain.NodeHandle, error)
	RemoveNode(path domain.GraphPath, node domain.NodeHandle) error
	IsSubgraphProcessor(path domain.GraphPath, node domain.NodeHandle) (bool, error)

	ConnectNodes(path domain.GraphPath, from, to domain.NodeHandle) error
	ConnectNodesSlotted(path domain.GraphPath, from, to domain.NodeHandle, slot int) error
	DisconnectNodes(path domain.GraphPath, from, to domain.NodeHandle) error
	DisconnectNodesSlotted(path domain.GraphPath, from, to domain.NodeHandle, slot int) error

	SetOutputNode(path domain.GraphPath, node domain.NodeHandle) error

	// RunProcessors evaluates the output node of path.
	// Returns domain.ErrNoResult when there is nothing to show.
	RunProcessors(path domain.GraphPath) (*domain.World, error)

	NodeParameter(path domain.GraphPath, node domain.NodeHandle, name string) (string, error)
	SetNodeParameter(path domain.GraphPath, node domain.NodeHandle, name, value string) error
	IsInputSatisfied(path domain.GraphPath, node domain.NodeHandle) (bool, error)
}
