package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNavigationTarget is returned when navigating to a context that was never entered.
	ErrUnknownNavigationTarget = errors.New("unknown navigation target")

	// ErrInvalidReference is returned when a handle is stale or belongs to another context.
	ErrInvalidReference = errors.New("invalid node reference")

	// ErrUnknownNodeType is returned when a type name is not in the catalog.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrNotSubgraph is returned when descending into a node without a nested graph.
	ErrNotSubgraph = errors.New("node is not a subgraph processor")

	// ErrNoResult is returned by the engine when evaluation produced nothing.
	// It is a normal state, not a failure.
	ErrNoResult = errors.New("no result")

	// ErrContextNotFound is returned by a ContextStore for a key it does not hold.
	ErrContextNotFound = errors.New("context not found")

	// ErrIncompatiblePort is returned when a link does not fit the target's input arity.
	ErrIncompatiblePort = errors.New("incompatible port")

	// ErrUnknownParameter is returned for a parameter the node type does not declare.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidValue is returned when a parameter value does not match its textual encoding.
	ErrInvalidValue = errors.New("invalid parameter value")

	// ErrNoCheckpoint is returned when reverting without a checkpoint for the current context.
	ErrNoCheckpoint = errors.New("no checkpoint for current context")

	// ErrStaleEdit is returned when a parameter edit outlives the context it was opened in.
	ErrStaleEdit = errors.New("edit session belongs to another context")

	// ErrSessionClosed is returned after the editor session has been torn down.
	ErrSessionClosed = errors.New("session closed")
)

// UnknownTargetError reports a navigation to a context that is not cached.
type UnknownTargetError struct {
	Key ContextKey
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("navigate to %q: %s", e.Key, ErrUnknownNavigationTarget)
}

func (e *UnknownTargetError) Unwrap() error {
	return ErrUnknownNavigationTarget
}

// InvalidReferenceError reports an engine call that rejected a handle.
type InvalidReferenceError struct {
	Op   string
	Node NodeHandle
	Err  error
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Node, e.Err)
}

func (e *InvalidReferenceError) Unwrap() []error {
	return []error{ErrInvalidReference, e.Err}
}
