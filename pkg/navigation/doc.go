// Package navigation keeps exactly one graph context live in the diagram and
// remembers the visual state of every context the user has visited.
//
// Entries are keyed by the engine's hash of a graph path, so two different
// routes to the same nested graph share one entry.
package navigation
