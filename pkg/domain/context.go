package domain

// GraphPath identifies a graph context: the root graph, or the graph nested
// inside a chain of subgraph-processor nodes. Ref is owned by the engine and
// is only passed back to it; two paths denote the same context exactly when
// the engine hashes them to the same ContextKey.
type GraphPath struct {
	Ref any
}

// ContextKey is the canonical hash of a GraphPath as computed by the engine.
type ContextKey string

// Snapshot is an opaque serialized capture of a diagram. The core stores and
// replays it verbatim. An empty snapshot means an empty diagram.
type Snapshot []byte

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// ContextEntry is the cached visual state of one visited context.
type ContextEntry struct {
	Context    ContextKey `json:"context"`
	OutputNode NodeHandle `json:"output_node"`
	Snapshot   Snapshot   `json:"snapshot"`
}

// NewContextEntry returns the entry used on the first visit of a context.
func NewContextEntry(key ContextKey) *ContextEntry {
	return &ContextEntry{Context: key}
}

// Clone returns a deep copy of the entry.
func (e *ContextEntry) Clone() *ContextEntry {
	if e == nil {
		return nil
	}
	out := *e
	out.Snapshot = e.Snapshot.Clone()
	return &out
}
