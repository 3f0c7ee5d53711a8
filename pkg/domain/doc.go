/*
Package domain contains the value types shared by every layer of the graph editor core.

The processing engine owns graph topology, parameters and evaluation; this package only
describes what crosses that boundary. Nothing here performs I/O.

# Key Entities

  - GraphPath / ContextKey: an engine-issued graph context and its canonical hash.
  - NodeHandle: an engine-issued reference to a node inside one context.
  - NodeType: an immutable catalog entry (input arity plus parameter descriptors).
  - Snapshot / ContextEntry: the cached visual state of one context.
  - World: the render result produced by evaluating a context's output node.
  - Message: the closed set of bus messages exchanged between widgets and handlers.
*/
package domain
