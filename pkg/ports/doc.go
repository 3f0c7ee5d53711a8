/*
Package ports defines the driven ports (interfaces) of the editor core.

These interfaces decouple the navigation and command logic from the processing engine,
the diagramming widget and the storage behind the context cache.

# Key Interfaces

  - Engine: the capability surface of the external graph-processing engine.
  - Diagram: the live visual model (serialize, replay, add nodes, repaint).
  - ContextStore: keeps one ContextEntry per visited context hash.
*/
package ports
