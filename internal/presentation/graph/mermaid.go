package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/graphnav/pkg/domain"
)

// Overlay marks session state on the drawn diagram.
type Overlay struct {
	Selected domain.NodeHandle
	Output   domain.NodeHandle
}

// GenerateMermaid produces a Mermaid flowchart of one context's diagram.
// Shapes:
// - Subgraph processor: [[Subroutine]]
// - Output node: ((Circle))
// - Default: [Rectangle]
// Slotted links carry their slot number as a label.
func GenerateMermaid(nodes []domain.VisualNode, links []domain.VisualLink, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.Handle.ID)

		opener, closer := "[", "]"
		switch {
		case node.Subgraph:
			opener, closer = "[[", "]]"
		case node.Output:
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s %s\"%s\n", safeID, opener, node.Handle.Type, node.Handle.ID, closer))
	}

	for _, l := range links {
		arrow := "-->"
		if l.Slotted {
			arrow = fmt.Sprintf("-- \"%d\" -->", l.Slot)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(l.From.ID), arrow, sanitizeMermaidID(l.To.ID)))
	}

	if overlay != nil && (!overlay.Selected.IsZero() || !overlay.Output.IsZero()) {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef output fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		if !overlay.Output.IsZero() {
			sb.WriteString(fmt.Sprintf("    class %s output;\n", sanitizeMermaidID(overlay.Output.ID)))
		}
		if !overlay.Selected.IsZero() {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.Selected.ID)))
		}
	}

	return sb.String()
}

// sanitizeMermaidID turns an engine handle ID into a Mermaid identifier.
func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return "n" + s
}
