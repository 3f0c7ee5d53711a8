package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/graphnav/internal/presentation/graph"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	circle := domain.NodeHandle{ID: "0.0", Type: "Circle"}
	sub := domain.NodeHandle{ID: "1.2", Type: "Subgraph"}
	merge := domain.NodeHandle{ID: "2.0", Type: "Merge"}
	move := domain.NodeHandle{ID: "3.0", Type: "Translate"}

	tests := []struct {
		name     string
		nodes    []domain.VisualNode
		links    []domain.VisualLink
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:     "Shapes",
			nodes:    []domain.VisualNode{{Handle: circle, Output: true}, {Handle: sub, Subgraph: true}, {Handle: merge}},
			contains: []string{`n0_0(("Circle 0.0"))`, `n1_2[["Subgraph 1.2"]]`, `n2_0["Merge 2.0"]`},
		},
		{
			name:     "Links",
			nodes:    []domain.VisualNode{{Handle: circle}, {Handle: merge}, {Handle: move}},
			links:    []domain.VisualLink{{From: circle, To: merge}, {From: merge, To: move, Slotted: true}},
			contains: []string{"n0_0 --> n2_0", `n2_0 -- "0" --> n3_0`},
		},
		{
			name:     "Overlay",
			nodes:    []domain.VisualNode{{Handle: circle}, {Handle: merge}},
			overlay:  &graph.Overlay{Selected: merge, Output: circle},
			contains: []string{"class n2_0 selected;", "class n0_0 output;"},
		},
		{
			name:     "Empty Overlay",
			nodes:    []domain.VisualNode{{Handle: circle}},
			overlay:  &graph.Overlay{},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.nodes, tt.links, tt.overlay)
			assert.True(t, strings.HasPrefix(got, "graph LR\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}
