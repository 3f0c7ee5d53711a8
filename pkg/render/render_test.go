package render_test

import (
	"strings"
	"testing"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) domain.Point {
	return domain.Point{Position: domain.Position{x, y}}
}

func shapeOf(closed bool, idx ...int) domain.Shape {
	s := domain.Shape{Closed: closed}
	for _, i := range idx {
		s.Vertices = append(s.Vertices, domain.VertexRef{Index: i})
	}
	return s
}

func TestPathData(t *testing.T) {
	curved := pt(10, 0)
	curved.InTangent = domain.TangentAt(5, 5)
	curved.OutTangent = domain.TangentAt(15, 5)
	origin := pt(0, 0)
	origin.OutTangent = domain.TangentAt(0, 2)

	tests := []struct {
		name   string
		shape  domain.Shape
		points map[int]domain.Point
		want   string
	}{
		{
			name:   "empty shape",
			shape:  domain.Shape{},
			points: nil,
			want:   "",
		},
		{
			name:   "straight open",
			shape:  shapeOf(false, 0, 1),
			points: map[int]domain.Point{0: pt(0, 0), 1: pt(10, 0.5)},
			want:   "M 0 0 L 10 0.5",
		},
		{
			name:   "closed triangle",
			shape:  shapeOf(true, 0, 1, 2),
			points: map[int]domain.Point{0: pt(0, 0), 1: pt(10, 0), 2: pt(0, 10)},
			want:   "M 0 0 L 10 0 L 0 10 L 0 0",
		},
		{
			name:   "incoming tangent only",
			shape:  shapeOf(false, 0, 1),
			points: map[int]domain.Point{0: pt(0, 0), 1: curved},
			want:   "M 0 0 Q 5 5 10 0",
		},
		{
			name:   "both tangents",
			shape:  shapeOf(false, 0, 1),
			points: map[int]domain.Point{0: origin, 1: curved},
			want:   "M 0 0 C 0 2 5 5 10 0",
		},
		{
			name:   "outgoing tangent only",
			shape:  shapeOf(false, 1, 0),
			points: map[int]domain.Point{0: pt(0, 0), 1: curved},
			want:   "M 10 0 Q 15 5 0 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render.PathData(tt.shape, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathData_ZeroTangentIsReal(t *testing.T) {
	p := pt(10, 10)
	p.InTangent = domain.TangentAt(0, 0)
	got, err := render.PathData(shapeOf(false, 0, 1), map[int]domain.Point{0: pt(0, 0), 1: p})
	require.NoError(t, err)
	assert.Equal(t, "M 0 0 Q 0 0 10 10", got)
}

func TestPathData_MissingPoint(t *testing.T) {
	_, err := render.PathData(shapeOf(false, 0, 7), map[int]domain.Point{0: pt(0, 0)})
	assert.Error(t, err)
}

func TestSVG(t *testing.T) {
	w := domain.NewWorld()
	a := w.AddPoint(pt(0, 0))
	b := w.AddPoint(pt(100, 50))
	w.AddShape(shapeOf(false, a, b))

	doc, err := render.SVG(w)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-10 -10 120 70">`))
	assert.Contains(t, doc, `<path d="M 0 0 L 100 50" stroke="black" fill="transparent"/>`)
	assert.Equal(t, 2, strings.Count(doc, "<circle"))

	empty, err := render.SVG(nil)
	require.NoError(t, err)
	assert.Contains(t, empty, `viewBox="-10 -10 21 21"`)
}
