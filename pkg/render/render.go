// Package render turns an evaluated world into SVG.
package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/graphnav/pkg/domain"
)

// Margin is the padding added around the world's bounds in SVG documents.
const Margin = 10.0

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writePair(sb *strings.Builder, x, y float64) {
	sb.WriteString(num(x))
	sb.WriteByte(' ')
	sb.WriteString(num(y))
}

// segment appends the command that reaches p from a vertex whose outgoing
// tangent is out: L when neither side has a tangent, Q when one does and C
// when both do.
func segment(sb *strings.Builder, p domain.Point, out domain.Tangent) {
	switch {
	case !out.Set && !p.InTangent.Set:
		sb.WriteString(" L ")
	case !out.Set:
		sb.WriteString(" Q ")
		writePair(sb, p.InTangent.X, p.InTangent.Y)
		sb.WriteByte(' ')
	case !p.InTangent.Set:
		sb.WriteString(" Q ")
		writePair(sb, out.X, out.Y)
		sb.WriteByte(' ')
	default:
		sb.WriteString(" C ")
		writePair(sb, out.X, out.Y)
		sb.WriteByte(' ')
		writePair(sb, p.InTangent.X, p.InTangent.Y)
		sb.WriteByte(' ')
	}
	writePair(sb, p.Position[0], p.Position[1])
}

// PathData returns the SVG path "d" attribute for shape. A shape without
// vertices yields an empty string; a vertex pointing at a missing point is
// an error.
func PathData(shape domain.Shape, points map[int]domain.Point) (string, error) {
	if len(shape.Vertices) == 0 {
		return "", nil
	}
	lookup := func(v domain.VertexRef) (domain.Point, error) {
		p, ok := points[v.Index]
		if !ok {
			return domain.Point{}, fmt.Errorf("vertex references missing point %d", v.Index)
		}
		return p, nil
	}

	first, err := lookup(shape.Vertices[0])
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("M ")
	writePair(&sb, first.Position[0], first.Position[1])

	out := first.OutTangent
	for _, v := range shape.Vertices[1:] {
		p, err := lookup(v)
		if err != nil {
			return "", err
		}
		segment(&sb, p, out)
		out = p.OutTangent
	}
	if shape.Closed {
		segment(&sb, first, out)
	}
	return sb.String(), nil
}

// SVG renders every shape as a stroked path and every point as a dot.
// The view box covers the world's bounds plus Margin.
func SVG(w *domain.World) (string, error) {
	if w == nil {
		w = domain.NewWorld()
	}
	lo, hi := w.Bounds()
	width := math.Max(hi[0]-lo[0], 1) + 2*Margin
	height := math.Max(hi[1]-lo[1], 1) + 2*Margin

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`,
		num(lo[0]-Margin), num(lo[1]-Margin), num(width), num(height))
	sb.WriteByte('\n')

	for _, k := range keys(w.Shapes) {
		d, err := PathData(w.Shapes[k], w.Points)
		if err != nil {
			return "", fmt.Errorf("shape %d: %w", k, err)
		}
		if d == "" {
			continue
		}
		fmt.Fprintf(&sb, `  <path d="%s" stroke="black" fill="transparent"/>`+"\n", d)
	}
	for _, k := range keys(w.Points) {
		p := w.Points[k]
		fmt.Fprintf(&sb, `  <circle cx="%s" cy="%s" r="1" fill="red"/>`+"\n", num(p.Position[0]), num(p.Position[1]))
	}
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

func keys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
