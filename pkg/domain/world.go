package domain

import (
	"encoding/json"
	"math"
)

// Tangent is a bezier control point. Set distinguishes a real tangent from
// "no tangent" (a straight segment).
//
// On the wire a tangent is an [x, y] pair and [0, 0] means "no tangent", so a
// genuine zero tangent cannot be expressed there. Decoding maps [0, 0] to an
// unset tangent; encoding an unset tangent writes [0, 0].
type Tangent struct {
	X, Y float64
	Set  bool
}

// TangentAt returns a present tangent at (x, y).
func TangentAt(x, y float64) Tangent {
	return Tangent{X: x, Y: y, Set: true}
}

func (t Tangent) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("[0,0]"), nil
	}
	return json.Marshal([2]float64{t.X, t.Y})
}

func (t *Tangent) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	*t = Tangent{X: pair[0], Y: pair[1], Set: pair[0] != 0 || pair[1] != 0}
	return nil
}

// Point is a vertex of the render world.
type Point struct {
	Position   Position `json:"position"`
	InTangent  Tangent  `json:"in_tangent"`
	OutTangent Tangent  `json:"out_tangent"`
}

// VertexRef points at an entry of World.Points.
type VertexRef struct {
	Index int `json:"index"`
}

// Shape is an ordered run of vertices, optionally closed.
type Shape struct {
	Vertices []VertexRef `json:"vertices"`
	Closed   bool        `json:"closed"`
}

// World is the renderable result of evaluating a graph.
type World struct {
	Shapes map[int]Shape `json:"shapes"`
	Points map[int]Point `json:"points"`
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{
		Shapes: make(map[int]Shape),
		Points: make(map[int]Point),
	}
}

// AddPoint stores p under the next free index and returns it.
func (w *World) AddPoint(p Point) int {
	idx := len(w.Points)
	for {
		if _, taken := w.Points[idx]; !taken {
			break
		}
		idx++
	}
	w.Points[idx] = p
	return idx
}

// AddShape stores s under the next free index and returns it.
func (w *World) AddShape(s Shape) int {
	idx := len(w.Shapes)
	for {
		if _, taken := w.Shapes[idx]; !taken {
			break
		}
		idx++
	}
	w.Shapes[idx] = s
	return idx
}

// Clone returns a deep copy of the world.
func (w *World) Clone() *World {
	if w == nil {
		return nil
	}
	out := NewWorld()
	for k, p := range w.Points {
		out.Points[k] = p
	}
	for k, s := range w.Shapes {
		s.Vertices = append([]VertexRef(nil), s.Vertices...)
		out.Shapes[k] = s
	}
	return out
}

// Bounds returns the min and max corners of all point positions.
// An empty world has zero bounds.
func (w *World) Bounds() (min, max Position) {
	if w == nil || len(w.Points) == 0 {
		return Position{}, Position{}
	}
	min = Position{math.Inf(1), math.Inf(1)}
	max = Position{math.Inf(-1), math.Inf(-1)}
	for _, p := range w.Points {
		for i := 0; i < 2; i++ {
			min[i] = math.Min(min[i], p.Position[i])
			max[i] = math.Max(max[i], p.Position[i])
		}
	}
	return min, max
}
