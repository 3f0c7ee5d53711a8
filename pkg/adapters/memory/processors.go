package memory

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/params"
)

// Evaluation limits of the built-in processors.
const (
	MaxSegments    = 4096
	MaxRepeat      = 1024
	MaxWorldPoints = 1 << 20
)

type processor struct {
	Type     domain.NodeType
	Defaults map[string]string
	// Limits bounds integer parameters to [0, limit].
	Limits   map[string]int64
	Subgraph bool
	Eval     func(a args, inputs []*domain.World) (*domain.World, error)
}

// check applies the processor's limits to an already validated value.
func (p *processor) check(name, value string) error {
	limit, ok := p.Limits[name]
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 || n > limit {
		return fmt.Errorf("%w: %s %s must be between 0 and %d", domain.ErrInvalidValue, p.Type.Name, name, limit)
	}
	return nil
}

// args reads stored parameter text. Values were validated on write.
type args map[string]string

func (a args) float(name string) (float64, error)            { return params.ParseFloat(a[name]) }
func (a args) integer(name string) (int64, error)            { return params.ParseInt(a[name]) }
func (a args) unsigned(name string) (uint64, error)          { return params.ParseUint(a[name]) }
func (a args) boolean(name string) (bool, error)             { return params.ParseBool(a[name]) }
func (a args) position(name string) (domain.Position, error) { return params.ParsePosition(a[name]) }
func (a args) positions(name string) ([]domain.Position, error) {
	return params.ParsePositionList(a[name])
}

func param(name string, kind domain.ParamKind) domain.ParamDescriptor {
	return domain.ParamDescriptor{Name: name, Kind: kind}
}

func builtins() []*processor {
	return []*processor{
		{
			Type: domain.NodeType{Name: "Empty", Input: domain.Slotted(0)},
			Eval: func(args, []*domain.World) (*domain.World, error) {
				return domain.NewWorld(), nil
			},
		},
		{
			Type: domain.NodeType{Name: "Circle", Input: domain.Slotted(0), Parameters: []domain.ParamDescriptor{
				param("center", domain.ParamPosition),
				param("radius", domain.ParamFloat),
				param("segments", domain.ParamUint),
			}},
			Defaults: map[string]string{"center": "0,0", "radius": "50", "segments": "16"},
			Limits:   map[string]int64{"segments": MaxSegments},
			Eval:     evalCircle,
		},
		{
			Type: domain.NodeType{Name: "CreateRectangle", Input: domain.Slotted(0), Parameters: []domain.ParamDescriptor{
				param("position", domain.ParamPosition),
				param("width", domain.ParamFloat),
				param("height", domain.ParamFloat),
			}},
			Defaults: map[string]string{"position": "0,0", "width": "100", "height": "100"},
			Eval:     evalRectangle,
		},
		{
			Type: domain.NodeType{Name: "AddPoints", Input: domain.Slotted(1), Parameters: []domain.ParamDescriptor{
				param("points", domain.ParamPositionList),
			}},
			Defaults: map[string]string{"points": "0,0;100,0"},
			Eval:     evalAddPoints,
		},
		{
			Type: domain.NodeType{Name: "Translate", Input: domain.Slotted(1), Parameters: []domain.ParamDescriptor{
				param("offset", domain.ParamPosition),
			}},
			Defaults: map[string]string{"offset": "10,10"},
			Eval:     evalTranslate,
		},
		{
			Type: domain.NodeType{Name: "Repeat", Input: domain.Slotted(1), Parameters: []domain.ParamDescriptor{
				param("times", domain.ParamInt),
				param("offset", domain.ParamPosition),
			}},
			Defaults: map[string]string{"times": "2", "offset": "20,0"},
			Limits:   map[string]int64{"times": MaxRepeat},
			Eval:     evalRepeat,
		},
		{
			Type: domain.NodeType{Name: "SmoothTangents", Input: domain.Slotted(1), Parameters: []domain.ParamDescriptor{
				param("strength", domain.ParamFloat),
				param("close", domain.ParamBool),
			}},
			Defaults: map[string]string{"strength": "0.25", "close": "false"},
			Eval:     evalSmooth,
		},
		{
			Type: domain.NodeType{Name: "Merge", Input: domain.Multiple(false)},
			Eval: func(_ args, inputs []*domain.World) (*domain.World, error) {
				out := domain.NewWorld()
				for _, in := range inputs {
					appendWorld(out, in, domain.Position{})
				}
				return out, nil
			},
		},
		{
			Type: domain.NodeType{Name: "Subgraph", Input: domain.Slotted(0), Parameters: []domain.ParamDescriptor{
				param("label", domain.ParamString),
			}},
			Defaults: map[string]string{"label": "Subgraph"},
			Subgraph: true,
		},
	}
}

func evalCircle(a args, _ []*domain.World) (*domain.World, error) {
	center, err := a.position("center")
	if err != nil {
		return nil, err
	}
	radius, err := a.float("radius")
	if err != nil {
		return nil, err
	}
	segments, err := a.unsigned("segments")
	if err != nil {
		return nil, err
	}
	if segments < 3 {
		segments = 3
	}

	w := domain.NewWorld()
	shape := domain.Shape{Closed: true}
	for i := uint64(0); i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		idx := w.AddPoint(domain.Point{Position: domain.Position{
			center[0] + radius*math.Cos(angle),
			center[1] + radius*math.Sin(angle),
		}})
		shape.Vertices = append(shape.Vertices, domain.VertexRef{Index: idx})
	}
	w.AddShape(shape)
	return w, nil
}

func evalRectangle(a args, _ []*domain.World) (*domain.World, error) {
	pos, err := a.position("position")
	if err != nil {
		return nil, err
	}
	width, err := a.float("width")
	if err != nil {
		return nil, err
	}
	height, err := a.float("height")
	if err != nil {
		return nil, err
	}

	w := domain.NewWorld()
	shape := domain.Shape{Closed: true}
	corners := []domain.Position{
		pos,
		{pos[0] + width, pos[1]},
		{pos[0] + width, pos[1] + height},
		{pos[0], pos[1] + height},
	}
	for _, c := range corners {
		shape.Vertices = append(shape.Vertices, domain.VertexRef{Index: w.AddPoint(domain.Point{Position: c})})
	}
	w.AddShape(shape)
	return w, nil
}

func evalAddPoints(a args, inputs []*domain.World) (*domain.World, error) {
	points, err := a.positions("points")
	if err != nil {
		return nil, err
	}
	w := inputs[0].Clone()
	shape := domain.Shape{}
	for _, p := range points {
		shape.Vertices = append(shape.Vertices, domain.VertexRef{Index: w.AddPoint(domain.Point{Position: p})})
	}
	w.AddShape(shape)
	return w, nil
}

func evalTranslate(a args, inputs []*domain.World) (*domain.World, error) {
	offset, err := a.position("offset")
	if err != nil {
		return nil, err
	}
	out := domain.NewWorld()
	appendWorld(out, inputs[0], offset)
	return out, nil
}

func evalRepeat(a args, inputs []*domain.World) (*domain.World, error) {
	times, err := a.integer("times")
	if err != nil {
		return nil, err
	}
	offset, err := a.position("offset")
	if err != nil {
		return nil, err
	}
	if n := int64(len(inputs[0].Points)) * times; n > MaxWorldPoints {
		return nil, fmt.Errorf("repeat would produce %d points, limit is %d", n, MaxWorldPoints)
	}
	out := domain.NewWorld()
	for i := int64(0); i < times; i++ {
		appendWorld(out, inputs[0], domain.Position{offset[0] * float64(i), offset[1] * float64(i)})
	}
	return out, nil
}

// evalSmooth places tangents along the direction between each vertex's
// neighbours. Tangents are absolute control-point positions.
func evalSmooth(a args, inputs []*domain.World) (*domain.World, error) {
	strength, err := a.float("strength")
	if err != nil {
		return nil, err
	}
	closeShapes, err := a.boolean("close")
	if err != nil {
		return nil, err
	}

	w := inputs[0].Clone()
	for key, shape := range w.Shapes {
		if closeShapes {
			shape.Closed = true
			w.Shapes[key] = shape
		}
		n := len(shape.Vertices)
		if n < 2 {
			continue
		}
		for i, v := range shape.Vertices {
			var prev, next int
			if shape.Closed {
				prev, next = (i-1+n)%n, (i+1)%n
			} else {
				prev, next = max(i-1, 0), min(i+1, n-1)
			}
			pp := w.Points[shape.Vertices[prev].Index].Position
			np := w.Points[shape.Vertices[next].Index].Position
			dx, dy := (np[0]-pp[0])*strength, (np[1]-pp[1])*strength

			pt := w.Points[v.Index]
			pt.InTangent = domain.TangentAt(pt.Position[0]-dx, pt.Position[1]-dy)
			pt.OutTangent = domain.TangentAt(pt.Position[0]+dx, pt.Position[1]+dy)
			w.Points[v.Index] = pt
		}
	}
	return w, nil
}

// appendWorld copies src into dst, shifted by offset, with fresh indices.
func appendWorld(dst, src *domain.World, offset domain.Position) {
	remap := make(map[int]int, len(src.Points))
	for _, k := range sortedKeys(src.Points) {
		p := src.Points[k]
		p.Position = domain.Position{p.Position[0] + offset[0], p.Position[1] + offset[1]}
		p.InTangent = shiftTangent(p.InTangent, offset)
		p.OutTangent = shiftTangent(p.OutTangent, offset)
		remap[k] = dst.AddPoint(p)
	}
	for _, k := range sortedKeys(src.Shapes) {
		s := src.Shapes[k]
		shape := domain.Shape{Closed: s.Closed, Vertices: make([]domain.VertexRef, len(s.Vertices))}
		for i, v := range s.Vertices {
			shape.Vertices[i] = domain.VertexRef{Index: remap[v.Index]}
		}
		dst.AddShape(shape)
	}
}

func shiftTangent(t domain.Tangent, offset domain.Position) domain.Tangent {
	if !t.Set {
		return t
	}
	return domain.TangentAt(t.X+offset[0], t.Y+offset[1])
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
