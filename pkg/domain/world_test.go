package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTangent_ZeroPairDecodesAsUnset(t *testing.T) {
	var p Point
	err := json.Unmarshal([]byte(`{"position":[1,2],"in_tangent":[0,0],"out_tangent":[3,0]}`), &p)
	require.NoError(t, err)

	assert.False(t, p.InTangent.Set)
	assert.True(t, p.OutTangent.Set)
	assert.Equal(t, 3.0, p.OutTangent.X)
}

func TestTangent_UnsetEncodesAsZeroPair(t *testing.T) {
	data, err := json.Marshal(Point{Position: Position{1, 2}, OutTangent: TangentAt(4, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":[1,2],"in_tangent":[0,0],"out_tangent":[4,5]}`, string(data))
}

func TestWorld_Bounds(t *testing.T) {
	w := NewWorld()
	min, max := w.Bounds()
	assert.Equal(t, Position{}, min)
	assert.Equal(t, Position{}, max)

	w.AddPoint(Point{Position: Position{-1, 4}})
	w.AddPoint(Point{Position: Position{3, -2}})
	min, max = w.Bounds()
	assert.Equal(t, Position{-1, -2}, min)
	assert.Equal(t, Position{3, 4}, max)
}

func TestWorld_CloneIsIndependent(t *testing.T) {
	w := NewWorld()
	a := w.AddPoint(Point{})
	w.AddShape(Shape{Vertices: []VertexRef{{Index: a}}})

	c := w.Clone()
	c.Shapes[0].Vertices[0].Index = 42

	assert.Equal(t, a, w.Shapes[0].Vertices[0].Index)
}

func TestErrors_Wrapping(t *testing.T) {
	err := &UnknownTargetError{Key: "r/1.0"}
	assert.ErrorIs(t, err, ErrUnknownNavigationTarget)
	assert.Contains(t, err.Error(), "r/1.0")

	ref := &InvalidReferenceError{Op: "remove", Node: NodeHandle{ID: "3.1", Type: "Circle"}, Err: ErrNoResult}
	assert.ErrorIs(t, ref, ErrInvalidReference)
	assert.ErrorIs(t, ref, ErrNoResult)
}

func TestKinds_Exhaustive(t *testing.T) {
	all := []Message{
		CreateNode{}, NodeCreated{}, DeleteNode{}, CreateLink{}, DeleteLink{}, SaveAll{},
		SetOutputNode{}, NodeSelected{}, SubgraphNodeSelected{}, MoveLevelUp{},
		RunProcessors{}, SwitchToSubgraph{}, SwitchedToSubgraph{}, SwitchToGraphPath{},
	}
	kinds := Kinds()
	require.Len(t, kinds, len(all))
	for i, m := range all {
		assert.Equal(t, kinds[i], m.Kind())
	}
}
