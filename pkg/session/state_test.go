package session_test

import (
	"testing"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []domain.NodeType{
	{Name: "Empty", Input: domain.Slotted(0)},
	{Name: "Circle", Input: domain.Slotted(0), Parameters: []domain.ParamDescriptor{{Name: "radius", Kind: domain.ParamFloat}}},
}

func TestTypeByName(t *testing.T) {
	s := session.New(domain.GraphPath{Ref: "root"}, catalog)

	circle, ok := s.TypeByName("Circle")
	require.True(t, ok)
	assert.Equal(t, "radius", circle.Parameters[0].Name)

	_, ok = s.TypeByName("Square")
	assert.False(t, ok)
}

func TestSetCatalog_InvalidatesLookup(t *testing.T) {
	s := session.New(domain.GraphPath{}, catalog)
	_, ok := s.TypeByName("Merge")
	require.False(t, ok)

	s.SetCatalog(append(catalog, domain.NodeType{Name: "Merge", Input: domain.Multiple(false)}))

	_, ok = s.TypeByName("Merge")
	assert.True(t, ok)
	assert.Equal(t, "Empty", s.Catalog()[0].Name, "display order is preserved")
}

func TestObservers(t *testing.T) {
	s := session.New(domain.GraphPath{}, catalog)
	var fields []session.Field
	cancel := s.Observe(func(f session.Field) { fields = append(fields, f) })

	h := domain.NodeHandle{ID: "1.0", Type: "Circle"}
	s.SetSelected(h)
	s.SetOutput(h)
	s.SetRender(domain.NewWorld())
	s.SetGraphPath(domain.GraphPath{Ref: "child"})

	assert.Equal(t, []session.Field{session.FieldSelection, session.FieldOutput, session.FieldRender, session.FieldGraphPath}, fields)
	assert.Equal(t, h, s.Selected())
	assert.Equal(t, "child", s.GraphPath().Ref)

	cancel()
	s.SetSelected(domain.NodeHandle{})
	assert.Len(t, fields, 4)
}

func TestTeardown(t *testing.T) {
	s := session.New(domain.GraphPath{Ref: "root"}, catalog)
	calls := 0
	s.Observe(func(session.Field) { calls++ })
	s.SetOutput(domain.NodeHandle{ID: "1.0"})
	require.Equal(t, 1, calls)

	s.Teardown()
	assert.True(t, s.Closed())
	assert.True(t, s.Output().IsZero())
	assert.Empty(t, s.Catalog())

	s.SetOutput(domain.NodeHandle{ID: "2.0"})
	assert.True(t, s.Output().IsZero())
	assert.Equal(t, 1, calls)
}
