package navigation_test

import (
	"context"
	"testing"

	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/navigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(t *navigation.Trail) []string {
	var out []string
	for _, c := range t.Crumbs() {
		out = append(out, c.Label)
	}
	return out
}

func TestTrail_GrowsAndShrinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Jumps are performed by a handler registered before the trail.
	bus.On(f.bus, func(ctx context.Context, msg domain.SwitchToGraphPath) error {
		if msg.Root {
			return f.nav.NavigateToRoot(ctx)
		}
		return f.nav.NavigateTo(ctx, msg.Path)
	})
	trail, err := navigation.NewTrail(f.engine, f.state, f.bus)
	require.NoError(t, err)
	trail.Attach()
	assert.Equal(t, []string{navigation.RootLabel}, labels(trail))

	outer := f.place(t, "Subgraph", domain.Position{0, 0})
	require.NoError(t, f.nav.Descend(ctx, outer))
	inner := f.place(t, "Subgraph", domain.Position{0, 0})
	require.NoError(t, f.engine.SetNodeParameter(f.state.GraphPath(), inner, "label", "Inner"))
	require.NoError(t, f.nav.Descend(ctx, inner))

	assert.Equal(t, []string{navigation.RootLabel, "Subgraph", "Inner"}, labels(trail))
	assert.Equal(t, domain.ContextKey("r/0.0/0.0"), trail.Crumbs()[2].Key)

	require.NoError(t, trail.Select(ctx, 1))
	assert.Equal(t, []string{navigation.RootLabel, "Subgraph"}, labels(trail))
	assert.Equal(t, domain.ContextKey("r/0.0"), f.key(t, f.state.GraphPath()))

	require.NoError(t, trail.Select(ctx, 0))
	assert.Equal(t, []string{navigation.RootLabel}, labels(trail))
	assert.Equal(t, domain.ContextKey("r"), f.key(t, f.state.GraphPath()))

	assert.Error(t, trail.Select(ctx, 3))

	trail.Detach()
	require.NoError(t, f.nav.Descend(ctx, outer))
	assert.Len(t, trail.Crumbs(), 1)
}

func TestTrail_FailedJumpKeepsCrumbs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bus.On(f.bus, func(ctx context.Context, msg domain.SwitchToGraphPath) error {
		return f.nav.NavigateTo(ctx, msg.Path)
	})
	trail, err := navigation.NewTrail(f.engine, f.state, f.bus)
	require.NoError(t, err)
	trail.Attach()

	sub := f.place(t, "Subgraph", domain.Position{0, 0})
	require.NoError(t, f.nav.Descend(ctx, sub))
	require.Len(t, trail.Crumbs(), 2)

	other := f.place(t, "Subgraph", domain.Position{0, 0})
	unvisited, err := f.engine.GraphPath(f.state.GraphPath(), other)
	require.NoError(t, err)

	err = f.bus.Publish(ctx, domain.SwitchToGraphPath{Path: unvisited})
	assert.ErrorIs(t, err, domain.ErrUnknownNavigationTarget)
	assert.Len(t, trail.Crumbs(), 2)
}
