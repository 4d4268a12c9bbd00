package revgeo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

func TestResolverOverMemStore(t *testing.T) {
	f := newFixture(t)
	r := spatial.NewResolver(f.store)
	ctx := context.Background()

	t.Run("nested polygon wins containment", func(t *testing.T) {
		res, err := r.Resolve(ctx, -6.905, 107.605)
		require.NoError(t, err)
		assert.Equal(t, spatial.TierStrict, res.Tier)
		assert.Equal(t, f.small, res.PolygonID)
		assert.Equal(t, "3273", res.KabKotaCode)
	})

	t.Run("shared edge resolves through coverage", func(t *testing.T) {
		res, err := r.Resolve(ctx, -6.905, 107.81)
		require.NoError(t, err)
		assert.True(t, res.Resolved)
		assert.Equal(t, spatial.TierCovering, res.Tier)
		assert.Contains(t, []int64{f.left, f.right}, res.PolygonID)
	})

	t.Run("gap resolves to the majority regency", func(t *testing.T) {
		res, err := r.Resolve(ctx, -7.5, 110.0)
		require.NoError(t, err)
		assert.Equal(t, spatial.TierNearest, res.Tier)
		assert.Equal(t, "3201", res.KabKotaCode)
		// nearest member of the 3201 group, not the single closest polygon
		assert.Equal(t, f.east, res.PolygonID)
		assert.InDelta(t, 2200, res.DistanceM, 5)
	})

	t.Run("far from everything is unresolved", func(t *testing.T) {
		res, err := r.Resolve(ctx, -8.5, 112.0)
		require.NoError(t, err)
		assert.False(t, res.Resolved)
		assert.Equal(t, spatial.TierUnresolved, res.Tier)
	})
}
