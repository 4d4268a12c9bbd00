package spatial

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	containing []Candidate
	covering   []Candidate
	within     []Candidate
	err        error
	calls      []string
	gotRadius  float64
	gotLimit   int
}

func (f *fakeStore) FindContaining(_ context.Context, _ Point) ([]Candidate, error) {
	f.calls = append(f.calls, "containing")
	return f.containing, f.err
}

func (f *fakeStore) FindCovering(_ context.Context, _ Point) ([]Candidate, error) {
	f.calls = append(f.calls, "covering")
	return f.covering, nil
}

func (f *fakeStore) FindWithin(_ context.Context, _ Point, radiusM float64, limit int) ([]Candidate, error) {
	f.calls = append(f.calls, "within")
	f.gotRadius, f.gotLimit = radiusM, limit
	return f.within, nil
}

func TestResolveStrictPrefersSmallestArea(t *testing.T) {
	st := &fakeStore{containing: []Candidate{
		{ID: 2, KabKotaCode: "3273", AreaM2: 9e8},
		{ID: 1, KabKotaCode: "3273", KecamatanCode: "327301", AreaM2: 1.2e6},
	}}
	res, err := NewResolver(st).Resolve(context.Background(), -6.905, 107.605)
	require.NoError(t, err)
	assert.True(t, res.Resolved)
	assert.Equal(t, TierStrict, res.Tier)
	assert.Equal(t, int64(1), res.PolygonID)
	assert.Equal(t, "327301", res.KecamatanCode)
	assert.Equal(t, []string{"containing"}, st.calls)
}

func TestResolveStrictAreaTieGoesToLowerID(t *testing.T) {
	st := &fakeStore{containing: []Candidate{{ID: 9, AreaM2: 10}, {ID: 4, AreaM2: 10}}}
	res, err := NewResolver(st).Resolve(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.PolygonID)
}

func TestResolveFallsBackToCovering(t *testing.T) {
	st := &fakeStore{covering: []Candidate{{ID: 7, KabKotaCode: "3204", AreaM2: 5}, {ID: 8, KabKotaCode: "3204", AreaM2: 3}}}
	res, err := NewResolver(st).Resolve(context.Background(), -6.905, 107.81)
	require.NoError(t, err)
	assert.Equal(t, TierCovering, res.Tier)
	assert.Equal(t, int64(8), res.PolygonID)
	assert.Equal(t, []string{"containing", "covering"}, st.calls)
}

func TestResolveNearestMajorityVote(t *testing.T) {
	st := &fakeStore{within: []Candidate{
		{ID: 10, KabKotaCode: "3202", DistanceM: 2000},
		{ID: 11, KabKotaCode: "3201", DistanceM: 2200},
		{ID: 12, KabKotaCode: "3201", DistanceM: 2500},
		{ID: 13, KabKotaCode: "3201", DistanceM: 3000},
		{ID: 14, KabKotaCode: "3201", DistanceM: 3500},
	}}
	res, err := NewResolver(st).Resolve(context.Background(), -7.5, 110.0)
	require.NoError(t, err)
	assert.Equal(t, TierNearest, res.Tier)
	assert.Equal(t, "3201", res.KabKotaCode)
	assert.Equal(t, int64(11), res.PolygonID)
	assert.InDelta(t, 2200, res.DistanceM, 1e-9)
	assert.Equal(t, DefaultNearestRadiusM, st.gotRadius)
	assert.Equal(t, DefaultNearestLimit, st.gotLimit)
}

func TestResolveUnresolvedWhenNothingNearby(t *testing.T) {
	st := &fakeStore{}
	res, err := NewResolver(st).Resolve(context.Background(), -8.5, 112.0)
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.Equal(t, TierUnresolved, res.Tier)
	assert.Zero(t, res.PolygonID)
	assert.Equal(t, []string{"containing", "covering", "within"}, st.calls)
}

func TestResolveInvalidInputSkipsStore(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"nan lat", math.NaN(), 107},
		{"inf lon", -6, math.Inf(1)},
		{"lat out of range", 91, 0},
		{"lon out of range", 0, -180.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeStore{}
			res, err := NewResolver(st).Resolve(context.Background(), tc.lat, tc.lon)
			require.NoError(t, err)
			assert.Equal(t, TierUnresolved, res.Tier)
			assert.Empty(t, st.calls)
		})
	}
}

func TestResolveWrapsStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	st := &fakeStore{err: boom}
	res, err := NewResolver(st).Resolve(context.Background(), -6.9, 107.6)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.False(t, res.Resolved)
}

func TestWithNearestOverrides(t *testing.T) {
	r := NewResolver(&fakeStore{}, WithNearest(1000, 3))
	assert.Equal(t, 1000.0, r.radiusM)
	assert.Equal(t, 3, r.limit)

	r = NewResolver(&fakeStore{}, WithNearest(0, -1))
	assert.Equal(t, DefaultNearestRadiusM, r.radiusM)
	assert.Equal(t, DefaultNearestLimit, r.limit)
}

func TestNearestVote(t *testing.T) {
	t.Run("count tie goes to smaller minimum distance", func(t *testing.T) {
		c, ok := NearestVote([]Candidate{
			{ID: 1, KabKotaCode: "3201", DistanceM: 900},
			{ID: 2, KabKotaCode: "3202", DistanceM: 400},
			{ID: 3, KabKotaCode: "3201", DistanceM: 1000},
			{ID: 4, KabKotaCode: "3202", DistanceM: 1200},
		}, 5000, 5)
		require.True(t, ok)
		assert.Equal(t, int64(2), c.ID)
	})
	t.Run("full tie goes to smaller code", func(t *testing.T) {
		c, ok := NearestVote([]Candidate{
			{ID: 5, KabKotaCode: "3210", DistanceM: 100},
			{ID: 6, KabKotaCode: "3209", DistanceM: 100},
		}, 5000, 5)
		require.True(t, ok)
		assert.Equal(t, int64(6), c.ID)
	})
	t.Run("absent code forms its own group", func(t *testing.T) {
		c, ok := NearestVote([]Candidate{
			{ID: 1, DistanceM: 100},
			{ID: 2, DistanceM: 200},
			{ID: 3, KabKotaCode: "3201", DistanceM: 50},
		}, 5000, 5)
		require.True(t, ok)
		assert.Equal(t, int64(1), c.ID)
		assert.Empty(t, c.KabKotaCode)
	})
	t.Run("radius and limit are enforced", func(t *testing.T) {
		cands := []Candidate{
			{ID: 1, KabKotaCode: "A", DistanceM: 10},
			{ID: 2, KabKotaCode: "B", DistanceM: 20},
			{ID: 3, KabKotaCode: "B", DistanceM: 30},
			{ID: 4, KabKotaCode: "B", DistanceM: 40},
			{ID: 5, KabKotaCode: "B", DistanceM: 6000},
		}
		c, ok := NearestVote(cands, 5000, 2)
		require.True(t, ok)
		// limit 2 keeps ids 1 and 2 only; count tie, A is nearer.
		assert.Equal(t, int64(1), c.ID)

		_, ok = NearestVote([]Candidate{{ID: 1, DistanceM: 5001}}, 5000, 5)
		assert.False(t, ok)
	})
	t.Run("empty", func(t *testing.T) {
		_, ok := NearestVote(nil, 5000, 5)
		assert.False(t, ok)
	})
}
