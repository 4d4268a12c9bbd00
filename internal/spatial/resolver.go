package spatial

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
)

const (
	DefaultNearestRadiusM = 5000.0
	DefaultNearestLimit   = 5
)

// Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	store   PolygonStore
	radiusM float64
	limit   int
}

type Option func(*Resolver)

// WithNearest overrides the fallback search radius and candidate count. Non-positive values keep
// the defaults.
func WithNearest(radiusM float64, limit int) Option {
	return func(r *Resolver) {
		if radiusM > 0 {
			r.radiusM = radiusM
		}
		if limit > 0 {
			r.limit = limit
		}
	}
}

func NewResolver(store PolygonStore, opts ...Option) *Resolver {
	r := &Resolver{store: store, radiusM: DefaultNearestRadiusM, limit: DefaultNearestLimit}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve maps (lat, lon) to a watershed polygon.
// Background: device and event coordinates often land just outside a digitized edge, so an exact
// containment test alone leaves many of them unclassified.
// Constraints:
// 1) tiers run in order (strict containment, boundary coverage, nearest vote) and the first hit wins;
// 2) the containment tiers pick the smallest area, the vote elects the dominant kab_kota_code among
//    the nearest polygons within the radius;
// 3) invalid coordinates and "nothing within the radius" yield an unresolved result and a nil error;
// 4) store failures wrap ErrStoreUnavailable and are not retried.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (Resolution, error) {
	p := Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		metrics.ResolveTotal.WithLabelValues(string(TierUnresolved)).Inc()
		return unresolved(), nil
	}
	t0 := time.Now()
	defer func() { metrics.ResolveDurationMs.Observe(float64(time.Since(t0).Milliseconds())) }()

	res, err := r.resolve(ctx, p)
	if err != nil {
		metrics.ResolveErrorsTotal.Inc()
		logger.L().Error("resolve_store_error", "lat", lat, "lon", lon, "err", err)
		return unresolved(), err
	}
	metrics.ResolveTotal.WithLabelValues(string(res.Tier)).Inc()
	logger.L().Debug("resolve_done", "lat", lat, "lon", lon, "tier", res.Tier, "das_id", res.PolygonID, "kab_kota", res.KabKotaCode)
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, p Point) (Resolution, error) {
	cands, err := r.store.FindContaining(ctx, p)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: containment query: %w", ErrStoreUnavailable, err)
	}
	if c, ok := smallestArea(cands); ok {
		return fromCandidate(c, TierStrict), nil
	}

	cands, err = r.store.FindCovering(ctx, p)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: coverage query: %w", ErrStoreUnavailable, err)
	}
	if c, ok := smallestArea(cands); ok {
		return fromCandidate(c, TierCovering), nil
	}

	cands, err = r.store.FindWithin(ctx, p, r.radiusM, r.limit)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: radius query: %w", ErrStoreUnavailable, err)
	}
	if c, ok := NearestVote(cands, r.radiusM, r.limit); ok {
		return fromCandidate(c, TierNearest), nil
	}
	return unresolved(), nil
}

// smallestArea picks the most specific polygon. Ties go to the lower id so the answer does not
// depend on store row order.
func smallestArea(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.AreaM2 < best.AreaM2 || (c.AreaM2 == best.AreaM2 && c.ID < best.ID) {
			best = c
		}
	}
	return best, true
}

type voteGroup struct {
	code  string
	count int
	minD  float64
}

// NearestVote keeps the limit nearest candidates within radiusM, groups them by kab_kota_code and
// elects the largest group; equal counts go to the group with the smaller minimum distance, then
// to the lexically smaller code. The winner is the nearest candidate of the elected group.
// An absent kab_kota_code forms its own group.
func NearestVote(cands []Candidate, radiusM float64, limit int) (Candidate, bool) {
	pool := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.DistanceM <= radiusM {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return Candidate{}, false
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].DistanceM != pool[j].DistanceM {
			return pool[i].DistanceM < pool[j].DistanceM
		}
		return pool[i].ID < pool[j].ID
	})
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}

	groups := map[string]*voteGroup{}
	for _, c := range pool {
		g, ok := groups[c.KabKotaCode]
		if !ok {
			g = &voteGroup{code: c.KabKotaCode, minD: c.DistanceM}
			groups[c.KabKotaCode] = g
		}
		g.count++
		if c.DistanceM < g.minD {
			g.minD = c.DistanceM
		}
	}
	var win *voteGroup
	for _, g := range groups {
		switch {
		case win == nil,
			g.count > win.count,
			g.count == win.count && g.minD < win.minD,
			g.count == win.count && g.minD == win.minD && g.code < win.code:
			win = g
		}
	}
	// pool is distance-ordered, so the first member of the elected group is its nearest.
	for _, c := range pool {
		if c.KabKotaCode == win.code {
			return c, true
		}
	}
	return Candidate{}, false
}
