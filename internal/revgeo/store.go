package revgeo

import (
	"context"
	"sort"
	"sync"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

// MemStore keeps units in insertion order behind a RWMutex. Queries scan with a bbox prefilter;
// the expected corpus is a few thousand watersheds per province.
type MemStore struct {
	mu     sync.RWMutex
	units  []Unit
	nextID int64
}

func NewMemStore() *MemStore { return &MemStore{} }

// Truncate drops every unit. Ids keep increasing across truncations.
func (s *MemStore) Truncate(_ context.Context) error {
	s.mu.Lock()
	s.units = nil
	s.mu.Unlock()
	return nil
}

// InsertPolygon repairs p.Geometry, stores the unit and returns its id. Units whose repair leaves
// nothing are stored unusable so counts match the source, and are skipped by every query.
func (s *MemStore) InsertPolygon(_ context.Context, p spatial.Polygon) (int64, error) {
	mp := repair(p.Geometry)
	u := Unit{Record: p, Geometry: mp, Usable: len(mp) > 0}
	if u.Usable {
		u.Bound = mp.Bound()
		u.AreaM2 = areaOf(mp)
	}
	s.mu.Lock()
	s.nextID++
	u.Record.ID = s.nextID
	u.Record.Geometry = nil
	s.units = append(s.units, u)
	s.mu.Unlock()
	if !u.Usable {
		logger.L().Warn("revgeo_geometry_unusable", "das_id", u.Record.ID, "name", p.Name, "source", p.Source)
	}
	return u.Record.ID, nil
}

func (s *MemStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.units)), nil
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) FindContaining(ctx context.Context, p spatial.Point) ([]spatial.Candidate, error) {
	return s.byArea(ctx, p, func(l location) bool { return l == inside })
}

func (s *MemStore) FindCovering(ctx context.Context, p spatial.Point) ([]spatial.Candidate, error) {
	return s.byArea(ctx, p, func(l location) bool { return l != outside })
}

func (s *MemStore) byArea(ctx context.Context, p spatial.Point, keep func(location) bool) ([]spatial.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pt := p.Orb()
	s.mu.RLock()
	var out []spatial.Candidate
	for i := range s.units {
		u := &s.units[i]
		if !u.Usable || !u.Bound.Contains(pt) {
			continue
		}
		if keep(locate(u.Geometry, pt)) {
			out = append(out, u.candidate())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].AreaM2 != out[j].AreaM2 {
			return out[i].AreaM2 < out[j].AreaM2
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) FindWithin(ctx context.Context, p spatial.Point, radiusM float64, limit int) ([]spatial.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pt := p.Orb()
	s.mu.RLock()
	var out []spatial.Candidate
	for i := range s.units {
		u := &s.units[i]
		if !u.Usable || !padBound(u.Bound, pt, radiusM).Contains(pt) {
			continue
		}
		if d := distanceTo(u.Geometry, pt); d <= radiusM {
			c := u.candidate()
			c.DistanceM = d
			out = append(out, c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceM != out[j].DistanceM {
			return out[i].DistanceM < out[j].DistanceM
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ spatial.PolygonStore = (*MemStore)(nil)
