// Package spatial resolves a free-standing coordinate to the watershed (DAS) polygon that
// contains it, falling back to boundary coverage and then a nearest-neighbour vote.
package spatial

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// ErrStoreUnavailable marks failures of the polygon store collaborator.
// The resolver never retries; callers decide.
var ErrStoreUnavailable = errors.New("polygon store unavailable")

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite and inside the geographic range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Orb returns the point in lon/lat order.
func (p Point) Orb() orb.Point { return orb.Point{p.Lon, p.Lat} }

// Polygon is a persisted watershed record. Codes are normalized digit strings; "" means absent.
type Polygon struct {
	ID            int64
	Name          string
	Source        string
	SeedRun       string
	ProvinsiCode  string
	KabKotaCode   string
	KecamatanCode string
	KelDesCode    string
	Geometry      orb.Geometry
}

// Candidate is one polygon returned by a store query together with the metric the query
// ordered by: geodesic area for containment/coverage, geodesic distance for radius search.
type Candidate struct {
	ID            int64
	ProvinsiCode  string
	KabKotaCode   string
	KecamatanCode string
	KelDesCode    string
	AreaM2        float64
	DistanceM     float64
}

type Tier string

const (
	TierStrict     Tier = "strict"
	TierCovering   Tier = "covering"
	TierNearest    Tier = "nearest"
	TierUnresolved Tier = "unresolved"
)

// Resolution is the transient answer of Resolve. When Resolved is false every other field is zero
// except Tier, which is TierUnresolved.
type Resolution struct {
	Resolved      bool
	Tier          Tier
	PolygonID     int64
	KabKotaCode   string
	KecamatanCode string
	KelDesCode    string
	DistanceM     float64
}

func unresolved() Resolution { return Resolution{Tier: TierUnresolved} }

func fromCandidate(c Candidate, tier Tier) Resolution {
	return Resolution{
		Resolved:      true,
		Tier:          tier,
		PolygonID:     c.ID,
		KabKotaCode:   c.KabKotaCode,
		KecamatanCode: c.KecamatanCode,
		KelDesCode:    c.KelDesCode,
		DistanceM:     c.DistanceM,
	}
}
