// Package revgeo is an in-memory spatial.PolygonStore over repaired GeoJSON polygons.
// It serves the resolver when no PostGIS instance is configured and backs dry-run seeding.
package revgeo

import (
	"github.com/paulmach/orb"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

// Unit is one stored watershed: the record as inserted plus its repaired geometry.
// Usable is false when repair left no ring with area; such units stay counted but never match.
type Unit struct {
	Record   spatial.Polygon
	Geometry orb.MultiPolygon
	Bound    orb.Bound
	AreaM2   float64
	Usable   bool
}

func (u *Unit) candidate() spatial.Candidate {
	return spatial.Candidate{
		ID:            u.Record.ID,
		ProvinsiCode:  u.Record.ProvinsiCode,
		KabKotaCode:   u.Record.KabKotaCode,
		KecamatanCode: u.Record.KecamatanCode,
		KelDesCode:    u.Record.KelDesCode,
		AreaM2:        u.AreaM2,
	}
}
