package revgeo

import (
	"context"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

// box is a closed counter-clockwise rectangle in lon/lat.
func box(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

// square is a side x side degree box whose nearest edge lies distM meters from (lat, lon) in the
// given direction (n, e, s, w), centred on that axis.
func square(lat, lon, distM, side float64, dir byte) orb.Polygon {
	dLat := distM / metersPerDegree
	dLon := dLat / math.Cos(lat*math.Pi/180)
	h := side / 2
	switch dir {
	case 'n':
		return box(lon-h, lat+dLat, lon+h, lat+dLat+side)
	case 's':
		return box(lon-h, lat-dLat-side, lon+h, lat-dLat)
	case 'e':
		return box(lon+dLon, lat-h, lon+dLon+side, lat+h)
	default:
		return box(lon-dLon-side, lat-h, lon-dLon, lat+h)
	}
}

func insert(t *testing.T, s *MemStore, kab string, g orb.Geometry) int64 {
	t.Helper()
	id, err := s.InsertPolygon(context.Background(), spatial.Polygon{Name: "das-" + kab, KabKotaCode: kab, Geometry: g})
	require.NoError(t, err)
	return id
}

type fixture struct {
	store                    *MemStore
	small, big               int64
	left, right              int64
	north, east, south, west int64
	farNorth, beyondLimit    int64
}

// newFixture lays out the scenarios used across tests:
//   - Bandung: small box nested in a big one
//   - two boxes sharing the edge lon=107.81
//   - a ring of squares 2.0-4.5 km around (-7.5, 110.0)
func newFixture(t *testing.T) fixture {
	s := NewMemStore()
	f := fixture{store: s}
	f.big = insert(t, s, "3204", box(107.55, -6.95, 107.70, -6.85))
	f.small = insert(t, s, "3273", box(107.60, -6.91, 107.61, -6.90))
	f.left = insert(t, s, "3204", box(107.80, -6.91, 107.81, -6.90))
	f.right = insert(t, s, "3204", box(107.81, -6.91, 107.82, -6.90))

	const lat, lon, side = -7.5, 110.0, 0.002
	f.north = insert(t, s, "3202", square(lat, lon, 2000, side, 'n'))
	f.east = insert(t, s, "3201", square(lat, lon, 2200, side, 'e'))
	f.south = insert(t, s, "3201", square(lat, lon, 2500, side, 's'))
	f.west = insert(t, s, "3201", square(lat, lon, 3000, side, 'w'))
	f.farNorth = insert(t, s, "3201", square(lat, lon, 3500, side, 'n'))
	f.beyondLimit = insert(t, s, "3202", square(lat, lon, 4500, side, 'e'))
	return f
}
