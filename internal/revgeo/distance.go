package revgeo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// metersPerDegree is the length of one degree of latitude on the sphere orb/geo measures with.
const metersPerDegree = orb.EarthRadius * math.Pi / 180

// distanceTo is the geodesic distance in meters from pt to the nearest point of mp; zero when pt
// is inside or on the boundary.
func distanceTo(mp orb.MultiPolygon, pt orb.Point) float64 {
	if locate(mp, pt) != outside {
		return 0
	}
	best := math.Inf(1)
	for _, poly := range mp {
		for _, ring := range poly {
			for i := 0; i+1 < len(ring); i++ {
				if d := segmentDistance(ring[i], ring[i+1], pt); d < best {
					best = d
				}
			}
		}
	}
	return best
}

// segmentDistance finds the closest point of segment ab to pt in a local equirectangular frame
// centred on pt and measures the haversine distance to it. The frame error stays well under a
// meter inside the resolver's search radius.
func segmentDistance(a, b, pt orb.Point) float64 {
	kx := math.Cos(pt[1] * math.Pi / 180)
	ax, ay := (a[0]-pt[0])*kx, a[1]-pt[1]
	bx, by := (b[0]-pt[0])*kx, b[1]-pt[1]
	dx, dy := bx-ax, by-ay
	t := 0.0
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t = -(ax*dx + ay*dy) / l2
		t = math.Max(0, math.Min(1, t))
	}
	closest := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
	return geo.DistanceHaversine(pt, closest)
}

// padBound grows b by radiusM meters on every side, measured at pt's latitude.
func padBound(b orb.Bound, pt orb.Point, radiusM float64) orb.Bound {
	dLat := radiusM / metersPerDegree
	cos := math.Max(math.Cos(pt[1]*math.Pi/180), 0.01)
	dLon := dLat / cos
	return orb.Bound{
		Min: orb.Point{b.Min[0] - dLon, b.Min[1] - dLat},
		Max: orb.Point{b.Max[0] + dLon, b.Max[1] + dLat},
	}
}
