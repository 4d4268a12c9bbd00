package revgeo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// boundaryEps is the planar tolerance, in degrees, for treating a point as lying on an edge.
// About 0.1 mm on the ground.
const boundaryEps = 1e-9

type location int

const (
	outside location = iota
	onBoundary
	inside
)

// locate classifies pt against a repaired multipolygon. Interior of any part wins over
// the boundary of another part.
func locate(mp orb.MultiPolygon, pt orb.Point) location {
	loc := outside
	for _, poly := range mp {
		switch locatePolygon(poly, pt) {
		case inside:
			return inside
		case onBoundary:
			loc = onBoundary
		}
	}
	return loc
}

func locatePolygon(poly orb.Polygon, pt orb.Point) location {
	if !poly.Bound().Contains(pt) {
		return outside
	}
	for _, ring := range poly {
		if onRing(ring, pt) {
			return onBoundary
		}
	}
	if !planar.RingContains(poly[0], pt) {
		return outside
	}
	for _, hole := range poly[1:] {
		if planar.RingContains(hole, pt) {
			return outside
		}
	}
	return inside
}

func onRing(r orb.Ring, pt orb.Point) bool {
	for i := 0; i+1 < len(r); i++ {
		if planar.DistanceFromSegment(r[i], r[i+1], pt) <= boundaryEps {
			return true
		}
	}
	return false
}
