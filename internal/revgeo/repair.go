package revgeo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// paramEps is the segment-parameter tolerance below which an intersection counts as an endpoint.
const paramEps = 1e-12

// repair turns a Polygon or MultiPolygon into valid polygons. Every ring is cleaned (duplicate
// vertices dropped, closed), noded at its self-intersections and split into simple loops. The
// loops of one input polygon are then nested by containment: loops at even depth become shells
// and loops at odd depth become holes of their nearest container, which is the even-odd region
// of the input. Loops with fewer than three distinct vertices or zero area are dropped.
func repair(g orb.Geometry) orb.MultiPolygon {
	var in orb.MultiPolygon
	switch v := g.(type) {
	case orb.Polygon:
		in = orb.MultiPolygon{v}
	case orb.MultiPolygon:
		in = v
	default:
		return nil
	}
	out := make(orb.MultiPolygon, 0, len(in))
	for _, poly := range in {
		var loops []orb.Ring
		for _, r := range poly {
			loops = append(loops, splitRing(r)...)
		}
		out = append(out, assemble(loops)...)
	}
	return out
}

// cleanRing drops consecutive duplicates and returns the ring closed, or false when a vertex is
// not finite or fewer than three distinct vertices remain.
func cleanRing(r orb.Ring) (orb.Ring, bool) {
	out := make(orb.Ring, 0, len(r)+1)
	for _, pt := range r {
		if !finite(pt) {
			return nil, false
		}
		if len(out) > 0 && out[len(out)-1].Equal(pt) {
			continue
		}
		out = append(out, pt)
	}
	if len(out) > 1 && out[0].Equal(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil, false
	}
	return append(out, out[0]), true
}

// splitRing cleans r and cuts it into simple loops at every point the ring visits twice.
func splitRing(r orb.Ring) []orb.Ring {
	c, ok := cleanRing(r)
	if !ok {
		return nil
	}
	noded := node(c)

	var loops []orb.Ring
	keep := func(l orb.Ring) {
		if l, ok := cleanRing(l); ok && shoelace(l) != 0 {
			loops = append(loops, l)
		}
	}
	stack := make([]orb.Point, 0, len(noded))
	for _, p := range noded[:len(noded)-1] {
		if k := indexOf(stack, p); k >= 0 {
			loop := append(orb.Ring{}, stack[k:]...)
			keep(append(loop, p))
			stack = stack[:k+1]
			continue
		}
		stack = append(stack, p)
	}
	if len(stack) > 0 {
		keep(append(orb.Ring(stack), stack[0]))
	}
	return loops
}

func indexOf(pts []orb.Point, p orb.Point) int {
	for i := len(pts) - 1; i >= 0; i-- {
		if pts[i].Equal(p) {
			return i
		}
	}
	return -1
}

type cut struct {
	t float64
	p orb.Point
}

// node returns the closed ring r with every crossing and touching point between two of its
// segments inserted as a vertex. Both segments receive the identical point value so the loop
// walk can match them exactly.
func node(r orb.Ring) orb.Ring {
	n := len(r) - 1
	cuts := make([][]cut, n)
	for i := 0; i < n; i++ {
		a, b := r[i], r[i+1]
		sb := orb.MultiPoint{a, b}.Bound()
		for j := i + 1; j < n; j++ {
			c, d := r[j], r[j+1]
			if !sb.Intersects(orb.MultiPoint{c, d}.Bound()) {
				continue
			}
			for _, x := range intersections(a, b, c, d) {
				if x.ti > paramEps && x.ti < 1-paramEps {
					cuts[i] = append(cuts[i], cut{x.ti, x.p})
				}
				if x.tj > paramEps && x.tj < 1-paramEps {
					cuts[j] = append(cuts[j], cut{x.tj, x.p})
				}
			}
		}
	}
	out := make(orb.Ring, 0, len(r))
	for i := 0; i < n; i++ {
		out = append(out, r[i])
		cs := cuts[i]
		sort.Slice(cs, func(x, y int) bool { return cs[x].t < cs[y].t })
		for _, c := range cs {
			if !out[len(out)-1].Equal(c.p) {
				out = append(out, c.p)
			}
		}
	}
	return append(out, r[0])
}

type hit struct {
	ti, tj float64
	p      orb.Point
}

// intersections of segments ab and cd with their parameters on each. Endpoint hits reuse the
// exact endpoint so repeated vertices compare equal.
func intersections(a, b, c, d orb.Point) []hit {
	rx, ry := b[0]-a[0], b[1]-a[1]
	sx, sy := d[0]-c[0], d[1]-c[1]
	qx, qy := c[0]-a[0], c[1]-a[1]
	den := rx*sy - ry*sx
	if den != 0 {
		t := (qx*sy - qy*sx) / den
		u := (qx*ry - qy*rx) / den
		if t < -paramEps || t > 1+paramEps || u < -paramEps || u > 1+paramEps {
			return nil
		}
		p := orb.Point{a[0] + t*rx, a[1] + t*ry}
		switch {
		case u <= paramEps:
			p = c
		case u >= 1-paramEps:
			p = d
		case t <= paramEps:
			p = a
		case t >= 1-paramEps:
			p = b
		}
		return []hit{{t, u, p}}
	}
	// parallel: only collinear overlaps matter, cut each segment at the other's endpoints
	if qx*ry-qy*rx != 0 {
		return nil
	}
	var out []hit
	if t, ok := param(a, b, c); ok {
		out = append(out, hit{ti: t, tj: 0, p: c})
	}
	if t, ok := param(a, b, d); ok {
		out = append(out, hit{ti: t, tj: 1, p: d})
	}
	if u, ok := param(c, d, a); ok {
		out = append(out, hit{ti: 0, tj: u, p: a})
	}
	if u, ok := param(c, d, b); ok {
		out = append(out, hit{ti: 1, tj: u, p: b})
	}
	return out
}

// param is the position of collinear point p along ab, reported only when strictly inside.
func param(a, b, p orb.Point) (float64, bool) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0, false
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	return t, t > paramEps && t < 1-paramEps
}

// assemble nests simple loops by containment. Each even-depth loop becomes a shell; each
// odd-depth loop becomes a hole of its smallest container.
func assemble(loops []orb.Ring) []orb.Polygon {
	depth := make([]int, len(loops))
	parent := make([]int, len(loops))
	area := make([]float64, len(loops))
	for i, l := range loops {
		parent[i] = -1
		area[i] = math.Abs(shoelace(l))
	}
	for i := range loops {
		for j := range loops {
			if i == j || !within(loops[i], loops[j]) {
				continue
			}
			depth[i]++
			if parent[i] < 0 || area[j] < area[parent[i]] {
				parent[i] = j
			}
		}
	}
	shell := make(map[int]int, len(loops))
	var out []orb.Polygon
	for i, l := range loops {
		if depth[i]%2 == 0 {
			shell[i] = len(out)
			out = append(out, orb.Polygon{l})
		}
	}
	for i, l := range loops {
		if depth[i]%2 == 1 {
			if k, ok := shell[parent[i]]; ok {
				out[k] = append(out[k], l)
			}
		}
	}
	return out
}

// within reports whether loop a lies inside loop b, judged at the first edge midpoint of a that
// is not on b. Loops sharing every edge are not nested.
func within(a, b orb.Ring) bool {
	if !b.Bound().Contains(a.Bound().Min) || !b.Bound().Contains(a.Bound().Max) {
		return false
	}
	for i := 0; i+1 < len(a); i++ {
		m := orb.Point{(a[i][0] + a[i+1][0]) / 2, (a[i][1] + a[i+1][1]) / 2}
		if onRing(b, m) {
			continue
		}
		return planar.RingContains(b, m)
	}
	return false
}

// areaOf is the geodesic area of repaired polygons in square meters, shells minus holes.
func areaOf(mp orb.MultiPolygon) float64 {
	var sum float64
	for _, poly := range mp {
		for k, r := range poly {
			a := math.Abs(geo.Area(orb.Polygon{r}))
			if k == 0 {
				sum += a
			} else {
				sum -= a
			}
		}
	}
	return sum
}

// shoelace is the planar signed area of a closed ring in square degrees.
func shoelace(r orb.Ring) float64 {
	var a float64
	for i := 0; i+1 < len(r); i++ {
		a += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	return a / 2
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}
