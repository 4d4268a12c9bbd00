package spatial

import "context"

// PolygonStore is the read-only query surface the resolver needs from a spatial-capable store.
// Implementations repair geometry before any topological test and drop polygons whose repair
// leaves nothing usable.
type PolygonStore interface {
	// FindContaining returns polygons whose interior strictly contains p, smallest area first.
	FindContaining(ctx context.Context, p Point) ([]Candidate, error)
	// FindCovering returns polygons that contain p or have it on their boundary, smallest area first.
	FindCovering(ctx context.Context, p Point) ([]Candidate, error)
	// FindWithin returns at most limit polygons within radiusM meters of p, nearest first.
	FindWithin(ctx context.Context, p Point, radiusM float64, limit int) ([]Candidate, error)
}
