package hierarchy

import (
	"context"
	"fmt"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
)

// Assigner picks a child code for records that lack one. It is safe for concurrent use;
// its only state is the candidate cache.
type Assigner struct {
	cache *CandidateCache
}

func NewAssigner(store Store) *Assigner {
	return &Assigner{cache: NewCandidateCache(store)}
}

// NewAssignerWithCache shares an existing cache, e.g. across the files of one seeding run.
func NewAssignerWithCache(cache *CandidateCache) *Assigner {
	return &Assigner{cache: cache}
}

// Assign backfills a missing code: the child of parent at level selected by hashing entityKey plus
// the level tag.
// Background: seed records often lack regency, district or village codes, and a reseed must give
// every record the same codes again.
// Constraints:
// 1) the pick is HashKey(entityKey+tag) mod len(children) over children sorted ascending;
// 2) "" is returned when parent is empty or has no children, without error;
// 3) errors are reserved for store failures and unknown levels.
func (a *Assigner) Assign(ctx context.Context, entityKey, parent string, level Level) (string, error) {
	if !level.Valid() {
		return "", fmt.Errorf("assign: %w: %d", ErrUnknownLevel, int(level))
	}
	if parent == "" {
		metrics.HierarchyAssignTotal.WithLabelValues(level.String(), "unassigned").Inc()
		return "", nil
	}
	cands, err := a.cache.Children(ctx, parent, level)
	if err != nil {
		return "", fmt.Errorf("assign %s under %s: %w", level, parent, err)
	}
	idx := Pick(entityKey+level.tag(), len(cands))
	if idx < 0 {
		metrics.HierarchyAssignTotal.WithLabelValues(level.String(), "unassigned").Inc()
		logger.L().Debug("hierarchy_no_candidates", "level", level.String(), "parent", parent)
		return "", nil
	}
	metrics.HierarchyAssignTotal.WithLabelValues(level.String(), "assigned").Inc()
	return cands[idx], nil
}
