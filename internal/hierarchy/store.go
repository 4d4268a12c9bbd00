package hierarchy

import "context"

// Store lists the child codes of a parent at a given level, ascending.
type Store interface {
	ListChildCodes(ctx context.Context, parent string, level Level) ([]string, error)
}
