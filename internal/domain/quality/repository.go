package quality

import (
	"context"

	"essenza/internal/core/id"
)

// Store is the quality-check persistence contract. Save enforces
// optimistic locking like the document store.
type Store interface {
	Get(ctx context.Context, checkID id.ID) (*Check, error)
	Save(ctx context.Context, check *Check) error
	List(ctx context.Context) ([]Check, error)
}
