package document

import (
	"context"

	"essenza/internal/core/id"
)

// Store is the document persistence contract implemented by storage
// backends. Save enforces optimistic locking: updating a stale version
// fails with CONCURRENT_MODIFICATION.
type Store interface {
	// Get returns the document with its lines or a NOT_FOUND AppError.
	Get(ctx context.Context, docID id.ID) (*Document, error)

	// Save inserts a new document or updates an existing one.
	Save(ctx context.Context, doc *Document) error

	// List returns documents matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Document, error)
}

// Filter narrows document listings.
type Filter struct {
	Kind   *Kind
	Status *Status
	Limit  int
	Offset int
}

// Numerator hands out sequential document numbers per prefix.
type Numerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}
