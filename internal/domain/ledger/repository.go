package ledger

import (
	"context"
	"time"

	"essenza/internal/core/id"
	"essenza/internal/core/types"
)

// Reader is the read-only ledger view handed to validators. The returned
// snapshot is advisory: it reflects the ledger at read time, and the
// authoritative check happens again inside the committing store operation.
type Reader interface {
	// Get returns the unit snapshot or a NOT_FOUND AppError.
	Get(ctx context.Context, unitID id.ID) (*StockUnit, error)
}

// Writer adjusts a single counter with an atomic availability guard.
// Used only by state-machine transitions and batch commits.
type Writer interface {
	// Adjust applies delta to the named counter (CounterAvailable when empty)
	// and returns the new value. A negative delta that would underflow fails
	// with INSUFFICIENT_STOCK and leaves the counter unchanged.
	Adjust(ctx context.Context, unitID id.ID, delta types.Quantity, counter Counter) (types.Quantity, error)
}

// Store is the full ledger contract implemented by storage backends.
// Each implementation must make check-then-act atomic per unit: the memory
// store holds a per-unit mutex, the postgres store locks rows FOR UPDATE
// inside the enclosing transaction.
type Store interface {
	Reader
	Writer

	// ApplyMovements atomically validates and applies a movement set.
	// Every expense is checked against its counters before any write; on any
	// shortage the whole set is rejected with INSUFFICIENT_STOCK naming the
	// deficient counter.
	ApplyMovements(ctx context.Context, movements []Movement) error

	// MovementsByRecorder returns the movements a document recorded.
	MovementsByRecorder(ctx context.Context, recorderID id.ID) ([]Movement, error)

	// ListMovements returns movement history narrowed by the filter,
	// newest first.
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)

	// List returns all units (seeding, stock screens).
	List(ctx context.Context) ([]StockUnit, error)

	// Put inserts or replaces a unit (seeding, admin corrections).
	Put(ctx context.Context, unit StockUnit) error
}

// MovementFilter narrows movement history queries. Nil fields match
// everything; Limit and Offset are paging, not conditions.
type MovementFilter struct {
	UnitID     *id.ID
	RecordType *RecordType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Matches reports whether a movement passes the filter's conditions.
// Date bounds are inclusive and compare against the business period.
func (f MovementFilter) Matches(m *Movement) bool {
	if f.UnitID != nil && m.UnitID != *f.UnitID {
		return false
	}
	if f.RecordType != nil && m.RecordType != *f.RecordType {
		return false
	}
	if f.FromDate != nil && m.Period.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && m.Period.After(*f.ToDate) {
		return false
	}
	return true
}
