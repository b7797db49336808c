package ledger

import (
	"context"
	"fmt"

	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/pkg/logger"
)

// Service provides business operations over the ledger store.
// Transactions are managed by the caller (the lifecycle engine).
type Service struct {
	store Store
}

// NewService creates a new ledger service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns an advisory snapshot of a unit.
func (s *Service) Get(ctx context.Context, unitID id.ID) (*StockUnit, error) {
	return s.store.Get(ctx, unitID)
}

// Availability returns the available quantity for a unit.
func (s *Service) Availability(ctx context.Context, unitID id.ID) (types.Quantity, error) {
	unit, err := s.store.Get(ctx, unitID)
	if err != nil {
		return 0, err
	}
	return unit.Available, nil
}

// Apply records a movement set from a document transition.
// The store guarantees check-and-apply atomicity per unit.
func (s *Service) Apply(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return fmt.Errorf("movement %d: quantity must be positive", i)
		}
		if id.IsNil(m.RecorderID) {
			return fmt.Errorf("movement %d: recorder_id is required", i)
		}
	}

	if err := s.store.ApplyMovements(ctx, movements); err != nil {
		return err
	}

	logger.Info(ctx, "applied stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// Adjust applies a single-counter delta with the availability guard.
// Used by the batch orchestrator for per-line commits.
func (s *Service) Adjust(ctx context.Context, unitID id.ID, delta types.Quantity, counter Counter) (types.Quantity, error) {
	return s.store.Adjust(ctx, unitID, delta, counter)
}

// MovementsByRecorder returns the movements a document recorded.
func (s *Service) MovementsByRecorder(ctx context.Context, recorderID id.ID) ([]Movement, error) {
	return s.store.MovementsByRecorder(ctx, recorderID)
}

// ListMovements returns filtered movement history, newest first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	return s.store.ListMovements(ctx, filter)
}

// List returns all units.
func (s *Service) List(ctx context.Context) ([]StockUnit, error) {
	return s.store.List(ctx)
}

// Put inserts or replaces a unit (seeding, admin corrections).
func (s *Service) Put(ctx context.Context, unit StockUnit) error {
	return s.store.Put(ctx, unit)
}

// Reader returns the advisory read view for validators.
func (s *Service) Reader() Reader {
	return s.store
}
