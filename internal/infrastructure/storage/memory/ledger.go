// Package memory provides in-process storage backends. They are the
// development and test counterpart of the postgres backends: every exported
// operation is individually atomic under one store-wide mutex, which
// satisfies the per-unit check-then-act requirement by serializing all
// ledger writes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/ledger"
)

// LedgerStore implements ledger.Store over a map.
type LedgerStore struct {
	mu        sync.RWMutex
	units     map[id.ID]ledger.StockUnit
	movements []ledger.Movement
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{units: make(map[id.ID]ledger.StockUnit)}
}

func (s *LedgerStore) Get(_ context.Context, unitID id.ID) (*ledger.StockUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[unitID]
	if !ok {
		return nil, apperror.NewNotFound("stock_unit", unitID.String())
	}
	return &u, nil
}

func (s *LedgerStore) Adjust(_ context.Context, unitID id.ID, delta types.Quantity, counter ledger.Counter) (types.Quantity, error) {
	if counter == "" {
		counter = ledger.CounterAvailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.units[unitID]
	if !ok {
		return 0, apperror.NewNotFound("stock_unit", unitID.String())
	}

	current := u.CounterValue(counter)
	next := current + delta
	if next.IsNegative() {
		return 0, apperror.NewInsufficientStock(unitID.String(), delta.Abs().Int64(), current.Int64()).
			WithDetail("counter", string(counter))
	}

	u.AddToCounter(counter, delta)
	u.Version++
	u.UpdatedAt = time.Now().UTC()
	s.units[unitID] = u
	return next, nil
}

func (s *LedgerStore) ApplyMovements(_ context.Context, movements []ledger.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// stage changes on copies so a shortage anywhere rejects the whole set
	staged := make(map[id.ID]ledger.StockUnit)
	unit := func(unitID id.ID) (ledger.StockUnit, *apperror.AppError) {
		if u, ok := staged[unitID]; ok {
			return u, nil
		}
		u, ok := s.units[unitID]
		if !ok {
			return ledger.StockUnit{}, apperror.NewNotFound("stock_unit", unitID.String())
		}
		return u, nil
	}

	for i := range movements {
		m := &movements[i]
		u, appErr := unit(m.UnitID)
		if appErr != nil {
			return appErr
		}
		signed := m.SignedQuantity()
		for _, c := range m.Counters(&u) {
			next := u.CounterValue(c) + signed
			if next.IsNegative() {
				return apperror.NewInsufficientStock(m.UnitID.String(), m.Quantity.Int64(), u.CounterValue(c).Int64()).
					WithDetail("counter", string(c))
			}
			u.AddToCounter(c, signed)
		}
		staged[m.UnitID] = u
	}

	now := time.Now().UTC()
	for unitID, u := range staged {
		u.Version++
		u.UpdatedAt = now
		s.units[unitID] = u
	}
	s.movements = append(s.movements, movements...)
	return nil
}

func (s *LedgerStore) MovementsByRecorder(_ context.Context, recorderID id.ID) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Movement, 0)
	for _, m := range s.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *LedgerStore) ListMovements(_ context.Context, filter ledger.MovementFilter) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Movement, 0)
	for i := range s.movements {
		if filter.Matches(&s.movements[i]) {
			out = append(out, s.movements[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []ledger.Movement{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *LedgerStore) List(_ context.Context) ([]ledger.StockUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.StockUnit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (s *LedgerStore) Put(_ context.Context, unit ledger.StockUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if unit.UpdatedAt.IsZero() {
		unit.UpdatedAt = time.Now().UTC()
	}
	s.units[unit.ID] = unit
	return nil
}
