package batch_test

import (
	"context"
	"fmt"
	"testing"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/batch"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/infrastructure/storage/memory"
)

type seqNumbers struct{ n int }

func (s *seqNumbers) Next(_ context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%06d", prefix, s.n), nil
}

func newOrchestrator() (*batch.Orchestrator, *memory.LedgerStore) {
	units := memory.NewLedgerStore()
	return batch.NewOrchestrator(ledger.NewService(units), memory.NewDocumentStore(), &seqNumbers{}), units
}

func seed(t *testing.T, units *memory.LedgerStore, available int64) id.ID {
	t.Helper()
	u := ledger.StockUnit{
		ID:        id.New(),
		SKU:       fmt.Sprintf("SKU-%d", available),
		Kind:      ledger.UnitKindInventory,
		Available: types.Quantity(available),
	}
	if err := units.Put(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u.ID
}

func TestExecute_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	o, units := newOrchestrator()

	u1 := seed(t, units, 10)
	u2 := seed(t, units, 1) // line 2 will overdraw this one
	u3 := seed(t, units, 7)

	res, err := o.Execute(ctx, document.KindDeduction, batch.Input{
		ReasonCode: "DAMAGED",
		Lines: []document.LineInput{
			{UnitID: u1, Quantity: 4},
			{UnitID: u2, Quantity: 5},
			{UnitID: u3, Quantity: 7},
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if res.OverallSuccess {
		t.Error("overall_success = true with a failed line")
	}
	if len(res.Lines) != 3 {
		t.Fatalf("got %d line results, want 3", len(res.Lines))
	}

	if !res.Lines[0].Success || res.Lines[0].NewQuantity != 6 {
		t.Errorf("line 1 = %+v, want success with quantity 6", res.Lines[0])
	}
	if res.Lines[1].Success {
		t.Error("line 2 should have failed")
	}
	if res.Lines[1].Error == nil || res.Lines[1].Error.Code != apperror.CodeInsufficientStock {
		t.Errorf("line 2 error = %v, want INSUFFICIENT_STOCK", res.Lines[1].Error)
	}
	if !res.Lines[2].Success || res.Lines[2].NewQuantity != 0 {
		t.Errorf("line 3 = %+v, want success with quantity 0", res.Lines[2])
	}

	// the failed line left its unit untouched
	u, err := units.Get(ctx, u2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Available != 1 {
		t.Errorf("unit 2 available = %d, want 1", u.Available)
	}
}

func TestExecute_AdditionIncreasesStock(t *testing.T) {
	ctx := context.Background()
	o, units := newOrchestrator()
	u1 := seed(t, units, 2)

	res, err := o.Execute(ctx, document.KindAddition, batch.Input{
		ReasonCode: "FOUND_IN_COUNT",
		Lines:      []document.LineInput{{UnitID: u1, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.OverallSuccess || res.Lines[0].NewQuantity != 5 {
		t.Errorf("result = %+v, want success with quantity 5", res.Lines[0])
	}
	if res.Number == "" {
		t.Error("batch record was not numbered")
	}
}

func TestExecute_TransferValidatesButMovesNothing(t *testing.T) {
	ctx := context.Background()
	o, units := newOrchestrator()
	u1 := seed(t, units, 5)

	res, err := o.Execute(ctx, document.KindTransfer, batch.Input{
		ReasonCode:     "REBALANCE",
		TargetLocation: "warehouse-b",
		Lines:          []document.LineInput{{UnitID: u1, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.OverallSuccess {
		t.Fatalf("transfer failed: %+v", res.Lines)
	}
	if res.Lines[0].NewQuantity != 5 {
		t.Errorf("quantity = %d, want 5 unchanged", res.Lines[0].NewQuantity)
	}

	over, err := o.Execute(ctx, document.KindTransfer, batch.Input{
		ReasonCode:     "REBALANCE",
		TargetLocation: "warehouse-b",
		Lines:          []document.LineInput{{UnitID: u1, Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if over.OverallSuccess || over.Lines[0].Error.Code != apperror.CodeInsufficientStock {
		t.Errorf("over-transfer = %+v, want INSUFFICIENT_STOCK", over.Lines[0])
	}
}

func TestExecute_HeaderFailuresAbort(t *testing.T) {
	ctx := context.Background()
	o, units := newOrchestrator()
	u1 := seed(t, units, 5)

	_, err := o.Execute(ctx, document.KindDeduction, batch.Input{
		Lines: []document.LineInput{{UnitID: u1, Quantity: 1}},
	})
	if !apperror.HasCode(err, apperror.CodeMissingField) {
		t.Errorf("got %v, want MISSING_FIELD", err)
	}

	_, err = o.Execute(ctx, document.KindDeduction, batch.Input{ReasonCode: "DAMAGED"})
	if !apperror.HasCode(err, apperror.CodeEmptyDocument) {
		t.Errorf("got %v, want EMPTY_DOCUMENT", err)
	}

	_, err = o.Execute(ctx, document.KindPurchase, batch.Input{})
	if !apperror.HasCode(err, apperror.CodeValidation) {
		t.Errorf("got %v, want VALIDATION_ERROR for non-batch kind", err)
	}
}
