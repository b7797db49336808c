package document

import (
	"context"
	"testing"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/ledger"
)

type fakeReader struct {
	units map[id.ID]ledger.StockUnit
}

func (f fakeReader) Get(_ context.Context, unitID id.ID) (*ledger.StockUnit, error) {
	u, ok := f.units[unitID]
	if !ok {
		return nil, apperror.NewNotFound("stock_unit", unitID.String())
	}
	return &u, nil
}

func inventoryUnit(available int64) ledger.StockUnit {
	return ledger.StockUnit{
		ID:        id.New(),
		SKU:       "GLASS-50",
		Name:      "Flacon 50ml",
		Kind:      ledger.UnitKindInventory,
		Available: types.Quantity(available),
	}
}

func accessoryUnit(available, pieces, pumps, rings, covers, ribbons, stickers int64) ledger.StockUnit {
	return ledger.StockUnit{
		ID:        id.New(),
		SKU:       "ACC-GOLD",
		Name:      "Gold trim set",
		Kind:      ledger.UnitKindAccessory,
		Available: types.Quantity(available),
		Pieces:    types.Quantity(pieces),
		Pumps:     types.Quantity(pumps),
		Rings:     types.Quantity(rings),
		Covers:    types.Quantity(covers),
		Ribbons:   types.Quantity(ribbons),
		Stickers:  types.Quantity(stickers),
	}
}

func readerWith(units ...ledger.StockUnit) fakeReader {
	m := make(map[id.ID]ledger.StockUnit, len(units))
	for _, u := range units {
		m[u.ID] = u
	}
	return fakeReader{units: m}
}

func TestValidateLine_RuleOrder(t *testing.T) {
	ctx := context.Background()
	unit := inventoryUnit(5)
	reader := readerWith(unit)

	tests := []struct {
		name     string
		kind     Kind
		line     Line
		wantCode string
	}{
		{
			name:     "missing unit reference wins over bad quantity",
			kind:     KindGlassOnly,
			line:     Line{Quantity: types.Quantity(-1)},
			wantCode: apperror.CodeMissingField,
		},
		{
			name:     "zero quantity",
			kind:     KindGlassOnly,
			line:     Line{UnitID: unit.ID, Quantity: 0},
			wantCode: apperror.CodeInvalidQuantity,
		},
		{
			name:     "negative quantity",
			kind:     KindGlassOnly,
			line:     Line{UnitID: unit.ID, Quantity: types.Quantity(-3)},
			wantCode: apperror.CodeInvalidQuantity,
		},
		{
			name: "negative price on priced kind",
			kind: KindPurchase,
			line: Line{
				UnitID:    unit.ID,
				Quantity:  1,
				UnitPrice: types.MustMoney("-0.01"),
			},
			wantCode: apperror.CodeInvalidQuantity,
		},
		{
			name:     "quantity over availability",
			kind:     KindGlassOnly,
			line:     Line{UnitID: unit.ID, Quantity: 6},
			wantCode: apperror.CodeInsufficientStock,
		},
		{
			name:     "unknown unit",
			kind:     KindGlassOnly,
			line:     Line{UnitID: id.New(), Quantity: 1},
			wantCode: apperror.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ValidateLine(ctx, tt.kind, tt.line, reader)
			if appErr == nil {
				t.Fatal("expected validation failure, got nil")
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestValidateLine_ReceiptSkipsAvailability(t *testing.T) {
	ctx := context.Background()
	// receipts do not consult the ledger, an empty reader must not matter
	line := Line{UnitID: id.New(), Quantity: 100, UnitPrice: types.MustMoney("2.50")}
	if appErr := ValidateLine(ctx, KindPurchase, line, readerWith()); appErr != nil {
		t.Fatalf("unexpected failure: %v", appErr)
	}
}

func TestValidateLine_CompositeFirstDeficientCounter(t *testing.T) {
	ctx := context.Background()
	// pumps is the bottleneck: 3 on hand, everything else covers 10
	acc := accessoryUnit(10, 10, 3, 10, 10, 10, 10)
	reader := readerWith(acc)

	line := Line{UnitID: acc.ID, Quantity: 4}
	appErr := ValidateLine(ctx, KindDeduction, line, reader)
	if appErr == nil {
		t.Fatal("expected insufficient stock")
	}
	if appErr.Code != apperror.CodeInsufficientStock {
		t.Fatalf("code = %s, want %s", appErr.Code, apperror.CodeInsufficientStock)
	}
	if got := appErr.Details["counter"]; got != string(ledger.CounterPumps) {
		t.Errorf("deficient counter = %v, want %s", got, ledger.CounterPumps)
	}
}

func TestValidateLine_CompositeExactBoundaryPasses(t *testing.T) {
	ctx := context.Background()
	acc := accessoryUnit(4, 4, 4, 4, 4, 4, 4)
	reader := readerWith(acc)

	line := Line{UnitID: acc.ID, Quantity: 4}
	if appErr := ValidateLine(ctx, KindDeduction, line, reader); appErr != nil {
		t.Fatalf("unexpected failure: %v", appErr)
	}
}

func TestValidateLine_MissingAccessoryReference(t *testing.T) {
	ctx := context.Background()
	unit := inventoryUnit(10)
	reader := readerWith(unit)

	line := Line{UnitID: unit.ID, Quantity: 2, UnitPrice: types.MustMoney("12.00")}
	appErr := ValidateLine(ctx, KindGlassWithAccessories, line, reader)
	if appErr == nil || appErr.Code != apperror.CodeMissingField {
		t.Fatalf("got %v, want MISSING_FIELD", appErr)
	}
}

func TestValidateLine_SecondaryAccessoryChecked(t *testing.T) {
	ctx := context.Background()
	glass := inventoryUnit(20)
	acc := accessoryUnit(20, 20, 20, 20, 1, 20, 20)
	reader := readerWith(glass, acc)

	line := Line{
		UnitID:      glass.ID,
		AccessoryID: &acc.ID,
		Quantity:    5,
		UnitPrice:   types.MustMoney("30.00"),
	}
	appErr := ValidateLine(ctx, KindGlassWithAccessories, line, reader)
	if appErr == nil || appErr.Code != apperror.CodeInsufficientStock {
		t.Fatalf("got %v, want INSUFFICIENT_STOCK", appErr)
	}
	if got := appErr.Details["counter"]; got != string(ledger.CounterCovers) {
		t.Errorf("deficient counter = %v, want %s", got, ledger.CounterCovers)
	}
}

func TestValidateDocument_HeaderRules(t *testing.T) {
	ctx := context.Background()
	unit := inventoryUnit(100)
	reader := readerWith(unit)

	t.Run("missing supplier on purchase", func(t *testing.T) {
		doc := New(KindPurchase)
		doc.AddLine(unit.ID, nil, 10, types.MustMoney("2.50"), "")
		res := ValidateDocument(ctx, doc, reader)
		if res.OK() {
			t.Fatal("expected failure")
		}
		if res.Errors[0].Code != apperror.CodeMissingField {
			t.Errorf("code = %s, want MISSING_FIELD", res.Errors[0].Code)
		}
	})

	t.Run("transfer requires target location", func(t *testing.T) {
		doc := New(KindTransfer)
		doc.ReasonCode = "REBALANCE"
		doc.AddLine(unit.ID, nil, 5, types.ZeroMoney(), "")
		res := ValidateDocument(ctx, doc, reader)
		if res.OK() {
			t.Fatal("expected failure")
		}
		var found bool
		for _, e := range res.Errors {
			if e.Code == apperror.CodeMissingField && e.Details["field"] == "targetLocation" {
				found = true
			}
		}
		if !found {
			t.Errorf("missing targetLocation not reported: %v", res.Errors)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		doc := New(KindPurchase)
		doc.SupplierName = "Verrerie du Rhône"
		res := ValidateDocument(ctx, doc, reader)
		if res.OK() || res.Errors[0].Code != apperror.CodeEmptyDocument {
			t.Fatalf("got %v, want EMPTY_DOCUMENT", res.Errors)
		}
	})
}

func TestValidateDocument_AggregatesLineFailures(t *testing.T) {
	ctx := context.Background()
	unit := inventoryUnit(5)
	reader := readerWith(unit)

	doc := New(KindGlassOnly)
	doc.Recipient = "Maison Aurelle"
	doc.AddLine(unit.ID, nil, 3, types.MustMoney("14.00"), "")  // ok
	doc.AddLine(unit.ID, nil, 0, types.MustMoney("14.00"), "")  // bad quantity
	doc.AddLine(unit.ID, nil, 99, types.MustMoney("14.00"), "") // over stock

	res := ValidateDocument(ctx, doc, reader)
	if len(res.Errors) != 2 {
		t.Fatalf("got %d failures, want 2: %v", len(res.Errors), res.Errors)
	}
	if res.Errors[0].Details["lineNo"] != 2 || res.Errors[1].Details["lineNo"] != 3 {
		t.Errorf("line numbers = %v, %v", res.Errors[0].Details["lineNo"], res.Errors[1].Details["lineNo"])
	}
	if err := res.Err(); err == nil {
		t.Error("Err() = nil for failed result")
	}
}

func TestValidateDocument_AggregateErrKeepsStructuredEntries(t *testing.T) {
	ctx := context.Background()
	unit := inventoryUnit(5)
	reader := readerWith(unit)

	doc := New(KindGlassOnly)
	doc.Recipient = "Maison Aurelle"
	doc.AddLine(unit.ID, nil, 0, types.MustMoney("14.00"), "")
	doc.AddLine(unit.ID, nil, 99, types.MustMoney("14.00"), "")

	appErr, ok := apperror.AsAppError(ValidateDocument(ctx, doc, reader).Err())
	if !ok {
		t.Fatal("Err() is not an AppError")
	}
	if appErr.Code != apperror.CodeValidation {
		t.Fatalf("code = %s, want %s", appErr.Code, apperror.CodeValidation)
	}

	entries, ok := appErr.Details["errors"].([]*apperror.AppError)
	if !ok {
		t.Fatalf("errors detail = %T, want []*apperror.AppError", appErr.Details["errors"])
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if entries[0].Code != apperror.CodeInvalidQuantity {
		t.Errorf("entry 0 code = %s, want %s", entries[0].Code, apperror.CodeInvalidQuantity)
	}
	if entries[0].Details["lineNo"] != 1 || entries[0].Details["field"] != "quantity" {
		t.Errorf("entry 0 details = %v, want lineNo=1 field=quantity", entries[0].Details)
	}

	if entries[1].Code != apperror.CodeInsufficientStock {
		t.Errorf("entry 1 code = %s, want %s", entries[1].Code, apperror.CodeInsufficientStock)
	}
	if entries[1].Details["lineNo"] != 2 {
		t.Errorf("entry 1 lineNo = %v, want 2", entries[1].Details["lineNo"])
	}
	if entries[1].Details["counter"] != string(ledger.CounterAvailable) {
		t.Errorf("entry 1 counter = %v, want %s", entries[1].Details["counter"], ledger.CounterAvailable)
	}
	if entries[1].Details["requested"] != int64(99) || entries[1].Details["available"] != int64(5) {
		t.Errorf("entry 1 quantities = %v", entries[1].Details)
	}
}

func TestValidateDocument_RepeatedValidationIsStable(t *testing.T) {
	ctx := context.Background()
	unit := inventoryUnit(5)
	reader := readerWith(unit)

	doc := New(KindGlassOnly)
	doc.Recipient = "Maison Aurelle"
	doc.AddLine(unit.ID, nil, 0, types.MustMoney("14.00"), "")
	doc.AddLine(unit.ID, nil, 99, types.MustMoney("14.00"), "")

	// validation has no side effects: a second pass over the unchanged
	// document and ledger reports the identical failures
	first := ValidateDocument(ctx, doc, reader)
	second := ValidateDocument(ctx, doc, reader)

	if len(first.Errors) != len(second.Errors) {
		t.Fatalf("failure counts differ: %d vs %d", len(first.Errors), len(second.Errors))
	}
	for i := range first.Errors {
		if first.Errors[i].Code != second.Errors[i].Code {
			t.Errorf("entry %d code differs: %s vs %s", i, first.Errors[i].Code, second.Errors[i].Code)
		}
		if first.Errors[i].Details["lineNo"] != second.Errors[i].Details["lineNo"] {
			t.Errorf("entry %d lineNo differs: %v vs %v",
				i, first.Errors[i].Details["lineNo"], second.Errors[i].Details["lineNo"])
		}
	}

	ok := New(KindGlassOnly)
	ok.Recipient = "Maison Aurelle"
	ok.AddLine(unit.ID, nil, 3, types.MustMoney("14.00"), "")
	if !ValidateDocument(ctx, ok, reader).OK() || !ValidateDocument(ctx, ok, reader).OK() {
		t.Error("valid document did not stay valid on revalidation")
	}
}

func TestValidateDocument_ValidPurchase(t *testing.T) {
	ctx := context.Background()
	doc := New(KindPurchase)
	doc.SupplierName = "Verrerie du Rhône"
	doc.AddLine(id.New(), nil, 10, types.MustMoney("2.50"), "")

	res := ValidateDocument(ctx, doc, readerWith())
	if !res.OK() {
		t.Fatalf("unexpected failures: %v", res.Errors)
	}
	if err := res.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}
