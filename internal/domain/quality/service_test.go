package quality_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/domain/quality"
	"essenza/internal/infrastructure/storage/memory"
)

type seqNumbers struct{ n int }

func (s *seqNumbers) Next(_ context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%06d", prefix, s.n), nil
}

func newService(t *testing.T) (*quality.Service, id.ID) {
	t.Helper()
	units := memory.NewLedgerStore()
	unit := ledger.StockUnit{ID: id.New(), SKU: "EDP-50", Kind: ledger.UnitKindInventory, Available: 500}
	if err := units.Put(context.Background(), unit); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := quality.NewService(memory.NewCheckStore(), &seqNumbers{}, quality.NewPolicy(), units)
	return svc, unit.ID
}

func TestCreate_OutcomeAssignedByPolicy(t *testing.T) {
	ctx := context.Background()
	svc, unitID := newService(t)

	tests := []struct {
		name      string
		checked   int64
		defective int64
		tags      []string
		want      document.Status
	}{
		{"clean lot passes", 200, 0, nil, document.StatusPassed},
		{"at threshold needs rework", 100, 10, []string{"scratched"}, document.StatusRequiresRework},
		{"above threshold fails", 100, 20, []string{"leaking pump"}, document.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := svc.Create(ctx, quality.CheckInput{
				UnitID:     unitID,
				Checked:    types.Quantity(tt.checked),
				Defective:  types.Quantity(tt.defective),
				DefectTags: tt.tags,
				Severity:   quality.SeverityMinor,
			})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if c.Status != tt.want {
				t.Errorf("status = %s, want %s", c.Status, tt.want)
			}
			if !strings.HasPrefix(c.Number, "QC-") {
				t.Errorf("number = %s, want QC prefix", c.Number)
			}
		})
	}
}

func TestCreate_RejectsUnclassifiedDefects(t *testing.T) {
	ctx := context.Background()
	svc, unitID := newService(t)

	_, err := svc.Create(ctx, quality.CheckInput{UnitID: unitID, Checked: 50, Defective: 3})
	if !apperror.HasCode(err, apperror.CodeMissingDefectClassification) {
		t.Errorf("got %v, want MISSING_DEFECT_CLASSIFICATION", err)
	}
}

func TestCreate_RejectsZeroCheckedQuantity(t *testing.T) {
	ctx := context.Background()
	svc, unitID := newService(t)

	// an inspection must inspect something; the checked == 0 case exists
	// only in the rate computation
	_, err := svc.Create(ctx, quality.CheckInput{UnitID: unitID, Checked: 0, Defective: 0})
	if !apperror.HasCode(err, apperror.CodeInvalidQuantity) {
		t.Errorf("got %v, want INVALID_QUANTITY", err)
	}
}

func TestRework_RejectsZeroCheckedQuantity(t *testing.T) {
	ctx := context.Background()
	svc, unitID := newService(t)

	c, err := svc.Create(ctx, quality.CheckInput{
		UnitID: unitID, Checked: 100, Defective: 30, DefectTags: []string{"cracked glass"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Rework(ctx, quality.ReworkDecision{
		CheckID:         c.ID,
		CheckedQuantity: 0,
		Notes:           "recount came back empty",
	})
	if !apperror.HasCode(err, apperror.CodeInvalidQuantity) {
		t.Errorf("got %v, want INVALID_QUANTITY", err)
	}
}

func TestRework_LoopsUntilPassed(t *testing.T) {
	ctx := context.Background()
	svc, unitID := newService(t)

	c, err := svc.Create(ctx, quality.CheckInput{
		UnitID: unitID, Checked: 100, Defective: 8, DefectTags: []string{"misaligned sticker"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != document.StatusRequiresRework {
		t.Fatalf("status = %s, want REQUIRES_REWORK", c.Status)
	}

	// first rework still finds defects
	c, err = svc.Rework(ctx, quality.ReworkDecision{
		CheckID:           c.ID,
		CheckedQuantity:   100,
		DefectiveQuantity: 2,
		DefectTags:        []string{"misaligned sticker"},
		Notes:             "stickers re-applied on 6 units",
	})
	if err != nil {
		t.Fatalf("first rework: %v", err)
	}
	if c.Status != document.StatusRequiresRework {
		t.Fatalf("status = %s, want REQUIRES_REWORK", c.Status)
	}

	// second rework clears the lot
	c, err = svc.Rework(ctx, quality.ReworkDecision{
		CheckID:         c.ID,
		CheckedQuantity: 100,
		Notes:           "remaining 2 re-capped and cleared",
	})
	if err != nil {
		t.Fatalf("second rework: %v", err)
	}
	if c.Status != document.StatusPassed {
		t.Fatalf("status = %s, want PASSED", c.Status)
	}

	// passed is terminal
	_, err = svc.Rework(ctx, quality.ReworkDecision{
		CheckID:         c.ID,
		CheckedQuantity: 100,
		Notes:           "should not be possible",
	})
	if !apperror.IsIllegalTransition(err) {
		t.Errorf("got %v, want ILLEGAL_TRANSITION", err)
	}
}

func TestRework_NotesMandatory(t *testing.T) {
	ctx := context.Background()
	svc, unitID := newService(t)

	c, err := svc.Create(ctx, quality.CheckInput{
		UnitID: unitID, Checked: 100, Defective: 30, DefectTags: []string{"cracked glass"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Rework(ctx, quality.ReworkDecision{CheckID: c.ID, CheckedQuantity: 100})
	if !apperror.HasCode(err, apperror.CodeMissingField) {
		t.Errorf("got %v, want MISSING_FIELD for empty notes", err)
	}
}
