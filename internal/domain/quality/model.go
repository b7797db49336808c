// Package quality provides quality-check documents: defect accounting,
// pass/fail computations and the disposition policy that assigns an outcome.
package quality

import (
	"context"

	"github.com/shopspring/decimal"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
)

// Severity grades how serious the found defects are.
type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

// Check is a quality-check document. Its outcome status is assigned by the
// disposition policy at creation and re-evaluation, never chosen by the
// caller.
type Check struct {
	document.Document

	// SourceDocumentID optionally references the dispatch being inspected
	SourceDocumentID *id.ID `db:"source_document_id" json:"sourceDocumentId,omitempty"`

	CheckedQuantity   types.Quantity `db:"checked_quantity" json:"checkedQuantity"`
	DefectiveQuantity types.Quantity `db:"defective_quantity" json:"defectiveQuantity"`

	// DefectTags classify the found defects, mandatory when any are reported
	DefectTags []string `db:"defect_tags" json:"defectTags,omitempty"`

	Severity  Severity `db:"severity" json:"severity"`
	CheckedBy string   `db:"checked_by" json:"checkedBy,omitempty"`
}

// NewCheck creates a pending check over the given unit. The single line
// records what was inspected; quality checks never move stock.
func NewCheck(unitID id.ID, checked, defective types.Quantity) *Check {
	c := &Check{
		Document:          *document.New(document.KindQualityCheck),
		CheckedQuantity:   checked,
		DefectiveQuantity: defective,
	}
	c.AddLine(unitID, nil, checked, types.ZeroMoney(), "")
	return c
}

// PassQuantity is the derived count of units that passed inspection.
func (c *Check) PassQuantity() types.Quantity {
	return PassQuantity(c.CheckedQuantity, c.DefectiveQuantity)
}

// DefectRate is the derived defective-to-checked ratio.
func (c *Check) DefectRate() decimal.Decimal {
	return DefectRate(c.CheckedQuantity, c.DefectiveQuantity)
}

// Validate runs document validation plus the quality-specific rules: an
// inspection covers at least one unit, defective must not exceed checked,
// and reported defects require at least one classification tag. The
// checked == 0 case in the rate computation guards the pure function only;
// it is not a creatable inspection.
func (c *Check) Validate(ctx context.Context, reader ledger.Reader) *document.Result {
	res := document.ValidateDocument(ctx, &c.Document, reader)

	if !c.CheckedQuantity.IsPositive() || c.DefectiveQuantity.IsNegative() {
		res.Add(apperror.NewInvalidQuantity("checkedQuantity", c.CheckedQuantity.Int64()))
		return res
	}
	if c.DefectiveQuantity > c.CheckedQuantity {
		res.Add(apperror.NewInvalidQuantity("defectiveQuantity", c.DefectiveQuantity.Int64()).
			WithDetail("checkedQuantity", c.CheckedQuantity.Int64()))
	}
	if c.DefectiveQuantity.IsPositive() && len(c.DefectTags) == 0 {
		res.Add(apperror.NewMissingDefectClassification())
	}
	return res
}

// ReworkDecision re-evaluates a check that ended in FAILED or
// REQUIRES_REWORK. Notes are mandatory on every rework transition.
type ReworkDecision struct {
	CheckID id.ID `json:"checkId"`

	// Re-counted quantities after rework
	CheckedQuantity   types.Quantity `json:"checkedQuantity"`
	DefectiveQuantity types.Quantity `json:"defectiveQuantity"`
	DefectTags        []string       `json:"defectTags,omitempty"`

	Notes     string `json:"notes"`
	DecidedBy string `json:"decidedBy,omitempty"`
}

// Validate checks the decision's own fields. Re-counts follow the same
// quantity rules as creation: the rework still inspects at least one unit.
func (d *ReworkDecision) Validate() *apperror.AppError {
	if d.Notes == "" {
		return apperror.NewMissingField("notes")
	}
	if !d.CheckedQuantity.IsPositive() || d.DefectiveQuantity.IsNegative() {
		return apperror.NewInvalidQuantity("checkedQuantity", d.CheckedQuantity.Int64())
	}
	if d.DefectiveQuantity > d.CheckedQuantity {
		return apperror.NewInvalidQuantity("defectiveQuantity", d.DefectiveQuantity.Int64()).
			WithDetail("checkedQuantity", d.CheckedQuantity.Int64())
	}
	if d.DefectiveQuantity.IsPositive() && len(d.DefectTags) == 0 {
		return apperror.NewMissingDefectClassification()
	}
	return nil
}
