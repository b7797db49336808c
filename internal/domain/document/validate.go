package document

import (
	"context"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/ledger"
)

// Result aggregates validation failures across a document. Line validation
// is fail-fast (first broken rule per line), but the document collects the
// failures of every line so the caller sees all broken lines at once.
type Result struct {
	Errors []*apperror.AppError
}

// OK reports whether validation found no failures.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Add appends a failure.
func (r *Result) Add(err *apperror.AppError) {
	r.Errors = append(r.Errors, err)
}

// AddForLine appends a failure tagged with the line number.
func (r *Result) AddForLine(lineNo int, err *apperror.AppError) {
	r.Errors = append(r.Errors, err.WithDetail("lineNo", lineNo))
}

// Err returns nil when validation passed, the single failure when there is
// exactly one, or an aggregate validation error. The aggregate keeps every
// failure as a structured entry (code, message, details with the lineNo
// correlation) so clients can localize and highlight the broken fields; the
// aggregate message itself is illustrative only.
func (r *Result) Err() error {
	switch len(r.Errors) {
	case 0:
		return nil
	case 1:
		return r.Errors[0]
	}
	return apperror.NewValidation("document validation failed").
		WithDetail("errors", r.Errors)
}

// ValidateLine checks a single line against the kind's rules in fixed order
// and returns the first failure:
//
//  1. references resolve (unit set, accessory set when the kind requires one)
//  2. quantity is positive; unit price is non-negative on priced kinds
//  3. consuming kinds and transfers: quantity does not exceed availability
//  4. consuming an accessory set: every correlated sub-counter also covers
//     the quantity, the first deficient one is reported
//
// The ledger snapshot is advisory; the committing store repeats the
// availability checks atomically.
func ValidateLine(ctx context.Context, kind Kind, line Line, reader ledger.Reader) *apperror.AppError {
	spec := kind.Spec()

	if id.IsNil(line.UnitID) {
		return apperror.NewMissingField("unitId")
	}
	if spec.RequiresAccessory && (line.AccessoryID == nil || id.IsNil(*line.AccessoryID)) {
		return apperror.NewMissingField("accessoryId")
	}

	if !line.Quantity.IsPositive() {
		return apperror.NewInvalidQuantity("quantity", line.Quantity.Int64())
	}
	if spec.CarriesPrice && line.UnitPrice.IsNegative() {
		return apperror.NewInvalidQuantity("unitPrice", line.UnitPrice.String())
	}

	if !spec.ChecksAvailability {
		return nil
	}

	unit, err := reader.Get(ctx, line.UnitID)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			return appErr
		}
		return apperror.NewInternal(err)
	}
	if appErr := checkConsumable(unit, line.Quantity); appErr != nil {
		return appErr
	}

	if line.AccessoryID != nil && !id.IsNil(*line.AccessoryID) {
		acc, err := reader.Get(ctx, *line.AccessoryID)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr
			}
			return apperror.NewInternal(err)
		}
		if !acc.IsAccessory() {
			return apperror.NewValidation("referenced accessory is not an accessory unit").
				WithDetail("accessoryId", acc.ID.String())
		}
		if appErr := checkConsumable(acc, line.Quantity); appErr != nil {
			return appErr
		}
	}

	return nil
}

// checkConsumable verifies qty can be drawn from the unit. Accessory units
// are consumed as sets: availability first, then every sub-counter in
// reporting order.
func checkConsumable(unit *ledger.StockUnit, qty types.Quantity) *apperror.AppError {
	if qty > unit.Available {
		return apperror.NewInsufficientStock(unit.ID.String(), qty.Int64(), unit.Available.Int64()).
			WithDetail("counter", string(ledger.CounterAvailable))
	}
	if !unit.IsAccessory() {
		return nil
	}
	for _, c := range ledger.AccessoryCounters {
		if have := unit.CounterValue(c); qty > have {
			return apperror.NewInsufficientStock(unit.ID.String(), qty.Int64(), have.Int64()).
				WithDetail("counter", string(c))
		}
	}
	return nil
}

// ValidateDocument checks the header and every line. Header failures and
// per-line failures are aggregated into one result.
func ValidateDocument(ctx context.Context, doc *Document, reader ledger.Reader) *Result {
	res := &Result{}

	if !doc.Kind.Valid() {
		res.Add(apperror.NewValidation("unknown document kind").
			WithDetail("kind", string(doc.Kind)))
		return res
	}

	spec := doc.Kind.Spec()
	for _, field := range spec.RequiredHeader {
		if doc.HeaderValue(field) == "" {
			res.Add(apperror.NewMissingField(field))
		}
	}

	if len(doc.Lines) == 0 {
		res.Add(apperror.NewEmptyDocument())
		return res
	}

	for _, line := range doc.Lines {
		if appErr := ValidateLine(ctx, doc.Kind, line, reader); appErr != nil {
			res.AddForLine(line.LineNo, appErr)
		}
	}
	return res
}

// HeaderValue returns the named header field, empty for unknown names.
func (doc *Document) HeaderValue(field string) string {
	switch field {
	case "supplierName":
		return doc.SupplierName
	case "recipient":
		return doc.Recipient
	case "reasonCode":
		return doc.ReasonCode
	case "targetLocation":
		return doc.TargetLocation
	}
	return ""
}
