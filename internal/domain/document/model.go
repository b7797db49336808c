// Package document provides the business documents of the back office
// (purchase invoices, factory dispatches, batch operations, quality checks)
// and the kind-parameterized validation rules they share.
package document

import (
	"time"

	"essenza/internal/core/id"
	"essenza/internal/core/types"
)

// Status is a document lifecycle state. Transitions between statuses are
// enforced by the lifecycle state machine, never by direct assignment.
type Status string

const (
	// Trade family (invoices, dispatches, batch operations)
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"

	// Quality family
	StatusPending        Status = "PENDING"
	StatusPassed         Status = "PASSED"
	StatusFailed         Status = "FAILED"
	StatusRequiresRework Status = "REQUIRES_REWORK"
)

// Line references exactly one stock unit and, for composite dispatches,
// optionally a secondary accessory unit.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	UnitID      id.ID  `db:"unit_id" json:"unitId"`
	AccessoryID *id.ID `db:"accessory_id" json:"accessoryId,omitempty"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Notes     string         `db:"notes" json:"notes,omitempty"`
}

// Amount returns quantity × unit price at full precision. Currency rounding
// is applied once at the document total, not here.
func (l Line) Amount() types.Money {
	return l.UnitPrice.Mul(l.Quantity.Decimal())
}

// Document is a business transaction moving through a status lifecycle.
// Documents are never deleted: they end in a terminal state or are offset by
// a compensating reversal document.
type Document struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`
	Kind   Kind   `db:"kind" json:"kind"`
	Status Status `db:"status" json:"status"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Header fields; which ones are required depends on the kind
	SupplierName   string `db:"supplier_name" json:"supplierName,omitempty"`
	Recipient      string `db:"recipient" json:"recipient,omitempty"`
	ReasonCode     string `db:"reason_code" json:"reasonCode,omitempty"`
	TargetLocation string `db:"target_location" json:"targetLocation,omitempty"`
	Notes          string `db:"notes" json:"notes,omitempty"`

	// ReversalOf references the completed document this one compensates
	ReversalOf *id.ID `db:"reversal_of" json:"reversalOf,omitempty"`

	// Total is derived from lines, rounded to currency scale
	Total types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines"`

	// Version for optimistic locking (incremented on each update)
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// New creates a document of the given kind in its family's initial status.
func New(kind Kind) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        id.New(),
		Kind:      kind,
		Status:    kind.Spec().Family.InitialStatus(),
		Date:      now,
		Lines:     make([]Line, 0),
		Total:     types.ZeroMoney(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddLine appends a line and recalculates the total.
func (d *Document) AddLine(unitID id.ID, accessoryID *id.ID, qty types.Quantity, unitPrice types.Money, notes string) {
	d.Lines = append(d.Lines, Line{
		LineID:      id.New(),
		LineNo:      len(d.Lines) + 1,
		UnitID:      unitID,
		AccessoryID: accessoryID,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		Notes:       notes,
	})
	d.RecalculateTotal()
}

// RecalculateTotal recomputes the derived total from lines.
func (d *Document) RecalculateTotal() {
	d.Total = Total(d.Lines)
}

// Touch updates the audit timestamp and bumps the version.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
	d.Version++
}

// IsTerminal reports whether the document can never change state again.
func (d *Document) IsTerminal() bool {
	switch d.Status {
	case StatusRejected, StatusCompleted, StatusPassed:
		return true
	}
	return false
}
