// Package ledger provides the stock ledger: the authoritative store of
// per-unit quantities and the movements that change them.
package ledger

import (
	"time"

	"essenza/internal/core/id"
	"essenza/internal/core/types"
)

// UnitKind distinguishes plain inventory items from composite accessories.
type UnitKind string

const (
	// UnitKindInventory is a plain item with a single available counter
	// (glass bottles, essence drums, cartons).
	UnitKindInventory UnitKind = "inventory"
	// UnitKindAccessory is a composite item whose sets draw simultaneously
	// from six correlated sub-counters.
	UnitKindAccessory UnitKind = "accessory"
)

// Counter names a quantity counter on a stock unit.
type Counter string

const (
	CounterAvailable Counter = "available"
	CounterPieces    Counter = "pieces"
	CounterPumps     Counter = "pumps"
	CounterRings     Counter = "rings"
	CounterCovers    Counter = "covers"
	CounterRibbons   Counter = "ribbons"
	CounterStickers  Counter = "stickers"
)

// AccessoryCounters lists the correlated sub-counters in reporting order.
// A composite consumption must be satisfiable on every one of them; the
// first deficient counter in this order is the one reported.
var AccessoryCounters = []Counter{
	CounterPieces,
	CounterPumps,
	CounterRings,
	CounterCovers,
	CounterRibbons,
	CounterStickers,
}

// StockUnit is a trackable item with one or more quantity counters.
// No consuming operation may drive any counter below zero.
type StockUnit struct {
	ID   id.ID    `db:"id" json:"id"`
	SKU  string   `db:"sku" json:"sku"`
	Name string   `db:"name" json:"name"`
	Kind UnitKind `db:"kind" json:"kind"`

	Available types.Quantity `db:"available" json:"available"`

	// Accessory sub-counters (zero for inventory units)
	Pieces   types.Quantity `db:"pieces" json:"pieces,omitempty"`
	Pumps    types.Quantity `db:"pumps" json:"pumps,omitempty"`
	Rings    types.Quantity `db:"rings" json:"rings,omitempty"`
	Covers   types.Quantity `db:"covers" json:"covers,omitempty"`
	Ribbons  types.Quantity `db:"ribbons" json:"ribbons,omitempty"`
	Stickers types.Quantity `db:"stickers" json:"stickers,omitempty"`

	// Version for optimistic locking (incremented on each write)
	Version   int       `db:"version" json:"version"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsAccessory reports whether the unit carries composite sub-counters.
func (u *StockUnit) IsAccessory() bool {
	return u.Kind == UnitKindAccessory
}

// CounterValue returns the named counter. Unknown counters read as zero.
func (u *StockUnit) CounterValue(c Counter) types.Quantity {
	switch c {
	case CounterAvailable:
		return u.Available
	case CounterPieces:
		return u.Pieces
	case CounterPumps:
		return u.Pumps
	case CounterRings:
		return u.Rings
	case CounterCovers:
		return u.Covers
	case CounterRibbons:
		return u.Ribbons
	case CounterStickers:
		return u.Stickers
	}
	return 0
}

// AddToCounter mutates the named counter by delta.
func (u *StockUnit) AddToCounter(c Counter, delta types.Quantity) {
	switch c {
	case CounterAvailable:
		u.Available += delta
	case CounterPieces:
		u.Pieces += delta
	case CounterPumps:
		u.Pumps += delta
	case CounterRings:
		u.Rings += delta
	case CounterCovers:
		u.Covers += delta
	case CounterRibbons:
		u.Ribbons += delta
	case CounterStickers:
		u.Stickers += delta
	}
}

// RecordType defines movement direction.
type RecordType string

const (
	// RecordTypeReceipt increases balances
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balances
	RecordTypeExpense RecordType = "expense"
)

// Movement is an immutable ledger record produced by a document transition.
// Movements are never updated; a reversal document records opposite movements.
type Movement struct {
	// LineID is the unique identifier for this movement line
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document kind (e.g., "PURCHASE", "GLASS_ONLY")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	RecordType RecordType `db:"record_type" json:"recordType"`

	UnitID   id.ID          `db:"unit_id" json:"unitId"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Composite marks an accessory-set movement: the quantity applies to the
	// available counter and to every correlated sub-counter simultaneously.
	Composite bool `db:"composite" json:"composite"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement with generated LineID.
func NewMovement(recorderID id.ID, recorderType string, period time.Time, recordType RecordType, unitID id.ID, qty types.Quantity, composite bool) Movement {
	return Movement{
		LineID:       id.New(),
		RecorderID:   recorderID,
		RecorderType: recorderType,
		Period:       period,
		RecordType:   recordType,
		UnitID:       unitID,
		Quantity:     qty,
		Composite:    composite,
		CreatedAt:    time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *Movement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// Counters returns the counters a movement touches on the given unit.
func (m *Movement) Counters(u *StockUnit) []Counter {
	if m.Composite && u.IsAccessory() {
		cs := make([]Counter, 0, len(AccessoryCounters)+1)
		cs = append(cs, CounterAvailable)
		cs = append(cs, AccessoryCounters...)
		return cs
	}
	return []Counter{CounterAvailable}
}
