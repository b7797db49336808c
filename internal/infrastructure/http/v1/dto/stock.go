package dto

import (
	"time"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/ledger"
)

// MovementsQuery narrows movement history listings.
type MovementsQuery struct {
	ListQuery
	UnitID     string `form:"unitId"`
	RecordType string `form:"recordType" binding:"omitempty,oneof=receipt expense"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// ToFilter converts the query to a movement filter. Dates are RFC 3339.
func (q *MovementsQuery) ToFilter() (ledger.MovementFilter, error) {
	q.Defaults()
	filter := ledger.MovementFilter{Limit: q.Limit, Offset: q.Offset}

	if q.UnitID != "" {
		unitID, err := id.Parse(q.UnitID)
		if err != nil {
			return filter, apperror.NewValidation("invalid unit id").
				WithDetail("unitId", q.UnitID)
		}
		filter.UnitID = &unitID
	}
	if q.RecordType != "" {
		rt := ledger.RecordType(q.RecordType)
		filter.RecordType = &rt
	}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return filter, apperror.NewValidation("invalid from date").
				WithDetail("from", q.From)
		}
		filter.FromDate = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return filter, apperror.NewValidation("invalid to date").
				WithDetail("to", q.To)
		}
		filter.ToDate = &to
	}
	return filter, nil
}

// PutStockUnitRequest creates or replaces a stock unit.
type PutStockUnitRequest struct {
	ID        string `json:"id,omitempty"`
	SKU       string `json:"sku" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Kind      string `json:"kind" binding:"required,oneof=inventory accessory"`
	Available int64  `json:"available"`
	Pieces    int64  `json:"pieces,omitempty"`
	Pumps     int64  `json:"pumps,omitempty"`
	Rings     int64  `json:"rings,omitempty"`
	Covers    int64  `json:"covers,omitempty"`
	Ribbons   int64  `json:"ribbons,omitempty"`
	Stickers  int64  `json:"stickers,omitempty"`
}

// ToEntity converts the request to a stock unit.
func (r *PutStockUnitRequest) ToEntity() (ledger.StockUnit, error) {
	unitID := id.New()
	if r.ID != "" {
		parsed, err := id.Parse(r.ID)
		if err != nil {
			return ledger.StockUnit{}, apperror.NewValidation("invalid unit id").
				WithDetail("id", r.ID)
		}
		unitID = parsed
	}
	return ledger.StockUnit{
		ID:        unitID,
		SKU:       r.SKU,
		Name:      r.Name,
		Kind:      ledger.UnitKind(r.Kind),
		Available: types.Quantity(r.Available),
		Pieces:    types.Quantity(r.Pieces),
		Pumps:     types.Quantity(r.Pumps),
		Rings:     types.Quantity(r.Rings),
		Covers:    types.Quantity(r.Covers),
		Ribbons:   types.Quantity(r.Ribbons),
		Stickers:  types.Quantity(r.Stickers),
	}, nil
}
