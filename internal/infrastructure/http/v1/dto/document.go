package dto

import (
	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
)

// --- Request DTOs ---

// LineRequest represents a line in create/update requests.
type LineRequest struct {
	UnitID      string      `json:"unitId" binding:"required"`
	AccessoryID string      `json:"accessoryId,omitempty"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   types.Money `json:"unitPrice"`
	Notes       string      `json:"notes,omitempty"`
}

// CreateDocumentRequest represents a request to create a document draft.
type CreateDocumentRequest struct {
	Kind           string        `json:"kind" binding:"required"`
	SupplierName   string        `json:"supplierName,omitempty"`
	Recipient      string        `json:"recipient,omitempty"`
	ReasonCode     string        `json:"reasonCode,omitempty"`
	TargetLocation string        `json:"targetLocation,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Lines          []LineRequest `json:"lines"`
}

// UpdateDocumentRequest replaces a draft's header and lines.
type UpdateDocumentRequest struct {
	SupplierName   string        `json:"supplierName,omitempty"`
	Recipient      string        `json:"recipient,omitempty"`
	ReasonCode     string        `json:"reasonCode,omitempty"`
	TargetLocation string        `json:"targetLocation,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Lines          []LineRequest `json:"lines"`
}

// TransitionRequest names the target status of a lifecycle move.
type TransitionRequest struct {
	Target string `json:"target" binding:"required"`
}

// ToLineInputs converts request lines to domain inputs.
func ToLineInputs(lines []LineRequest) ([]document.LineInput, error) {
	inputs := make([]document.LineInput, 0, len(lines))
	for i, l := range lines {
		unitID, err := id.Parse(l.UnitID)
		if err != nil {
			return nil, apperror.NewValidation("invalid unit id").
				WithDetail("lineNo", i+1).
				WithDetail("unitId", l.UnitID)
		}
		in := document.LineInput{
			UnitID:    unitID,
			Quantity:  types.Quantity(l.Quantity),
			UnitPrice: l.UnitPrice,
			Notes:     l.Notes,
		}
		if l.AccessoryID != "" {
			accessoryID, err := id.Parse(l.AccessoryID)
			if err != nil {
				return nil, apperror.NewValidation("invalid accessory id").
					WithDetail("lineNo", i+1).
					WithDetail("accessoryId", l.AccessoryID)
			}
			in.AccessoryID = &accessoryID
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// ToDraftInput converts the request to a domain draft input.
func (r *CreateDocumentRequest) ToDraftInput() (document.DraftInput, error) {
	lines, err := ToLineInputs(r.Lines)
	if err != nil {
		return document.DraftInput{}, err
	}
	return document.DraftInput{
		SupplierName:   r.SupplierName,
		Recipient:      r.Recipient,
		ReasonCode:     r.ReasonCode,
		TargetLocation: r.TargetLocation,
		Notes:          r.Notes,
		Lines:          lines,
	}, nil
}

// ToDraftInput converts the request to a domain draft input.
func (r *UpdateDocumentRequest) ToDraftInput() (document.DraftInput, error) {
	lines, err := ToLineInputs(r.Lines)
	if err != nil {
		return document.DraftInput{}, err
	}
	return document.DraftInput{
		SupplierName:   r.SupplierName,
		Recipient:      r.Recipient,
		ReasonCode:     r.ReasonCode,
		TargetLocation: r.TargetLocation,
		Notes:          r.Notes,
		Lines:          lines,
	}, nil
}

// ListDocumentsQuery narrows document listings.
type ListDocumentsQuery struct {
	ListQuery
	Kind   string `form:"kind"`
	Status string `form:"status"`
}

// ToFilter converts query parameters to a domain filter.
func (q *ListDocumentsQuery) ToFilter() document.Filter {
	q.Defaults()
	f := document.Filter{Limit: q.Limit, Offset: q.Offset}
	if q.Kind != "" {
		kind := document.Kind(q.Kind)
		f.Kind = &kind
	}
	if q.Status != "" {
		status := document.Status(q.Status)
		f.Status = &status
	}
	return f
}
