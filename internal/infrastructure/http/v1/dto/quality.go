package dto

import (
	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/quality"
)

// CreateCheckRequest represents a new quality inspection.
type CreateCheckRequest struct {
	UnitID            string   `json:"unitId" binding:"required"`
	SourceDocumentID  string   `json:"sourceDocumentId,omitempty"`
	CheckedQuantity   int64    `json:"checkedQuantity"`
	DefectiveQuantity int64    `json:"defectiveQuantity"`
	DefectTags        []string `json:"defectTags,omitempty"`
	Severity          string   `json:"severity,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}

// ToInput converts the request to a domain check input.
func (r *CreateCheckRequest) ToInput() (quality.CheckInput, error) {
	unitID, err := id.Parse(r.UnitID)
	if err != nil {
		return quality.CheckInput{}, apperror.NewValidation("invalid unit id").
			WithDetail("unitId", r.UnitID)
	}

	in := quality.CheckInput{
		UnitID:     unitID,
		Checked:    types.Quantity(r.CheckedQuantity),
		Defective:  types.Quantity(r.DefectiveQuantity),
		DefectTags: r.DefectTags,
		Severity:   quality.Severity(r.Severity),
		Notes:      r.Notes,
	}
	if r.SourceDocumentID != "" {
		sourceID, err := id.Parse(r.SourceDocumentID)
		if err != nil {
			return quality.CheckInput{}, apperror.NewValidation("invalid source document id").
				WithDetail("sourceDocumentId", r.SourceDocumentID)
		}
		in.SourceDocumentID = &sourceID
	}
	return in, nil
}

// ReworkRequest represents a rework re-evaluation of an existing check.
type ReworkRequest struct {
	CheckedQuantity   int64    `json:"checkedQuantity"`
	DefectiveQuantity int64    `json:"defectiveQuantity"`
	DefectTags        []string `json:"defectTags,omitempty"`
	Notes             string   `json:"notes" binding:"required"`
}

// ToDecision converts the request to a domain rework decision.
func (r *ReworkRequest) ToDecision(checkID id.ID) quality.ReworkDecision {
	return quality.ReworkDecision{
		CheckID:           checkID,
		CheckedQuantity:   types.Quantity(r.CheckedQuantity),
		DefectiveQuantity: types.Quantity(r.DefectiveQuantity),
		DefectTags:        r.DefectTags,
		Notes:             r.Notes,
	}
}

// CheckSummary is the list-view projection of a quality check.
type CheckSummary struct {
	ID                string `json:"id"`
	Number            string `json:"number"`
	Status            string `json:"status"`
	CheckedQuantity   int64  `json:"checkedQuantity"`
	DefectiveQuantity int64  `json:"defectiveQuantity"`
	PassQuantity      int64  `json:"passQuantity"`
	DefectRate        string `json:"defectRate"`
}

// ToCheckSummary projects a check into its list view.
func ToCheckSummary(c *quality.Check) CheckSummary {
	return CheckSummary{
		ID:                c.ID.String(),
		Number:            c.Number,
		Status:            string(c.Status),
		CheckedQuantity:   c.CheckedQuantity.Int64(),
		DefectiveQuantity: c.DefectiveQuantity.Int64(),
		PassQuantity:      c.PassQuantity().Int64(),
		DefectRate:        c.DefectRate().String(),
	}
}
