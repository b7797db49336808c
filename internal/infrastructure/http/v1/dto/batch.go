package dto

import (
	"essenza/internal/domain/batch"
)

// ExecuteBatchRequest represents a batch stock operation.
type ExecuteBatchRequest struct {
	Kind           string        `json:"kind" binding:"required"`
	ReasonCode     string        `json:"reasonCode,omitempty"`
	TargetLocation string        `json:"targetLocation,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Lines          []LineRequest `json:"lines"`
}

// ToInput converts the request to a domain batch input.
func (r *ExecuteBatchRequest) ToInput() (batch.Input, error) {
	lines, err := ToLineInputs(r.Lines)
	if err != nil {
		return batch.Input{}, err
	}
	return batch.Input{
		ReasonCode:     r.ReasonCode,
		TargetLocation: r.TargetLocation,
		Notes:          r.Notes,
		Lines:          lines,
	}, nil
}
