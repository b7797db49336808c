// Package batch executes multi-line inventory operations with per-line
// outcomes. Batches are best effort: lines that pass are committed, lines
// that fail are reported, and overall success requires every line to pass.
package batch

import (
	"context"

	"essenza/internal/core/apperror"
	"essenza/internal/core/appctx"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/domain/lifecycle"
	"essenza/pkg/logger"
)

// LineResult is the outcome of a single batch line.
type LineResult struct {
	LineNo  int                `json:"lineNo"`
	UnitID  id.ID              `json:"unitId"`
	Success bool               `json:"success"`
	Error   *apperror.AppError `json:"error,omitempty"`

	// NewQuantity is the unit's available quantity after the commit,
	// meaningful only on success
	NewQuantity types.Quantity `json:"newQuantity,omitempty"`
}

// Result is the outcome of a whole batch.
type Result struct {
	DocumentID     id.ID        `json:"documentId"`
	Number         string       `json:"number"`
	OverallSuccess bool         `json:"overallSuccess"`
	Lines          []LineResult `json:"lines"`
}

// Input describes a batch operation to execute.
type Input struct {
	ReasonCode     string
	TargetLocation string
	Notes          string
	Lines          []document.LineInput
}

// Orchestrator validates and commits batch operations line by line.
type Orchestrator struct {
	ledger  *ledger.Service
	docs    document.Store
	numbers document.Numerator
}

func NewOrchestrator(led *ledger.Service, docs document.Store, numbers document.Numerator) *Orchestrator {
	return &Orchestrator{ledger: led, docs: docs, numbers: numbers}
}

// Execute runs a batch operation of the given kind.
//
// Header problems (missing reason code, missing transfer target, empty
// batch) abort the whole batch with an error. Line problems do not: every
// line is validated pre-flight, the passing ones are committed
// individually, and each line's result carries either the post-operation
// quantity or the structured failure. A line that passed pre-flight can
// still lose the commit race to a concurrent writer; that failure is
// recorded the same way.
func (o *Orchestrator) Execute(ctx context.Context, kind document.Kind, in Input) (*Result, error) {
	if kind.Spec().Family != document.FamilyBatch {
		return nil, apperror.NewValidation("not a batch operation kind").
			WithDetail("kind", string(kind))
	}

	doc := document.New(kind)
	doc.ReasonCode = in.ReasonCode
	doc.TargetLocation = in.TargetLocation
	doc.Notes = in.Notes
	doc.CreatedBy = appctx.GetUserID(ctx)
	doc.UpdatedBy = doc.CreatedBy
	for _, l := range in.Lines {
		doc.AddLine(l.UnitID, l.AccessoryID, l.Quantity, l.UnitPrice, l.Notes)
	}

	if err := headerErr(doc); err != nil {
		return nil, err
	}

	results := make([]LineResult, 0, len(doc.Lines))
	overall := true
	for _, line := range doc.Lines {
		res := o.executeLine(ctx, doc, line)
		if !res.Success {
			overall = false
		}
		results = append(results, res)
	}

	number, err := o.numbers.Next(ctx, kind.Spec().NumberPrefix)
	if err != nil {
		return nil, err
	}
	doc.Number = number
	// batches have no lifecycle, the record is closed as soon as it ran
	doc.Status = document.StatusCompleted
	if err := o.docs.Save(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "batch executed",
		"document_id", doc.ID.String(),
		"number", doc.Number,
		"kind", string(kind),
		"lines", len(results),
		"overall_success", overall)
	return &Result{
		DocumentID:     doc.ID,
		Number:         doc.Number,
		OverallSuccess: overall,
		Lines:          results,
	}, nil
}

func (o *Orchestrator) executeLine(ctx context.Context, doc *document.Document, line document.Line) LineResult {
	res := LineResult{LineNo: line.LineNo, UnitID: line.UnitID}

	if appErr := document.ValidateLine(ctx, doc.Kind, line, o.ledger.Reader()); appErr != nil {
		res.Error = appErr.WithDetail("lineNo", line.LineNo)
		return res
	}

	// transfers move nothing on the net ledger; availability was validated
	if doc.Kind.Spec().Direction != document.DirectionNone {
		movs := lifecycle.Movements(&document.Document{
			ID:    doc.ID,
			Kind:  doc.Kind,
			Date:  doc.Date,
			Lines: []document.Line{line},
		})
		if err := o.ledger.Apply(ctx, movs); err != nil {
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				appErr = apperror.NewInternal(err)
			}
			res.Error = appErr.WithDetail("lineNo", line.LineNo)
			return res
		}
	}

	unit, err := o.ledger.Get(ctx, line.UnitID)
	if err != nil {
		appErr, ok := apperror.AsAppError(err)
		if !ok {
			appErr = apperror.NewInternal(err)
		}
		res.Error = appErr.WithDetail("lineNo", line.LineNo)
		return res
	}

	res.Success = true
	res.NewQuantity = unit.Available
	return res
}

// headerErr returns only the document-level failures; per-line problems are
// handled as line results instead.
func headerErr(doc *document.Document) error {
	spec := doc.Kind.Spec()
	res := &document.Result{}
	for _, field := range spec.RequiredHeader {
		if doc.HeaderValue(field) == "" {
			res.Add(apperror.NewMissingField(field))
		}
	}
	if len(doc.Lines) == 0 {
		res.Add(apperror.NewEmptyDocument())
	}
	return res.Err()
}
