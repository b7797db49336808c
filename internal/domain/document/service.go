package document

import (
	"context"

	"essenza/internal/core/apperror"
	"essenza/internal/core/appctx"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/pkg/logger"
)

// LineInput is the caller-facing shape of a proposed line.
type LineInput struct {
	UnitID      id.ID
	AccessoryID *id.ID
	Quantity    types.Quantity
	UnitPrice   types.Money
	Notes       string
}

// DraftInput carries the header and lines of a new or edited draft.
type DraftInput struct {
	SupplierName   string
	Recipient      string
	ReasonCode     string
	TargetLocation string
	Notes          string
	Lines          []LineInput
}

// Service manages document drafts. Status changes go through the lifecycle
// engine, never through this service.
type Service struct {
	store   Store
	numbers Numerator
}

func NewService(store Store, numbers Numerator) *Service {
	return &Service{store: store, numbers: numbers}
}

// CreateDraft creates a new document of the given kind in its initial
// status, numbered from the kind's sequence. Drafts are not validated
// against the ledger; that happens at submission.
func (s *Service) CreateDraft(ctx context.Context, kind Kind, in DraftInput) (*Document, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation("unknown document kind").
			WithDetail("kind", string(kind))
	}

	doc := New(kind)
	applyInput(doc, in)
	doc.CreatedBy = appctx.GetUserID(ctx)
	doc.UpdatedBy = doc.CreatedBy

	number, err := s.numbers.Next(ctx, kind.Spec().NumberPrefix)
	if err != nil {
		return nil, err
	}
	doc.Number = number

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "document draft created",
		"document_id", doc.ID.String(),
		"number", doc.Number,
		"kind", string(doc.Kind))
	return doc, nil
}

// UpdateDraft replaces the header and lines of a draft. Documents that
// left DRAFT are immutable through this path.
func (s *Service) UpdateDraft(ctx context.Context, docID id.ID, in DraftInput) (*Document, error) {
	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != StatusDraft {
		return nil, apperror.NewBusinessRule(apperror.CodeConflict, "only draft documents can be edited").
			WithDetail("status", string(doc.Status))
	}

	doc.Lines = doc.Lines[:0]
	applyInput(doc, in)
	doc.UpdatedBy = appctx.GetUserID(ctx)
	doc.Touch()

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Get(ctx context.Context, docID id.ID) (*Document, error) {
	return s.store.Get(ctx, docID)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Document, error) {
	return s.store.List(ctx, filter)
}

func applyInput(doc *Document, in DraftInput) {
	doc.SupplierName = in.SupplierName
	doc.Recipient = in.Recipient
	doc.ReasonCode = in.ReasonCode
	doc.TargetLocation = in.TargetLocation
	doc.Notes = in.Notes
	for _, l := range in.Lines {
		doc.AddLine(l.UnitID, l.AccessoryID, l.Quantity, l.UnitPrice, l.Notes)
	}
	doc.RecalculateTotal()
}
