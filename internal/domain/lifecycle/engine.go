package lifecycle

import (
	"context"
	"time"

	"essenza/internal/core/apperror"
	"essenza/internal/core/appctx"
	"essenza/internal/core/id"
	"essenza/internal/core/tx"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/pkg/logger"
)

// TransitionRecord is the audit trail entry written for every status change.
type TransitionRecord struct {
	DocumentID id.ID           `json:"documentId"`
	Number     string          `json:"number"`
	Kind       document.Kind   `json:"kind"`
	From       document.Status `json:"from"`
	To         document.Status `json:"to"`
	Actor      string          `json:"actor,omitempty"`
	At         time.Time       `json:"at"`
}

// Auditor persists transition records. Audit failures never fail the
// transition itself.
type Auditor interface {
	RecordTransition(ctx context.Context, rec TransitionRecord) error
}

// Engine advances documents through their family's state machine and
// executes the ledger side effects guarding completion. The stock check and
// the stock write happen inside one transaction, so two concurrent
// completions of overlapping lines cannot both pass against the same
// snapshot.
type Engine struct {
	docs    document.Store
	ledger  *ledger.Service
	txm     tx.Manager
	numbers document.Numerator
	auditor Auditor
}

func NewEngine(docs document.Store, led *ledger.Service, txm tx.Manager, numbers document.Numerator, auditor Auditor) *Engine {
	return &Engine{docs: docs, ledger: led, txm: txm, numbers: numbers, auditor: auditor}
}

// Transition moves a document to the target status.
//
// Guards:
//   - DRAFT → SUBMITTED requires full document validation against the
//     current ledger.
//   - APPROVED → COMPLETED applies the kind's stock effect atomically with
//     the status write; an INSUFFICIENT_STOCK race lost here surfaces as a
//     value, not a fault, so the caller can retry.
//
// Terminal statuses reject every move with ILLEGAL_TRANSITION.
func (e *Engine) Transition(ctx context.Context, docID id.ID, target document.Status) (*document.Document, error) {
	doc, err := e.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}

	spec := doc.Kind.Spec()
	if spec.Family == document.FamilyBatch {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"batch operations have no status lifecycle")
	}
	if appErr := CheckTransition(spec.Family, doc.Status, target); appErr != nil {
		return nil, appErr
	}

	if target == document.StatusSubmitted {
		if err := document.ValidateDocument(ctx, doc, e.ledger.Reader()).Err(); err != nil {
			return nil, err
		}
	}

	from := doc.Status
	err = e.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if target == document.StatusCompleted {
			if movs := Movements(doc); len(movs) > 0 {
				if err := e.ledger.Apply(txCtx, movs); err != nil {
					return err
				}
			}
		}
		doc.Status = target
		doc.UpdatedBy = appctx.GetUserID(ctx)
		doc.Touch()
		return e.docs.Save(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	e.recordTransition(ctx, doc, from, target)
	logger.Info(ctx, "document transitioned",
		"document_id", doc.ID.String(),
		"number", doc.Number,
		"from", string(from),
		"to", string(target))
	return doc, nil
}

// Reverse produces a new compensating document for a completed one. The
// original is never mutated; the reversal starts as a draft and goes
// through its own lifecycle, restoring the consumed quantities when it
// completes.
func (e *Engine) Reverse(ctx context.Context, docID id.ID) (*document.Document, error) {
	orig, err := e.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if orig.Status != document.StatusCompleted {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"only completed documents can be reversed").
			WithDetail("status", string(orig.Status))
	}

	revKind := orig.Kind.Spec().ReversalKind
	if revKind == "" {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"document kind cannot be reversed").
			WithDetail("kind", string(orig.Kind))
	}

	rev := document.New(revKind)
	rev.SupplierName = orig.SupplierName
	rev.Recipient = orig.Recipient
	rev.ReasonCode = orig.ReasonCode
	rev.ReversalOf = &orig.ID
	rev.CreatedBy = appctx.GetUserID(ctx)
	rev.UpdatedBy = rev.CreatedBy
	for _, l := range orig.Lines {
		rev.AddLine(l.UnitID, l.AccessoryID, l.Quantity, l.UnitPrice, l.Notes)
	}

	number, err := e.numbers.Next(ctx, revKind.Spec().NumberPrefix)
	if err != nil {
		return nil, err
	}
	rev.Number = number

	if err := e.docs.Save(ctx, rev); err != nil {
		return nil, err
	}

	logger.Info(ctx, "reversal document created",
		"document_id", rev.ID.String(),
		"number", rev.Number,
		"reverses", orig.Number)
	return rev, nil
}

func (e *Engine) recordTransition(ctx context.Context, doc *document.Document, from, to document.Status) {
	if e.auditor == nil {
		return
	}
	rec := TransitionRecord{
		DocumentID: doc.ID,
		Number:     doc.Number,
		Kind:       doc.Kind,
		From:       from,
		To:         to,
		Actor:      appctx.GetUserID(ctx),
		At:         time.Now().UTC(),
	}
	if err := e.auditor.RecordTransition(ctx, rec); err != nil {
		logger.Warn(ctx, "transition audit write failed",
			"document_id", doc.ID.String(),
			"error", err)
	}
}

// Movements derives the ledger records a completing document produces.
// Consuming kinds record expenses, adding kinds record receipts, neutral
// kinds (transfers, quality checks) produce nothing. Accessory-set
// semantics apply per unit inside the ledger, so every movement is marked
// composite.
func Movements(doc *document.Document) []ledger.Movement {
	var rt ledger.RecordType
	switch doc.Kind.Spec().Direction {
	case document.DirectionConsume:
		rt = ledger.RecordTypeExpense
	case document.DirectionAdd:
		rt = ledger.RecordTypeReceipt
	default:
		return nil
	}

	movs := make([]ledger.Movement, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		movs = append(movs, ledger.NewMovement(doc.ID, string(doc.Kind), doc.Date, rt, l.UnitID, l.Quantity, true))
		if l.AccessoryID != nil && !id.IsNil(*l.AccessoryID) {
			movs = append(movs, ledger.NewMovement(doc.ID, string(doc.Kind), doc.Date, rt, *l.AccessoryID, l.Quantity, true))
		}
	}
	return movs
}
