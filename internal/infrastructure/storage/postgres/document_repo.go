package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/domain/document"
)

const (
	documentsTable     = "documents"
	documentLinesTable = "document_lines"
)

var documentColumns = []string{
	"id", "number", "kind", "status", "date",
	"supplier_name", "recipient", "reason_code", "target_location", "notes",
	"reversal_of", "total",
	"version", "created_at", "updated_at", "created_by", "updated_by",
}

var lineColumns = []string{
	"line_id", "document_id", "line_no",
	"unit_id", "accessory_id", "quantity", "unit_price", "notes",
}

var _ document.Store = (*DocumentRepo)(nil)

// DocumentRepo implements document.Store on PostgreSQL. Updates carry the
// optimistic-locking protocol: the caller bumps the version via Touch and the
// UPDATE matches the previous one; zero affected rows on an existing document
// means a concurrent writer won.
type DocumentRepo struct {
	builder squirrel.StatementBuilderType
	txm     *TxManager
}

func NewDocumentRepo(txm *TxManager) *DocumentRepo {
	return &DocumentRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txm:     txm,
	}
}

func (r *DocumentRepo) Get(ctx context.Context, docID id.ID) (*document.Document, error) {
	q := r.builder.Select(documentColumns...).
		From(documentsTable).
		Where(squirrel.Eq{"id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc document.Document
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document", docID.String())
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	lines, err := r.loadLines(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return &doc, nil
}

func (r *DocumentRepo) Save(ctx context.Context, doc *document.Document) error {
	return r.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if doc.Version == 1 {
			if err := r.insertHeader(txCtx, doc); err != nil {
				return err
			}
		} else if err := r.updateHeader(txCtx, doc); err != nil {
			return err
		}
		return r.replaceLines(txCtx, doc)
	})
}

func (r *DocumentRepo) insertHeader(ctx context.Context, doc *document.Document) error {
	q := r.builder.Insert(documentsTable).
		Columns(documentColumns...).
		Values(
			doc.ID, doc.Number, doc.Kind, doc.Status, doc.Date,
			doc.SupplierName, doc.Recipient, doc.ReasonCode, doc.TargetLocation, doc.Notes,
			doc.ReversalOf, doc.Total,
			doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) updateHeader(ctx context.Context, doc *document.Document) error {
	q := r.builder.Update(documentsTable).
		Set("number", doc.Number).
		Set("status", doc.Status).
		Set("date", doc.Date).
		Set("supplier_name", doc.SupplierName).
		Set("recipient", doc.Recipient).
		Set("reason_code", doc.ReasonCode).
		Set("target_location", doc.TargetLocation).
		Set("notes", doc.Notes).
		Set("total", doc.Total).
		Set("version", doc.Version).
		Set("updated_at", doc.UpdatedAt).
		Set("updated_by", doc.UpdatedBy).
		Where(squirrel.Eq{"id": doc.ID, "version": doc.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.Get(ctx, doc.ID); getErr != nil {
			return getErr
		}
		return apperror.NewConcurrentModification("document", doc.ID.String())
	}
	return nil
}

func (r *DocumentRepo) replaceLines(ctx context.Context, doc *document.Document) error {
	del := r.builder.Delete(documentLinesTable).Where(squirrel.Eq{"document_id": doc.ID})
	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	if len(doc.Lines) == 0 {
		return nil
	}

	ins := r.builder.Insert(documentLinesTable).Columns(lineColumns...)
	for _, l := range doc.Lines {
		ins = ins.Values(
			l.LineID, doc.ID, l.LineNo,
			l.UnitID, l.AccessoryID, l.Quantity, l.UnitPrice, l.Notes,
		)
	}
	sql, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

func (r *DocumentRepo) loadLines(ctx context.Context, docID id.ID) ([]document.Line, error) {
	q := r.builder.Select("line_id", "line_no", "unit_id", "accessory_id", "quantity", "unit_price", "notes").
		From(documentLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []document.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}
	return lines, nil
}

// List loads headers and their lines inside a read-only transaction so the
// listing is one consistent snapshot.
func (r *DocumentRepo) List(ctx context.Context, filter document.Filter) ([]document.Document, error) {
	q := r.builder.Select(documentColumns...).
		From(documentsTable).
		OrderBy("created_at DESC")

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []document.Document
	err = r.txm.ReadOnly(ctx, func(txCtx context.Context) error {
		if err := pgxscan.Select(txCtx, r.txm.GetQuerier(txCtx), &docs, sql, args...); err != nil {
			return fmt.Errorf("select documents: %w", err)
		}
		for i := range docs {
			lines, err := r.loadLines(txCtx, docs[i].ID)
			if err != nil {
				return err
			}
			docs[i].Lines = lines
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
