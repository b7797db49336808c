package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
	"essenza/internal/domain/quality"
)

const qualityChecksTable = "quality_checks"

var _ quality.Store = (*CheckRepo)(nil)

// CheckRepo implements quality.Store. The shared document header lives in
// the documents table; the check-specific columns live in quality_checks,
// one row per check keyed by document id.
type CheckRepo struct {
	builder squirrel.StatementBuilderType
	txm     *TxManager
	docs    *DocumentRepo
}

func NewCheckRepo(txm *TxManager, docs *DocumentRepo) *CheckRepo {
	return &CheckRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txm:     txm,
		docs:    docs,
	}
}

type checkRow struct {
	DocumentID        id.ID          `db:"document_id"`
	SourceDocumentID  *id.ID         `db:"source_document_id"`
	CheckedQuantity   types.Quantity `db:"checked_quantity"`
	DefectiveQuantity types.Quantity `db:"defective_quantity"`
	DefectTags        []string       `db:"defect_tags"`
	Severity          string         `db:"severity"`
	CheckedBy         string         `db:"checked_by"`
}

var checkColumns = []string{
	"document_id", "source_document_id",
	"checked_quantity", "defective_quantity", "defect_tags",
	"severity", "checked_by",
}

func (r *CheckRepo) Get(ctx context.Context, checkID id.ID) (*quality.Check, error) {
	doc, err := r.docs.Get(ctx, checkID)
	if err != nil {
		return nil, err
	}

	row, err := r.loadRow(ctx, checkID)
	if err != nil {
		return nil, err
	}

	check := &quality.Check{Document: *doc}
	applyRow(check, row)
	return check, nil
}

func (r *CheckRepo) Save(ctx context.Context, check *quality.Check) error {
	return r.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := r.docs.Save(txCtx, &check.Document); err != nil {
			return err
		}

		q := r.builder.Insert(qualityChecksTable).
			Columns(checkColumns...).
			Values(
				check.ID, check.SourceDocumentID,
				check.CheckedQuantity, check.DefectiveQuantity, check.DefectTags,
				check.Severity, check.CheckedBy,
			).
			Suffix(`ON CONFLICT (document_id) DO UPDATE SET
				checked_quantity = EXCLUDED.checked_quantity,
				defective_quantity = EXCLUDED.defective_quantity,
				defect_tags = EXCLUDED.defect_tags,
				severity = EXCLUDED.severity,
				checked_by = EXCLUDED.checked_by`)

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := r.txm.GetQuerier(txCtx).Exec(txCtx, sql, args...); err != nil {
			return fmt.Errorf("upsert quality check: %w", err)
		}
		return nil
	})
}

func (r *CheckRepo) List(ctx context.Context) ([]quality.Check, error) {
	kind := document.KindQualityCheck
	docs, err := r.docs.List(ctx, document.Filter{Kind: &kind})
	if err != nil {
		return nil, err
	}

	checks := make([]quality.Check, 0, len(docs))
	for i := range docs {
		row, err := r.loadRow(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		check := quality.Check{Document: docs[i]}
		applyRow(&check, row)
		checks = append(checks, check)
	}
	return checks, nil
}

func (r *CheckRepo) loadRow(ctx context.Context, checkID id.ID) (*checkRow, error) {
	q := r.builder.Select(checkColumns...).
		From(qualityChecksTable).
		Where(squirrel.Eq{"document_id": checkID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row checkRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quality_check", checkID.String())
		}
		return nil, fmt.Errorf("get quality check: %w", err)
	}
	return &row, nil
}

func applyRow(check *quality.Check, row *checkRow) {
	check.SourceDocumentID = row.SourceDocumentID
	check.CheckedQuantity = row.CheckedQuantity
	check.DefectiveQuantity = row.DefectiveQuantity
	check.DefectTags = row.DefectTags
	check.Severity = quality.Severity(row.Severity)
	check.CheckedBy = row.CheckedBy
}
