package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/ledger"
)

const (
	stockUnitsTable     = "stock_units"
	stockMovementsTable = "stock_movements"
)

var unitColumns = []string{
	"id", "sku", "name", "kind",
	"available", "pieces", "pumps", "rings", "covers", "ribbons", "stickers",
	"version", "updated_at",
}

var movementColumns = []string{
	"line_id", "recorder_id", "recorder_type", "period", "record_type",
	"unit_id", "quantity", "composite", "created_at",
}

// counterColumns whitelists counter names against SQL injection through
// the counter parameter.
var counterColumns = map[ledger.Counter]string{
	ledger.CounterAvailable: "available",
	ledger.CounterPieces:    "pieces",
	ledger.CounterPumps:     "pumps",
	ledger.CounterRings:     "rings",
	ledger.CounterCovers:    "covers",
	ledger.CounterRibbons:   "ribbons",
	ledger.CounterStickers:  "stickers",
}

// Compile-time check that LedgerRepo implements ledger.Store.
var _ ledger.Store = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Store on PostgreSQL. Consuming operations
// lock unit rows FOR UPDATE inside the enclosing transaction, making the
// availability check and the decrement one atomic unit per row.
type LedgerRepo struct {
	builder squirrel.StatementBuilderType
	txm     *TxManager
}

func NewLedgerRepo(txm *TxManager) *LedgerRepo {
	return &LedgerRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txm:     txm,
	}
}

func (r *LedgerRepo) Get(ctx context.Context, unitID id.ID) (*ledger.StockUnit, error) {
	q := r.builder.Select(unitColumns...).
		From(stockUnitsTable).
		Where(squirrel.Eq{"id": unitID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var unit ledger.StockUnit
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &unit, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock_unit", unitID.String())
		}
		return nil, fmt.Errorf("get stock unit: %w", err)
	}
	return &unit, nil
}

// Adjust applies delta to a single counter with the underflow guard in the
// UPDATE itself, so no concurrent writer can slip between check and write.
func (r *LedgerRepo) Adjust(ctx context.Context, unitID id.ID, delta types.Quantity, counter ledger.Counter) (types.Quantity, error) {
	if counter == "" {
		counter = ledger.CounterAvailable
	}
	col, ok := counterColumns[counter]
	if !ok {
		return 0, apperror.NewValidation("unknown counter").
			WithDetail("counter", string(counter))
	}

	sql := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = %[2]s + $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND %[2]s + $1 >= 0
		RETURNING %[2]s
	`, stockUnitsTable, col)

	var next int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, delta.Int64(), unitID).Scan(&next)
	if err == nil {
		return types.Quantity(next), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("adjust counter: %w", err)
	}

	// no row matched: either the unit is missing or the guard failed
	unit, getErr := r.Get(ctx, unitID)
	if getErr != nil {
		return 0, getErr
	}
	return 0, apperror.NewInsufficientStock(unitID.String(), delta.Abs().Int64(), unit.CounterValue(counter).Int64()).
		WithDetail("counter", string(counter))
}

func (r *LedgerRepo) ApplyMovements(ctx context.Context, movements []ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	return r.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		units, err := r.lockUnits(txCtx, movements)
		if err != nil {
			return err
		}

		for i := range movements {
			m := &movements[i]
			u := units[m.UnitID]
			signed := m.SignedQuantity()
			for _, c := range m.Counters(u) {
				next := u.CounterValue(c) + signed
				if next.IsNegative() {
					return apperror.NewInsufficientStock(m.UnitID.String(), m.Quantity.Int64(), u.CounterValue(c).Int64()).
						WithDetail("counter", string(c))
				}
				u.AddToCounter(c, signed)
			}
		}

		for _, u := range units {
			if err := r.writeUnit(txCtx, u); err != nil {
				return err
			}
		}
		return r.insertMovements(txCtx, movements)
	})
}

// lockUnits loads every affected unit FOR UPDATE in deterministic order so
// two overlapping sets cannot deadlock.
func (r *LedgerRepo) lockUnits(ctx context.Context, movements []ledger.Movement) (map[id.ID]*ledger.StockUnit, error) {
	seen := make(map[id.ID]bool)
	ids := make([]id.ID, 0, len(movements))
	for _, m := range movements {
		if !seen[m.UnitID] {
			seen[m.UnitID] = true
			ids = append(ids, m.UnitID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	q := r.builder.Select(unitColumns...).
		From(stockUnitsTable).
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock query: %w", err)
	}

	var rows []ledger.StockUnit
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("lock stock units: %w", err)
	}

	units := make(map[id.ID]*ledger.StockUnit, len(rows))
	for i := range rows {
		units[rows[i].ID] = &rows[i]
	}
	for _, unitID := range ids {
		if _, ok := units[unitID]; !ok {
			return nil, apperror.NewNotFound("stock_unit", unitID.String())
		}
	}
	return units, nil
}

func (r *LedgerRepo) writeUnit(ctx context.Context, u *ledger.StockUnit) error {
	q := r.builder.Update(stockUnitsTable).
		Set("available", u.Available).
		Set("pieces", u.Pieces).
		Set("pumps", u.Pumps).
		Set("rings", u.Rings).
		Set("covers", u.Covers).
		Set("ribbons", u.Ribbons).
		Set("stickers", u.Stickers).
		Set("version", u.Version+1).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": u.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update stock unit: %w", err)
	}
	return nil
}

func (r *LedgerRepo) insertMovements(ctx context.Context, movements []ledger.Movement) error {
	q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.Period, m.RecordType,
			m.UnitID, m.Quantity, m.Composite, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func (r *LedgerRepo) MovementsByRecorder(ctx context.Context, recorderID id.ID) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

func (r *LedgerRepo) ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		OrderBy("created_at DESC")

	if filter.UnitID != nil {
		q = q.Where(squirrel.Eq{"unit_id": *filter.UnitID})
	}
	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
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

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

func (r *LedgerRepo) List(ctx context.Context) ([]ledger.StockUnit, error) {
	q := r.builder.Select(unitColumns...).
		From(stockUnitsTable).
		OrderBy("sku")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var units []ledger.StockUnit
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &units, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock units: %w", err)
	}
	return units, nil
}

func (r *LedgerRepo) Put(ctx context.Context, unit ledger.StockUnit) error {
	if unit.UpdatedAt.IsZero() {
		unit.UpdatedAt = time.Now().UTC()
	}

	q := r.builder.Insert(stockUnitsTable).
		Columns(unitColumns...).
		Values(
			unit.ID, unit.SKU, unit.Name, unit.Kind,
			unit.Available, unit.Pieces, unit.Pumps, unit.Rings,
			unit.Covers, unit.Ribbons, unit.Stickers,
			unit.Version, unit.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku, name = EXCLUDED.name, kind = EXCLUDED.kind,
			available = EXCLUDED.available, pieces = EXCLUDED.pieces,
			pumps = EXCLUDED.pumps, rings = EXCLUDED.rings,
			covers = EXCLUDED.covers, ribbons = EXCLUDED.ribbons,
			stickers = EXCLUDED.stickers,
			version = EXCLUDED.version, updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert stock unit: %w", err)
	}
	return nil
}
