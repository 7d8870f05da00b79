package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

const adjustmentColumns = `id, company_id, warehouse_id, product_id, adjustment_type, quantity,
	COALESCE(notes, ''), is_deletable, COALESCE(created_by::text, ''), created_at, updated_at`

// StockAdjustmentRepo ajustes manuales de inventario.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

func scanAdjustment(row scanner) (*entity.StockAdjustment, error) {
	var a entity.StockAdjustment
	err := row.Scan(&a.ID, &a.CompanyID, &a.WarehouseID, &a.ProductID, &a.Direction, &a.Quantity,
		&a.Notes, &a.IsDeletable, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *StockAdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_adjustments (id, company_id, warehouse_id, product_id, adjustment_type, quantity,
			notes, is_deletable, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CompanyID, a.WarehouseID, a.ProductID, a.Direction, a.Quantity,
		nullable(a.Notes), a.IsDeletable, nullable(a.CreatedBy), a.CreatedAt, a.UpdatedAt,
	)
	return classify("insert stock adjustment", err)
}

func (r *StockAdjustmentRepo) get(ctx context.Context, query, op, id string) (*entity.StockAdjustment, error) {
	a, err := scanAdjustment(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return a, nil
}

func (r *StockAdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	return r.get(ctx, `SELECT `+adjustmentColumns+` FROM stock_adjustments WHERE id = $1`, "get stock adjustment", id)
}

// GetForUpdate bloquea el ajuste mientras se recalcula su efecto.
func (r *StockAdjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	return r.get(ctx, `SELECT `+adjustmentColumns+` FROM stock_adjustments WHERE id = $1 FOR UPDATE`,
		"get stock adjustment for update", id)
}

func (r *StockAdjustmentRepo) Update(ctx context.Context, a *entity.StockAdjustment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_adjustments
		SET adjustment_type = $2, quantity = $3, notes = $4, is_deletable = $5, updated_at = $6
		WHERE id = $1`,
		a.ID, a.Direction, a.Quantity, nullable(a.Notes), a.IsDeletable, a.UpdatedAt,
	)
	if err != nil {
		return classify("update stock adjustment", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, a.ID)
	}
	return nil
}

func (r *StockAdjustmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_adjustments WHERE id = $1`, id)
	if err != nil {
		return classify("delete stock adjustment", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *StockAdjustmentRepo) List(ctx context.Context, f entity.AdjustmentFilter) ([]*entity.StockAdjustment, error) {
	c := &conditions{}
	if f.CompanyID != "" {
		c.add("company_id = ?", f.CompanyID)
	}
	if f.WarehouseID != "" {
		c.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.ProductID != "" {
		c.add("product_id = ?", f.ProductID)
	}
	query := `SELECT ` + adjustmentColumns + ` FROM stock_adjustments` + c.sql() +
		` ORDER BY created_at DESC` + c.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, classify("list stock adjustments", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
