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
	"github.com/shopspring/decimal"
)

var (
	_ repository.StockLevelRepository    = (*StockLevelRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// StockLevelRepo agregado stock_levels (PK product_id, warehouse_id).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

func (r *StockLevelRepo) get(ctx context.Context, query, op, productID, warehouseID string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.CurrentStock, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return &s, nil
}

// Get obtiene el stock actual de un producto en una bodega; nil si no hay fila.
func (r *StockLevelRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	return r.get(ctx, `
		SELECT product_id, warehouse_id, current_stock, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2`,
		"get stock level", productID, warehouseID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	return r.get(ctx, `
		SELECT product_id, warehouse_id, current_stock, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`,
		"get stock level for update", productID, warehouseID)
}

// Update escribe la cantidad; la fila debe existir.
func (r *StockLevelRepo) Update(ctx context.Context, level *entity.StockLevel) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_levels SET current_stock = $3, updated_at = $4
		WHERE product_id = $1 AND warehouse_id = $2`,
		level.ProductID, level.WarehouseID, level.CurrentStock, level.UpdatedAt,
	)
	if err != nil {
		return classify("update stock level", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sin registro de stock para producto %s en bodega %s",
			domain.ErrNotFound, level.ProductID, level.WarehouseID)
	}
	return nil
}

// StockMovementRepo libro de movimientos: solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, company_id, product_id, warehouse_id, quantity, movement_type,
			reference_id, reference_type, remarks, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.CompanyID, m.ProductID, m.WarehouseID, m.Quantity, m.Kind,
		nullable(m.ReferenceID), nullable(m.ReferenceType), nullable(m.Remarks), nullable(m.CreatedBy), m.CreatedAt,
	)
	return classify("insert stock movement", err)
}

// List historial filtrado, más reciente primero.
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	c := &conditions{}
	if f.CompanyID != "" {
		c.add("company_id = ?", f.CompanyID)
	}
	if f.ProductID != "" {
		c.add("product_id = ?", f.ProductID)
	}
	if f.WarehouseID != "" {
		c.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.Kind != "" {
		c.add("movement_type = ?", f.Kind)
	}
	if f.ReferenceID != "" {
		c.add("reference_id = ?", f.ReferenceID)
	}
	if f.ReferenceType != "" {
		c.add("reference_type = ?", f.ReferenceType)
	}
	if f.From != nil {
		c.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		c.add("created_at <= ?", *f.To)
	}
	query := `
		SELECT id, company_id, product_id, warehouse_id, quantity, movement_type,
			COALESCE(reference_id, ''), COALESCE(reference_type, ''), COALESCE(remarks, ''),
			COALESCE(created_by::text, ''), created_at
		FROM stock_movements` + c.sql() + ` ORDER BY created_at DESC, id DESC` + c.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, classify("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.WarehouseID, &m.Quantity, &m.Kind,
			&m.ReferenceID, &m.ReferenceType, &m.Remarks, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumQuantity suma con signo del libro para el par producto-bodega.
func (r *StockMovementRepo) SumQuantity(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, classify("sum stock movements", err)
	}
	return sum, nil
}
