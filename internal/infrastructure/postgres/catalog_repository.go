package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
)

// WarehouseRepo lectura del directorio de bodegas.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// GetByID obtiene una bodega por ID; nil, nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, COALESCE(code, ''), name, COALESCE(address, ''), created_at, updated_at
		FROM warehouses WHERE id = $1`, id,
	).Scan(&w.ID, &w.CompanyID, &w.Code, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get warehouse", err)
	}
	return &w, nil
}

// ProductRepo lectura del catálogo.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetActive solo devuelve productos activos y no eliminados.
func (r *ProductRepo) GetActive(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, sku, name, price, COALESCE(unit_measure, ''), active, deleted_at, created_at, updated_at
		FROM products WHERE id = $1 AND active AND deleted_at IS NULL`, id,
	).Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Price, &p.UnitMeasure, &p.Active, &p.DeletedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get product", err)
	}
	return &p, nil
}
