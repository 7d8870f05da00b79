package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// WarehouseRepository directorio de bodegas (solo lectura): resuelve warehouse_id -> company_id.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}

// ProductRepository catálogo (solo lectura).
type ProductRepository interface {
	// GetActive devuelve el producto solo si está activo y no eliminado; nil en otro caso.
	GetActive(ctx context.Context, id string) (*entity.Product, error)
}
