package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLevelRepository puerto del agregado de stock por bodega+producto.
// Las filas no se crean aquí: el motor de movimientos nunca aprovisiona inventario.
type StockLevelRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); nil si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	Update(ctx context.Context, level *entity.StockLevel) error
}

// StockMovementRepository puerto del libro de movimientos (solo inserción y consulta).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error)
	SumQuantity(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error)
}

// StockAdjustmentRepository puerto de ajustes manuales.
type StockAdjustmentRepository interface {
	Create(ctx context.Context, a *entity.StockAdjustment) error
	GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockAdjustment, error)
	Update(ctx context.Context, a *entity.StockAdjustment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f entity.AdjustmentFilter) ([]*entity.StockAdjustment, error)
}

// StockTransferRepository puerto de traslados; Create persiste cabecera e ítems.
type StockTransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	List(ctx context.Context, f entity.TransferFilter) ([]*entity.StockTransfer, error)
}
