package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// OrderRepository acceso al agregado Order. El CRUD de órdenes vive fuera de este servicio;
// aquí solo se lee el total y se escribe el saldo proyectado.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateBalance(ctx context.Context, id string, b entity.OrderBalance) error
	ListUnpaid(ctx context.Context, companyID, userID, warehouseID string) ([]*entity.Order, error)
}
