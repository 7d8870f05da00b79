package repository

import "context"

// Repos agrupa los repositorios atados a una misma conexión o transacción.
// Se pasa explícitamente a cada operación en lugar de usar un pool global.
type Repos struct {
	Payments    PaymentRepository
	Links       OrderPaymentLinkRepository
	Orders      OrderRepository
	Levels      StockLevelRepository
	Movements   StockMovementRepository
	Adjustments StockAdjustmentRepository
	Transfers   StockTransferRepository
	Sequences   SequenceRepository
	Warehouses  WarehouseRepository
	Products    ProductRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
