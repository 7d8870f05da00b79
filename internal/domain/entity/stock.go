package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel stock actual de un producto en una bodega (agregado materializado).
// Invariante: CurrentStock == suma de StockMovement.Quantity para (ProductID, WarehouseID).
type StockLevel struct {
	ProductID    string
	WarehouseID  string
	CurrentStock decimal.Decimal
	UpdatedAt    time.Time
}

// StockReconciliation compara el agregado con la suma del libro de movimientos.
type StockReconciliation struct {
	ProductID     string
	WarehouseID   string
	CurrentStock  decimal.Decimal
	MovementTotal decimal.Decimal
	Difference    decimal.Decimal
	Consistent    bool
}
