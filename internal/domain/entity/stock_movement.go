package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de evento de inventario registrado en el libro de movimientos.
type MovementKind string

const (
	MovementKindPurchase           MovementKind = "purchase"
	MovementKindSales              MovementKind = "sales"
	MovementKindAdjustment         MovementKind = "adjustment"
	MovementKindAdjustmentReversal MovementKind = "adjustment_reversal"
	MovementKindTransferIn         MovementKind = "transfer_in"
	MovementKindTransferOut        MovementKind = "transfer_out"
	MovementKindProduction         MovementKind = "production"
	MovementKindReturnIn           MovementKind = "return_in"
	MovementKindReturnOut          MovementKind = "return_out"
	MovementKindDeletion           MovementKind = "deletion"
)

var movementKinds = map[MovementKind]struct{}{
	MovementKindPurchase:           {},
	MovementKindSales:              {},
	MovementKindAdjustment:         {},
	MovementKindAdjustmentReversal: {},
	MovementKindTransferIn:         {},
	MovementKindTransferOut:        {},
	MovementKindProduction:         {},
	MovementKindReturnIn:           {},
	MovementKindReturnOut:          {},
	MovementKindDeletion:           {},
}

// ParseMovementKind valida el tipo de movimiento recibido como texto.
func ParseMovementKind(s string) (MovementKind, error) {
	k := MovementKind(s)
	if _, ok := movementKinds[k]; !ok {
		return "", fmt.Errorf("tipo de movimiento desconocido %q", s)
	}
	return k, nil
}

// Tipos de referencia usados por este núcleo.
const (
	ReferenceTypeStockAdjustment = "stock_adjustment"
	ReferenceTypeStockTransfer   = "stock_transfer"
)

// StockMovement entrada inmutable del libro de inventario. Nunca se actualiza ni se borra:
// una reversión es un movimiento nuevo con la cantidad negada.
type StockMovement struct {
	ID            string
	CompanyID     string
	ProductID     string
	WarehouseID   string
	Quantity      decimal.Decimal // con signo: positivo entrada, negativo salida
	Kind          MovementKind
	ReferenceID   string
	ReferenceType string
	Remarks       string
	CreatedBy     string
	CreatedAt     time.Time
}

// MovementFilter filtros para la consulta del historial (auditoría).
type MovementFilter struct {
	CompanyID     string
	ProductID     string
	WarehouseID   string
	Kind          MovementKind
	ReferenceID   string
	ReferenceType string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
