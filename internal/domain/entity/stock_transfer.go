package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockTransfer traslado entre dos bodegas de la misma empresa. Cada ítem genera
// un transfer_out en origen y un transfer_in en destino con la misma referencia.
type StockTransfer struct {
	ID              string
	CompanyID       string
	FromWarehouseID string
	ToWarehouseID   string
	ReferenceNumber string // TRF-BOG-202610-0001
	TransferDate    time.Time
	Notes           string
	CreatedBy       string
	CreatedAt       time.Time
	Items           []StockTransferItem
}

// StockTransferItem línea de un traslado.
type StockTransferItem struct {
	ID         string
	TransferID string
	ProductID  string
	Quantity   decimal.Decimal
}

// TransferFilter filtros del listado de traslados.
type TransferFilter struct {
	CompanyID   string
	WarehouseID string // origen o destino
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
