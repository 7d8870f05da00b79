package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAdjustmentRequest body para POST /api/stock-adjustments.
type CreateAdjustmentRequest struct {
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	ProductID   string          `json:"product_id" validate:"required"`
	Direction   string          `json:"direction" validate:"required,oneof=add subtract"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes" validate:"max=1000"`
}

// UpdateAdjustmentRequest body para PATCH /api/stock-adjustments/:id. Campos ausentes no cambian.
type UpdateAdjustmentRequest struct {
	Direction *string          `json:"direction" validate:"omitempty,oneof=add subtract"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Notes     OptionalString   `json:"notes"` // null o "" limpian las notas
}

// AdjustmentResponse salida de un ajuste.
type AdjustmentResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes,omitempty"`
	IsDeletable bool            `json:"is_deletable"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AdjustmentListResponse lista paginada de ajustes.
type AdjustmentListResponse struct {
	Items []AdjustmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// TransferItemRequest línea de un traslado.
type TransferItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest body para POST /api/stock-transfers.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required"`
	Date            string                `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes           string                `json:"notes" validate:"max=1000"`
	Items           []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferItemResponse línea de traslado.
type TransferItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID              string                 `json:"id"`
	CompanyID       string                 `json:"company_id"`
	FromWarehouseID string                 `json:"from_warehouse_id"`
	ToWarehouseID   string                 `json:"to_warehouse_id"`
	ReferenceNumber string                 `json:"reference_number"`
	Date            string                 `json:"date"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	Items           []TransferItemResponse `json:"items"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementFilterRequest query de GET /api/inventory/movements.
type MovementFilterRequest struct {
	PageRequest
	ProductID     string `query:"product_id"`
	WarehouseID   string `query:"warehouse_id"`
	Kind          string `query:"kind"`
	ReferenceID   string `query:"reference_id"`
	ReferenceType string `query:"reference_type"`
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Kind          string          `json:"kind"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementListResponse página del historial.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockReconciliationResponse resultado de comparar stock actual vs. suma de movimientos.
type StockReconciliationResponse struct {
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MovementTotal decimal.Decimal `json:"movement_total"`
	Difference    decimal.Decimal `json:"difference"`
	Consistent    bool            `json:"consistent"`
}
