package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLinkRequest aplicación de un pago a una orden.
type OrderLinkRequest struct {
	OrderID string          `json:"order_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// CreatePaymentRequest body para POST /api/payments.
// El header Idempotency-Key tiene prioridad sobre IdempotencyKey.
type CreatePaymentRequest struct {
	WarehouseID    string             `json:"warehouse_id" validate:"required"`
	Direction      string             `json:"direction" validate:"required,oneof=in out"`
	Date           string             `json:"date" validate:"required,datetime=2006-01-02"`
	Amount         decimal.Decimal    `json:"amount"`
	PaymentModeID  string             `json:"payment_mode_id"`
	UserID         string             `json:"user_id"` // contraparte
	Notes          string             `json:"notes" validate:"max=1000"`
	IdempotencyKey string             `json:"idempotency_key,omitempty" validate:"max=128"`
	Orders         []OrderLinkRequest `json:"orders" validate:"dive"`
}

// CreatePaymentResponse resultado de crear un pago; IsDuplicate indica que no se escribió nada.
type CreatePaymentResponse struct {
	PaymentID       string `json:"payment_id"`
	PaymentNumber   string `json:"payment_number"`
	IsDuplicate     bool   `json:"is_duplicate"`
	DuplicateReason string `json:"duplicate_reason,omitempty"`
}

// PaymentFilterRequest query de GET /api/payments.
type PaymentFilterRequest struct {
	PageRequest
	WarehouseID   string `query:"warehouse_id"`
	UserID        string `query:"user_id"`
	PaymentModeID string `query:"payment_mode_id"`
	OrderID       string `query:"order_id"`
	Direction     string `query:"direction" validate:"omitempty,oneof=in out"`
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Search        string `query:"search" validate:"max=100"`
}

// OrderLinkResponse enlace orden-pago.
type OrderLinkResponse struct {
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Date    time.Time       `json:"date"`
}

// PaymentResponse salida de un pago.
type PaymentResponse struct {
	ID             string              `json:"id"`
	CompanyID      string              `json:"company_id"`
	WarehouseID    string              `json:"warehouse_id"`
	Direction      string              `json:"direction"`
	Number         string              `json:"payment_number"`
	Date           string              `json:"date"`
	Amount         decimal.Decimal     `json:"amount"`
	PaymentModeID  string              `json:"payment_mode_id,omitempty"`
	UserID         string              `json:"user_id,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Orders         []OrderLinkResponse `json:"orders,omitempty"`
}

// PaymentTotalsResponse agregados del listado.
type PaymentTotalsResponse struct {
	Count    int             `json:"count"`
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
	Net      decimal.Decimal `json:"net"`
}

// PaymentListResponse lista paginada de pagos con totales del filtro completo.
type PaymentListResponse struct {
	Items  []PaymentResponse     `json:"items"`
	Page   PageResponse          `json:"page"`
	Totals PaymentTotalsResponse `json:"totals"`
}

// OrderBalanceResponse saldo proyectado de una orden.
type OrderBalanceResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	UserID        string          `json:"user_id"`
	WarehouseID   string          `json:"warehouse_id"`
	OrderDate     time.Time       `json:"order_date"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	DueAmount     decimal.Decimal `json:"due_amount"`
	PaymentStatus string          `json:"payment_status"`
	IsDeletable   bool            `json:"is_deletable"`
}
