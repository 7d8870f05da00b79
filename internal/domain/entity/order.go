package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de cobro de una orden, derivado de sus pagos enlazados.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// Order agregado propiedad del módulo de órdenes (CRUD externo). Este núcleo solo
// escribe PaidAmount, DueAmount, PaymentStatus e IsDeletable a través del proyector.
type Order struct {
	ID            string
	CompanyID     string
	WarehouseID   string
	UserID        string
	Number        string
	OrderDate     time.Time
	Total         decimal.Decimal
	PaidAmount    decimal.Decimal
	DueAmount     decimal.Decimal
	PaymentStatus PaymentStatus
	IsDeletable   bool
	UpdatedAt     time.Time
}

// OrderBalance resultado de la proyección de saldo de una orden.
type OrderBalance struct {
	PaidAmount    decimal.Decimal
	DueAmount     decimal.Decimal
	PaymentStatus PaymentStatus
	IsDeletable   bool
}
