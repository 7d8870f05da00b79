package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDirection sentido del dinero: cobro (in) o pago a proveedor (out).
type PaymentDirection string

const (
	PaymentDirectionIn  PaymentDirection = "in"
	PaymentDirectionOut PaymentDirection = "out"
)

// ParsePaymentDirection valida el valor recibido en la frontera de la API.
func ParsePaymentDirection(s string) (PaymentDirection, error) {
	switch PaymentDirection(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentDirectionIn:
		return PaymentDirectionIn, nil
	case PaymentDirectionOut:
		return PaymentDirectionOut, nil
	}
	return "", fmt.Errorf("dirección de pago desconocida %q", s)
}

// Code devuelve el segmento usado en la numeración (IN / OUT).
func (d PaymentDirection) Code() string {
	return strings.ToUpper(string(d))
}

// Payment es un registro inmutable del libro de dinero; solo se puede eliminar.
type Payment struct {
	ID             string
	CompanyID      string
	WarehouseID    string
	Direction      PaymentDirection
	Number         string // PAY-IN-BOG-0001; único
	Date           time.Time
	Amount         decimal.Decimal
	PaymentModeID  string
	UserID         string // contraparte (cliente o proveedor)
	Notes          string
	IdempotencyKey string // opcional; único por empresa cuando existe
	CreatedBy      string
	CreatedAt      time.Time
}

// OrderPaymentLink aplica (parte de) un pago a una orden. El par (OrderID, PaymentID) no se repite.
type OrderPaymentLink struct {
	ID        string
	OrderID   string
	PaymentID string
	Amount    decimal.Decimal
	Date      time.Time
}

// PaymentFilter filtros del listado de pagos. Los campos vacíos no filtran.
type PaymentFilter struct {
	CompanyID     string
	WarehouseID   string
	UserID        string
	PaymentModeID string
	OrderID       string
	Direction     PaymentDirection
	From          *time.Time
	To            *time.Time
	Search        string
	Limit         int
	Offset        int
}

// PaymentTotals agregados del listado de pagos.
type PaymentTotals struct {
	Count    int
	TotalIn  decimal.Decimal
	TotalOut decimal.Decimal
}

// Net devuelve entradas menos salidas.
func (t PaymentTotals) Net() decimal.Decimal {
	return t.TotalIn.Sub(t.TotalOut)
}
