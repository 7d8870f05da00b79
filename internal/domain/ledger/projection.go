package ledger

import (
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProjectOrder deriva el saldo de una orden desde la suma de sus pagos enlazados (servicio de dominio).
// Estado: pendiente <= 0.01 -> paid; pagado <= 0 -> unpaid; resto -> partially_paid.
// Solo una orden sin pagos (unpaid) sigue siendo eliminable.
func ProjectOrder(total, linkedSum decimal.Decimal) entity.OrderBalance {
	due := total.Sub(linkedSum)

	var status entity.PaymentStatus
	switch {
	case due.LessThanOrEqual(Tolerance):
		status = entity.PaymentStatusPaid
	case linkedSum.LessThanOrEqual(decimal.Zero):
		status = entity.PaymentStatusUnpaid
	default:
		status = entity.PaymentStatusPartiallyPaid
	}

	return entity.OrderBalance{
		PaidAmount:    linkedSum,
		DueAmount:     due,
		PaymentStatus: status,
		IsDeletable:   status == entity.PaymentStatusUnpaid,
	}
}
