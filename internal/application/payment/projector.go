package payment

import (
	"context"
	"fmt"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// Projector recalcula el saldo de una orden desde la suma de sus enlaces.
// Es el único punto que escribe paid_amount, due_amount, payment_status e is_deletable.
type Projector struct{}

// Project bloquea la orden, suma sus enlaces y escribe el saldo. Idempotente.
func (Projector) Project(ctx context.Context, r repository.Repos, orderID string) (*entity.Order, error) {
	order, err := r.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("project order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	sum, err := r.Links.SumByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("project order: %w", err)
	}
	b := ledger.ProjectOrder(order.Total, sum)
	if err := r.Orders.UpdateBalance(ctx, orderID, b); err != nil {
		return nil, fmt.Errorf("project order: %w", err)
	}
	order.PaidAmount = b.PaidAmount
	order.DueAmount = b.DueAmount
	order.PaymentStatus = b.PaymentStatus
	order.IsDeletable = b.IsDeletable
	return order, nil
}
