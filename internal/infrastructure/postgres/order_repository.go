package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, company_id, warehouse_id, COALESCE(user_id::text, ''), order_number, order_date,
	total, paid_amount, due_amount, payment_status, is_deletable, updated_at`

// OrderRepo lectura de órdenes y escritura del saldo proyectado.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row scanner) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.CompanyID, &o.WarehouseID, &o.UserID, &o.Number, &o.OrderDate,
		&o.Total, &o.PaidAmount, &o.DueAmount, &o.PaymentStatus, &o.IsDeletable, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) get(ctx context.Context, query, op, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return o, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, "get order", id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, "get order for update", id)
}

// UpdateBalance escribe únicamente los campos derivados de los pagos.
func (r *OrderRepo) UpdateBalance(ctx context.Context, id string, b entity.OrderBalance) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE orders
		SET paid_amount = $2, due_amount = $3, payment_status = $4, is_deletable = $5, updated_at = now()
		WHERE id = $1`,
		id, b.PaidAmount, b.DueAmount, b.PaymentStatus, b.IsDeletable,
	)
	if err != nil {
		return classify("update order balance", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return nil
}

// ListUnpaid órdenes no pagadas de la contraparte, más antiguas primero.
func (r *OrderRepo) ListUnpaid(ctx context.Context, companyID, userID, warehouseID string) ([]*entity.Order, error) {
	c := &conditions{}
	c.add("company_id = ?", companyID)
	c.add("payment_status <> ?", entity.PaymentStatusPaid)
	if userID != "" {
		c.add("user_id = ?", userID)
	}
	if warehouseID != "" {
		c.add("warehouse_id = ?", warehouseID)
	}
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders`+c.sql()+` ORDER BY order_date, order_number`, c.args...)
	if err != nil {
		return nil, classify("list unpaid orders", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
