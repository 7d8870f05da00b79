package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.PaymentRepository          = (*PaymentRepo)(nil)
	_ repository.OrderPaymentLinkRepository = (*OrderPaymentLinkRepo)(nil)
)

type scanner interface {
	Scan(dest ...any) error
}

// PaymentRepo implementación de PaymentRepository sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q      Querier
	schema Schema
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier, schema Schema) *PaymentRepo {
	return &PaymentRepo{q: q, schema: schema}
}

func (r *PaymentRepo) columns() string {
	key := "''"
	if r.schema.PaymentKeyColumn {
		key = "COALESCE(idempotency_key, '')"
	}
	return `id, company_id, warehouse_id, direction, payment_number, payment_date, amount,
		payment_mode_id, COALESCE(user_id::text, ''), COALESCE(notes, ''), ` + key + `,
		COALESCE(created_by::text, ''), created_at`
}

func scanPayment(row scanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.ID, &p.CompanyID, &p.WarehouseID, &p.Direction, &p.Number, &p.Date, &p.Amount,
		&p.PaymentModeID, &p.UserID, &p.Notes, &p.IdempotencyKey, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta el pago. Si el esquema no tiene idempotency_key la clave no se persiste.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	args := []any{
		p.ID, p.CompanyID, p.WarehouseID, p.Direction, p.Number, p.Date, p.Amount,
		p.PaymentModeID, nullable(p.UserID), nullable(p.Notes), nullable(p.CreatedBy), p.CreatedAt,
	}
	query := `
		INSERT INTO payments (id, company_id, warehouse_id, direction, payment_number, payment_date, amount,
			payment_mode_id, user_id, notes, created_by, created_at`
	if r.schema.PaymentKeyColumn {
		query += `, idempotency_key) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
		args = append(args, nullable(p.IdempotencyKey))
	} else {
		query += `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	}
	_, err := r.q.Exec(ctx, query, args...)
	return classify("insert payment", err)
}

// GetByID devuelve nil, nil si no existe.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+r.columns()+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get payment", err)
	}
	return p, nil
}

// FindByIdempotencyKey busca el pago previo con la misma clave en la empresa.
func (r *PaymentRepo) FindByIdempotencyKey(ctx context.Context, companyID, key string) (*entity.Payment, error) {
	if !r.schema.PaymentKeyColumn {
		return nil, fmt.Errorf("find payment by idempotency key: %w: payments.idempotency_key", domain.ErrSchemaMismatch)
	}
	query := `SELECT ` + r.columns() + ` FROM payments WHERE company_id = $1 AND idempotency_key = $2`
	p, err := scanPayment(r.q.QueryRow(ctx, query, companyID, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find payment by idempotency key", err)
	}
	return p, nil
}

// FindSimilar mismo día, mismos datos de negocio, monto dentro de la tolerancia y creado
// después de CreatedAfter. Devuelve el más reciente.
func (r *PaymentRepo) FindSimilar(ctx context.Context, q repository.SimilarPaymentQuery) (*entity.Payment, error) {
	query := `
		SELECT ` + r.columns() + `
		FROM payments
		WHERE company_id = $1 AND warehouse_id = $2 AND direction = $3
			AND user_id = $4 AND payment_mode_id = $5
			AND payment_date = $6::date
			AND abs(amount - $7) <= $8
			AND created_at >= $9
		ORDER BY created_at DESC
		LIMIT 1`
	p, err := scanPayment(r.q.QueryRow(ctx, query,
		q.CompanyID, q.WarehouseID, q.Direction, q.UserID, q.PaymentModeID,
		q.Date, q.Amount, q.Tolerance, q.CreatedAfter,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find similar payment", err)
	}
	return p, nil
}

// Delete borra el pago; los enlaces se borran antes con DeleteByPayment.
func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return classify("delete payment", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pago %s", domain.ErrNotFound, id)
	}
	return nil
}

func paymentConditions(f entity.PaymentFilter) *conditions {
	c := &conditions{}
	if f.CompanyID != "" {
		c.add("company_id = ?", f.CompanyID)
	}
	if f.WarehouseID != "" {
		c.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.UserID != "" {
		c.add("user_id = ?", f.UserID)
	}
	if f.PaymentModeID != "" {
		c.add("payment_mode_id = ?", f.PaymentModeID)
	}
	if f.Direction != "" {
		c.add("direction = ?", f.Direction)
	}
	if f.From != nil {
		c.add("payment_date >= ?::date", *f.From)
	}
	if f.To != nil {
		c.add("payment_date <= ?::date", *f.To)
	}
	if f.OrderID != "" {
		c.add("EXISTS (SELECT 1 FROM order_payments op WHERE op.payment_id = payments.id AND op.order_id = ?)", f.OrderID)
	}
	if f.Search != "" {
		c.add("(payment_number ILIKE ? OR notes ILIKE ?)", "%"+f.Search+"%")
	}
	return c
}

// List pagos filtrados, más recientes primero.
func (r *PaymentRepo) List(ctx context.Context, f entity.PaymentFilter) ([]*entity.Payment, error) {
	c := paymentConditions(f)
	query := `SELECT ` + r.columns() + ` FROM payments` + c.sql() +
		` ORDER BY payment_date DESC, created_at DESC` + c.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, classify("list payments", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Count total de pagos que cumplen el filtro (ignora paginación).
func (r *PaymentRepo) Count(ctx context.Context, f entity.PaymentFilter) (int, error) {
	c := paymentConditions(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+c.sql(), c.args...).Scan(&n); err != nil {
		return 0, classify("count payments", err)
	}
	return n, nil
}

// Totals suma entradas y salidas del filtro.
func (r *PaymentRepo) Totals(ctx context.Context, f entity.PaymentFilter) (entity.PaymentTotals, error) {
	c := paymentConditions(f)
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'in'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'out'), 0)
		FROM payments` + c.sql()
	var t entity.PaymentTotals
	if err := r.q.QueryRow(ctx, query, c.args...).Scan(&t.Count, &t.TotalIn, &t.TotalOut); err != nil {
		return entity.PaymentTotals{}, classify("payment totals", err)
	}
	return t, nil
}

// OrderPaymentLinkRepo enlaces orden-pago (tabla order_payments).
type OrderPaymentLinkRepo struct {
	q Querier
}

// NewOrderPaymentLinkRepository construye el adaptador.
func NewOrderPaymentLinkRepository(q Querier) *OrderPaymentLinkRepo {
	return &OrderPaymentLinkRepo{q: q}
}

func (r *OrderPaymentLinkRepo) Exists(ctx context.Context, orderID, paymentID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_payments WHERE order_id = $1 AND payment_id = $2)`,
		orderID, paymentID,
	).Scan(&ok)
	if err != nil {
		return false, classify("link exists", err)
	}
	return ok, nil
}

func (r *OrderPaymentLinkRepo) Create(ctx context.Context, l *entity.OrderPaymentLink) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_payments (id, order_id, payment_id, amount, payment_date)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.OrderID, l.PaymentID, l.Amount, l.Date,
	)
	return classify("insert order payment", err)
}

func (r *OrderPaymentLinkRepo) ListByPayment(ctx context.Context, paymentID string) ([]*entity.OrderPaymentLink, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, payment_id, amount, payment_date
		FROM order_payments WHERE payment_id = $1 ORDER BY order_id`, paymentID)
	if err != nil {
		return nil, classify("list order payments", err)
	}
	defer rows.Close()
	var list []*entity.OrderPaymentLink
	for rows.Next() {
		var l entity.OrderPaymentLink
		if err := rows.Scan(&l.ID, &l.OrderID, &l.PaymentID, &l.Amount, &l.Date); err != nil {
			return nil, fmt.Errorf("scan order payment: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func (r *OrderPaymentLinkRepo) DeleteByPayment(ctx context.Context, paymentID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM order_payments WHERE payment_id = $1`, paymentID)
	return classify("delete order payments", err)
}

// SumByOrder suma de los montos enlazados a la orden (0 si no hay).
func (r *OrderPaymentLinkRepo) SumByOrder(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM order_payments WHERE order_id = $1`, orderID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, classify("sum order payments", err)
	}
	return sum, nil
}
