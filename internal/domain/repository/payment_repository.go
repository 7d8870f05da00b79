package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SimilarPaymentQuery criterio del chequeo de similitud del guard de duplicados.
type SimilarPaymentQuery struct {
	CompanyID     string
	WarehouseID   string
	Direction     entity.PaymentDirection
	UserID        string
	PaymentModeID string
	Date          time.Time // comparación exacta por día
	Amount        decimal.Decimal
	Tolerance     decimal.Decimal
	CreatedAfter  time.Time
}

// PaymentRepository define el puerto de persistencia para pagos (libro de dinero).
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	// FindByIdempotencyKey devuelve domain.ErrSchemaMismatch si la columna no existe.
	FindByIdempotencyKey(ctx context.Context, companyID, key string) (*entity.Payment, error)
	// FindSimilar devuelve el pago coincidente más reciente o nil.
	FindSimilar(ctx context.Context, q SimilarPaymentQuery) (*entity.Payment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f entity.PaymentFilter) ([]*entity.Payment, error)
	Count(ctx context.Context, f entity.PaymentFilter) (int, error)
	Totals(ctx context.Context, f entity.PaymentFilter) (entity.PaymentTotals, error)
}

// OrderPaymentLinkRepository puerto para los enlaces orden-pago.
type OrderPaymentLinkRepository interface {
	Exists(ctx context.Context, orderID, paymentID string) (bool, error)
	Create(ctx context.Context, l *entity.OrderPaymentLink) error
	ListByPayment(ctx context.Context, paymentID string) ([]*entity.OrderPaymentLink, error)
	DeleteByPayment(ctx context.Context, paymentID string) error
	SumByOrder(ctx context.Context, orderID string) (decimal.Decimal, error)
}
