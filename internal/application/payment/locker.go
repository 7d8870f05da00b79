package payment

import (
	"context"
	"strings"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// SubmissionLocker serializa envíos idénticos de un pago mientras dura la transacción,
// para que el segundo vea el pago confirmado por el primero en el chequeo de similitud.
type SubmissionLocker interface {
	Acquire(ctx context.Context, fingerprint string) (release func(), err error)
}

// NoopLocker no bloquea (sin Redis configurado).
type NoopLocker struct{}

// Acquire implementa SubmissionLocker.
func (NoopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// Fingerprint identifica un envío por los campos exactos del chequeo de similitud. El monto
// queda fuera: dos montos dentro de la tolerancia deben compartir bloqueo, y FindSimilar
// hace la comparación fina. Con clave de idempotencia basta la clave.
func Fingerprint(p *entity.Payment) string {
	if p.IdempotencyKey != "" {
		return strings.Join([]string{p.CompanyID, "key", p.IdempotencyKey}, "|")
	}
	return strings.Join([]string{
		p.CompanyID,
		p.WarehouseID,
		string(p.Direction),
		p.UserID,
		p.PaymentModeID,
		p.Date.Format("2006-01-02"),
	}, "|")
}
