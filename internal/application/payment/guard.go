package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// Motivos de duplicado.
const (
	ReasonIdempotencyKey = "idempotency_key"
	ReasonSimilarity     = "similarity"
)

// GuardPolicy parámetros del guard de duplicados.
//
// Las dos banderas FailOpen conservan el comportamiento permisivo: si faltan datos para
// comparar, o el esquema no tiene la columna idempotency_key, el pago se trata como nuevo.
type GuardPolicy struct {
	Window                     time.Duration
	Tolerance                  decimal.Decimal
	FailOpenOnMissingFields    bool
	FailOpenOnMissingKeyColumn bool
}

// DefaultGuardPolicy ventana de 30 s, tolerancia 0.01 y ambas políticas fail-open activas.
func DefaultGuardPolicy() GuardPolicy {
	return GuardPolicy{
		Window:                     30 * time.Second,
		Tolerance:                  ledger.Tolerance,
		FailOpenOnMissingFields:    true,
		FailOpenOnMissingKeyColumn: true,
	}
}

// GuardResult resultado del chequeo previo a persistir un pago.
type GuardResult struct {
	Duplicate     bool
	PaymentID     string
	PaymentNumber string
	Reason        string
}

// Guard detecta reenvíos de un mismo pago: primero por clave de idempotencia y,
// si no hay coincidencia, por similitud dentro de la ventana.
type Guard struct {
	policy GuardPolicy
	log    *logger.Logger
	now    func() time.Time
}

// NewGuard construye el guard.
func NewGuard(policy GuardPolicy, log *logger.Logger) *Guard {
	if policy.Tolerance.IsZero() {
		policy.Tolerance = ledger.Tolerance
	}
	return &Guard{policy: policy, log: logger.OrNop(log), now: time.Now}
}

// Check no escribe nada. p debe traer los campos de negocio ya validados.
func (g *Guard) Check(ctx context.Context, payments repository.PaymentRepository, p *entity.Payment) (GuardResult, error) {
	if p.IdempotencyKey != "" {
		existing, err := payments.FindByIdempotencyKey(ctx, p.CompanyID, p.IdempotencyKey)
		switch {
		case errors.Is(err, domain.ErrSchemaMismatch) && g.policy.FailOpenOnMissingKeyColumn:
			g.log.Warn().Err(err).Msg("chequeo por idempotency_key omitido: columna ausente")
		case err != nil:
			return GuardResult{}, fmt.Errorf("duplicate guard: %w", err)
		case existing != nil:
			return duplicateOf(existing, ReasonIdempotencyKey), nil
		}
	}

	if missing := missingSimilarityFields(p); len(missing) > 0 {
		if !g.policy.FailOpenOnMissingFields {
			return GuardResult{}, fmt.Errorf("%w: faltan campos para detectar duplicados: %v", domain.ErrInvalidInput, missing)
		}
		g.log.Warn().Strs("missing", missing).Msg("chequeo por similitud omitido: datos insuficientes")
		return GuardResult{}, nil
	}

	existing, err := payments.FindSimilar(ctx, repository.SimilarPaymentQuery{
		CompanyID:     p.CompanyID,
		WarehouseID:   p.WarehouseID,
		Direction:     p.Direction,
		UserID:        p.UserID,
		PaymentModeID: p.PaymentModeID,
		Date:          p.Date,
		Amount:        p.Amount,
		Tolerance:     g.policy.Tolerance,
		CreatedAfter:  g.now().Add(-g.policy.Window),
	})
	if err != nil {
		return GuardResult{}, fmt.Errorf("duplicate guard: %w", err)
	}
	if existing != nil {
		return duplicateOf(existing, ReasonSimilarity), nil
	}
	return GuardResult{}, nil
}

func duplicateOf(p *entity.Payment, reason string) GuardResult {
	return GuardResult{Duplicate: true, PaymentID: p.ID, PaymentNumber: p.Number, Reason: reason}
}

func missingSimilarityFields(p *entity.Payment) []string {
	var missing []string
	if p.CompanyID == "" {
		missing = append(missing, "company_id")
	}
	if p.WarehouseID == "" {
		missing = append(missing, "warehouse_id")
	}
	if p.Direction == "" {
		missing = append(missing, "direction")
	}
	if p.UserID == "" {
		missing = append(missing, "user_id")
	}
	if p.PaymentModeID == "" {
		missing = append(missing, "payment_mode_id")
	}
	if p.Date.IsZero() {
		missing = append(missing, "date")
	}
	return missing
}
