package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/numbering"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// errKeyTaken un insert concurrente con la misma clave de idempotencia ganó la carrera.
var errKeyTaken = errors.New("idempotency key already used")

// UseCase motor de conciliación de pagos: guard -> numeración -> inserts -> proyección,
// todo dentro de una transacción.
type UseCase struct {
	tx        repository.TxRunner
	repos     repository.Repos
	guard     *Guard
	projector Projector
	numbers   *numbering.Generator
	locker    SubmissionLocker
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewUseCase(
	tx repository.TxRunner,
	repos repository.Repos,
	numbers *numbering.Generator,
	locker SubmissionLocker,
	policy GuardPolicy,
	log *logger.Logger,
) *UseCase {
	log = logger.OrNop(log).Named("payment")
	if locker == nil {
		locker = NoopLocker{}
	}
	return &UseCase{
		tx:      tx,
		repos:   repos,
		guard:   NewGuard(policy, log),
		numbers: numbers,
		locker:  locker,
		log:     log,
		now:     time.Now,
	}
}

type linkInput struct {
	orderID string
	amount  decimal.Decimal
}

// Create registra un pago y lo aplica a las órdenes indicadas. Un duplicado no escribe nada
// y devuelve la identidad del pago existente con IsDuplicate=true.
func (s *UseCase) Create(ctx context.Context, companyID, createdBy string, in dto.CreatePaymentRequest) (*dto.CreatePaymentResponse, error) {
	p, links, err := s.buildPayment(companyID, createdBy, in)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, Fingerprint(p))
	if err != nil {
		s.log.Warn().Err(err).Msg("bloqueo de envío no disponible; se continúa sin bloqueo")
		release = func() {}
	}
	defer release()

	var res GuardResult
	err = s.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		wh, err := s.warehouseFor(ctx, r, companyID, p.WarehouseID)
		if err != nil {
			return err
		}

		res, err = s.guard.Check(ctx, r.Payments, p)
		if err != nil || res.Duplicate {
			return err
		}

		p.Number, err = s.numbers.Next(ctx, r.Sequences, numbering.Series{
			Scope:  repository.SequencePayments,
			Prefix: ledger.PaymentPrefix(p.Direction, wh.NumberingCode()),
		})
		if err != nil {
			return err
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) && p.IdempotencyKey != "" {
				return errKeyTaken
			}
			if errors.Is(err, repository.ErrUniqueViolation) {
				return fmt.Errorf("%w: número de pago %s en uso", domain.ErrConflict, p.Number)
			}
			return err
		}

		return s.applyLinks(ctx, r, p, links)
	})

	if errors.Is(err, errKeyTaken) {
		return s.duplicateByKey(ctx, p)
	}
	if err != nil {
		return nil, err
	}
	if res.Duplicate {
		s.log.Info().
			Str("payment_id", res.PaymentID).
			Str("reason", res.Reason).
			Msg("pago duplicado; no se registra")
		return &dto.CreatePaymentResponse{
			PaymentID:       res.PaymentID,
			PaymentNumber:   res.PaymentNumber,
			IsDuplicate:     true,
			DuplicateReason: res.Reason,
		}, nil
	}

	s.log.Info().
		Str("payment_id", p.ID).
		Str("number", p.Number).
		Str("amount", p.Amount.String()).
		Int("orders", len(links)).
		Msg("pago registrado")
	return &dto.CreatePaymentResponse{PaymentID: p.ID, PaymentNumber: p.Number}, nil
}

// applyLinks crea los enlaces y proyecta una sola vez cada orden distinta.
func (s *UseCase) applyLinks(ctx context.Context, r repository.Repos, p *entity.Payment, links []linkInput) error {
	var touched []string
	seen := make(map[string]bool)
	for _, l := range links {
		order, err := r.Orders.GetByID(ctx, l.orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, l.orderID)
		}
		if order.CompanyID != p.CompanyID {
			return fmt.Errorf("%w: la orden %s es de otra empresa", domain.ErrForbidden, l.orderID)
		}

		exists, err := r.Links.Exists(ctx, l.orderID, p.ID)
		if err != nil {
			return err
		}
		if !exists {
			err = r.Links.Create(ctx, &entity.OrderPaymentLink{
				ID:        uuid.New().String(),
				OrderID:   l.orderID,
				PaymentID: p.ID,
				Amount:    l.amount,
				Date:      p.CreatedAt,
			})
			if err != nil {
				return err
			}
		}

		if !seen[l.orderID] {
			seen[l.orderID] = true
			touched = append(touched, l.orderID)
		}
	}
	return s.projectAll(ctx, r, touched)
}

func (s *UseCase) projectAll(ctx context.Context, r repository.Repos, orderIDs []string) error {
	for _, id := range orderIDs {
		if _, err := s.projector.Project(ctx, r, id); err != nil {
			return err
		}
	}
	return nil
}

// duplicateByKey responde con el pago que ganó la carrera por la clave de idempotencia.
func (s *UseCase) duplicateByKey(ctx context.Context, p *entity.Payment) (*dto.CreatePaymentResponse, error) {
	winner, err := s.repos.Payments.FindByIdempotencyKey(ctx, p.CompanyID, p.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("find payment by idempotency key: %w", err)
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: clave de idempotencia en uso", domain.ErrConflict)
	}
	s.log.Info().Str("payment_id", winner.ID).Msg("clave de idempotencia tomada por un envío concurrente")
	return &dto.CreatePaymentResponse{
		PaymentID:       winner.ID,
		PaymentNumber:   winner.Number,
		IsDuplicate:     true,
		DuplicateReason: ReasonIdempotencyKey,
	}, nil
}

// Delete elimina el pago y sus enlaces y re-proyecta las órdenes que tenía aplicadas.
func (s *UseCase) Delete(ctx context.Context, companyID, id string) error {
	return s.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		p, err := r.Payments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil || p.CompanyID != companyID {
			return fmt.Errorf("%w: pago %s", domain.ErrNotFound, id)
		}

		links, err := r.Links.ListByPayment(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Links.DeleteByPayment(ctx, id); err != nil {
			return err
		}
		if err := r.Payments.Delete(ctx, id); err != nil {
			return err
		}

		var orders []string
		seen := make(map[string]bool)
		for _, l := range links {
			if !seen[l.OrderID] {
				seen[l.OrderID] = true
				orders = append(orders, l.OrderID)
			}
		}
		if err := s.projectAll(ctx, r, orders); err != nil {
			return err
		}
		s.log.Info().Str("payment_id", id).Int("orders", len(orders)).Msg("pago eliminado")
		return nil
	})
}

// Get obtiene un pago con sus enlaces.
func (s *UseCase) Get(ctx context.Context, companyID, id string) (*dto.PaymentResponse, error) {
	p, err := s.repos.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, fmt.Errorf("%w: pago %s", domain.ErrNotFound, id)
	}
	links, err := s.repos.Links.ListByPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toPaymentResponse(p)
	for _, l := range links {
		out.Orders = append(out.Orders, dto.OrderLinkResponse{OrderID: l.OrderID, Amount: l.Amount, Date: l.Date})
	}
	return &out, nil
}

// List lista pagos con filtros; conteo y totales cubren el filtro completo, no solo la página.
func (s *UseCase) List(ctx context.Context, companyID string, in dto.PaymentFilterRequest) (*dto.PaymentListResponse, error) {
	in.DefaultPage()
	f, err := toPaymentFilter(companyID, in)
	if err != nil {
		return nil, err
	}

	var (
		items  []*entity.Payment
		count  int
		totals entity.PaymentTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repos.Payments.List(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.repos.Payments.Count(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.repos.Payments.Totals(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.PaymentListResponse{
		Items:  make([]dto.PaymentResponse, 0, len(items)),
		Page:   dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: count},
		Totals: toTotalsResponse(totals),
	}
	for _, p := range items {
		out.Items = append(out.Items, toPaymentResponse(p))
	}
	return out, nil
}

// Totals agregados del filtro (sin paginar).
func (s *UseCase) Totals(ctx context.Context, companyID string, in dto.PaymentFilterRequest) (*dto.PaymentTotalsResponse, error) {
	f, err := toPaymentFilter(companyID, in)
	if err != nil {
		return nil, err
	}
	t, err := s.repos.Payments.Totals(ctx, f)
	if err != nil {
		return nil, err
	}
	out := toTotalsResponse(t)
	return &out, nil
}

// UnpaidOrders órdenes pendientes de una contraparte, de la más antigua a la más reciente.
func (s *UseCase) UnpaidOrders(ctx context.Context, companyID, userID, warehouseID string) ([]dto.OrderBalanceResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id es obligatorio", domain.ErrInvalidInput)
	}
	orders, err := s.repos.Orders.ListUnpaid(ctx, companyID, userID, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderBalanceResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderBalanceResponse(o))
	}
	return out, nil
}

// Reproject vuelve a proyectar el saldo de una orden desde sus enlaces.
func (s *UseCase) Reproject(ctx context.Context, companyID, orderID string) (*dto.OrderBalanceResponse, error) {
	var out dto.OrderBalanceResponse
	err := s.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		o, err := r.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil || o.CompanyID != companyID {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
		}
		projected, err := s.projector.Project(ctx, r, orderID)
		if err != nil {
			return err
		}
		out = toOrderBalanceResponse(projected)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UseCase) warehouseFor(ctx context.Context, r repository.Repos, companyID, id string) (*entity.Warehouse, error) {
	wh, err := r.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	if wh.CompanyID != companyID {
		return nil, fmt.Errorf("%w: la bodega %s es de otra empresa", domain.ErrForbidden, id)
	}
	return wh, nil
}

func (s *UseCase) buildPayment(companyID, createdBy string, in dto.CreatePaymentRequest) (*entity.Payment, []linkInput, error) {
	dir, err := entity.ParsePaymentDirection(in.Direction)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.WarehouseID) == "" {
		return nil, nil, fmt.Errorf("%w: warehouse_id es obligatorio", domain.ErrInvalidInput)
	}
	date, err := time.Parse(dto.DateLayout, in.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, in.Date)
	}
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	}

	links := make([]linkInput, 0, len(in.Orders))
	for _, o := range in.Orders {
		if strings.TrimSpace(o.OrderID) == "" {
			return nil, nil, fmt.Errorf("%w: order_id es obligatorio", domain.ErrInvalidInput)
		}
		if !o.Amount.GreaterThan(decimal.Zero) {
			return nil, nil, fmt.Errorf("%w: el monto aplicado a %s debe ser mayor que cero", domain.ErrInvalidInput, o.OrderID)
		}
		links = append(links, linkInput{orderID: o.OrderID, amount: o.Amount})
	}

	now := s.now()
	return &entity.Payment{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		WarehouseID:    in.WarehouseID,
		Direction:      dir,
		Date:           date,
		Amount:         in.Amount,
		PaymentModeID:  in.PaymentModeID,
		UserID:         in.UserID,
		Notes:          in.Notes,
		IdempotencyKey: strings.TrimSpace(in.IdempotencyKey),
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}, links, nil
}

func toPaymentFilter(companyID string, in dto.PaymentFilterRequest) (entity.PaymentFilter, error) {
	f := entity.PaymentFilter{
		CompanyID:     companyID,
		WarehouseID:   in.WarehouseID,
		UserID:        in.UserID,
		PaymentModeID: in.PaymentModeID,
		OrderID:       in.OrderID,
		Search:        in.Search,
		Limit:         in.Limit,
		Offset:        in.Offset,
	}
	if in.Direction != "" {
		dir, err := entity.ParsePaymentDirection(in.Direction)
		if err != nil {
			return f, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		f.Direction = dir
	}
	var err error
	if f.From, err = parseOptionalDate(in.From); err != nil {
		return f, err
	}
	if f.To, err = parseOptionalDate(in.To); err != nil {
		return f, err
	}
	return f, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		WarehouseID:    p.WarehouseID,
		Direction:      string(p.Direction),
		Number:         p.Number,
		Date:           p.Date.Format(dto.DateLayout),
		Amount:         p.Amount,
		PaymentModeID:  p.PaymentModeID,
		UserID:         p.UserID,
		Notes:          p.Notes,
		IdempotencyKey: p.IdempotencyKey,
		CreatedAt:      p.CreatedAt,
	}
}

func toTotalsResponse(t entity.PaymentTotals) dto.PaymentTotalsResponse {
	return dto.PaymentTotalsResponse{Count: t.Count, TotalIn: t.TotalIn, TotalOut: t.TotalOut, Net: t.Net()}
}

func toOrderBalanceResponse(o *entity.Order) dto.OrderBalanceResponse {
	return dto.OrderBalanceResponse{
		ID:            o.ID,
		Number:        o.Number,
		UserID:        o.UserID,
		WarehouseID:   o.WarehouseID,
		OrderDate:     o.OrderDate,
		Total:         o.Total,
		PaidAmount:    o.PaidAmount,
		DueAmount:     o.DueAmount,
		PaymentStatus: string(o.PaymentStatus),
		IsDeletable:   o.IsDeletable,
	}
}
