package inventory

import (
	"context"
	"errors"
	"fmt"
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
)

// TransferUseCase traslados entre bodegas: cada ítem descuenta en origen (transfer_out) y
// suma en destino (transfer_in). Todos los ítems se confirman juntos o ninguno.
type TransferUseCase struct {
	tx      repository.TxRunner
	repos   repository.Repos
	engine  *MovementEngine
	numbers *numbering.Generator
	log     *logger.Logger
	now     func() time.Time
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	tx repository.TxRunner,
	repos repository.Repos,
	engine *MovementEngine,
	numbers *numbering.Generator,
	log *logger.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		tx:      tx,
		repos:   repos,
		engine:  engine,
		numbers: numbers,
		log:     logger.OrNop(log).Named("stock_transfer"),
		now:     time.Now,
	}
}

// Create valida y registra el traslado. Origen y destino deben ser distintos y de la misma
// empresa; si alguna bodega no tiene fila de stock para un producto falla con ErrNotFound.
func (uc *TransferUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	t, err := uc.buildTransfer(companyID, userID, in)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		from, err := warehouseOf(ctx, r, companyID, t.FromWarehouseID)
		if err != nil {
			return err
		}
		to, err := r.Warehouses.GetByID(ctx, t.ToWarehouseID)
		if err != nil {
			return err
		}
		if to == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, t.ToWarehouseID)
		}
		if to.CompanyID != from.CompanyID {
			return fmt.Errorf("%w: origen y destino deben ser de la misma empresa", domain.ErrInvalidInput)
		}
		for _, it := range t.Items {
			if _, err := activeProduct(ctx, r, companyID, it.ProductID); err != nil {
				return err
			}
		}

		t.ReferenceNumber, err = uc.numbers.Next(ctx, r.Sequences, numbering.Series{
			Scope:  repository.SequenceTransfers,
			Prefix: ledger.TransferPrefix(from.NumberingCode(), t.TransferDate),
		})
		if err != nil {
			return err
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return fmt.Errorf("%w: número de traslado %s en uso", domain.ErrConflict, t.ReferenceNumber)
			}
			return err
		}

		keys := make([]LevelKey, 0, 2*len(t.Items))
		for _, it := range t.Items {
			keys = append(keys, LevelKey{it.ProductID, t.FromWarehouseID}, LevelKey{it.ProductID, t.ToWarehouseID})
		}
		if err := uc.engine.LockLevels(ctx, r, keys); err != nil {
			return err
		}

		for _, it := range t.Items {
			outbound := uc.movement(t, it, t.FromWarehouseID, it.Quantity.Neg(), entity.MovementKindTransferOut, userID)
			if _, err := uc.engine.Apply(ctx, r, outbound); err != nil {
				return err
			}
			inbound := uc.movement(t, it, t.ToWarehouseID, it.Quantity, entity.MovementKindTransferIn, userID)
			if _, err := uc.engine.Apply(ctx, r, inbound); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("reference", t.ReferenceNumber).
		Int("items", len(t.Items)).
		Msg("traslado registrado")
	return toTransferResponse(t), nil
}

// Get obtiene un traslado con sus ítems.
func (uc *TransferUseCase) Get(ctx context.Context, companyID, id string) (*dto.TransferResponse, error) {
	t, err := uc.repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.CompanyID != companyID {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return toTransferResponse(t), nil
}

// List lista traslados; warehouseID filtra por origen o destino.
func (uc *TransferUseCase) List(ctx context.Context, companyID, warehouseID string, page dto.PageRequest) (*dto.TransferListResponse, error) {
	page.DefaultPage()
	items, err := uc.repos.Transfers.List(ctx, entity.TransferFilter{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, t := range items {
		out.Items = append(out.Items, *toTransferResponse(t))
	}
	return out, nil
}

func (uc *TransferUseCase) buildTransfer(companyID, userID string, in dto.CreateTransferRequest) (*entity.StockTransfer, error) {
	if in.FromWarehouseID == "" || in.ToWarehouseID == "" {
		return nil, fmt.Errorf("%w: origen y destino son obligatorios", domain.ErrInvalidInput)
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el traslado no tiene ítems", domain.ErrInvalidInput)
	}

	now := uc.now()
	date := now
	if in.Date != "" {
		d, err := time.Parse(dto.DateLayout, in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, in.Date)
		}
		date = d
	}

	t := &entity.StockTransfer{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		TransferDate:    date,
		Notes:           in.Notes,
		CreatedBy:       userID,
		CreatedAt:       now,
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return nil, fmt.Errorf("%w: product_id es obligatorio", domain.ErrInvalidInput)
		}
		if !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: la cantidad de %s debe ser mayor que cero", domain.ErrInvalidInput, it.ProductID)
		}
		t.Items = append(t.Items, entity.StockTransferItem{
			ID:         uuid.New().String(),
			TransferID: t.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
		})
	}
	return t, nil
}

func (uc *TransferUseCase) movement(t *entity.StockTransfer, it entity.StockTransferItem, warehouseID string, qty decimal.Decimal, kind entity.MovementKind, userID string) Movement {
	return Movement{
		CompanyID:     t.CompanyID,
		ProductID:     it.ProductID,
		WarehouseID:   warehouseID,
		Quantity:      qty,
		Kind:          kind,
		ReferenceID:   t.ID,
		ReferenceType: entity.ReferenceTypeStockTransfer,
		Remarks:       t.ReferenceNumber,
		CreatedBy:     userID,
	}
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	out := &dto.TransferResponse{
		ID:              t.ID,
		CompanyID:       t.CompanyID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		ReferenceNumber: t.ReferenceNumber,
		Date:            t.TransferDate.Format(dto.DateLayout),
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
		Items:           make([]dto.TransferItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
