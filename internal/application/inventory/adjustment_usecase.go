package inventory

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// AdjustmentUseCase ciclo de vida de los ajustes manuales: crear, editar (delta neto)
// y eliminar (reversión). Cada cambio de stock pasa por el MovementEngine.
type AdjustmentUseCase struct {
	tx     repository.TxRunner
	repos  repository.Repos
	engine *MovementEngine
	log    *logger.Logger
	now    func() time.Time
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(tx repository.TxRunner, repos repository.Repos, engine *MovementEngine, log *logger.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		tx:     tx,
		repos:  repos,
		engine: engine,
		log:    logger.OrNop(log).Named("stock_adjustment"),
		now:    time.Now,
	}
}

// Create registra el ajuste y aplica +qty (add) o -qty (subtract) al stock.
func (uc *AdjustmentUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateAdjustmentRequest) (*dto.AdjustmentResponse, error) {
	dir, err := entity.ParseAdjustmentDirection(in.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if in.WarehouseID == "" || in.ProductID == "" {
		return nil, fmt.Errorf("%w: warehouse_id y product_id son obligatorios", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}

	now := uc.now()
	adj := &entity.StockAdjustment{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		Direction:   dir,
		Quantity:    in.Quantity,
		Notes:       in.Notes,
		IsDeletable: true,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := warehouseOf(ctx, r, companyID, adj.WarehouseID); err != nil {
			return err
		}
		if _, err := activeProduct(ctx, r, companyID, adj.ProductID); err != nil {
			return err
		}
		if err := r.Adjustments.Create(ctx, adj); err != nil {
			return err
		}
		_, err := uc.engine.Apply(ctx, r, uc.movement(adj, ledger.AdjustmentEffect(adj.Direction, adj.Quantity), entity.MovementKindAdjustment, userID, adj.Notes))
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("adjustment_id", adj.ID).Str("direction", string(dir)).Str("quantity", adj.Quantity.String()).Msg("ajuste registrado")
	return toAdjustmentResponse(adj), nil
}

// Update edita un ajuste aplicando solo el delta neto entre el efecto anterior y el nuevo,
// registrado como un único movimiento de ajuste. Sin delta no se escribe movimiento.
func (uc *AdjustmentUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.UpdateAdjustmentRequest) (*dto.AdjustmentResponse, error) {
	patch, err := toAdjustmentPatch(in)
	if err != nil {
		return nil, err
	}

	var out *entity.StockAdjustment
	err = uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		adj, err := uc.lockAdjustment(ctx, r, companyID, id)
		if err != nil {
			return err
		}
		if patch.Empty() {
			out = adj
			return nil
		}

		newDir, newQty := adj.Direction, adj.Quantity
		if patch.Direction != nil {
			newDir = *patch.Direction
		}
		if patch.Quantity != nil {
			newQty = *patch.Quantity
		}
		delta := ledger.NetDelta(adj.Direction, adj.Quantity, newDir, newQty)
		if !delta.IsZero() {
			remarks := fmt.Sprintf("edición de ajuste: %s %s -> %s %s", adj.Direction, adj.Quantity, newDir, newQty)
			if _, err := uc.engine.Apply(ctx, r, uc.movement(adj, delta, entity.MovementKindAdjustment, userID, remarks)); err != nil {
				return err
			}
		}

		adj.Direction, adj.Quantity = newDir, newQty
		if patch.Notes != nil {
			adj.Notes = *patch.Notes
		}
		adj.UpdatedAt = uc.now()
		if err := r.Adjustments.Update(ctx, adj); err != nil {
			return err
		}
		out = adj
		uc.log.Info().Str("adjustment_id", id).Str("delta", delta.String()).Msg("ajuste editado")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(out), nil
}

// Delete revierte exactamente el efecto del ajuste (adjustment_reversal con referencia al
// ajuste) y elimina el registro. Bloqueado si el ajuste ya no es eliminable.
func (uc *AdjustmentUseCase) Delete(ctx context.Context, companyID, userID, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		adj, err := uc.lockAdjustment(ctx, r, companyID, id)
		if err != nil {
			return err
		}
		reversal := ledger.AdjustmentEffect(adj.Direction, adj.Quantity).Neg()
		if _, err := uc.engine.Apply(ctx, r, uc.movement(adj, reversal, entity.MovementKindAdjustmentReversal, userID, "reversión de ajuste")); err != nil {
			return err
		}
		if err := r.Adjustments.Delete(ctx, id); err != nil {
			return err
		}
		uc.log.Debug().Str("adjustment_id", id).Str("reversal", reversal.String()).Msg("ajuste revertido")
		return nil
	})
}

// Lock marca el ajuste como no eliminable (lo invocan otros módulos cuando el ajuste
// queda referenciado).
func (uc *AdjustmentUseCase) Lock(ctx context.Context, companyID, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		adj, err := r.Adjustments.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if adj == nil || adj.CompanyID != companyID {
			return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
		}
		if !adj.IsDeletable {
			return nil
		}
		adj.IsDeletable = false
		adj.UpdatedAt = uc.now()
		return r.Adjustments.Update(ctx, adj)
	})
}

// Get obtiene un ajuste.
func (uc *AdjustmentUseCase) Get(ctx context.Context, companyID, id string) (*dto.AdjustmentResponse, error) {
	adj, err := uc.repos.Adjustments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if adj == nil || adj.CompanyID != companyID {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
	}
	return toAdjustmentResponse(adj), nil
}

// List lista ajustes de la empresa, del más reciente al más antiguo.
func (uc *AdjustmentUseCase) List(ctx context.Context, companyID, warehouseID, productID string, page dto.PageRequest) (*dto.AdjustmentListResponse, error) {
	page.DefaultPage()
	items, err := uc.repos.Adjustments.List(ctx, entity.AdjustmentFilter{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.AdjustmentListResponse{
		Items: make([]dto.AdjustmentResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, a := range items {
		out.Items = append(out.Items, *toAdjustmentResponse(a))
	}
	return out, nil
}

// lockAdjustment bloquea el ajuste y exige que siga siendo modificable.
func (uc *AdjustmentUseCase) lockAdjustment(ctx context.Context, r repository.Repos, companyID, id string) (*entity.StockAdjustment, error) {
	adj, err := r.Adjustments.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if adj == nil || adj.CompanyID != companyID {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
	}
	if !adj.IsDeletable {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotDeletable, id)
	}
	return adj, nil
}

func (uc *AdjustmentUseCase) movement(adj *entity.StockAdjustment, qty decimal.Decimal, kind entity.MovementKind, userID, remarks string) Movement {
	return Movement{
		CompanyID:     adj.CompanyID,
		ProductID:     adj.ProductID,
		WarehouseID:   adj.WarehouseID,
		Quantity:      qty,
		Kind:          kind,
		ReferenceID:   adj.ID,
		ReferenceType: entity.ReferenceTypeStockAdjustment,
		Remarks:       remarks,
		CreatedBy:     userID,
	}
}

const maxNotesLength = 1000

func toAdjustmentPatch(in dto.UpdateAdjustmentRequest) (entity.AdjustmentPatch, error) {
	var patch entity.AdjustmentPatch
	if in.Direction != nil {
		dir, err := entity.ParseAdjustmentDirection(*in.Direction)
		if err != nil {
			return patch, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		patch.Direction = &dir
	}
	if in.Quantity != nil {
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return patch, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
		}
		q := *in.Quantity
		patch.Quantity = &q
	}
	if in.Notes.Set {
		if utf8.RuneCountInString(in.Notes.Value) > maxNotesLength {
			return patch, fmt.Errorf("%w: las notas superan %d caracteres", domain.ErrInvalidInput, maxNotesLength)
		}
		notes := in.Notes.Value
		patch.Notes = &notes
	}
	return patch, nil
}

func toAdjustmentResponse(a *entity.StockAdjustment) *dto.AdjustmentResponse {
	return &dto.AdjustmentResponse{
		ID:          a.ID,
		CompanyID:   a.CompanyID,
		WarehouseID: a.WarehouseID,
		ProductID:   a.ProductID,
		Direction:   string(a.Direction),
		Quantity:    a.Quantity,
		Notes:       a.Notes,
		IsDeletable: a.IsDeletable,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
