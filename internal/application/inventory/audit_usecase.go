package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// AuditUseCase consultas sobre el libro de movimientos: historial y verificación del
// invariante stock actual == Σ movimientos.
type AuditUseCase struct {
	repos repository.Repos
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repos repository.Repos) *AuditUseCase {
	return &AuditUseCase{repos: repos}
}

// ListMovements historial filtrado, del más reciente al más antiguo.
func (uc *AuditUseCase) ListMovements(ctx context.Context, companyID string, in dto.MovementFilterRequest) (*dto.MovementListResponse, error) {
	in.DefaultPage()
	f := entity.MovementFilter{
		CompanyID:     companyID,
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		ReferenceID:   in.ReferenceID,
		ReferenceType: in.ReferenceType,
		Limit:         in.Limit,
		Offset:        in.Offset,
	}
	if in.Kind != "" {
		k, err := entity.ParseMovementKind(in.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		f.Kind = k
	}
	if in.From != "" {
		t, err := time.Parse(dto.DateLayout, in.From)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, in.From)
		}
		f.From = &t
	}
	if in.To != "" {
		t, err := time.Parse(dto.DateLayout, in.To)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, in.To)
		}
		end := t.Add(24*time.Hour - time.Nanosecond) // día completo
		f.To = &end
	}

	items, err := uc.repos.Movements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}
	for _, m := range items {
		out.Items = append(out.Items, dto.MovementResponse{
			ID:            m.ID,
			ProductID:     m.ProductID,
			WarehouseID:   m.WarehouseID,
			Quantity:      m.Quantity,
			Kind:          string(m.Kind),
			ReferenceID:   m.ReferenceID,
			ReferenceType: m.ReferenceType,
			Remarks:       m.Remarks,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

// ReconcileStock compara el stock materializado con la suma de movimientos del par producto+bodega.
func (uc *AuditUseCase) ReconcileStock(ctx context.Context, companyID, productID, warehouseID string) (*dto.StockReconciliationResponse, error) {
	wh, err := uc.repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	level, err := uc.repos.Levels.Get(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, fmt.Errorf("%w: sin stock para producto %s en bodega %s", domain.ErrNotFound, productID, warehouseID)
	}
	sum, err := uc.repos.Movements.SumQuantity(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	rec := entity.StockReconciliation{
		ProductID:     productID,
		WarehouseID:   warehouseID,
		CurrentStock:  level.CurrentStock,
		MovementTotal: sum,
		Difference:    level.CurrentStock.Sub(sum),
		Consistent:    level.CurrentStock.Equal(sum),
	}
	return &dto.StockReconciliationResponse{
		ProductID:     rec.ProductID,
		WarehouseID:   rec.WarehouseID,
		CurrentStock:  rec.CurrentStock,
		MovementTotal: rec.MovementTotal,
		Difference:    rec.Difference,
		Consistent:    rec.Consistent,
	}, nil
}
