package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Movement cambio de stock a aplicar: cantidad con signo más la referencia al evento de negocio.
type Movement struct {
	CompanyID     string
	ProductID     string
	WarehouseID   string
	Quantity      decimal.Decimal
	Kind          entity.MovementKind
	ReferenceID   string
	ReferenceType string
	Remarks       string
	CreatedBy     string
}

// MovementEngine empareja cada cambio del agregado de stock con exactamente un movimiento
// en la misma transacción. Es la única vía para mutar StockLevel.
type MovementEngine struct {
	now func() time.Time
}

// NewMovementEngine construye el motor.
func NewMovementEngine() *MovementEngine {
	return &MovementEngine{now: time.Now}
}

// Apply bloquea la fila de stock (SELECT FOR UPDATE), suma la cantidad y registra el movimiento.
// Si no existe fila para producto+bodega devuelve ErrNotFound: nunca aprovisiona inventario.
func (e *MovementEngine) Apply(ctx context.Context, r repository.Repos, m Movement) (*entity.StockLevel, error) {
	if m.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: movimiento con cantidad cero", domain.ErrInvalidInput)
	}

	level, err := r.Levels.GetForUpdate(ctx, m.ProductID, m.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	if level == nil {
		return nil, fmt.Errorf("%w: sin stock para producto %s en bodega %s", domain.ErrNotFound, m.ProductID, m.WarehouseID)
	}

	now := e.now()
	level.CurrentStock = level.CurrentStock.Add(m.Quantity)
	level.UpdatedAt = now
	if err := r.Levels.Update(ctx, level); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		CompanyID:     m.CompanyID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		Quantity:      m.Quantity,
		Kind:          m.Kind,
		ReferenceID:   m.ReferenceID,
		ReferenceType: m.ReferenceType,
		Remarks:       m.Remarks,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     now,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return level, nil
}

// LevelKey identifica una fila de stock.
type LevelKey struct {
	ProductID   string
	WarehouseID string
}

// LockLevels bloquea varias filas de stock siempre en el mismo orden (producto, bodega), así
// dos operaciones sobre las mismas filas en distinto orden no se bloquean mutuamente.
// Una fila inexistente devuelve ErrNotFound antes de escribir nada.
func (e *MovementEngine) LockLevels(ctx context.Context, r repository.Repos, keys []LevelKey) error {
	sorted := append([]LevelKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].WarehouseID < sorted[j].WarehouseID
	})
	for i, k := range sorted {
		if i > 0 && k == sorted[i-1] {
			continue
		}
		level, err := r.Levels.GetForUpdate(ctx, k.ProductID, k.WarehouseID)
		if err != nil {
			return fmt.Errorf("get stock for update: %w", err)
		}
		if level == nil {
			return fmt.Errorf("%w: sin stock para producto %s en bodega %s", domain.ErrNotFound, k.ProductID, k.WarehouseID)
		}
	}
	return nil
}
