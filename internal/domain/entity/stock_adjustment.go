package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentDirection sentido de un ajuste manual de inventario.
type AdjustmentDirection string

const (
	AdjustmentAdd      AdjustmentDirection = "add"
	AdjustmentSubtract AdjustmentDirection = "subtract"
)

// ParseAdjustmentDirection valida el sentido recibido en la API.
func ParseAdjustmentDirection(s string) (AdjustmentDirection, error) {
	switch AdjustmentDirection(strings.ToLower(strings.TrimSpace(s))) {
	case AdjustmentAdd:
		return AdjustmentAdd, nil
	case AdjustmentSubtract:
		return AdjustmentSubtract, nil
	}
	return "", fmt.Errorf("sentido de ajuste desconocido %q", s)
}

// StockAdjustment ajuste manual: cantidad siempre positiva, el signo lo da Direction.
type StockAdjustment struct {
	ID          string
	CompanyID   string
	WarehouseID string
	ProductID   string
	Direction   AdjustmentDirection
	Quantity    decimal.Decimal
	Notes       string
	IsDeletable bool
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdjustmentPatch cambios parciales de un ajuste. nil = campo omitido;
// Notes apuntando a "" limpia las notas.
type AdjustmentPatch struct {
	Direction *AdjustmentDirection
	Quantity  *decimal.Decimal
	Notes     *string
}

// Empty indica que el patch no trae cambios.
func (p AdjustmentPatch) Empty() bool {
	return p.Direction == nil && p.Quantity == nil && p.Notes == nil
}

// AdjustmentFilter filtros del listado de ajustes.
type AdjustmentFilter struct {
	CompanyID   string
	WarehouseID string
	ProductID   string
	Limit       int
	Offset      int
}
