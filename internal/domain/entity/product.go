package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo. El núcleo solo lo lee para validar
// que esté activo y no eliminado antes de mover inventario.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Price       decimal.Decimal
	UnitMeasure string
	Active      bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Usable indica si el producto puede recibir movimientos.
func (p *Product) Usable() bool {
	return p.Active && p.DeletedAt == nil
}
