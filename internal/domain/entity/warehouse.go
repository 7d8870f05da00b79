package entity

import (
	"strings"
	"time"
	"unicode"
)

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
// Es un colaborador de solo lectura: resuelve warehouse_id -> company_id y aporta el código
// de tres letras usado en la numeración.
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string // BOG, MED...; puede venir vacío
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NumberingCode devuelve el código de tres letras de la bodega.
// Sin código configurado usa las tres primeras letras del nombre, completando con X.
func (w *Warehouse) NumberingCode() string {
	src := w.Code
	if strings.TrimSpace(src) == "" {
		src = w.Name
	}
	var b strings.Builder
	for _, r := range src {
		if b.Len() == 3 {
			break
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}
