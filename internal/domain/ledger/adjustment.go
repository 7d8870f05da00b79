package ledger

import (
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AdjustmentEffect efecto con signo de un ajuste sobre el stock: +qty para add, -qty para subtract.
func AdjustmentEffect(dir entity.AdjustmentDirection, qty decimal.Decimal) decimal.Decimal {
	if dir == entity.AdjustmentSubtract {
		return qty.Neg()
	}
	return qty
}

// NetDelta cambio neto a aplicar al editar un ajuste, de modo que el stock resultante
// sea el mismo que dejaría crear el ajuste directamente con los valores nuevos.
func NetDelta(oldDir entity.AdjustmentDirection, oldQty decimal.Decimal, newDir entity.AdjustmentDirection, newQty decimal.Decimal) decimal.Decimal {
	return AdjustmentEffect(newDir, newQty).Sub(AdjustmentEffect(oldDir, oldQty))
}
