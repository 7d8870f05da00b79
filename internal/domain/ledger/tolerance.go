package ledger

import "github.com/shopspring/decimal"

// Tolerance margen fijo para comparar montos: saldos pendientes y montos de duplicados.
var Tolerance = decimal.RequireFromString("0.01")

// WithinTolerance indica si |a - b| <= 0.01.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
