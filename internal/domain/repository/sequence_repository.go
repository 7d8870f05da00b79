package repository

import "context"

// SequenceScope tabla/columna de donde sale el último número de una serie.
type SequenceScope string

const (
	SequencePayments  SequenceScope = "payments"
	SequenceTransfers SequenceScope = "stock_transfers"
)

// SequenceRepository soporte de numeración "último + 1".
type SequenceRepository interface {
	// LockSeries serializa la emisión de números de un prefijo hasta el fin de la transacción.
	LockSeries(ctx context.Context, prefix string) error
	// LastNumber último número emitido con el prefijo y sufijo numérico; "" si no hay.
	LastNumber(ctx context.Context, scope SequenceScope, prefix string) (string, error)
}
