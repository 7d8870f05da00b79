package repository

import "errors"

// ErrUniqueViolation lo devuelven los adaptadores cuando un insert choca con un índice único
// (número de pago, clave de idempotencia, par orden-pago, número de traslado).
var ErrUniqueViolation = errors.New("violación de restricción única")
