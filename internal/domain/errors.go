package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso añaden detalle con fmt.Errorf("%w: ...", domain.ErrX); los handlers usan errors.Is.
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrNotDeletable   = errors.New("el registro ya no puede modificarse ni eliminarse")
	ErrSchemaMismatch = errors.New("el esquema de base de datos no tiene la columna o tabla esperada")
)
