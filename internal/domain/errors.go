package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso agregan detalle con fmt.Errorf("%w: ...", ErrX) y la capa HTTP
// los clasifica con errors.Is.
var (
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrTenantMismatch     = errors.New("el recurso pertenece a otra empresa")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrValidation         = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autenticado")
	ErrDependency         = errors.New("servicio externo no disponible")
)
