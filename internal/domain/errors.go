package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrEmployeeNotFound     = errors.New("técnico no encontrado")
	ErrDuplicateEmployee    = errors.New("el técnico ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrEmptyCrew            = errors.New("la cuadrilla no puede estar vacía")
	ErrInsufficientMaterial = errors.New("material insuficiente")
	ErrInsufficientRouter   = errors.New("unidades de router insuficientes")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrUnauthorized         = errors.New("no autorizado")
)
