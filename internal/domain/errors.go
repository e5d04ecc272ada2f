package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Flujo de doble escaneo.
	ErrPartNotFound       = errors.New("parte no encontrada en el inventario")
	ErrInvalidDestination = errors.New("destino no permitido para la etiqueta de la parte")
	ErrPersistenceFailure = errors.New("no se pudo guardar el movimiento")
	ErrAssetLoadTimeout   = errors.New("tiempo agotado esperando imágenes de la etiqueta")
	ErrSessionBusy        = errors.New("sesión ocupada confirmando un movimiento")
	ErrInvalidTransition  = errors.New("acción no permitida en el paso actual")
)
