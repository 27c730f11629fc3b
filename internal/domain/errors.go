package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// ShortageError indica qué material no alcanza para cubrir un consumo.
// errors.Is(err, ErrInsufficientStock) es true.
type ShortageError struct {
	MaterialCode string
	Required     decimal.Decimal
	Available    decimal.Decimal
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("%s: material %s requiere %s, disponible %s",
		ErrInsufficientStock.Error(), e.MaterialCode, e.Required.String(), e.Available.String())
}

func (e *ShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NotFoundf envuelve ErrNotFound con el identificador del recurso.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidInputf envuelve ErrInvalidInput con el detalle de la validación.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
