package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas). Los handlers HTTP los
// traducen a códigos de estado; el motor de inventario los devuelve como
// resultados esperados, nunca como panics.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransfer     = errors.New("traslado inválido")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
	ErrTimeout             = errors.New("tiempo de espera agotado")
	ErrLocationInUse       = errors.New("ubicación con stock o movimientos asociados")
	ErrUnauthorized        = errors.New("no autorizado")
)

// ValidationError agrupa todas las violaciones de validación de una petición.
// Se reportan completas en una sola vuelta, nunca solo la primera.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validación fallida: " + strings.Join(e.Violations, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput) sobre errores de validación.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError construye un ValidationError con las violaciones dadas.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// InsufficientStockError detalla cuánto stock había disponible frente a lo pedido.
type InsufficientStockError struct {
	ProductID  int64
	LocationID int64
	Available  int
	Requested  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %d en ubicación %d: disponible %d, solicitado %d",
		e.ProductID, e.LocationID, e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
