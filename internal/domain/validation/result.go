package validation

import (
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Result acumula violaciones de validación en orden. El motor valida la
// petición completa y reporta todas las violaciones juntas, para que el
// caller corrija todo en una sola vuelta.
type Result struct {
	violations []string
}

// Add registra una violación con formato printf.
func (r *Result) Add(format string, args ...any) {
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
}

// Check registra la violación solo si ok es falso.
func (r *Result) Check(ok bool, format string, args ...any) {
	if !ok {
		r.Add(format, args...)
	}
}

// OK indica que no hay violaciones.
func (r *Result) OK() bool {
	return len(r.violations) == 0
}

// Violations devuelve la lista ordenada de violaciones.
func (r *Result) Violations() []string {
	return r.violations
}

// Err devuelve un *domain.ValidationError con todas las violaciones, o nil si no hay.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return domain.NewValidationError(r.violations...)
}

// ValidateMovementRequest valida los campos comunes de un movimiento simple
// (entrada, salida o devolución) sobre una sola ubicación.
func ValidateMovementRequest(productID, locationID int64, quantity int, actorID string) *Result {
	r := &Result{}
	r.Check(IsValidID(productID), "product_id inválido: %d", productID)
	r.Check(IsValidID(locationID), "location_id inválido: %d", locationID)
	r.Check(IsValidQuantity(quantity), "la cantidad debe ser mayor que cero: %d", quantity)
	r.Check(actorID != "", "se requiere la identidad del actor")
	return r
}

// ValidateTransferRequest valida un traslado: ubicaciones válidas y distintas.
func ValidateTransferRequest(productID, fromLocationID, toLocationID int64, quantity int, actorID string) *Result {
	r := ValidateMovementRequest(productID, fromLocationID, quantity, actorID)
	r.Check(IsValidID(toLocationID), "to_location_id inválido: %d", toLocationID)
	if IsValidID(fromLocationID) && IsValidID(toLocationID) {
		r.Check(fromLocationID != toLocationID, "las ubicaciones origen y destino no pueden ser la misma")
	}
	return r
}

// ValidateAdjustmentRequest valida un ajuste: nueva cantidad >= 0 y razón obligatoria.
func ValidateAdjustmentRequest(productID, locationID int64, newQuantity int, reason, actorID string) *Result {
	r := &Result{}
	r.Check(IsValidID(productID), "product_id inválido: %d", productID)
	r.Check(IsValidID(locationID), "location_id inválido: %d", locationID)
	r.Check(IsValidStock(newQuantity), "la nueva cantidad no puede ser negativa: %d", newQuantity)
	r.Check(reason != "", "se requiere una razón para el ajuste")
	r.Check(actorID != "", "se requiere la identidad del actor")
	return r
}

// ValidateMovementFilter valida filtros de consulta de movimientos.
func ValidateMovementFilter(productID, locationID *int64, movementType *entity.MovementType, from, to *time.Time, page, pageSize int) *Result {
	r := &Result{}
	if productID != nil {
		r.Check(IsValidID(*productID), "product_id inválido: %d", *productID)
	}
	if locationID != nil {
		r.Check(IsValidID(*locationID), "location_id inválido: %d", *locationID)
	}
	if movementType != nil {
		r.Check(movementType.Valid(), "tipo de movimiento desconocido: %s", *movementType)
	}
	r.Check(IsValidDateRange(from, to), "rango de fechas inválido")
	r.Check(IsValidPageNumber(page), "número de página inválido: %d", page)
	r.Check(IsValidPageSize(pageSize), "tamaño de página inválido: %d", pageSize)
	return r
}
