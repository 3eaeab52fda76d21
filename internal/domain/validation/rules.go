package validation

import (
	"math"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Límites de paginación y montos.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var maxPrice = decimal.RequireFromString("999999999.99")

// Patrones de formato. El código de ubicación codifica zona-pasillo-estante-posición
// separados por guiones (ej. "A1-B2-C3-D4").
var (
	skuPattern          = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
	barcodePattern      = regexp.MustCompile(`^\d{8,18}$`)
	locationCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)
)

// IsValidID un ID sustituto es válido si es positivo.
func IsValidID(id int64) bool {
	return id > 0
}

// IsValidStock una cantidad de stock en reposo nunca es negativa.
func IsValidStock(stock int) bool {
	return stock >= 0 && stock <= math.MaxInt32
}

// IsValidQuantity la magnitud de un movimiento es estrictamente positiva;
// los movimientos de cantidad cero se rechazan, no se aceptan en silencio.
func IsValidQuantity(quantity int) bool {
	return quantity > 0
}

// IsValidSKU alfanumérico con guiones y guiones bajos, máximo 50 caracteres.
func IsValidSKU(sku string) bool {
	return sku != "" && len(sku) <= 50 && skuPattern.MatchString(sku)
}

// IsValidBarcode numérico de 8 a 18 dígitos; vacío es válido (opcional).
func IsValidBarcode(barcode string) bool {
	if barcode == "" {
		return true
	}
	return barcodePattern.MatchString(barcode)
}

// IsValidLocationCode segmentos alfanuméricos separados por guiones, máximo 50.
func IsValidLocationCode(code string) bool {
	return code != "" && len(code) <= 50 && locationCodePattern.MatchString(code)
}

// IsValidPrice precio o costo en [0, 999999999.99].
func IsValidPrice(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(decimal.Zero) && price.LessThanOrEqual(maxPrice)
}

// IsValidDateRange ambos límites opcionales; si están presentes, from <= to.
func IsValidDateRange(from, to *time.Time) bool {
	if from != nil && to != nil {
		return !from.After(*to)
	}
	return true
}

// IsValidPageNumber la primera página es la 1.
func IsValidPageNumber(page int) bool {
	return page > 0
}

// IsValidPageSize tamaño de página acotado por MaxPageSize.
func IsValidPageSize(size int) bool {
	return size > 0 && size <= MaxPageSize
}
