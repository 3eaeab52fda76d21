package entity

import "time"

// ProductLocation es el registro de stock por (producto, ubicación).
// Es el agregado mutable que el libro de movimientos reconcilia; solo el
// motor de inventario escribe Quantity. Se crea perezosamente con el primer
// movimiento y no se borra al llegar a cero (conserva umbrales e historial).
type ProductLocation struct {
	ID           int64
	ProductID    int64
	LocationID   int64
	Quantity     int // >= 0 siempre
	MinimumStock int // umbral mínimo por ubicación (0 = sin umbral)
	MaximumStock int // umbral máximo por ubicación (0 = sin límite)

	// Ubicación primaria del producto (a lo sumo una por producto),
	// usada como destino por defecto al almacenar.
	IsPrimaryLocation bool

	LastUpdated time.Time
}

// Status clasifica el stock de la ubicación contra sus umbrales propios.
func (pl *ProductLocation) Status() StockStatus {
	switch {
	case pl.Quantity <= 0:
		return StockStatusOutOfStock
	case pl.Quantity <= pl.MinimumStock:
		return StockStatusLowStock
	case pl.MaximumStock > 0 && pl.Quantity > pl.MaximumStock:
		return StockStatusOverstock
	default:
		return StockStatusInStock
	}
}
