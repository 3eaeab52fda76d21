package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del almacén.
// CurrentStock es un agregado derivado: siempre igual a la suma de
// ProductLocation.Quantity en todas sus ubicaciones. Solo el motor de
// inventario lo actualiza.
type Product struct {
	ID           int64
	SKU          string // único, alfanumérico con - y _
	Barcode      string // opcional, numérico 8-18 dígitos
	Name         string
	Description  string
	CategoryID   int64
	Price        decimal.Decimal // precio de venta, >= 0
	Cost         decimal.Decimal // costo, >= 0 y <= Price
	Unit         string          // "pcs", "kg", ...
	MinimumStock int             // umbral global de stock bajo
	CurrentStock int             // agregado derivado (suma por ubicación)
	IsActive     bool
	IsDeleted    bool // borrado lógico; se excluye de lecturas por defecto
	ExpiryDate   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockStatus clasificación del nivel de stock para reportes y alertas.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StockStatusOverstock  StockStatus = "OVERSTOCK"
)

// Status clasifica el stock agregado del producto contra su umbral mínimo.
func (p *Product) Status() StockStatus {
	switch {
	case p.CurrentStock <= 0:
		return StockStatusOutOfStock
	case p.CurrentStock <= p.MinimumStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
