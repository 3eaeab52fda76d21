package ledger

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// inventario: cualquier error en fn revierte la transacción completa, sin
// estado parcial observable (ni movimiento sin cambio de cantidad ni al revés).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		productRepo repository.ProductRepository,
		locationRepo repository.LocationRepository,
	) error) error
}

// StockCacheInvalidator invalida entradas de caché de stock tras confirmar
// una mutación. Implementación opcional (nil = sin caché).
type StockCacheInvalidator interface {
	InvalidateStock(ctx context.Context, productID int64, locationIDs ...int64)
}
