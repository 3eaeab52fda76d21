package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductLocationRepository define el puerto para el stock por (producto, ubicación).
// Se usa dentro de transacciones para garantizar consistencia.
type ProductLocationRepository interface {
	Get(ctx context.Context, productID, locationID int64) (*entity.ProductLocation, error)

	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) durante la transacción.
	// Si la fila no existe devuelve un registro nuevo con cantidad cero.
	GetForUpdate(ctx context.Context, productID, locationID int64) (*entity.ProductLocation, error)

	// Upsert crea o actualiza por (productID, locationID).
	Upsert(ctx context.Context, record *entity.ProductLocation) error

	ListByProduct(ctx context.Context, productID int64) ([]*entity.ProductLocation, error)
	ListByLocation(ctx context.Context, locationID int64) ([]*entity.ProductLocation, error)

	// ListBelowMinimum devuelve las filas con Quantity <= MinimumStock (umbral por ubicación).
	ListBelowMinimum(ctx context.Context) ([]*entity.ProductLocation, error)

	// SetPrimary marca la ubicación como primaria del producto y desmarca
	// cualquier otra (a lo sumo una primaria por producto).
	SetPrimary(ctx context.Context, productID, locationID int64) error
}
