package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las lecturas excluyen productos con borrado lógico salvo las variantes
// IncludeDeleted, pensadas para auditoría y recuperación.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByIDIncludeDeleted(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListBelowMinimum(ctx context.Context) ([]*entity.Product, error)

	// UpdateAggregateStock incrementa CurrentStock en delta (puede ser negativo).
	// Solo el motor de inventario invoca este método.
	UpdateAggregateStock(ctx context.Context, productID int64, delta int) error

	// SoftDelete marca el producto como borrado; nunca se elimina la fila
	// una vez que tiene historial en el libro de movimientos.
	SoftDelete(ctx context.Context, id int64) error
}
