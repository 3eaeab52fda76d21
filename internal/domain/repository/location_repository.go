package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
// La jerarquía es plana: los hijos se resuelven con ListChildren por ParentID.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)
	ListChildren(ctx context.Context, parentID int64) ([]*entity.Location, error)

	// HasReferences indica si la ubicación tiene stock distinto de cero o
	// movimientos asociados; en ese caso no puede eliminarse (se verifica,
	// no se hace cascada).
	HasReferences(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}
