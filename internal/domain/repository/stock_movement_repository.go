package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementFilter filtros de consulta sobre el libro de movimientos.
// Los campos nil no filtran. Para traslados, LocationID coincide tanto con
// el origen como con el destino.
type MovementFilter struct {
	ProductID  *int64
	LocationID *int64
	Type       *entity.MovementType
	From       *time.Time
	To         *time.Time
}

// DailyTotal total de unidades movidas por tipo en un día.
type DailyTotal struct {
	Type     entity.MovementType
	Count    int
	Quantity int
}

// StockMovementRepository define el puerto para el libro de movimientos.
// Las filas son inmutables: solo Append las crea y nada las modifica.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.StockMovement, error)

	// Query devuelve la página pedida ordenada por fecha descendente y el
	// total de filas que cumplen el filtro.
	Query(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error)

	// ListByProductLocation devuelve todos los movimientos que afectan la
	// pareja (producto, ubicación) en orden cronológico ascendente,
	// incluyendo traslados donde la ubicación es destino.
	ListByProductLocation(ctx context.Context, productID, locationID int64) ([]*entity.StockMovement, error)

	// SumByTypeForDate agrega unidades y conteos por tipo para un día.
	SumByTypeForDate(ctx context.Context, date time.Time) ([]DailyTotal, error)
}
