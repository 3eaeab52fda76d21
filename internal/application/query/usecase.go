package query

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/validation"
)

// StockCache caché de lectura para consultas de stock actual. locationID
// cero designa el agregado del producto. Implementación opcional (nil = sin caché).
type StockCache interface {
	GetStock(ctx context.Context, productID, locationID int64) (int, bool)
	SetStock(ctx context.Context, productID, locationID int64, quantity int)
}

// MovementsQuery parámetros de consulta del libro de movimientos.
type MovementsQuery struct {
	ProductID  *int64
	LocationID *int64
	Type       *entity.MovementType
	From       *time.Time
	To         *time.Time
	Page       int // primera página = 1
	PageSize   int // acotado por validation.MaxPageSize
}

// StockQueryUseCase es el lado de lectura del inventario: consultas sin
// efectos secundarios sobre los agregados confirmados y el libro de
// movimientos. Nunca observa mutaciones en vuelo.
type StockQueryUseCase struct {
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	stockRepo    repository.ProductLocationRepository
	movRepo      repository.StockMovementRepository
	cache        StockCache
}

// NewStockQueryUseCase construye el caso de uso de consultas. cache puede ser nil.
func NewStockQueryUseCase(
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	stockRepo repository.ProductLocationRepository,
	movRepo repository.StockMovementRepository,
	cache StockCache,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		productRepo:  productRepo,
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
		movRepo:      movRepo,
		cache:        cache,
	}
}

// GetCurrentStock devuelve el stock actual del producto: el agregado si
// locationID es nil, o la cantidad en la ubicación indicada.
func (uc *StockQueryUseCase) GetCurrentStock(ctx context.Context, productID int64, locationID *int64) (int, error) {
	r := &validation.Result{}
	r.Check(validation.IsValidID(productID), "product_id inválido: %d", productID)
	if locationID != nil {
		r.Check(validation.IsValidID(*locationID), "location_id inválido: %d", *locationID)
	}
	if err := r.Err(); err != nil {
		return 0, err
	}

	var cacheLoc int64
	if locationID != nil {
		cacheLoc = *locationID
	}
	if uc.cache != nil {
		if qty, ok := uc.cache.GetStock(ctx, productID, cacheLoc); ok {
			return qty, nil
		}
	}

	var qty int
	if locationID == nil {
		product, err := uc.productRepo.GetByID(ctx, productID)
		if err != nil {
			return 0, err
		}
		if product == nil {
			return 0, domain.ErrNotFound
		}
		qty = product.CurrentStock
	} else {
		pl, err := uc.stockRepo.Get(ctx, productID, *locationID)
		if err != nil {
			return 0, err
		}
		if pl == nil {
			// Sin fila: ningún movimiento ha tocado la pareja; stock cero.
			qty = 0
		} else {
			qty = pl.Quantity
		}
	}
	if uc.cache != nil {
		uc.cache.SetStock(ctx, productID, cacheLoc, qty)
	}
	return qty, nil
}

// GetProductLocations devuelve todas las filas de stock por ubicación del producto.
func (uc *StockQueryUseCase) GetProductLocations(ctx context.Context, productID int64) ([]*entity.ProductLocation, error) {
	if !validation.IsValidID(productID) {
		return nil, domain.NewValidationError("product_id inválido")
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.stockRepo.ListByProduct(ctx, productID)
}

// GetProductsByLocation devuelve los productos con stock registrado en la ubicación.
func (uc *StockQueryUseCase) GetProductsByLocation(ctx context.Context, locationID int64) ([]*entity.Product, error) {
	if !validation.IsValidID(locationID) {
		return nil, domain.NewValidationError("location_id inválido")
	}
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.stockRepo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	products := make([]*entity.Product, 0, len(rows))
	for _, pl := range rows {
		product, err := uc.productRepo.GetByID(ctx, pl.ProductID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			products = append(products, product)
		}
	}
	return products, nil
}

// GetMovements consulta el libro con filtros y paginación; devuelve la página
// y el total de filas que cumplen el filtro.
func (uc *StockQueryUseCase) GetMovements(ctx context.Context, q MovementsQuery) ([]*entity.StockMovement, int, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = validation.DefaultPageSize
	}
	if err := validation.ValidateMovementFilter(q.ProductID, q.LocationID, q.Type, q.From, q.To, q.Page, q.PageSize).Err(); err != nil {
		return nil, 0, err
	}
	filter := repository.MovementFilter{
		ProductID:  q.ProductID,
		LocationID: q.LocationID,
		Type:       q.Type,
		From:       q.From,
		To:         q.To,
	}
	offset := (q.Page - 1) * q.PageSize
	return uc.movRepo.Query(ctx, filter, q.PageSize, offset)
}

// GetMovementByID devuelve un movimiento del libro.
func (uc *StockQueryUseCase) GetMovementByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	if !validation.IsValidID(id) {
		return nil, domain.NewValidationError("id de movimiento inválido")
	}
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// GetMovementHistory devuelve el historial de un producto en un rango de fechas.
func (uc *StockQueryUseCase) GetMovementHistory(ctx context.Context, productID int64, from, to *time.Time, page, pageSize int) ([]*entity.StockMovement, int, error) {
	return uc.GetMovements(ctx, MovementsQuery{
		ProductID: &productID,
		From:      from,
		To:        to,
		Page:      page,
		PageSize:  pageSize,
	})
}

// GetDailyMovements agrega por tipo las unidades movidas el día indicado.
func (uc *StockQueryUseCase) GetDailyMovements(ctx context.Context, date time.Time) ([]repository.DailyTotal, error) {
	return uc.movRepo.SumByTypeForDate(ctx, date)
}

// GetLowStockProducts devuelve productos con stock agregado bajo su umbral
// global (sin desglose por ubicación).
func (uc *StockQueryUseCase) GetLowStockProducts(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.ListBelowMinimum(ctx)
}

// GetLowStockByLocation devuelve filas (producto, ubicación) con cantidad
// bajo el umbral mínimo propio de la ubicación.
func (uc *StockQueryUseCase) GetLowStockByLocation(ctx context.Context) ([]*entity.ProductLocation, error) {
	return uc.stockRepo.ListBelowMinimum(ctx)
}

// GetOutOfStockProducts devuelve productos sin stock agregado.
func (uc *StockQueryUseCase) GetOutOfStockProducts(ctx context.Context) ([]*entity.Product, error) {
	// Todo producto sin stock está bajo su umbral (umbral >= 0).
	below, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0, len(below))
	for _, p := range below {
		if p.Status() == entity.StockStatusOutOfStock {
			out = append(out, p)
		}
	}
	return out, nil
}

// ReplayQuantity reconstruye la cantidad de una pareja (producto, ubicación)
// reproduciendo el libro completo en orden cronológico desde cero. Las filas
// TRANSFER se aplican por su doble cara. Sirve de verificación de
// reconciliación: el resultado debe coincidir con ProductLocation.Quantity.
func (uc *StockQueryUseCase) ReplayQuantity(ctx context.Context, productID, locationID int64) (int, error) {
	r := &validation.Result{}
	r.Check(validation.IsValidID(productID), "product_id inválido: %d", productID)
	r.Check(validation.IsValidID(locationID), "location_id inválido: %d", locationID)
	if err := r.Err(); err != nil {
		return 0, err
	}
	movs, err := uc.movRepo.ListByProductLocation(ctx, productID, locationID)
	if err != nil {
		return 0, err
	}
	qty := 0
	for _, m := range movs {
		qty += m.SignedDelta(locationID)
	}
	return qty, nil
}

// VerifyProductAggregate contrasta el agregado almacenado del producto con la
// suma real de sus ubicaciones. Ambos deben coincidir tras toda operación
// confirmada. Lee con la variante IncludeDeleted: el historial del libro
// sobrevive al borrado lógico y la auditoría debe poder contrastarlo.
func (uc *StockQueryUseCase) VerifyProductAggregate(ctx context.Context, productID int64) (stored, computed int, err error) {
	product, err := uc.productRepo.GetByIDIncludeDeleted(ctx, productID)
	if err != nil {
		return 0, 0, err
	}
	if product == nil {
		return 0, 0, domain.ErrNotFound
	}
	rows, err := uc.stockRepo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, 0, err
	}
	for _, pl := range rows {
		computed += pl.Quantity
	}
	return product.CurrentStock, computed, nil
}
