package catalog

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/validation"
)

// ProductUseCase gestiona el catálogo de productos y categorías. No toca
// cantidades de stock: eso es territorio exclusivo del motor de inventario.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	stockRepo    repository.ProductLocationRepository
	txRunner     ledger.TxRunner
}

// NewProductUseCase construye el caso de uso de catálogo.
func NewProductUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	stockRepo repository.ProductLocationRepository,
	txRunner ledger.TxRunner,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		stockRepo:    stockRepo,
		txRunner:     txRunner,
	}
}

func (uc *ProductUseCase) validate(p *entity.Product) *validation.Result {
	r := &validation.Result{}
	r.Check(validation.IsValidSKU(p.SKU), "sku inválido: alfanumérico con - y _, máximo 50")
	r.Check(validation.IsValidBarcode(p.Barcode), "código de barras inválido: 8 a 18 dígitos")
	r.Check(p.Name != "" && len(p.Name) <= 100, "el nombre es obligatorio, máximo 100 caracteres")
	r.Check(validation.IsValidPrice(p.Price), "precio fuera de rango")
	r.Check(validation.IsValidPrice(p.Cost), "costo fuera de rango")
	r.Check(p.Cost.LessThanOrEqual(p.Price), "el costo no puede superar el precio")
	r.Check(validation.IsValidStock(p.MinimumStock), "el umbral mínimo no puede ser negativo")
	return r
}

// Create da de alta un producto con stock cero. El SKU debe ser único y la
// categoría, si se indica, debe existir.
func (uc *ProductUseCase) Create(ctx context.Context, p *entity.Product) error {
	if err := uc.validate(p).Err(); err != nil {
		return err
	}
	existing, err := uc.productRepo.GetBySKU(ctx, p.SKU)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicate
	}
	if p.CategoryID != 0 {
		cat, err := uc.categoryRepo.GetByID(ctx, p.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return domain.NewValidationError("la categoría indicada no existe")
		}
	}
	p.CurrentStock = 0
	return uc.productRepo.Create(ctx, p)
}

// GetByID obtiene un producto (excluye borrados lógicos).
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	if !validation.IsValidID(id) {
		return nil, domain.NewValidationError("id inválido")
	}
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU.
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if !validation.IsValidSKU(sku) {
		return nil, domain.NewValidationError("sku inválido")
	}
	p, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// List lista productos paginados.
func (uc *ProductUseCase) List(ctx context.Context, page, pageSize int) ([]*entity.Product, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = validation.DefaultPageSize
	}
	if !validation.IsValidPageSize(pageSize) {
		return nil, domain.NewValidationError("tamaño de página inválido")
	}
	return uc.productRepo.List(ctx, pageSize, (page-1)*pageSize)
}

// Update actualiza los datos maestros del producto. CurrentStock no se toca.
func (uc *ProductUseCase) Update(ctx context.Context, p *entity.Product) error {
	if !validation.IsValidID(p.ID) {
		return domain.NewValidationError("id inválido")
	}
	if err := uc.validate(p).Err(); err != nil {
		return err
	}
	current, err := uc.productRepo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	if p.SKU != current.SKU {
		existing, err := uc.productRepo.GetBySKU(ctx, p.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
	}
	if p.CategoryID != 0 && p.CategoryID != current.CategoryID {
		cat, err := uc.categoryRepo.GetByID(ctx, p.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return domain.NewValidationError("la categoría indicada no existe")
		}
	}
	return uc.productRepo.Update(ctx, p)
}

// Delete aplica borrado lógico. Un producto con stock no se puede borrar:
// primero hay que sacar o ajustar sus existencias para que el libro lo refleje.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	p, err := uc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.CurrentStock != 0 {
		return domain.ErrConflict
	}
	return uc.productRepo.SoftDelete(ctx, id)
}

// SetPrimaryLocation marca la ubicación primaria del producto (a lo sumo una).
func (uc *ProductUseCase) SetPrimaryLocation(ctx context.Context, productID, locationID int64) error {
	r := &validation.Result{}
	r.Check(validation.IsValidID(productID), "product_id inválido: %d", productID)
	r.Check(validation.IsValidID(locationID), "location_id inválido: %d", locationID)
	if err := r.Err(); err != nil {
		return err
	}
	pl, err := uc.stockRepo.Get(ctx, productID, locationID)
	if err != nil {
		return err
	}
	if pl == nil {
		return domain.ErrNotFound
	}
	return uc.stockRepo.SetPrimary(ctx, productID, locationID)
}

// UpdateThresholds fija los umbrales mínimo y máximo de la pareja
// (producto, ubicación). Corre en transacción con la fila bloqueada para no
// pisar una cantidad que el motor esté mutando en paralelo.
func (uc *ProductUseCase) UpdateThresholds(ctx context.Context, productID, locationID int64, minStock, maxStock int) error {
	r := &validation.Result{}
	r.Check(validation.IsValidID(productID), "product_id inválido: %d", productID)
	r.Check(validation.IsValidID(locationID), "location_id inválido: %d", locationID)
	r.Check(validation.IsValidStock(minStock), "el umbral mínimo no puede ser negativo")
	r.Check(validation.IsValidStock(maxStock), "el umbral máximo no puede ser negativo")
	r.Check(maxStock == 0 || maxStock >= minStock, "el umbral máximo debe ser mayor o igual al mínimo")
	if err := r.Err(); err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		_ repository.ProductRepository,
		_ repository.LocationRepository,
	) error {
		pl, err := stockRepo.GetForUpdate(ctx, productID, locationID)
		if err != nil {
			return err
		}
		pl.MinimumStock = minStock
		pl.MaximumStock = maxStock
		return stockRepo.Upsert(ctx, pl)
	})
}

// CreateCategory da de alta una categoría; el padre, si se indica, debe existir.
func (uc *ProductUseCase) CreateCategory(ctx context.Context, c *entity.Category) error {
	r := &validation.Result{}
	r.Check(c.Name != "", "el nombre es obligatorio")
	r.Check(c.Code != "", "el código es obligatorio")
	if err := r.Err(); err != nil {
		return err
	}
	if c.ParentID != nil {
		parent, err := uc.categoryRepo.GetByID(ctx, *c.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return domain.NewValidationError("la categoría padre no existe")
		}
	}
	c.IsActive = true
	return uc.categoryRepo.Create(ctx, c)
}

// ListCategories lista categorías paginadas.
func (uc *ProductUseCase) ListCategories(ctx context.Context, page, pageSize int) ([]*entity.Category, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = validation.DefaultPageSize
	}
	return uc.categoryRepo.List(ctx, pageSize, (page-1)*pageSize)
}
