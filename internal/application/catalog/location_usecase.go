package catalog

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/validation"
)

// LocationUseCase gestiona las ubicaciones físicas del almacén.
type LocationUseCase struct {
	locationRepo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso de ubicaciones.
func NewLocationUseCase(locationRepo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{locationRepo: locationRepo}
}

func (uc *LocationUseCase) validate(l *entity.Location) *validation.Result {
	r := &validation.Result{}
	r.Check(validation.IsValidLocationCode(l.Code), "código inválido: segmentos alfanuméricos separados por guiones, máximo 50")
	r.Check(l.Name != "" && len(l.Name) <= 100, "el nombre es obligatorio, máximo 100 caracteres")
	if l.MaxCapacity != nil {
		r.Check(l.MaxCapacity.IsPositive(), "la capacidad máxima debe ser positiva")
	}
	if l.MinTemperature != nil && l.MaxTemperature != nil {
		r.Check(l.MinTemperature.LessThanOrEqual(*l.MaxTemperature), "banda de temperatura invertida")
	}
	return r
}

// Create da de alta una ubicación. El código es único y el padre, si se
// indica, debe existir.
func (uc *LocationUseCase) Create(ctx context.Context, l *entity.Location) error {
	if err := uc.validate(l).Err(); err != nil {
		return err
	}
	existing, err := uc.locationRepo.GetByCode(ctx, l.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicate
	}
	if l.ParentID != nil {
		parent, err := uc.locationRepo.GetByID(ctx, *l.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return domain.NewValidationError("la ubicación padre no existe")
		}
	}
	return uc.locationRepo.Create(ctx, l)
}

// GetByID obtiene una ubicación.
func (uc *LocationUseCase) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	if !validation.IsValidID(id) {
		return nil, domain.NewValidationError("id inválido")
	}
	l, err := uc.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

// List lista ubicaciones paginadas.
func (uc *LocationUseCase) List(ctx context.Context, page, pageSize int) ([]*entity.Location, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = validation.DefaultPageSize
	}
	if !validation.IsValidPageSize(pageSize) {
		return nil, domain.NewValidationError("tamaño de página inválido")
	}
	return uc.locationRepo.List(ctx, pageSize, (page-1)*pageSize)
}

// ListChildren lista las ubicaciones hijas directas de un nodo.
func (uc *LocationUseCase) ListChildren(ctx context.Context, parentID int64) ([]*entity.Location, error) {
	if _, err := uc.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return uc.locationRepo.ListChildren(ctx, parentID)
}

// Update actualiza la ubicación. Un cambio de código sigue sujeto a unicidad.
func (uc *LocationUseCase) Update(ctx context.Context, l *entity.Location) error {
	if !validation.IsValidID(l.ID) {
		return domain.NewValidationError("id inválido")
	}
	if err := uc.validate(l).Err(); err != nil {
		return err
	}
	current, err := uc.locationRepo.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	if l.Code != current.Code {
		existing, err := uc.locationRepo.GetByCode(ctx, l.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
	}
	return uc.locationRepo.Update(ctx, l)
}

// Delete elimina la ubicación solo si no tiene stock ni movimientos asociados
// ni ubicaciones hijas; si los tiene, ErrLocationInUse. Se verifica, nunca se
// borra en cascada.
func (uc *LocationUseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	has, err := uc.locationRepo.HasReferences(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return domain.ErrLocationInUse
	}
	children, err := uc.locationRepo.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return domain.ErrLocationInUse
	}
	return uc.locationRepo.Delete(ctx, id)
}
