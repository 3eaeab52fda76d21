package ledger

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/validation"
)

// Operaciones por lotes: las mismas reglas por elemento, pero como un solo
// lote atómico. La primera violación de validación aborta el lote completo
// antes de intentar mutación alguna; dentro de la transacción la aplicación
// es secuencial y cualquier fallo revierte todos los elementos ya aplicados.

// BulkStockIn aplica un lote de entradas en una sola transacción.
func (e *Engine) BulkStockIn(ctx context.Context, items []BulkItem, actorID string) ([]*entity.StockMovement, error) {
	return e.bulkSingleLocation(ctx, items, actorID, entity.MovementTypeStockIn)
}

// BulkStockOut aplica un lote de salidas en una sola transacción.
func (e *Engine) BulkStockOut(ctx context.Context, items []BulkItem, actorID string) ([]*entity.StockMovement, error) {
	return e.bulkSingleLocation(ctx, items, actorID, entity.MovementTypeStockOut)
}

func (e *Engine) bulkSingleLocation(ctx context.Context, items []BulkItem, actorID string, mt entity.MovementType) ([]*entity.StockMovement, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("el lote no puede estar vacío")
	}
	// Validar el lote completo antes de tocar nada, acumulando por índice.
	r := &validation.Result{}
	for i, it := range items {
		for _, v := range validation.ValidateMovementRequest(it.ProductID, it.LocationID, it.Quantity, actorID).Violations() {
			r.Add("elemento %d: %s", i, v)
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := e.resolveTarget(ctx, it.ProductID, it.LocationID); err != nil {
			return nil, err
		}
	}

	movs := make([]*entity.StockMovement, 0, len(items))
	err := e.runTx(ctx, "bulk_"+string(mt), 0, actorID, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		productRepo repository.ProductRepository,
		locationRepo repository.LocationRepository,
	) error {
		movs = movs[:0]
		for _, it := range items {
			req := MovementRequest{
				ProductID:  it.ProductID,
				LocationID: it.LocationID,
				Quantity:   it.Quantity,
				Reference:  it.Reference,
				Notes:      it.Notes,
				ActorID:    actorID,
			}
			delta := it.Quantity
			if mt == entity.MovementTypeStockOut {
				delta = -it.Quantity
			}
			mov, err := e.applyDelta(ctx, movRepo, stockRepo, productRepo, locationRepo, mt, req, delta)
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		e.invalidate(ctx, it.ProductID, it.LocationID)
	}
	return movs, nil
}

// BulkTransfer aplica un lote de traslados en una sola transacción.
func (e *Engine) BulkTransfer(ctx context.Context, items []BulkTransferItem, actorID string) ([]*entity.StockMovement, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("el lote no puede estar vacío")
	}
	r := &validation.Result{}
	for i, it := range items {
		for _, v := range validation.ValidateTransferRequest(it.ProductID, it.FromLocationID, it.ToLocationID, it.Quantity, actorID).Violations() {
			r.Add("elemento %d: %s", i, v)
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := e.resolveTarget(ctx, it.ProductID, it.FromLocationID); err != nil {
			return nil, err
		}
		if err := e.resolveLocation(ctx, it.ToLocationID); err != nil {
			return nil, err
		}
	}

	movs := make([]*entity.StockMovement, 0, len(items))
	err := e.runTx(ctx, "bulk_transfer", 0, actorID, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		productRepo repository.ProductRepository,
		locationRepo repository.LocationRepository,
	) error {
		movs = movs[:0]
		for _, it := range items {
			req := TransferRequest{
				ProductID:      it.ProductID,
				FromLocationID: it.FromLocationID,
				ToLocationID:   it.ToLocationID,
				Quantity:       it.Quantity,
				Reference:      it.Reference,
				Notes:          it.Notes,
				ActorID:        actorID,
			}
			mov, err := e.applyTransfer(ctx, movRepo, stockRepo, productRepo, locationRepo, req)
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		e.invalidate(ctx, it.ProductID, it.FromLocationID, it.ToLocationID)
	}
	return movs, nil
}
