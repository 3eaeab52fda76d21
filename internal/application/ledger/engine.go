package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/validation"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Config parámetros de ejecución del motor.
type Config struct {
	// OpTimeout acota cada operación mutadora (0 = sin límite).
	OpTimeout time.Duration
	// MaxRetries reintentos ante deadlock/serialización antes de devolver
	// ErrConcurrencyConflict.
	MaxRetries int
}

// Engine es el motor del libro de inventario: el único camino de código que
// muta cantidades de stock. Cada cambio de cantidad queda respaldado por
// exactamente una fila inmutable del libro (los traslados son una sola fila
// de doble cara) y el stock nunca baja de cero.
//
// Cada operación mutadora corre dentro de una sola transacción: leer
// cantidades (con bloqueo de fila), validar, actualizar ProductLocation y el
// agregado del producto, anexar el movimiento y confirmar. Los traslados
// bloquean ambas filas en orden ascendente de LocationID para evitar
// interbloqueos entre traslados concurrentes en sentidos opuestos.
type Engine struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	cache        StockCacheInvalidator
	log          *logger.Logger
	cfg          Config
}

// NewEngine construye el motor. cache puede ser nil.
func NewEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	cache StockCacheInvalidator,
	log *logger.Logger,
	cfg Config,
) *Engine {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Engine{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		cache:        cache,
		log:          log,
		cfg:          cfg,
	}
}

// StockIn incrementa incondicionalmente el stock del producto en la ubicación
// (crea la fila ProductLocation con cantidad cero si no existe) y anexa un
// movimiento STOCK_IN. Así entra el stock al sistema: no hay chequeo de
// disponibilidad.
func (e *Engine) StockIn(ctx context.Context, req MovementRequest) (*entity.StockMovement, error) {
	return e.inbound(ctx, req, entity.MovementTypeStockIn)
}

// Return reingresa stock devuelto; misma mecánica que StockIn pero con tipo
// RETURN para reportes.
func (e *Engine) Return(ctx context.Context, req MovementRequest) (*entity.StockMovement, error) {
	return e.inbound(ctx, req, entity.MovementTypeReturn)
}

func (e *Engine) inbound(ctx context.Context, req MovementRequest, mt entity.MovementType) (*entity.StockMovement, error) {
	if err := validation.ValidateMovementRequest(req.ProductID, req.LocationID, req.Quantity, req.ActorID).Err(); err != nil {
		return nil, err
	}
	if err := e.resolveTarget(ctx, req.ProductID, req.LocationID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := e.runTx(ctx, string(mt), req.ProductID, req.ActorID, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		productRepo repository.ProductRepository,
		locationRepo repository.LocationRepository,
	) error {
		var err error
		mov, err = e.applyDelta(ctx, movRepo, stockRepo, productRepo, locationRepo, mt, req, req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.invalidate(ctx, req.ProductID, req.LocationID)
	return mov, nil
}

// StockOut descuenta stock de la ubicación. Precondición: la fila existe y
// tiene cantidad suficiente; si no, InsufficientStockError y ningún cambio.
func (e *Engine) StockOut(ctx context.Context, req MovementRequest) (*entity.StockMovement, error) {
	if err := validation.ValidateMovementRequest(req.ProductID, req.LocationID, req.Quantity, req.ActorID).Err(); err != nil {
		return nil, err
	}
	if err := e.resolveTarget(ctx, req.ProductID, req.LocationID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := e.runTx(ctx, "stock_out", req.ProductID, req.ActorID, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		productRepo repository.ProductRepository,
		locationRepo repository.LocationRepository,
	) error {
		var err error
		mov, err = e.applyDelta(ctx, movRepo, stockRepo, productRepo, locationRepo, entity.MovementTypeStockOut, req, -req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.invalidate(ctx, req.ProductID, req.LocationID)
	return mov, nil
}

// Transfer mueve stock entre dos ubicaciones de forma atómica: el origen
// baja y el destino sube en la misma transacción, el agregado del producto
// no cambia y se anexa UNA sola fila TRANSFER (LocationID=origen,
// ToLocationID=destino). Si cualquiera de las dos mitades falla, ninguna
// se aplica.
func (e *Engine) Transfer(ctx context.Context, req TransferRequest) (*entity.StockMovement, error) {
	if r := validation.ValidateTransferRequest(req.ProductID, req.FromLocationID, req.ToLocationID, req.Quantity, req.ActorID); !r.OK() {
		// Origen == destino (o destino ausente) es un fallo de regla de
		// negocio con su propio kind, no un fallo de forma.
		if validation.IsValidID(req.FromLocationID) && req.FromLocationID == req.ToLocationID && len(r.Violations()) == 1 {
			return nil, domain.ErrInvalidTransfer
		}
		if !validation.IsValidID(req.ToLocationID) && len(r.Violations()) == 1 {
			return nil, domain.ErrInvalidTransfer
		}
		return nil, r.Err()
	}
	if err := e.resolveTarget(ctx, req.ProductID, req.FromLocationID); err != nil {
		return nil, err
	}
	if err := e.resolveLocation(ctx, req.ToLocationID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := e.runTx(ctx, "transfer", req.ProductID, req.ActorID, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		productRepo repository.ProductRepository,
		locationRepo repository.LocationRepository,
	) error {
		var err error
		mov, err = e.applyTransfer(ctx, movRepo, stockRepo, productRepo, locationRepo, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.invalidate(ctx, req.ProductID, req.FromLocationID, req.ToLocationID)
	return mov, nil
}

// Adjustment fija la cantidad de la ubicación a NewQuantity (corrección por
// conteo físico). El delta puede ser positivo o negativo; la cantidad se
// escribe directamente, no como delta acumulado, y la serialización por fila
// evita carreras de lectura-escritura. Un ajuste sin efecto (delta cero) se
// rechaza como petición sin efecto; decisión documentada en DESIGN.md.
func (e *Engine) Adjustment(ctx context.Context, req AdjustmentRequest) (*entity.StockMovement, error) {
	if err := validation.ValidateAdjustmentRequest(req.ProductID, req.LocationID, req.NewQuantity, req.Reason, req.ActorID).Err(); err != nil {
		return nil, err
	}
	if err := e.resolveTarget(ctx, req.ProductID, req.LocationID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := e.runTx(ctx, "adjustment", req.ProductID, req.ActorID, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		productRepo repository.ProductRepository,
		locationRepo repository.LocationRepository,
	) error {
		var err error
		mov, err = e.applyAdjustment(ctx, movRepo, stockRepo, productRepo, locationRepo, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.invalidate(ctx, req.ProductID, req.LocationID)
	return mov, nil
}

// CanPerformMovement es una prueba en seco de solo lectura: para salidas y
// origen de traslados verifica disponibilidad; entradas, devoluciones y
// ajustes siempre son permitidos (el piso en cero del ajuste se valida al
// conocer la cantidad concreta).
func (e *Engine) CanPerformMovement(ctx context.Context, productID, locationID int64, mt entity.MovementType, quantity int) (bool, error) {
	r := &validation.Result{}
	r.Check(validation.IsValidID(productID), "product_id inválido: %d", productID)
	r.Check(validation.IsValidID(locationID), "location_id inválido: %d", locationID)
	r.Check(mt.Valid(), "tipo de movimiento desconocido: %s", mt)
	r.Check(validation.IsValidQuantity(quantity), "la cantidad debe ser mayor que cero: %d", quantity)
	if err := r.Err(); err != nil {
		return false, err
	}
	if err := e.resolveTarget(ctx, productID, locationID); err != nil {
		return false, err
	}
	if !mt.Outbound() {
		return true, nil
	}
	stock, err := e.availability(ctx, productID, locationID)
	if err != nil {
		return false, err
	}
	return stock >= quantity, nil
}

// availability lee la cantidad confirmada sin bloquear la fila.
func (e *Engine) availability(ctx context.Context, productID, locationID int64) (int, error) {
	var qty int
	err := e.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.ProductLocationRepository,
		_ repository.ProductRepository,
		_ repository.LocationRepository,
	) error {
		pl, err := stockRepo.Get(ctx, productID, locationID)
		if err != nil {
			return err
		}
		if pl != nil {
			qty = pl.Quantity
		}
		return nil
	})
	return qty, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación dentro de la transacción
// ──────────────────────────────────────────────────────────────────────────────

// applyDelta aplica un movimiento de una sola ubicación: revalida producto y
// ubicación dentro de la transacción, bloquea la fila, verifica disponibilidad
// si el delta es negativo, actualiza la cantidad y el agregado del producto y
// anexa la fila del libro con Prev/New capturados.
func (e *Engine) applyDelta(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	stockRepo repository.ProductLocationRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	mt entity.MovementType,
	req MovementRequest,
	delta int,
) (*entity.StockMovement, error) {
	if err := ensureLive(ctx, productRepo, locationRepo, req.ProductID, req.LocationID); err != nil {
		return nil, err
	}
	stock, err := stockRepo.GetForUpdate(ctx, req.ProductID, req.LocationID)
	if err != nil {
		return nil, err
	}
	prev := stock.Quantity
	next := prev + delta
	if next < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID:  req.ProductID,
			LocationID: req.LocationID,
			Available:  prev,
			Requested:  -delta,
		}
	}
	now := time.Now().UTC()
	stock.Quantity = next
	stock.LastUpdated = now
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	if err := productRepo.UpdateAggregateStock(ctx, req.ProductID, delta); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ProductID:     req.ProductID,
		LocationID:    req.LocationID,
		Type:          mt,
		Quantity:      req.Quantity,
		PreviousStock: prev,
		NewStock:      next,
		Reference:     req.Reference,
		Notes:         req.Notes,
		CreatedBy:     req.ActorID,
		MovementDate:  now,
		CreatedAt:     now,
		TransactionID: uuid.New().String(),
	}
	id, err := movRepo.Append(ctx, mov)
	if err != nil {
		return nil, err
	}
	mov.ID = id
	return mov, nil
}

// applyTransfer bloquea origen y destino en orden ascendente de LocationID
// (orden total fijo contra interbloqueos), verifica disponibilidad en el
// origen y mueve la cantidad. El agregado del producto no cambia.
func (e *Engine) applyTransfer(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	stockRepo repository.ProductLocationRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	req TransferRequest,
) (*entity.StockMovement, error) {
	if err := ensureLive(ctx, productRepo, locationRepo, req.ProductID, req.FromLocationID, req.ToLocationID); err != nil {
		return nil, err
	}
	first, second := req.FromLocationID, req.ToLocationID
	if second < first {
		first, second = second, first
	}
	locked := make(map[int64]*entity.ProductLocation, 2)
	for _, locID := range []int64{first, second} {
		pl, err := stockRepo.GetForUpdate(ctx, req.ProductID, locID)
		if err != nil {
			return nil, err
		}
		locked[locID] = pl
	}
	origin := locked[req.FromLocationID]
	dest := locked[req.ToLocationID]

	if origin.Quantity < req.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductID:  req.ProductID,
			LocationID: req.FromLocationID,
			Available:  origin.Quantity,
			Requested:  req.Quantity,
		}
	}
	now := time.Now().UTC()
	prev := origin.Quantity
	origin.Quantity -= req.Quantity
	dest.Quantity += req.Quantity
	origin.LastUpdated = now
	dest.LastUpdated = now
	if err := stockRepo.Upsert(ctx, origin); err != nil {
		return nil, err
	}
	if err := stockRepo.Upsert(ctx, dest); err != nil {
		return nil, err
	}
	toLoc := req.ToLocationID
	mov := &entity.StockMovement{
		ProductID:     req.ProductID,
		LocationID:    req.FromLocationID,
		Type:          entity.MovementTypeTransfer,
		Quantity:      req.Quantity,
		PreviousStock: prev,
		NewStock:      origin.Quantity,
		ToLocationID:  &toLoc,
		Reference:     req.Reference,
		Notes:         req.Notes,
		CreatedBy:     req.ActorID,
		MovementDate:  now,
		CreatedAt:     now,
		TransactionID: uuid.New().String(),
	}
	id, err := movRepo.Append(ctx, mov)
	if err != nil {
		return nil, err
	}
	mov.ID = id
	return mov, nil
}

// applyAdjustment fija la cantidad y registra el movimiento con la magnitud
// del delta; el signo se reconstruye de Prev/New al leer el libro.
func (e *Engine) applyAdjustment(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	stockRepo repository.ProductLocationRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	req AdjustmentRequest,
) (*entity.StockMovement, error) {
	if err := ensureLive(ctx, productRepo, locationRepo, req.ProductID, req.LocationID); err != nil {
		return nil, err
	}
	stock, err := stockRepo.GetForUpdate(ctx, req.ProductID, req.LocationID)
	if err != nil {
		return nil, err
	}
	prev := stock.Quantity
	delta := req.NewQuantity - prev
	if delta == 0 {
		return nil, domain.NewValidationError("el ajuste no tiene efecto: la cantidad ya es la declarada")
	}
	now := time.Now().UTC()
	stock.Quantity = req.NewQuantity
	stock.LastUpdated = now
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	if err := productRepo.UpdateAggregateStock(ctx, req.ProductID, delta); err != nil {
		return nil, err
	}
	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	mov := &entity.StockMovement{
		ProductID:     req.ProductID,
		LocationID:    req.LocationID,
		Type:          entity.MovementTypeAdjustment,
		Quantity:      magnitude,
		PreviousStock: prev,
		NewStock:      req.NewQuantity,
		Notes:         req.Reason,
		CreatedBy:     req.ActorID,
		MovementDate:  now,
		CreatedAt:     now,
		TransactionID: uuid.New().String(),
	}
	id, err := movRepo.Append(ctx, mov)
	if err != nil {
		return nil, err
	}
	mov.ID = id
	return mov, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución de referencias y ejecución con reintentos
// ──────────────────────────────────────────────────────────────────────────────

// ensureLive revalida dentro de la transacción, con los repos atados a ella,
// que el producto siga sin borrado lógico y las ubicaciones existan y estén
// activas. El prechequeo de resolveTarget corre fuera de la transacción y
// puede quedar obsoleto entre la lectura y el commit.
func ensureLive(
	ctx context.Context,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	productID int64,
	locationIDs ...int64,
) error {
	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	for _, id := range locationIDs {
		loc, err := locationRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrNotFound
		}
		if !loc.IsActive {
			return domain.ErrConflict
		}
	}
	return nil
}

// resolveTarget verifica que el producto exista (sin borrado lógico) y que la
// ubicación exista y esté activa. Es el prechequeo rápido antes de abrir la
// transacción; ensureLive repite la verificación dentro de ella.
func (e *Engine) resolveTarget(ctx context.Context, productID, locationID int64) error {
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return e.resolveLocation(ctx, locationID)
}

func (e *Engine) resolveLocation(ctx context.Context, locationID int64) error {
	loc, err := e.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrNotFound
	}
	if !loc.IsActive {
		return domain.ErrConflict
	}
	return nil
}

// runTx ejecuta fn dentro de una transacción acotada por OpTimeout, con
// reintento acotado ante conflictos de concurrencia (deadlock/serialización
// clasificados por el TxRunner). Los fallos de persistencia se registran con
// operación, ids y actor; al caller solo llega el error opaco.
func (e *Engine) runTx(ctx context.Context, op string, productID int64, actorID string, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.ProductLocationRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) error) error {
	if e.cfg.OpTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.OpTimeout)
		defer cancel()
	}

	var err error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		err = e.txRunner.Run(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConcurrencyConflict) && attempt < e.cfg.MaxRetries {
			continue
		}
		break
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		// Sin commit parcial: es seguro reintentar la operación completa.
		e.log.Warn().Str("op", op).Int64("product_id", productID).Str("actor", actorID).Msg("operación de inventario expiró")
		return domain.ErrTimeout
	case isBusinessError(err):
		return err
	default:
		e.log.Error().Err(err).Str("op", op).Int64("product_id", productID).Str("actor", actorID).Msg("fallo de persistencia en el motor de inventario")
		return err
	}
}

// isBusinessError distingue resultados esperados de fallos de infraestructura.
func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvalidTransfer) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrConcurrencyConflict)
}

func (e *Engine) invalidate(ctx context.Context, productID int64, locationIDs ...int64) {
	if e.cache != nil {
		e.cache.InvalidateStock(ctx, productID, locationIDs...)
	}
}
