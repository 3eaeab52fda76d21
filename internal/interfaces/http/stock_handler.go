package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/query"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del motor de inventario y su lado
// de consulta (protegido).
type StockHandler struct {
	engine  *ledger.Engine
	queries *query.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(engine *ledger.Engine, queries *query.StockQueryUseCase) *StockHandler {
	return &StockHandler{engine: engine, queries: queries}
}

func (h *StockHandler) movementRequest(c *fiber.Ctx) (ledger.MovementRequest, bool) {
	var in dto.MovementBody
	if err := c.BodyParser(&in); err != nil {
		return ledger.MovementRequest{}, false
	}
	return ledger.MovementRequest{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		Reference:  in.Reference,
		Notes:      in.Notes,
		ActorID:    GetUserID(c),
	}, true
}

// StockIn godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementBody  true  "product_id, location_id, quantity, reference, notes"
// @Success      201   {object}  dto.Response{data=dto.MovementResponse}
// @Failure      400   {object}  dto.Response
// @Failure      404   {object}  dto.Response
// @Failure      409   {object}  dto.Response
// @Router       /api/stock/in [post]
func (h *StockHandler) StockIn(c *fiber.Ctx) error {
	req, ok := h.movementRequest(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	mov, err := h.engine.StockIn(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovement(mov))
}

// StockOut godoc
// @Summary      Registrar salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementBody  true  "product_id, location_id, quantity"
// @Success      201   {object}  dto.Response{data=dto.MovementResponse}
// @Failure      409   {object}  dto.Response  "stock insuficiente"
// @Router       /api/stock/out [post]
func (h *StockHandler) StockOut(c *fiber.Ctx) error {
	req, ok := h.movementRequest(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	mov, err := h.engine.StockOut(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovement(mov))
}

// Return godoc
// @Summary      Registrar devolución (reingreso de stock)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementBody  true  "product_id, location_id, quantity"
// @Success      201   {object}  dto.Response{data=dto.MovementResponse}
// @Router       /api/stock/return [post]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	req, ok := h.movementRequest(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	mov, err := h.engine.Return(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovement(mov))
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Movimiento atómico de doble cara: una sola fila del libro con
// @Description  origen y destino; el agregado del producto no cambia.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferBody  true  "product_id, from_location_id, to_location_id, quantity"
// @Success      201   {object}  dto.Response{data=dto.MovementResponse}
// @Failure      400   {object}  dto.Response  "origen igual a destino"
// @Failure      409   {object}  dto.Response  "stock insuficiente en el origen"
// @Router       /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	mov, err := h.engine.Transfer(c.Context(), ledger.TransferRequest{
		ProductID:      in.ProductID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       in.Quantity,
		Reference:      in.Reference,
		Notes:          in.Notes,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovement(mov))
}

// Adjustment godoc
// @Summary      Ajustar stock a la cantidad contada
// @Description  Fija la cantidad de la ubicación a new_quantity tras un conteo
// @Description  físico. La razón es obligatoria y un ajuste sin efecto se rechaza.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentBody  true  "product_id, location_id, new_quantity, reason"
// @Success      201   {object}  dto.Response{data=dto.MovementResponse}
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	mov, err := h.engine.Adjustment(c.Context(), ledger.AdjustmentRequest{
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		NewQuantity: in.NewQuantity,
		Reason:      in.Reason,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovement(mov))
}

func toBulkItems(items []dto.MovementBody) []ledger.BulkItem {
	out := make([]ledger.BulkItem, 0, len(items))
	for _, it := range items {
		out = append(out, ledger.BulkItem{
			ProductID:  it.ProductID,
			LocationID: it.LocationID,
			Quantity:   it.Quantity,
			Reference:  it.Reference,
			Notes:      it.Notes,
		})
	}
	return out
}

// BulkStockIn godoc
// @Summary      Registrar lote de entradas (todo o nada)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkMovementBody  true  "items"
// @Success      201   {object}  dto.Response{data=[]dto.MovementResponse}
// @Router       /api/stock/bulk/in [post]
func (h *StockHandler) BulkStockIn(c *fiber.Ctx) error {
	var in dto.BulkMovementBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	movs, err := h.engine.BulkStockIn(c.Context(), toBulkItems(in.Items), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovements(movs))
}

// BulkStockOut godoc
// @Summary      Registrar lote de salidas (todo o nada)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkMovementBody  true  "items"
// @Success      201   {object}  dto.Response{data=[]dto.MovementResponse}
// @Failure      409   {object}  dto.Response  "cualquier insuficiencia revierte el lote completo"
// @Router       /api/stock/bulk/out [post]
func (h *StockHandler) BulkStockOut(c *fiber.Ctx) error {
	var in dto.BulkMovementBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	movs, err := h.engine.BulkStockOut(c.Context(), toBulkItems(in.Items), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovements(movs))
}

// BulkTransfer godoc
// @Summary      Registrar lote de traslados (todo o nada)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkTransferBody  true  "items"
// @Success      201   {object}  dto.Response{data=[]dto.MovementResponse}
// @Router       /api/stock/bulk/transfer [post]
func (h *StockHandler) BulkTransfer(c *fiber.Ctx) error {
	var in dto.BulkTransferBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	items := make([]ledger.BulkTransferItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ledger.BulkTransferItem{
			ProductID:      it.ProductID,
			FromLocationID: it.FromLocationID,
			ToLocationID:   it.ToLocationID,
			Quantity:       it.Quantity,
			Reference:      it.Reference,
			Notes:          it.Notes,
		})
	}
	movs, err := h.engine.BulkTransfer(c.Context(), items, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromMovements(movs))
}

// CanMove godoc
// @Summary      Prueba en seco de un movimiento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  int     true  "Producto"
// @Param        location_id  query  int     true  "Ubicación"
// @Param        type         query  string  true  "STOCK_IN | STOCK_OUT | TRANSFER | ADJUSTMENT | RETURN"
// @Param        quantity     query  int     true  "Cantidad"
// @Success      200  {object}  dto.Response{data=dto.CanMoveResponse}
// @Router       /api/stock/can-move [get]
func (h *StockHandler) CanMove(c *fiber.Ctx) error {
	productID := int64(c.QueryInt("product_id"))
	locationID := int64(c.QueryInt("location_id"))
	quantity := c.QueryInt("quantity")
	mt := entity.MovementType(c.Query("type"))

	allowed, err := h.engine.CanPerformMovement(c.Context(), productID, locationID, mt, quantity)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.CanMoveResponse{Allowed: allowed})
}

// CurrentStock godoc
// @Summary      Stock actual de un producto
// @Description  Con location_id devuelve la cantidad en esa ubicación; sin él,
// @Description  el agregado del producto.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  int  true   "Producto"
// @Param        location_id  query  int  false  "Ubicación (vacío = agregado)"
// @Success      200  {object}  dto.Response{data=dto.CurrentStockResponse}
// @Router       /api/stock/current [get]
func (h *StockHandler) CurrentStock(c *fiber.Ctx) error {
	productID := int64(c.QueryInt("product_id"))
	var locationID *int64
	if c.Query("location_id") != "" {
		id := int64(c.QueryInt("location_id"))
		locationID = &id
	}
	qty, err := h.queries.GetCurrentStock(c.Context(), productID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.CurrentStockResponse{ProductID: productID, LocationID: locationID, Quantity: qty})
}

// Movements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  int     false  "Filtrar por producto"
// @Param        location_id  query  int     false  "Filtrar por ubicación (origen o destino)"
// @Param        type         query  string  false  "Filtrar por tipo"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Param        page         query  int     false  "Página (desde 1)"
// @Param        page_size    query  int     false  "Tamaño de página (máx 100)"
// @Success      200  {object}  dto.Response{data=[]dto.MovementResponse}
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	q := query.MovementsQuery{
		Page:     c.QueryInt("page"),
		PageSize: c.QueryInt("page_size"),
	}
	if c.Query("product_id") != "" {
		id := int64(c.QueryInt("product_id"))
		q.ProductID = &id
	}
	if c.Query("location_id") != "" {
		id := int64(c.QueryInt("location_id"))
		q.LocationID = &id
	}
	if c.Query("type") != "" {
		mt := entity.MovementType(c.Query("type"))
		q.Type = &mt
	}
	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "fecha 'from' inválida (RFC3339)"})
		}
		q.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "fecha 'to' inválida (RFC3339)"})
		}
		q.To = &ts
	}

	movs, total, err := h.queries.GetMovements(c.Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	page, pageSize := q.Page, q.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return c.JSON(dto.Response{
		Success: true,
		Data: fiber.Map{
			"items": dto.FromMovements(movs),
			"page":  dto.PageResponse{Page: page, PageSize: pageSize, Total: total},
		},
	})
}

// MovementByID godoc
// @Summary      Obtener un movimiento del libro
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.Response{data=dto.MovementResponse}
// @Failure      404  {object}  dto.Response
// @Router       /api/stock/movements/{id} [get]
func (h *StockHandler) MovementByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	mov, err := h.queries.GetMovementByID(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromMovement(mov))
}

// ProductLocations godoc
// @Summary      Stock por ubicación de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID del producto"
// @Success      200  {object}  dto.Response{data=[]dto.ProductLocationResponse}
// @Router       /api/products/{id}/locations [get]
func (h *StockHandler) ProductLocations(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	rows, err := h.queries.GetProductLocations(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductLocationResponse, 0, len(rows))
	for _, pl := range rows {
		out = append(out, dto.FromProductLocation(pl))
	}
	return respondOK(c, out)
}

// ProductsByLocation godoc
// @Summary      Productos con stock en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la ubicación"
// @Success      200  {object}  dto.Response{data=[]dto.ProductResponse}
// @Router       /api/locations/{id}/products [get]
func (h *StockHandler) ProductsByLocation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	products, err := h.queries.GetProductsByLocation(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromProducts(products))
}

// LowStock godoc
// @Summary      Productos con stock agregado bajo su umbral
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Response{data=[]dto.ProductResponse}
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.queries.GetLowStockProducts(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromProducts(products))
}

// LowStockByLocation godoc
// @Summary      Parejas (producto, ubicación) bajo su umbral propio
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Response{data=[]dto.ProductLocationResponse}
// @Router       /api/stock/low/locations [get]
func (h *StockHandler) LowStockByLocation(c *fiber.Ctx) error {
	rows, err := h.queries.GetLowStockByLocation(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductLocationResponse, 0, len(rows))
	for _, pl := range rows {
		out = append(out, dto.FromProductLocation(pl))
	}
	return respondOK(c, out)
}

// OutOfStock godoc
// @Summary      Productos sin stock agregado
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Response{data=[]dto.ProductResponse}
// @Router       /api/stock/out-of-stock [get]
func (h *StockHandler) OutOfStock(c *fiber.Ctx) error {
	products, err := h.queries.GetOutOfStockProducts(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromProducts(products))
}

// DailyMovements godoc
// @Summary      Unidades movidas por tipo en un día
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "Día (YYYY-MM-DD, por defecto hoy UTC)"
// @Success      200   {object}  dto.Response{data=[]dto.DailyTotalResponse}
// @Router       /api/stock/daily [get]
func (h *StockHandler) DailyMovements(c *fiber.Ctx) error {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "fecha inválida (YYYY-MM-DD)"})
		}
		day = parsed
	}
	totals, err := h.queries.GetDailyMovements(c.Context(), day)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DailyTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.DailyTotalResponse{Type: string(t.Type), Count: t.Count, Quantity: t.Quantity})
	}
	return respondOK(c, out)
}

// Reconcile godoc
// @Summary      Reconciliar una pareja (producto, ubicación) contra el libro
// @Description  Reproduce el historial completo desde cero y lo contrasta con
// @Description  la cantidad almacenada y el agregado del producto.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  int  true  "Producto"
// @Param        location_id  query  int  true  "Ubicación"
// @Success      200  {object}  dto.Response
// @Router       /api/stock/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	productID := int64(c.QueryInt("product_id"))
	locationID := int64(c.QueryInt("location_id"))

	replayed, err := h.queries.ReplayQuantity(c.Context(), productID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	stored, err := h.queries.GetCurrentStock(c.Context(), productID, &locationID)
	if err != nil {
		return respondError(c, err)
	}
	aggStored, aggComputed, err := h.queries.VerifyProductAggregate(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.Map{
		"product_id":         productID,
		"location_id":        locationID,
		"stored":             stored,
		"replayed":           replayed,
		"consistent":         stored == replayed,
		"aggregate_stored":   aggStored,
		"aggregate_computed": aggComputed,
		"aggregate_ok":       aggStored == aggComputed,
	})
}
