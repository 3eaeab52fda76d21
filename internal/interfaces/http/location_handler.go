package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// LocationHandler maneja las ubicaciones físicas del almacén.
type LocationHandler struct {
	locations *catalog.LocationUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(locations *catalog.LocationUseCase) *LocationHandler {
	return &LocationHandler{locations: locations}
}

func locationFromBody(in dto.LocationBody) *entity.Location {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	return &entity.Location{
		Code:            in.Code,
		Name:            in.Name,
		Description:     in.Description,
		Zone:            in.Zone,
		Aisle:           in.Aisle,
		Shelf:           in.Shelf,
		Position:        in.Position,
		ParentID:        in.ParentID,
		MaxCapacity:     in.MaxCapacity,
		CurrentCapacity: in.CurrentCapacity,
		CapacityUnit:    in.CapacityUnit,
		MinTemperature:  in.MinTemperature,
		MaxTemperature:  in.MaxTemperature,
		IsActive:        isActive,
	}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         ubicaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LocationBody  true  "Ubicación"
// @Success      201   {object}  dto.Response{data=dto.LocationResponse}
// @Failure      409   {object}  dto.Response  "código duplicado"
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.LocationBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	l := locationFromBody(in)
	if err := h.locations.Create(c.Context(), l); err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromLocation(l))
}

// GetByID godoc
// @Summary      Obtener ubicación por ID
// @Tags         ubicaciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID"
// @Success      200  {object}  dto.Response{data=dto.LocationResponse}
// @Failure      404  {object}  dto.Response
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	l, err := h.locations.GetByID(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromLocation(l))
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         ubicaciones
// @Security     Bearer
// @Produce      json
// @Param        page       query  int  false  "Página (desde 1)"
// @Param        page_size  query  int  false  "Tamaño de página (máx 100)"
// @Success      200  {object}  dto.Response{data=[]dto.LocationResponse}
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	locations, err := h.locations.List(c.Context(), c.QueryInt("page"), c.QueryInt("page_size"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromLocations(locations))
}

// ListChildren godoc
// @Summary      Listar sububicaciones
// @Tags         ubicaciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la ubicación padre"
// @Success      200  {object}  dto.Response{data=[]dto.LocationResponse}
// @Router       /api/locations/{id}/children [get]
func (h *LocationHandler) ListChildren(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	children, err := h.locations.ListChildren(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromLocations(children))
}

// Update godoc
// @Summary      Actualizar ubicación
// @Tags         ubicaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int               true  "ID"
// @Param        body  body  dto.LocationBody  true  "Ubicación"
// @Success      200   {object}  dto.Response{data=dto.LocationResponse}
// @Router       /api/locations/{id} [put]
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	var in dto.LocationBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	l := locationFromBody(in)
	l.ID = int64(id)
	if err := h.locations.Update(c.Context(), l); err != nil {
		return respondError(c, err)
	}
	updated, err := h.locations.GetByID(c.Context(), l.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromLocation(updated))
}

// Delete godoc
// @Summary      Eliminar ubicación
// @Description  Se rechaza mientras la ubicación tenga stock, movimientos
// @Description  registrados o sububicaciones.
// @Tags         ubicaciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID"
// @Success      200  {object}  dto.Response
// @Failure      409  {object}  dto.Response  "ubicación en uso"
// @Router       /api/locations/{id} [delete]
func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	if err := h.locations.Delete(c.Context(), int64(id)); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "ubicación eliminada")
}
