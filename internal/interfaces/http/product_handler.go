package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductHandler maneja el catálogo de productos y categorías.
type ProductHandler struct {
	products *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(products *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{products: products}
}

func productFromBody(in dto.ProductBody) *entity.Product {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	return &entity.Product{
		SKU:          in.SKU,
		Barcode:      in.Barcode,
		Name:         in.Name,
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		Price:        in.Price,
		Cost:         in.Cost,
		Unit:         in.Unit,
		MinimumStock: in.MinimumStock,
		IsActive:     isActive,
		ExpiryDate:   in.ExpiryDate,
	}
}

// Create godoc
// @Summary      Crear producto
// @Tags         productos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductBody  true  "Producto"
// @Success      201   {object}  dto.Response{data=dto.ProductResponse}
// @Failure      409   {object}  dto.Response  "SKU duplicado"
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	p := productFromBody(in)
	if err := h.products.Create(c.Context(), p); err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromProduct(p))
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         productos
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID"
// @Success      200  {object}  dto.Response{data=dto.ProductResponse}
// @Failure      404  {object}  dto.Response
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	p, err := h.products.GetByID(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromProduct(p))
}

// GetBySKU godoc
// @Summary      Obtener producto por SKU
// @Tags         productos
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.Response{data=dto.ProductResponse}
// @Failure      404  {object}  dto.Response
// @Router       /api/products/sku/{sku} [get]
func (h *ProductHandler) GetBySKU(c *fiber.Ctx) error {
	p, err := h.products.GetBySKU(c.Context(), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromProduct(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         productos
// @Security     Bearer
// @Produce      json
// @Param        page       query  int  false  "Página (desde 1)"
// @Param        page_size  query  int  false  "Tamaño de página (máx 100)"
// @Success      200  {object}  dto.Response{data=[]dto.ProductResponse}
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.Context(), c.QueryInt("page"), c.QueryInt("page_size"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromProducts(products))
}

// Update godoc
// @Summary      Actualizar producto
// @Description  current_stock no es editable: solo los movimientos del libro
// @Description  lo modifican.
// @Tags         productos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "ID"
// @Param        body  body  dto.ProductBody  true  "Producto"
// @Success      200   {object}  dto.Response{data=dto.ProductResponse}
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	var in dto.ProductBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	p := productFromBody(in)
	p.ID = int64(id)
	if err := h.products.Update(c.Context(), p); err != nil {
		return respondError(c, err)
	}
	updated, err := h.products.GetByID(c.Context(), p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, dto.FromProduct(updated))
}

// Delete godoc
// @Summary      Eliminar producto (borrado lógico)
// @Tags         productos
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID"
// @Success      200  {object}  dto.Response
// @Failure      409  {object}  dto.Response  "producto con stock no puede eliminarse"
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	if err := h.products.Delete(c.Context(), int64(id)); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "producto eliminado")
}

// SetPrimaryLocation godoc
// @Summary      Marcar la ubicación primaria de un producto
// @Tags         productos
// @Security     Bearer
// @Produce      json
// @Param        id          path  int  true  "ID del producto"
// @Param        locationId  path  int  true  "ID de la ubicación"
// @Success      200  {object}  dto.Response
// @Router       /api/products/{id}/primary-location/{locationId} [put]
func (h *ProductHandler) SetPrimaryLocation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	locID, err := c.ParamsInt("locationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id de ubicación inválido"})
	}
	if err := h.products.SetPrimaryLocation(c.Context(), int64(id), int64(locID)); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "ubicación primaria actualizada")
}

type thresholdsBody struct {
	MinStock int `json:"min_stock"`
	MaxStock int `json:"max_stock"`
}

// UpdateThresholds godoc
// @Summary      Fijar umbrales de stock por ubicación
// @Tags         productos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id          path  int             true  "ID del producto"
// @Param        locationId  path  int             true  "ID de la ubicación"
// @Param        body        body  thresholdsBody  true  "min_stock, max_stock (0 = sin máximo)"
// @Success      200  {object}  dto.Response
// @Router       /api/products/{id}/locations/{locationId}/thresholds [put]
func (h *ProductHandler) UpdateThresholds(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id inválido"})
	}
	locID, err := c.ParamsInt("locationId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "id de ubicación inválido"})
	}
	var in thresholdsBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	if err := h.products.UpdateThresholds(c.Context(), int64(id), int64(locID), in.MinStock, in.MaxStock); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, "umbrales actualizados")
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         categorias
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryBody  true  "Categoría"
// @Success      201   {object}  dto.Response{data=dto.CategoryResponse}
// @Router       /api/categories [post]
func (h *ProductHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CategoryBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{Success: false, Message: "cuerpo inválido"})
	}
	cat := &entity.Category{ParentID: in.ParentID, Name: in.Name, Code: in.Code}
	if err := h.products.CreateCategory(c.Context(), cat); err != nil {
		return respondError(c, err)
	}
	return respondCreated(c, dto.FromCategory(cat))
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         categorias
// @Security     Bearer
// @Produce      json
// @Param        page       query  int  false  "Página"
// @Param        page_size  query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.Response{data=[]dto.CategoryResponse}
// @Router       /api/categories [get]
func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.products.ListCategories(c.Context(), c.QueryInt("page"), c.QueryInt("page_size"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, dto.FromCategory(cat))
	}
	return respondOK(c, out)
}
