package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/query"
)

// Roles con permiso para registrar movimientos. Los perfiles de solo
// consulta quedan fuera de las rutas mutadoras.
var movementRoles = []string{"admin", "bodeguero"}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine     *ledger.Engine
	QueryUC    *query.StockQueryUseCase
	ProductUC  *catalog.ProductUseCase
	LocationUC *catalog.LocationUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stock (protegido; las mutaciones exigen rol de bodega)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Engine, deps.QueryUC)

	canMove := RequireRole(movementRoles...)
	stock.Post("/in", canMove, stockHandler.StockIn)
	stock.Post("/out", canMove, stockHandler.StockOut)
	stock.Post("/transfer", canMove, stockHandler.Transfer)
	stock.Post("/adjust", canMove, stockHandler.Adjustment)
	stock.Post("/return", canMove, stockHandler.Return)
	stock.Post("/bulk/in", canMove, stockHandler.BulkStockIn)
	stock.Post("/bulk/out", canMove, stockHandler.BulkStockOut)
	stock.Post("/bulk/transfer", canMove, stockHandler.BulkTransfer)

	stock.Get("/current", stockHandler.CurrentStock)
	stock.Get("/can-move", stockHandler.CanMove)
	stock.Get("/movements", stockHandler.Movements)
	stock.Get("/movements/:id", stockHandler.MovementByID)
	stock.Get("/low", stockHandler.LowStock)
	stock.Get("/low/locations", stockHandler.LowStockByLocation)
	stock.Get("/out-of-stock", stockHandler.OutOfStock)
	stock.Get("/daily", stockHandler.DailyMovements)
	stock.Get("/reconcile", stockHandler.Reconcile)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole("admin"), productHandler.Delete)
	products.Get("/:id/locations", stockHandler.ProductLocations)
	products.Put("/:id/primary-location/:locationId", canMove, productHandler.SetPrimaryLocation)
	products.Put("/:id/locations/:locationId/thresholds", canMove, productHandler.UpdateThresholds)

	// Categories (protegido)
	categories := protected.Group("/categories")
	categories.Post("/", RequireRole("admin"), productHandler.CreateCategory)
	categories.Get("/", productHandler.ListCategories)

	// Locations (protegido)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", RequireRole("admin"), locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", RequireRole("admin"), locationHandler.Update)
	locations.Delete("/:id", RequireRole("admin"), locationHandler.Delete)
	locations.Get("/:id/children", locationHandler.ListChildren)
	locations.Get("/:id/products", stockHandler.ProductsByLocation)
}
