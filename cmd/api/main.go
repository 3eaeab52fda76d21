package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/query"
	"github.com/jhoicas/almacen-api/internal/infrastructure/cache"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	stockRepo := postgres.NewProductLocationRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de lectura de stock (opcional). Si Redis no está disponible la
	// API sigue funcionando solo contra la BD.
	var stockCache *cache.StockCache
	if cfg.Redis.Enabled {
		stockCache, err = cache.NewStockCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, se continúa sin caché")
			stockCache = nil
		} else {
			defer stockCache.Close()
		}
	}

	// ledger.StockCacheInvalidator y query.StockCache admiten nil, pero un
	// puntero nil dentro de la interfaz no es una interfaz nil.
	var invalidator ledger.StockCacheInvalidator
	var readCache query.StockCache
	if stockCache != nil {
		invalidator = stockCache
		readCache = stockCache
	}

	engine := ledger.NewEngine(txRunner, productRepo, locationRepo, invalidator, log, ledger.Config{
		OpTimeout:  cfg.Stock.OpTimeout,
		MaxRetries: cfg.Stock.MaxRetries,
	})
	queryUC := query.NewStockQueryUseCase(productRepo, locationRepo, stockRepo, movementRepo, readCache)
	productUC := catalog.NewProductUseCase(productRepo, categoryRepo, stockRepo, txRunner)
	locationUC := catalog.NewLocationUseCase(locationRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:     engine,
		QueryUC:    queryUC,
		ProductUC:  productUC,
		LocationUC: locationUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
