package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/query"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var _ query.StockCache = (*StockCache)(nil)
var _ ledger.StockCacheInvalidator = (*StockCache)(nil)

// StockCache caché de lectura de cantidades de stock sobre Redis.
// Clave stock:<producto>:<ubicación>, con ubicación 0 para el agregado del
// producto. Es un acelerador opcional: ante cualquier error de Redis la
// lectura sigue contra la BD, nunca se falla la petición por el caché.
type StockCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewStockCache construye el caché y verifica la conexión con un PING.
func NewStockCache(addr, password string, db int, ttl time.Duration, log *logger.Logger) (*StockCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StockCache{rdb: rdb, ttl: ttl, log: log}, nil
}

// Close cierra la conexión con Redis.
func (c *StockCache) Close() error {
	return c.rdb.Close()
}

func stockKey(productID, locationID int64) string {
	return fmt.Sprintf("stock:%d:%d", productID, locationID)
}

// GetStock devuelve la cantidad cacheada y si hubo acierto.
func (c *StockCache) GetStock(ctx context.Context, productID, locationID int64) (int, bool) {
	val, err := c.rdb.Get(ctx, stockKey(productID, locationID)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		c.log.Warn().Err(err).Int64("product_id", productID).Msg("fallo leyendo caché de stock")
		return 0, false
	}
	qty, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return qty, true
}

// SetStock escribe la cantidad con el TTL configurado.
func (c *StockCache) SetStock(ctx context.Context, productID, locationID int64, quantity int) {
	if err := c.rdb.Set(ctx, stockKey(productID, locationID), quantity, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int64("product_id", productID).Msg("fallo escribiendo caché de stock")
	}
}

// InvalidateStock borra las entradas del producto afectadas por una mutación
// confirmada: el agregado (ubicación 0) y cada ubicación tocada.
func (c *StockCache) InvalidateStock(ctx context.Context, productID int64, locationIDs ...int64) {
	keys := make([]string, 0, len(locationIDs)+1)
	keys = append(keys, stockKey(productID, 0))
	for _, locID := range locationIDs {
		keys = append(keys, stockKey(productID, locID))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Int64("product_id", productID).Msg("fallo invalidando caché de stock")
	}
}
