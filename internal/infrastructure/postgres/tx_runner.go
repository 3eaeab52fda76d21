package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Los fallos de serialización e interbloqueo se traducen a
// domain.ErrConcurrencyConflict para que el motor pueda reintentar.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.ProductLocationRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewStockMovementRepository(tx)
	stockRepo := NewProductLocationRepository(tx)
	productRepo := NewProductRepository(tx)
	locationRepo := NewLocationRepository(tx)

	if err := fn(movRepo, stockRepo, productRepo, locationRepo); err != nil {
		if isRetryableTxError(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxError(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
