package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ProductLocationRepository = (*ProductLocationRepo)(nil)

const productLocationColumns = `id, product_id, location_id, quantity, minimum_stock,
		maximum_stock, is_primary_location, last_updated`

// ProductLocationRepo implementación del puerto de stock por (producto, ubicación)
// sobre PostgreSQL (usable con pool o tx).
type ProductLocationRepo struct {
	q Querier
}

// NewProductLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductLocationRepository(q Querier) *ProductLocationRepo {
	return &ProductLocationRepo{q: q}
}

// Get obtiene la fila de stock de la pareja, o nil si nunca ha habido movimiento.
func (r *ProductLocationRepo) Get(ctx context.Context, productID, locationID int64) (*entity.ProductLocation, error) {
	query := `SELECT ` + productLocationColumns + `
		FROM product_locations WHERE product_id = $1 AND location_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, productID, locationID), "get product location")
}

// GetForUpdate obtiene la fila y la bloquea para la transacción (SELECT FOR
// UPDATE). Si no existe, primero la materializa con cantidad cero y vuelve a
// bloquearla: SELECT FOR UPDATE sobre una fila ausente no bloquea nada, así
// que dos transacciones que estrenan la pareja leerían ambas cantidad cero y
// la segunda pisaría la cantidad de la primera al escribir. El INSERT con
// ON CONFLICT DO NOTHING hace que la perdedora espere a que la fila sea
// visible y el segundo SELECT la bloquee de verdad.
func (r *ProductLocationRepo) GetForUpdate(ctx context.Context, productID, locationID int64) (*entity.ProductLocation, error) {
	query := `SELECT ` + productLocationColumns + `
		FROM product_locations WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	pl, err := r.scanOne(r.q.QueryRow(ctx, query, productID, locationID), "get product location for update")
	if err != nil {
		return nil, err
	}
	if pl != nil {
		return pl, nil
	}
	insert := `
		INSERT INTO product_locations (product_id, location_id, quantity, last_updated)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID, locationID); err != nil {
		return nil, fmt.Errorf("materialize product location: %w", err)
	}
	pl, err = r.scanOne(r.q.QueryRow(ctx, query, productID, locationID), "get product location for update")
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return nil, fmt.Errorf("get product location for update: fila (%d, %d) no visible tras insertarla", productID, locationID)
	}
	return pl, nil
}

// Upsert inserta o actualiza la fila por (product_id, location_id).
func (r *ProductLocationRepo) Upsert(ctx context.Context, record *entity.ProductLocation) error {
	query := `
		INSERT INTO product_locations (product_id, location_id, quantity, minimum_stock,
			maximum_stock, is_primary_location, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, minimum_stock = EXCLUDED.minimum_stock,
			maximum_stock = EXCLUDED.maximum_stock,
			is_primary_location = EXCLUDED.is_primary_location, last_updated = now()
		RETURNING id, last_updated`
	err := r.q.QueryRow(ctx, query,
		record.ProductID, record.LocationID, record.Quantity,
		record.MinimumStock, record.MaximumStock, record.IsPrimaryLocation,
	).Scan(&record.ID, &record.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert product location: %w", err)
	}
	return nil
}

// ListByProduct lista el stock del producto en todas sus ubicaciones.
func (r *ProductLocationRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.ProductLocation, error) {
	query := `SELECT ` + productLocationColumns + `
		FROM product_locations WHERE product_id = $1 ORDER BY location_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	return r.scanMany(rows)
}

// ListByLocation lista el stock registrado en la ubicación.
func (r *ProductLocationRepo) ListByLocation(ctx context.Context, locationID int64) ([]*entity.ProductLocation, error) {
	query := `SELECT ` + productLocationColumns + `
		FROM product_locations WHERE location_id = $1 ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list by location: %w", err)
	}
	return r.scanMany(rows)
}

// ListBelowMinimum lista las filas con cantidad en o bajo su umbral por ubicación.
func (r *ProductLocationRepo) ListBelowMinimum(ctx context.Context) ([]*entity.ProductLocation, error) {
	query := `SELECT ` + productLocationColumns + `
		FROM product_locations WHERE quantity <= minimum_stock
		ORDER BY product_id, location_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list below minimum: %w", err)
	}
	return r.scanMany(rows)
}

// SetPrimary marca la ubicación como primaria del producto y desmarca el resto,
// en una sola sentencia para no dejar dos primarias visibles entre pasos.
func (r *ProductLocationRepo) SetPrimary(ctx context.Context, productID, locationID int64) error {
	query := `
		UPDATE product_locations
		SET is_primary_location = (location_id = $2), last_updated = now()
		WHERE product_id = $1`
	if _, err := r.q.Exec(ctx, query, productID, locationID); err != nil {
		return fmt.Errorf("set primary location: %w", err)
	}
	return nil
}

func (r *ProductLocationRepo) scanOne(row pgx.Row, op string) (*entity.ProductLocation, error) {
	var pl entity.ProductLocation
	err := row.Scan(
		&pl.ID, &pl.ProductID, &pl.LocationID, &pl.Quantity, &pl.MinimumStock,
		&pl.MaximumStock, &pl.IsPrimaryLocation, &pl.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &pl, nil
}

func (r *ProductLocationRepo) scanMany(rows pgx.Rows) ([]*entity.ProductLocation, error) {
	defer rows.Close()
	var list []*entity.ProductLocation
	for rows.Next() {
		var pl entity.ProductLocation
		if err := rows.Scan(
			&pl.ID, &pl.ProductID, &pl.LocationID, &pl.Quantity, &pl.MinimumStock,
			&pl.MaximumStock, &pl.IsPrimaryLocation, &pl.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan product location: %w", err)
		}
		list = append(list, &pl)
	}
	return list, rows.Err()
}
