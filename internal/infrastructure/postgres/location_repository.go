package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, code, name, description, zone, aisle, shelf, position, parent_id,
		max_capacity, current_capacity, capacity_unit, min_temperature, max_temperature,
		is_active, created_at, updated_at`

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una ubicación nueva.
func (r *LocationRepo) Create(ctx context.Context, location *entity.Location) error {
	query := `
		INSERT INTO locations (code, name, description, zone, aisle, shelf, position, parent_id,
			max_capacity, current_capacity, capacity_unit, min_temperature, max_temperature,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		location.Code, location.Name, location.Description, location.Zone, location.Aisle,
		location.Shelf, location.Position, location.ParentID,
		location.MaxCapacity, location.CurrentCapacity, location.CapacityUnit,
		location.MinTemperature, location.MaxTemperature, location.IsActive,
	).Scan(&location.ID, &location.CreatedAt, &location.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get location")
}

// GetByCode obtiene una ubicación por código.
func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE code = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, code), "get location by code")
}

// Update actualiza los datos de la ubicación.
func (r *LocationRepo) Update(ctx context.Context, location *entity.Location) error {
	query := `
		UPDATE locations
		SET code = $2, name = $3, description = $4, zone = $5, aisle = $6, shelf = $7,
			position = $8, parent_id = $9, max_capacity = $10, current_capacity = $11,
			capacity_unit = $12, min_temperature = $13, max_temperature = $14,
			is_active = $15, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		location.ID, location.Code, location.Name, location.Description, location.Zone,
		location.Aisle, location.Shelf, location.Position, location.ParentID,
		location.MaxCapacity, location.CurrentCapacity, location.CapacityUnit,
		location.MinTemperature, location.MaxTemperature, location.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ubicaciones ordenadas por código.
func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return r.scanMany(rows)
}

// ListChildren lista las ubicaciones hijas directas de un nodo.
func (r *LocationRepo) ListChildren(ctx context.Context, parentID int64) ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE parent_id = $1 ORDER BY code`
	rows, err := r.q.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return r.scanMany(rows)
}

// HasReferences indica si la ubicación tiene stock distinto de cero o
// movimientos asociados (como origen o destino de traslado).
func (r *LocationRepo) HasReferences(ctx context.Context, id int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM product_locations WHERE location_id = $1 AND quantity <> 0)
			OR EXISTS (SELECT 1 FROM stock_movements WHERE location_id = $1 OR to_location_id = $1)`
	var has bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("check location references: %w", err)
	}
	return has, nil
}

// Delete elimina la ubicación. El caller debe verificar HasReferences antes.
func (r *LocationRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LocationRepo) scanOne(row pgx.Row, op string) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(
		&l.ID, &l.Code, &l.Name, &l.Description, &l.Zone, &l.Aisle, &l.Shelf, &l.Position,
		&l.ParentID, &l.MaxCapacity, &l.CurrentCapacity, &l.CapacityUnit,
		&l.MinTemperature, &l.MaxTemperature, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}

func (r *LocationRepo) scanMany(rows pgx.Rows) ([]*entity.Location, error) {
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(
			&l.ID, &l.Code, &l.Name, &l.Description, &l.Zone, &l.Aisle, &l.Shelf, &l.Position,
			&l.ParentID, &l.MaxCapacity, &l.CurrentCapacity, &l.CapacityUnit,
			&l.MinTemperature, &l.MaxTemperature, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
