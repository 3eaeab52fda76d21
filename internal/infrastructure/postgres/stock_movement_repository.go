package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, location_id, to_location_id, type, quantity,
		previous_stock, new_stock, reference, notes, created_by, movement_date,
		created_at, transaction_id`

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Las filas son inmutables: solo hay INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append anexa un movimiento al libro y devuelve su ID.
func (r *StockMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) (int64, error) {
	query := `
		INSERT INTO stock_movements (product_id, location_id, to_location_id, type, quantity,
			previous_stock, new_stock, reference, notes, created_by, movement_date,
			created_at, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		movement.ProductID, movement.LocationID, movement.ToLocationID, movement.Type,
		movement.Quantity, movement.PreviousStock, movement.NewStock,
		movement.Reference, movement.Notes, movement.CreatedBy,
		movement.MovementDate, movement.CreatedAt, movement.TransactionID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append movement: %w", err)
	}
	return id, nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ProductID, &m.LocationID, &m.ToLocationID, &m.Type, &m.Quantity,
		&m.PreviousStock, &m.NewStock, &m.Reference, &m.Notes, &m.CreatedBy,
		&m.MovementDate, &m.CreatedAt, &m.TransactionID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// Query devuelve la página pedida (fecha descendente) y el total de filas que
// cumplen el filtro. Para traslados, el filtro por ubicación coincide con
// origen o destino.
func (r *StockMovementRepo) Query(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error) {
	where := " WHERE 1=1"
	var args []any
	pos := 1
	if filter.ProductID != nil {
		where += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, *filter.ProductID)
		pos++
	}
	if filter.LocationID != nil {
		where += fmt.Sprintf(" AND (location_id = $%d OR to_location_id = $%d)", pos, pos)
		args = append(args, *filter.LocationID)
		pos++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, *filter.Type)
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT count(*) FROM stock_movements"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements` + where +
		fmt.Sprintf(" ORDER BY movement_date DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query movements: %w", err)
	}
	list, err := r.scanMany(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByProductLocation devuelve todos los movimientos que afectan la pareja
// en orden cronológico ascendente, incluyendo traslados con la ubicación como destino.
func (r *StockMovementRepo) ListByProductLocation(ctx context.Context, productID, locationID int64) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND (location_id = $2 OR to_location_id = $2)
		ORDER BY movement_date, id`
	rows, err := r.q.Query(ctx, query, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list by product location: %w", err)
	}
	return r.scanMany(rows)
}

// SumByTypeForDate agrega conteos y unidades por tipo para el día indicado (UTC).
func (r *StockMovementRepo) SumByTypeForDate(ctx context.Context, date time.Time) ([]repository.DailyTotal, error) {
	query := `
		SELECT type, count(*), coalesce(sum(quantity), 0)
		FROM stock_movements
		WHERE movement_date >= $1 AND movement_date < $2
		GROUP BY type`
	day := time.Date(date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.q.Query(ctx, query, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("sum by type: %w", err)
	}
	defer rows.Close()
	var totals []repository.DailyTotal
	for rows.Next() {
		var t repository.DailyTotal
		if err := rows.Scan(&t.Type, &t.Count, &t.Quantity); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *StockMovementRepo) scanMany(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.LocationID, &m.ToLocationID, &m.Type, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.Reference, &m.Notes, &m.CreatedBy,
			&m.MovementDate, &m.CreatedAt, &m.TransactionID,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
