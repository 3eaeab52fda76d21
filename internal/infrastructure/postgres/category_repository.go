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

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de categorías. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una categoría nueva.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (parent_id, name, code, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		category.ParentID, category.Name, category.Code, category.IsActive,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	query := `SELECT id, parent_id, name, code, is_active, created_at, updated_at
		FROM categories WHERE id = $1`
	var c entity.Category
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.ParentID, &c.Name, &c.Code, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// List lista categorías ordenadas por nombre.
func (r *CategoryRepo) List(ctx context.Context, limit, offset int) ([]*entity.Category, error) {
	query := `SELECT id, parent_id, name, code, is_active, created_at, updated_at
		FROM categories ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return r.scanMany(rows)
}

// ListChildren lista las subcategorías directas de un nodo.
func (r *CategoryRepo) ListChildren(ctx context.Context, parentID int64) ([]*entity.Category, error) {
	query := `SELECT id, parent_id, name, code, is_active, created_at, updated_at
		FROM categories WHERE parent_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return r.scanMany(rows)
}

func (r *CategoryRepo) scanMany(rows pgx.Rows) ([]*entity.Category, error) {
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.Code, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
