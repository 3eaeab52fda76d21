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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, barcode, name, description, category_id, price, cost, unit,
		minimum_stock, current_stock, is_active, is_deleted, expiry_date, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. CurrentStock inicia en 0: el stock solo
// entra por el motor de inventario.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (sku, barcode, name, description, category_id, price, cost, unit,
			minimum_stock, current_stock, is_active, is_deleted, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, false, $11, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		product.SKU, product.Barcode, product.Name, product.Description, product.CategoryID,
		product.Price, product.Cost, product.Unit, product.MinimumStock,
		product.IsActive, product.ExpiryDate,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID, excluyendo borrados lógicos.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND NOT is_deleted`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get product")
}

// GetByIDIncludeDeleted obtiene un producto por ID aunque esté borrado (auditoría).
func (r *ProductRepo) GetByIDIncludeDeleted(ctx context.Context, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get product include deleted")
}

// GetBySKU obtiene un producto por SKU, excluyendo borrados lógicos.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1 AND NOT is_deleted`
	return r.scanOne(r.q.QueryRow(ctx, query, sku), "get product by sku")
}

// Update actualiza los datos maestros del producto. No toca current_stock:
// ese campo es propiedad exclusiva del motor de inventario.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET sku = $2, barcode = $3, name = $4, description = $5, category_id = $6,
			price = $7, cost = $8, unit = $9, minimum_stock = $10, is_active = $11,
			expiry_date = $12, updated_at = now()
		WHERE id = $1 AND NOT is_deleted`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Barcode, product.Name, product.Description,
		product.CategoryID, product.Price, product.Cost, product.Unit,
		product.MinimumStock, product.IsActive, product.ExpiryDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos no borrados, ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE NOT is_deleted
		ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return r.scanMany(rows)
}

// ListBelowMinimum lista productos activos con stock agregado en o bajo su umbral.
func (r *ProductRepo) ListBelowMinimum(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE NOT is_deleted AND is_active AND current_stock <= minimum_stock
		ORDER BY current_stock, id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list below minimum: %w", err)
	}
	return r.scanMany(rows)
}

// UpdateAggregateStock incrementa el agregado current_stock en delta.
func (r *ProductRepo) UpdateAggregateStock(ctx context.Context, productID int64, delta int) error {
	query := `UPDATE products SET current_stock = current_stock + $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, productID, delta)
	if err != nil {
		return fmt.Errorf("update aggregate stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el producto como borrado; la fila y su historial se conservan.
func (r *ProductRepo) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE products SET is_deleted = true, is_active = false, updated_at = now()
		WHERE id = $1 AND NOT is_deleted`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row, op string) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.CategoryID,
		&p.Price, &p.Cost, &p.Unit, &p.MinimumStock, &p.CurrentStock,
		&p.IsActive, &p.IsDeleted, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (r *ProductRepo) scanMany(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.CategoryID,
			&p.Price, &p.Cost, &p.Unit, &p.MinimumStock, &p.CurrentStock,
			&p.IsActive, &p.IsDeleted, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
