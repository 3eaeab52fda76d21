package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductBody body para crear o actualizar un producto.
type ProductBody struct {
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CategoryID   int64           `json:"category_id,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Unit         string          `json:"unit,omitempty"`
	MinimumStock int             `json:"minimum_stock"`
	IsActive     *bool           `json:"is_active,omitempty"` // nil = true al crear
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// ProductResponse producto en respuestas, con su clasificación de stock.
type ProductResponse struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CategoryID   int64           `json:"category_id,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Unit         string          `json:"unit,omitempty"`
	MinimumStock int             `json:"minimum_stock"`
	CurrentStock int             `json:"current_stock"`
	Status       string          `json:"status"`
	IsActive     bool            `json:"is_active"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FromProduct convierte la entidad al DTO de respuesta.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		Cost:         p.Cost,
		Unit:         p.Unit,
		MinimumStock: p.MinimumStock,
		CurrentStock: p.CurrentStock,
		Status:       string(p.Status()),
		IsActive:     p.IsActive,
		ExpiryDate:   p.ExpiryDate,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromProducts convierte una lista de productos.
func FromProducts(products []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}

// CategoryBody body para crear una categoría.
type CategoryBody struct {
	ParentID *int64 `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Code     string `json:"code"`
}

// CategoryResponse categoría en respuestas.
type CategoryResponse struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

// FromCategory convierte la entidad al DTO de respuesta.
func FromCategory(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, ParentID: c.ParentID, Name: c.Name, Code: c.Code, IsActive: c.IsActive}
}
