package entity

import "time"

// Category representa una categoría de productos (jerárquica opcional,
// padre por ID en tabla plana).
type Category struct {
	ID        int64
	ParentID  *int64 // nil si es raíz
	Name      string
	Code      string // único
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
