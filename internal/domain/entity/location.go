package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location representa una ubicación física del almacén (zona-pasillo-estante-posición).
// La jerarquía es plana: cada nodo guarda ParentID y los hijos se resuelven
// por consulta indexada, no por punteros.
type Location struct {
	ID          int64
	Code        string // ej. "A1-B2-C3", único
	Name        string
	Description string
	Zone        string
	Aisle       string
	Shelf       string
	Position    string
	ParentID    *int64 // nil si es raíz

	// Capacidad opcional
	MaxCapacity     *decimal.Decimal
	CurrentCapacity *decimal.Decimal
	CapacityUnit    string // ej. "m3"

	// Banda de temperatura opcional (almacenamiento especial)
	MinTemperature *decimal.Decimal
	MaxTemperature *decimal.Decimal

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
