package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// LocationBody body para crear o actualizar una ubicación.
type LocationBody struct {
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Zone            string           `json:"zone,omitempty"`
	Aisle           string           `json:"aisle,omitempty"`
	Shelf           string           `json:"shelf,omitempty"`
	Position        string           `json:"position,omitempty"`
	ParentID        *int64           `json:"parent_id,omitempty"`
	MaxCapacity     *decimal.Decimal `json:"max_capacity,omitempty"`
	CurrentCapacity *decimal.Decimal `json:"current_capacity,omitempty"`
	CapacityUnit    string           `json:"capacity_unit,omitempty"`
	MinTemperature  *decimal.Decimal `json:"min_temperature,omitempty"`
	MaxTemperature  *decimal.Decimal `json:"max_temperature,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"` // nil = true al crear
}

// LocationResponse ubicación en respuestas.
type LocationResponse struct {
	ID              int64            `json:"id"`
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Zone            string           `json:"zone,omitempty"`
	Aisle           string           `json:"aisle,omitempty"`
	Shelf           string           `json:"shelf,omitempty"`
	Position        string           `json:"position,omitempty"`
	ParentID        *int64           `json:"parent_id,omitempty"`
	MaxCapacity     *decimal.Decimal `json:"max_capacity,omitempty"`
	CurrentCapacity *decimal.Decimal `json:"current_capacity,omitempty"`
	CapacityUnit    string           `json:"capacity_unit,omitempty"`
	MinTemperature  *decimal.Decimal `json:"min_temperature,omitempty"`
	MaxTemperature  *decimal.Decimal `json:"max_temperature,omitempty"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// FromLocation convierte la entidad al DTO de respuesta.
func FromLocation(l *entity.Location) LocationResponse {
	return LocationResponse{
		ID:              l.ID,
		Code:            l.Code,
		Name:            l.Name,
		Description:     l.Description,
		Zone:            l.Zone,
		Aisle:           l.Aisle,
		Shelf:           l.Shelf,
		Position:        l.Position,
		ParentID:        l.ParentID,
		MaxCapacity:     l.MaxCapacity,
		CurrentCapacity: l.CurrentCapacity,
		CapacityUnit:    l.CapacityUnit,
		MinTemperature:  l.MinTemperature,
		MaxTemperature:  l.MaxTemperature,
		IsActive:        l.IsActive,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// FromLocations convierte una lista de ubicaciones.
func FromLocations(locations []*entity.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, FromLocation(l))
	}
	return out
}
