package dto

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementBody body para POST /api/stock/in, /api/stock/out y /api/stock/return.
type MovementBody struct {
	ProductID  int64  `json:"product_id"`
	LocationID int64  `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Reference  string `json:"reference,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// TransferBody body para POST /api/stock/transfer.
type TransferBody struct {
	ProductID      int64  `json:"product_id"`
	FromLocationID int64  `json:"from_location_id"`
	ToLocationID   int64  `json:"to_location_id"`
	Quantity       int    `json:"quantity"`
	Reference      string `json:"reference,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// AdjustmentBody body para POST /api/stock/adjust. NewQuantity es la cantidad
// declarada tras el conteo, no un delta.
type AdjustmentBody struct {
	ProductID   int64  `json:"product_id"`
	LocationID  int64  `json:"location_id"`
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason"`
}

// BulkMovementBody body para POST /api/stock/bulk/in y /api/stock/bulk/out.
type BulkMovementBody struct {
	Items []MovementBody `json:"items"`
}

// BulkTransferBody body para POST /api/stock/bulk/transfer.
type BulkTransferBody struct {
	Items []TransferBody `json:"items"`
}

// MovementResponse fila del libro de movimientos en respuestas.
type MovementResponse struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	LocationID    int64     `json:"location_id"`
	ToLocationID  *int64    `json:"to_location_id,omitempty"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Reference     string    `json:"reference,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedBy     string    `json:"created_by"`
	MovementDate  time.Time `json:"movement_date"`
	TransactionID string    `json:"transaction_id"`
}

// FromMovement convierte la entidad del libro al DTO de respuesta.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		ToLocationID:  m.ToLocationID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reference:     m.Reference,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		MovementDate:  m.MovementDate,
		TransactionID: m.TransactionID,
	}
}

// FromMovements convierte una lista de filas del libro.
func FromMovements(movs []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, FromMovement(m))
	}
	return out
}

// CurrentStockResponse respuesta de GET /api/stock/current.
type CurrentStockResponse struct {
	ProductID  int64  `json:"product_id"`
	LocationID *int64 `json:"location_id,omitempty"` // nil = agregado del producto
	Quantity   int    `json:"quantity"`
}

// ProductLocationResponse fila de stock por ubicación en respuestas.
type ProductLocationResponse struct {
	ProductID         int64  `json:"product_id"`
	LocationID        int64  `json:"location_id"`
	Quantity          int    `json:"quantity"`
	MinimumStock      int    `json:"minimum_stock"`
	MaximumStock      int    `json:"maximum_stock,omitempty"`
	IsPrimaryLocation bool   `json:"is_primary_location"`
	Status            string `json:"status"`
}

// FromProductLocation convierte la entidad de stock por ubicación al DTO.
func FromProductLocation(pl *entity.ProductLocation) ProductLocationResponse {
	return ProductLocationResponse{
		ProductID:         pl.ProductID,
		LocationID:        pl.LocationID,
		Quantity:          pl.Quantity,
		MinimumStock:      pl.MinimumStock,
		MaximumStock:      pl.MaximumStock,
		IsPrimaryLocation: pl.IsPrimaryLocation,
		Status:            string(pl.Status()),
	}
}

// DailyTotalResponse agregado por tipo de GET /api/stock/daily.
type DailyTotalResponse struct {
	Type     string `json:"type"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
}

// CanMoveResponse respuesta de GET /api/stock/can-move.
type CanMoveResponse struct {
	Allowed bool `json:"allowed"`
}
