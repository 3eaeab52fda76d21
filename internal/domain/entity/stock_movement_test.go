package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func TestMovementType_Valid(t *testing.T) {
	for _, mt := range []entity.MovementType{
		entity.MovementTypeStockIn, entity.MovementTypeStockOut,
		entity.MovementTypeTransfer, entity.MovementTypeAdjustment,
		entity.MovementTypeReturn,
	} {
		assert.True(t, mt.Valid(), string(mt))
	}
	assert.False(t, entity.MovementType("VENTA").Valid())
	assert.False(t, entity.MovementType("").Valid())
}

func TestMovementType_Outbound(t *testing.T) {
	assert.True(t, entity.MovementTypeStockOut.Outbound())
	assert.True(t, entity.MovementTypeTransfer.Outbound())
	assert.False(t, entity.MovementTypeStockIn.Outbound())
	assert.False(t, entity.MovementTypeAdjustment.Outbound())
	assert.False(t, entity.MovementTypeReturn.Outbound())
}

// TestStockMovement_SignedDelta verifica la regla de signo por tipo:
// +1 para STOCK_IN/RETURN, -1 para STOCK_OUT, doble cara para TRANSFER
// y Prev/New para ADJUSTMENT.
func TestStockMovement_SignedDelta(t *testing.T) {
	toLoc := int64(2)

	tests := []struct {
		name     string
		mov      entity.StockMovement
		location int64
		want     int
	}{
		{"stock_in en origen", entity.StockMovement{Type: entity.MovementTypeStockIn, LocationID: 1, Quantity: 50}, 1, 50},
		{"stock_in otra ubicación", entity.StockMovement{Type: entity.MovementTypeStockIn, LocationID: 1, Quantity: 50}, 9, 0},
		{"return en origen", entity.StockMovement{Type: entity.MovementTypeReturn, LocationID: 1, Quantity: 5}, 1, 5},
		{"stock_out en origen", entity.StockMovement{Type: entity.MovementTypeStockOut, LocationID: 1, Quantity: 20}, 1, -20},
		{"transfer lado origen", entity.StockMovement{Type: entity.MovementTypeTransfer, LocationID: 1, ToLocationID: &toLoc, Quantity: 20}, 1, -20},
		{"transfer lado destino", entity.StockMovement{Type: entity.MovementTypeTransfer, LocationID: 1, ToLocationID: &toLoc, Quantity: 20}, 2, 20},
		{"transfer otra ubicación", entity.StockMovement{Type: entity.MovementTypeTransfer, LocationID: 1, ToLocationID: &toLoc, Quantity: 20}, 3, 0},
		{"adjustment a la baja", entity.StockMovement{Type: entity.MovementTypeAdjustment, LocationID: 2, Quantity: 15, PreviousStock: 20, NewStock: 5}, 2, -15},
		{"adjustment al alza", entity.StockMovement{Type: entity.MovementTypeAdjustment, LocationID: 2, Quantity: 10, PreviousStock: 5, NewStock: 15}, 2, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.mov.SignedDelta(tc.location))
		})
	}
}

func TestProductLocation_Status(t *testing.T) {
	tests := []struct {
		name string
		pl   entity.ProductLocation
		want entity.StockStatus
	}{
		{"sin stock", entity.ProductLocation{Quantity: 0}, entity.StockStatusOutOfStock},
		{"bajo umbral", entity.ProductLocation{Quantity: 3, MinimumStock: 5}, entity.StockStatusLowStock},
		{"igual al umbral", entity.ProductLocation{Quantity: 5, MinimumStock: 5}, entity.StockStatusLowStock},
		{"normal", entity.ProductLocation{Quantity: 10, MinimumStock: 5}, entity.StockStatusInStock},
		{"sobre el máximo", entity.ProductLocation{Quantity: 120, MinimumStock: 5, MaximumStock: 100}, entity.StockStatusOverstock},
		{"sin máximo configurado", entity.ProductLocation{Quantity: 120, MinimumStock: 5}, entity.StockStatusInStock},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.pl.Status())
		})
	}
}

func TestProduct_Status(t *testing.T) {
	assert.Equal(t, entity.StockStatusOutOfStock, (&entity.Product{CurrentStock: 0, MinimumStock: 10}).Status())
	assert.Equal(t, entity.StockStatusLowStock, (&entity.Product{CurrentStock: 10, MinimumStock: 10}).Status())
	assert.Equal(t, entity.StockStatusInStock, (&entity.Product{CurrentStock: 11, MinimumStock: 10}).Status())
}
