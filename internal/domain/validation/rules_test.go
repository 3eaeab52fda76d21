package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/validation"
)

func TestIsValidID(t *testing.T) {
	assert.True(t, validation.IsValidID(1))
	assert.True(t, validation.IsValidID(999999))
	assert.False(t, validation.IsValidID(0))
	assert.False(t, validation.IsValidID(-5))
}

func TestIsValidStock(t *testing.T) {
	assert.True(t, validation.IsValidStock(0))
	assert.True(t, validation.IsValidStock(100))
	assert.False(t, validation.IsValidStock(-1))
}

func TestIsValidQuantity(t *testing.T) {
	assert.True(t, validation.IsValidQuantity(1))
	assert.False(t, validation.IsValidQuantity(0), "cantidad cero se rechaza, no se acepta en silencio")
	assert.False(t, validation.IsValidQuantity(-10))
}

func TestIsValidSKU(t *testing.T) {
	tests := []struct {
		sku  string
		want bool
	}{
		{"ABC-123", true},
		{"abc_123", true},
		{"X", true},
		{"", false},
		{"ABC 123", false},
		{"ABC#123", false},
		{strings.Repeat("A", 50), true},
		{strings.Repeat("A", 51), false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, validation.IsValidSKU(tc.sku), "sku=%q", tc.sku)
	}
}

func TestIsValidBarcode(t *testing.T) {
	tests := []struct {
		barcode string
		want    bool
	}{
		{"", true}, // opcional
		{"12345678", true},
		{"123456789012345678", true},
		{"1234567", false},
		{"1234567890123456789", false},
		{"12345abc", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, validation.IsValidBarcode(tc.barcode), "barcode=%q", tc.barcode)
	}
}

func TestIsValidLocationCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"A1-B2-C3-D4", true},
		{"A1", true},
		{"A1-B2", true},
		{"", false},
		{"A1--B2", false},
		{"-A1", false},
		{"A1-", false},
		{"A1 B2", false},
		{strings.Repeat("A", 51), false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, validation.IsValidLocationCode(tc.code), "code=%q", tc.code)
	}
}

func TestIsValidPrice(t *testing.T) {
	assert.True(t, validation.IsValidPrice(decimal.Zero))
	assert.True(t, validation.IsValidPrice(decimal.RequireFromString("999999999.99")))
	assert.False(t, validation.IsValidPrice(decimal.RequireFromString("-0.01")))
	assert.False(t, validation.IsValidPrice(decimal.RequireFromString("1000000000")))
}

func TestIsValidDateRange(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, validation.IsValidDateRange(nil, nil))
	assert.True(t, validation.IsValidDateRange(&early, nil))
	assert.True(t, validation.IsValidDateRange(nil, &late))
	assert.True(t, validation.IsValidDateRange(&early, &late))
	assert.True(t, validation.IsValidDateRange(&early, &early))
	assert.False(t, validation.IsValidDateRange(&late, &early))
}

func TestIsValidPage(t *testing.T) {
	assert.True(t, validation.IsValidPageNumber(1))
	assert.False(t, validation.IsValidPageNumber(0))
	assert.True(t, validation.IsValidPageSize(validation.MaxPageSize))
	assert.False(t, validation.IsValidPageSize(validation.MaxPageSize+1))
	assert.False(t, validation.IsValidPageSize(0))
}

// Los validadores por operación acumulan TODAS las violaciones, no solo la primera.
func TestValidateMovementRequest_AcumulaViolaciones(t *testing.T) {
	r := validation.ValidateMovementRequest(0, -1, 0, "")
	require.False(t, r.OK())
	assert.Len(t, r.Violations(), 4)

	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 4)
}

func TestValidateMovementRequest_OK(t *testing.T) {
	r := validation.ValidateMovementRequest(1, 2, 10, "user-1")
	assert.True(t, r.OK())
	assert.NoError(t, r.Err())
}

func TestValidateTransferRequest(t *testing.T) {
	t.Run("mismo origen y destino", func(t *testing.T) {
		r := validation.ValidateTransferRequest(1, 2, 2, 10, "user-1")
		require.False(t, r.OK())
		assert.Contains(t, r.Violations()[0], "origen y destino")
	})
	t.Run("destino inválido no duplica la violación de igualdad", func(t *testing.T) {
		r := validation.ValidateTransferRequest(1, 2, 0, 10, "user-1")
		require.False(t, r.OK())
		assert.Len(t, r.Violations(), 1)
	})
	t.Run("ok", func(t *testing.T) {
		r := validation.ValidateTransferRequest(1, 2, 3, 10, "user-1")
		assert.True(t, r.OK())
	})
}

func TestValidateAdjustmentRequest(t *testing.T) {
	t.Run("razón obligatoria", func(t *testing.T) {
		r := validation.ValidateAdjustmentRequest(1, 2, 5, "", "user-1")
		require.False(t, r.OK())
		assert.Contains(t, r.Violations()[0], "razón")
	})
	t.Run("cantidad negativa", func(t *testing.T) {
		r := validation.ValidateAdjustmentRequest(1, 2, -1, "conteo físico", "user-1")
		require.False(t, r.OK())
	})
	t.Run("ajuste a cero es válido", func(t *testing.T) {
		r := validation.ValidateAdjustmentRequest(1, 2, 0, "conteo físico", "user-1")
		assert.True(t, r.OK())
	})
}

func TestValidateMovementFilter(t *testing.T) {
	bad := entity.MovementType("VENTA")
	badID := int64(0)
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	r := validation.ValidateMovementFilter(&badID, nil, &bad, &late, &early, 0, 200)
	require.False(t, r.OK())
	assert.Len(t, r.Violations(), 5)

	r = validation.ValidateMovementFilter(nil, nil, nil, &early, &late, 1, 20)
	assert.True(t, r.OK())
}
