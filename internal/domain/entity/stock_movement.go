package entity

import "time"

// MovementType tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeStockIn    MovementType = "STOCK_IN"   // entrada
	MovementTypeStockOut   MovementType = "STOCK_OUT"  // salida
	MovementTypeTransfer   MovementType = "TRANSFER"   // traslado entre ubicaciones
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // ajuste a cantidad declarada
	MovementTypeReturn     MovementType = "RETURN"     // devolución (reingreso)
)

// Valid indica si el tipo de movimiento es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeStockIn, MovementTypeStockOut, MovementTypeTransfer,
		MovementTypeAdjustment, MovementTypeReturn:
		return true
	}
	return false
}

// Outbound indica si el tipo descuenta stock de la ubicación origen y por
// tanto requiere verificación de disponibilidad.
func (t MovementType) Outbound() bool {
	return t == MovementTypeStockOut || t == MovementTypeTransfer
}

// StockMovement es una entrada inmutable del libro de movimientos.
// Nunca se actualiza ni se borra: las correcciones son movimientos
// compensatorios nuevos. Invariante: NewStock = PreviousStock + delta con
// signo según el tipo (ver SignedDelta).
type StockMovement struct {
	ID         int64
	ProductID  int64
	LocationID int64 // ubicación origen para todos los tipos
	Type       MovementType
	Quantity   int // magnitud, siempre > 0

	// Stock de la ubicación origen antes y después, capturado al confirmar.
	PreviousStock int
	NewStock      int

	// Solo para TRANSFER: ubicación destino, distinta de LocationID.
	// Un traslado es UNA sola fila; al reconstruir historial la fila se
	// aplica dos veces (resta en origen, suma en destino).
	ToLocationID *int64

	Reference     string // nro. de orden, factura, etc.
	Notes         string
	CreatedBy     string // identidad del actor
	MovementDate  time.Time
	CreatedAt     time.Time
	TransactionID string // correlación de lotes (UUID)
}

// SignedDelta devuelve el efecto del movimiento sobre la ubicación indicada:
// positivo si suma stock, negativo si resta, cero si no la afecta.
// Para TRANSFER la misma fila resta en origen y suma en destino.
func (m *StockMovement) SignedDelta(locationID int64) int {
	switch m.Type {
	case MovementTypeStockIn, MovementTypeReturn:
		if m.LocationID == locationID {
			return m.Quantity
		}
	case MovementTypeStockOut:
		if m.LocationID == locationID {
			return -m.Quantity
		}
	case MovementTypeAdjustment:
		if m.LocationID == locationID {
			// La magnitud es |delta|; el signo se reconstruye de Prev/New.
			return m.NewStock - m.PreviousStock
		}
	case MovementTypeTransfer:
		if m.LocationID == locationID {
			return -m.Quantity
		}
		if m.ToLocationID != nil && *m.ToLocationID == locationID {
			return m.Quantity
		}
	}
	return 0
}
