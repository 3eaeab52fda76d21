package ledger

// MovementRequest entrada para StockIn, StockOut y Return: una sola ubicación.
type MovementRequest struct {
	ProductID  int64
	LocationID int64
	Quantity   int
	Reference  string
	Notes      string
	ActorID    string
}

// TransferRequest entrada para Transfer: origen y destino distintos.
type TransferRequest struct {
	ProductID      int64
	FromLocationID int64
	ToLocationID   int64
	Quantity       int
	Reference      string
	Notes          string
	ActorID        string
}

// AdjustmentRequest entrada para Adjustment: fija la cantidad de la ubicación
// a NewQuantity (no aplica un delta), con razón obligatoria.
type AdjustmentRequest struct {
	ProductID   int64
	LocationID  int64
	NewQuantity int
	Reason      string
	ActorID     string
}

// BulkItem elemento de un lote de entradas o salidas.
type BulkItem struct {
	ProductID  int64
	LocationID int64
	Quantity   int
	Reference  string
	Notes      string
}

// BulkTransferItem elemento de un lote de traslados.
type BulkTransferItem struct {
	ProductID      int64
	FromLocationID int64
	ToLocationID   int64
	Quantity       int
	Reference      string
	Notes          string
}
