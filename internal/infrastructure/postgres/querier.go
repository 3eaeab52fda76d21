package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstrae pool y transacción: los repositorios reciben cualquiera de
// los dos y el mismo código sirve dentro y fuera de una transacción.
// *pgxpool.Pool y pgx.Tx lo satisfacen.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
