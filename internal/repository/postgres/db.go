package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx methods the repositories use.
// Satisfied by *pgxpool.Pool and pgx.Tx, so the same repository code
// runs against a pool in production and inside a rolled-back
// transaction in tests.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
